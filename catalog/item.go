package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Scalar holds a loosely typed JSON scalar. Inventory feeds mix numbers and
// numeric strings for the same field, so values are kept in textual form and
// parsed on demand.
type Scalar struct {
	Text    string
	Valid   bool
	Numeric bool // decoded from a JSON number literal

	bare bool // decoded from an unquoted literal such as true
}

// Num returns a numeric Scalar.
func Num(f float64) Scalar {
	return Scalar{Text: strconv.FormatFloat(f, 'f', -1, 64), Valid: true, Numeric: true, bare: true}
}

// Str returns a string Scalar.
func Str(s string) Scalar {
	return Scalar{Text: s, Valid: true}
}

func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = Scalar{}
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Scalar{Text: str, Valid: true}
		return nil
	}
	if b[0] == '{' || b[0] == '[' {
		// Composite values are not scalars; treat as absent.
		*s = Scalar{}
		return nil
	}
	_, err := strconv.ParseFloat(string(b), 64)
	*s = Scalar{Text: string(b), Valid: true, Numeric: err == nil, bare: true}
	return nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	if s.Numeric || s.bare {
		return []byte(s.Text), nil
	}
	return json.Marshal(s.Text)
}

// String returns the scalar in display form. Numbers are rendered in their
// shortest decimal form so 25 and 25.0 produce the same text.
func (s Scalar) String() string {
	if !s.Valid {
		return ""
	}
	if s.Numeric {
		if f, err := strconv.ParseFloat(s.Text, 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return s.Text
}

// Float parses the scalar as a finite number.
func (s Scalar) Float() (float64, bool) {
	if !s.Valid {
		return 0, false
	}
	return ParseNumber(s.Text)
}

// ParseNumber parses s as a finite float. Blank input, NaN and infinities
// are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Item is one inventory row as published by the inventory feed.
type Item struct {
	ID          Scalar `json:"id"`
	DesignID    Scalar `json:"item_design_id"`
	Name        string `json:"name"`
	Quantity    Scalar `json:"quantity"`
	BonusType   string `json:"bonus_type,omitempty"`
	BonusValue  Scalar `json:"bonus_value"`
	Rarity      string `json:"rarity,omitempty"`
	SubType     string `json:"item_sub_type,omitempty"`
	SpriteID    Scalar `json:"item_sprite_id"`
	Price       Scalar `json:"price"`
	MarketPrice Scalar `json:"market_price"`
}

// Qty returns the item's quantity, defaulting to 1 when the field is absent,
// non-numeric or below 1.
func (it *Item) Qty() float64 {
	q, ok := it.Quantity.Float()
	if !ok || q < 1 {
		return 1
	}
	return q
}
