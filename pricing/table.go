package pricing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kasuganosora/tradeboard/catalog"
)

// TimeLayout is the lastUpdate format of exported price documents.
const TimeLayout = "2006-01-02 15:04:05"

// ErrTableShape is returned when a price document is not a JSON object.
var ErrTableShape = errors.New("pricing: price table must be a JSON object")

// Entry is one recorded asking price. A zero LastUpdate means the record
// carried no usable timestamp (legacy bare numbers, hand-edited files).
type Entry struct {
	Price      float64
	LastUpdate time.Time
}

type entryJSON struct {
	Price      float64 `json:"price"`
	LastUpdate string  `json:"lastUpdate,omitempty"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{Price: e.Price}
	if !e.LastUpdate.IsZero() {
		out.LastUpdate = e.LastUpdate.UTC().Format(TimeLayout)
	}
	return json.Marshal(out)
}

// Table maps a stable id (or, in older documents, a raw item id) to its
// recorded price.
type Table map[string]Entry

// Lookup returns the entry recorded under id.
func (t Table) Lookup(id string) (Entry, bool) {
	e, ok := t[id]
	return e, ok
}

// Clone returns a shallow copy of t.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// DecodeTable parses a price document. Each value may be a bare number
// (legacy format) or an object {"price": n, "lastUpdate": ts}. Entries whose
// price is not a finite number can never be resolved or exported and are
// reported in skipped instead of failing the whole document.
func DecodeTable(data []byte) (t Table, skipped []string, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, nil, ErrTableShape
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("pricing: parse price table: %w", err)
	}
	t = make(Table, len(raw))
	for key, msg := range raw {
		e, ok := decodeEntry(msg)
		if !ok {
			skipped = append(skipped, key)
			continue
		}
		t[key] = e
	}
	sort.Strings(skipped)
	return t, skipped, nil
}

func decodeEntry(msg json.RawMessage) (Entry, bool) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 {
		return Entry{}, false
	}
	if msg[0] != '{' {
		var legacy catalog.Scalar
		if err := json.Unmarshal(msg, &legacy); err != nil {
			return Entry{}, false
		}
		p, ok := legacy.Float()
		return Entry{Price: p}, ok
	}
	var rec struct {
		Price      catalog.Scalar  `json:"price"`
		LastUpdate json.RawMessage `json:"lastUpdate"`
	}
	if err := json.Unmarshal(msg, &rec); err != nil {
		return Entry{}, false
	}
	p, ok := rec.Price.Float()
	if !ok {
		return Entry{}, false
	}
	return Entry{Price: p, LastUpdate: parseTimestamp(rec.LastUpdate)}, true
}

var timeLayouts = []string{
	TimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTimestamp accepts the export layout, RFC 3339 and unix seconds or
// milliseconds. Anything else yields the zero time.
func parseTimestamp(raw json.RawMessage) time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}
	}
	if raw[0] != '"' {
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
			return time.Time{}
		}
		if f > 1e12 {
			return time.UnixMilli(int64(f)).UTC()
		}
		return time.Unix(int64(f), 0).UTC()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

// Encode renders t as the indented prices.json document. encoding/json
// writes map keys in sorted order, so equal tables encode identically.
func (t Table) Encode() ([]byte, error) {
	if t == nil {
		t = Table{}
	}
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("pricing: encode price table: %w", err)
	}
	return append(b, '\n'), nil
}

// RekeyLegacy moves entries recorded under a raw item id to that item's
// stable id. An entry already present under the stable id wins, and raw ids
// that collide with a live stable id are left alone. The input table is not
// modified.
func RekeyLegacy(t Table, items []catalog.Item) Table {
	out := t.Clone()
	ids := catalog.StableIDs(items)
	live := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		live[id] = struct{}{}
	}
	for i := range items {
		raw := items[i].ID.String()
		sid := ids[i]
		if _, taken := live[raw]; raw == "" || taken {
			continue
		}
		e, ok := t[raw]
		if !ok {
			continue
		}
		if _, exists := out[sid]; !exists {
			out[sid] = e
		}
		delete(out, raw)
	}
	return out
}
