package catalog

import (
	"regexp"
	"sort"
	"strings"
)

const (
	detailURLPrefix = "https://pixyship.com/item/"
	spriteURLPrefix = "https://api.pixelstarships.com/FileService/DownloadSprite?spriteId="
)

// Sortable columns of the catalog table.
const (
	ColumnName    = "name"
	ColumnBonus   = "bonus"
	ColumnSubType = "item_sub_type"
	ColumnPrice   = "price"
)

// BonusLabel renders the bonus column, e.g. "Attack +25". Items without a
// bonus type have an empty label.
func (it *Item) BonusLabel() string {
	if it.BonusType == "" {
		return ""
	}
	return it.BonusType + " +" + it.BonusValue.String()
}

// Label is the name as shown in the table, suffixed with the stack size.
func (it *Item) Label() string {
	if q, ok := it.Quantity.Float(); ok && q > 1 {
		return it.Name + " x" + it.Quantity.String()
	}
	return it.Name
}

// SubTypeLabel strips the redundant "Equipment" prefix from the sub type.
func (it *Item) SubTypeLabel() string {
	return strings.TrimLeft(strings.TrimPrefix(it.SubType, "Equipment"), " \t\r\n")
}

// RarityClass returns the CSS class used to colour the row.
func (it *Item) RarityClass() string {
	if it.Rarity == "" {
		return "rarity-common"
	}
	return "rarity-" + strings.ToLower(it.Rarity)
}

func (it *Item) DetailURL() string { return detailURLPrefix + it.DesignID.String() }
func (it *Item) SpriteURL() string { return spriteURLPrefix + it.SpriteID.String() }

// Matches reports whether query occurs, case-insensitively, in the item's
// name or bonus label. An empty query matches everything.
func (it *Item) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if it.Name != "" && strings.Contains(strings.ToLower(it.Name), q) {
		return true
	}
	b := it.BonusLabel()
	return b != "" && strings.Contains(strings.ToLower(b), q)
}

// Filter returns the indexes of items matching query, in input order.
func Filter(items []Item, query string) []int {
	idx := make([]int, 0, len(items))
	for i := range items {
		if items[i].Matches(query) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func (d Direction) sign() int {
	if d == Desc {
		return -1
	}
	return 1
}

// SortState is the table's current ordering. An empty Key means unsorted.
type SortState struct {
	Key string    `json:"key"`
	Dir Direction `json:"dir"`
}

// NextSort advances the header-click cycle for key: ascending, then
// descending, then back to unsorted. Clicking a different column starts
// over at ascending.
func NextSort(cur SortState, key string) SortState {
	if cur.Key == key {
		switch cur.Dir {
		case Asc:
			return SortState{Key: key, Dir: Desc}
		case Desc:
			return SortState{Dir: Asc}
		}
	}
	return SortState{Key: key, Dir: Asc}
}

// CompareValues compares two cell values numerically when both parse as
// numbers and lexically otherwise.
func CompareValues(a, b string) int {
	af, aok := ParseNumber(a)
	bf, bok := ParseNumber(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// compareBonus orders by bonus type, and within one type by descending
// bonus value so the strongest roll comes first.
func compareBonus(a, b *Item) int {
	if a.BonusType == b.BonusType {
		av, _ := a.BonusValue.Float()
		bv, _ := b.BonusValue.Float()
		switch {
		case bv < av:
			return -1
		case bv > av:
			return 1
		}
		return 0
	}
	if a.BonusType < b.BonusType {
		return -1
	}
	return 1
}

// Field returns the raw cell value of a sortable column.
func (it *Item) Field(key string) string {
	switch key {
	case ColumnName:
		return it.Name
	case ColumnBonus:
		return it.BonusLabel()
	case ColumnSubType:
		return it.SubType
	case ColumnPrice:
		return it.Price.String()
	case "rarity":
		return it.Rarity
	case "quantity":
		return it.Quantity.String()
	}
	return ""
}

// Compare orders a and b for the given state. The price column compares the
// embedded price; callers that display resolved prices sort on those instead.
func Compare(a, b *Item, s SortState) int {
	if s.Key == ColumnBonus {
		return compareBonus(a, b) * s.Dir.sign()
	}
	return CompareValues(a.Field(s.Key), b.Field(s.Key)) * s.Dir.sign()
}

// Sort orders idx, a list of indexes into items, in place. The sort is
// stable and a zero SortState leaves the order untouched.
func Sort(items []Item, idx []int, s SortState) {
	if s.Key == "" {
		return
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return Compare(&items[idx[i]], &items[idx[j]], s) < 0
	})
}

// Segment is a piece of highlighted text.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match,omitempty"`
}

// Highlight splits text around case-insensitive occurrences of query.
func Highlight(text, query string) []Segment {
	if query == "" || text == "" {
		return []Segment{{Text: text}}
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
	var out []Segment
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			out = append(out, Segment{Text: text[last:loc[0]]})
		}
		out = append(out, Segment{Text: text[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(text) {
		out = append(out, Segment{Text: text[last:]})
	}
	return out
}
