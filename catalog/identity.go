package catalog

import (
	"regexp"
	"strings"
)

// IDSeparator joins the normalized parts of a stable id.
const IDSeparator = "-"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lower-cases s, collapses every run of non-alphanumeric characters into
// a single separator and trims separators from both ends.
func Slug(s string) string {
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), IDSeparator)
	return strings.Trim(s, IDSeparator)
}

// StableID derives the durable identifier of an item from its design id,
// bonus type and bonus value. The raw numeric id is regenerated by the
// inventory feed and is only used when every component normalizes to empty.
func StableID(it *Item) string {
	parts := make([]string, 0, 3)
	for _, raw := range []string{it.DesignID.String(), it.BonusType, it.BonusValue.String()} {
		if p := Slug(raw); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return it.ID.String()
	}
	return strings.Join(parts, IDSeparator)
}

// StableIDs returns the stable id of every item, index-aligned with items.
func StableIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = StableID(&items[i])
	}
	return ids
}
