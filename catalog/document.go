package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInventoryShape is returned when an inventory document is neither an item
// array nor an envelope object.
var ErrInventoryShape = errors.New("catalog: inventory must be an array or an envelope object")

// Inventory is a decoded inventory document. Generated and ItemCount are only
// populated when the feed used the envelope form.
type Inventory struct {
	Generated Scalar `json:"generated"`
	ItemCount int    `json:"item_count"`
	Items     []Item `json:"items"`
}

// DecodeInventory accepts either a bare array of items or an envelope of the
// form {"generated": ..., "item_count": n, "items": [...]}.
func DecodeInventory(data []byte) (*Inventory, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrInventoryShape
	}
	inv := &Inventory{}
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &inv.Items); err != nil {
			return nil, fmt.Errorf("catalog: parse inventory: %w", err)
		}
		inv.ItemCount = len(inv.Items)
	case '{':
		if err := json.Unmarshal(data, inv); err != nil {
			return nil, fmt.Errorf("catalog: parse inventory envelope: %w", err)
		}
		if inv.Items == nil {
			return nil, fmt.Errorf("catalog: inventory envelope has no items: %w", ErrInventoryShape)
		}
	default:
		return nil, ErrInventoryShape
	}
	return inv, nil
}
