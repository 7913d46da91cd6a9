package pricing

import "github.com/kasuganosora/tradeboard/catalog"

// Mode selects the precedence order used to pick an item's canonical price.
type Mode int

const (
	// ModeDisplay prefers the embedded price, then the recorded table entry.
	ModeDisplay Mode = iota
	// ModeAdmin puts the session's manual edit ahead of both.
	ModeAdmin
)

func (m Mode) String() string {
	if m == ModeAdmin {
		return "admin"
	}
	return "display"
}

// Edits maps a stable id to the raw text typed by an admin. An empty string
// means the edit was cleared.
type Edits map[string]string

// Resolve returns the canonical price of it, or false when no source yields
// a finite number. Absence must never be rendered as zero.
func Resolve(it *catalog.Item, edits Edits, table Table, mode Mode) (float64, bool) {
	return resolveID(catalog.StableID(it), it, edits, table, mode)
}

// resolveID is Resolve with a precomputed stable id. An empty id matches
// neither edits nor table keys.
func resolveID(id string, it *catalog.Item, edits Edits, table Table, mode Mode) (float64, bool) {
	if id == "" {
		return it.Price.Float()
	}
	if mode == ModeAdmin {
		if raw, ok := edits[id]; ok {
			if p, ok := catalog.ParseNumber(raw); ok {
				return p, true
			}
		}
	}
	if p, ok := it.Price.Float(); ok {
		return p, true
	}
	if e, ok := table.Lookup(id); ok && finite(e.Price) {
		return e.Price, true
	}
	return 0, false
}

// Resolver binds an edit set and a table snapshot so rendering code can
// resolve many rows without passing them around.
type Resolver struct {
	Edits Edits
	Table Table
}

// Price resolves the price of an item whose stable id is already known.
func (r Resolver) Price(id string, it *catalog.Item, mode Mode) (float64, bool) {
	return resolveID(id, it, r.Edits, r.Table, mode)
}
