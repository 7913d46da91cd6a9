package pricing

import (
	"sort"
	"time"

	"github.com/kasuganosora/tradeboard/catalog"
	"go.uber.org/zap"
)

const (
	// RetentionWindow is how long an entry whose item left the inventory is
	// kept in exported tables.
	RetentionWindow = 7 * 24 * time.Hour
	// RefreshOnCarry stamps carried-forward entries of live items with the
	// export time, so only discontinued items ever age out.
	RefreshOnCarry = true
)

// Policy holds the export business rules.
type Policy struct {
	Retention      time.Duration
	RefreshOnCarry bool
}

// DefaultPolicy returns the standard seven-day, refresh-on-carry policy.
func DefaultPolicy() Policy {
	return Policy{Retention: RetentionWindow, RefreshOnCarry: RefreshOnCarry}
}

// ExportReport describes what an export did with every key.
type ExportReport struct {
	Entries    int      `json:"entries"`
	Carried    int      `json:"carried"`
	Refreshed  int      `json:"refreshed"`
	Retained   int      `json:"retained"`
	Pruned     int      `json:"pruned"`
	Overlaid   int      `json:"overlaid"`
	Skipped    int      `json:"skipped"`
	PrunedKeys []string `json:"pruned_keys,omitempty"`
	At         string   `json:"at"`
}

// Exporter builds new price tables from the live inventory, the session's
// edits and the previously exported table.
type Exporter struct {
	policy Policy
	logger *zap.Logger
}

// NewExporter creates an Exporter. A nil logger disables logging; a
// non-positive retention falls back to RetentionWindow.
func NewExporter(policy Policy, logger *zap.Logger) *Exporter {
	if policy.Retention <= 0 {
		policy.Retention = RetentionWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{policy: policy, logger: logger}
}

// Policy returns the exporter's effective policy.
func (e *Exporter) Policy() Policy { return e.policy }

// Export merges prior with the current prices of items and returns the new
// table. prior is never modified. Timestamps have second resolution. Items
// without a stable id are never written.
func (e *Exporter) Export(items []catalog.Item, edits Edits, prior Table, now time.Time) (Table, ExportReport) {
	return e.export(items, catalog.StableIDs(items), edits, prior, now)
}

// ExportIDs is Export with stable ids precomputed by the caller.
func (e *Exporter) ExportIDs(items []catalog.Item, ids []string, edits Edits, prior Table, now time.Time) (Table, ExportReport) {
	return e.export(items, ids, edits, prior, now)
}

func (e *Exporter) export(items []catalog.Item, ids []string, edits Edits, prior Table, now time.Time) (Table, ExportReport) {
	now = now.UTC().Truncate(time.Second)
	rep := ExportReport{At: now.Format(TimeLayout)}

	current := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		current[id] = struct{}{}
	}

	out := make(Table, len(prior)+len(items))
	for key, entry := range prior {
		if key == "" || !finite(entry.Price) {
			continue
		}
		if _, live := current[key]; live {
			rep.Carried++
			if e.policy.RefreshOnCarry {
				entry.LastUpdate = now
				rep.Refreshed++
			}
			out[key] = entry
			continue
		}
		if e.expired(entry, now) {
			rep.Pruned++
			rep.PrunedKeys = append(rep.PrunedKeys, key)
			continue
		}
		rep.Retained++
		out[key] = entry
	}

	overlaid := make(map[string]struct{}, len(items))
	for i := range items {
		id := ids[i]
		if id == "" {
			rep.Skipped++
			continue
		}
		used, ok := resolveID(id, &items[i], edits, prior, ModeAdmin)
		if !ok {
			continue
		}
		stamp := now
		if carried, ok := out[id]; ok && !e.policy.RefreshOnCarry && carried.Price == used {
			// Unchanged carried price keeps its original stamp.
			stamp = carried.LastUpdate
		}
		out[id] = Entry{Price: used, LastUpdate: stamp}
		overlaid[id] = struct{}{}
	}
	rep.Overlaid = len(overlaid)
	rep.Entries = len(out)
	sort.Strings(rep.PrunedKeys)

	e.logger.Debug("price table exported",
		zap.Int("entries", rep.Entries),
		zap.Int("carried", rep.Carried),
		zap.Int("retained", rep.Retained),
		zap.Int("pruned", rep.Pruned),
		zap.Int("overlaid", rep.Overlaid),
		zap.Int("skipped", rep.Skipped),
		zap.Strings("pruned_keys", rep.PrunedKeys),
	)
	return out, rep
}

// expired reports whether an orphaned entry is past the retention window.
// Entries without a timestamp are never pruned.
func (e *Exporter) expired(entry Entry, now time.Time) bool {
	if entry.LastUpdate.IsZero() {
		return false
	}
	return now.Sub(entry.LastUpdate) > e.policy.Retention
}
