package model

import (
	"time"

	"gorm.io/datatypes"
)

// Column widths of ExportAudit string fields. Values are clipped to these
// before insert.
const (
	IDSize        = 128
	GeneratedSize = 64
	IPSize        = 45
)

// ExportAudit records one price-table export. Only counters and the pruned
// keys are stored, never the exported prices themselves.
type ExportAudit struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID    string         `gorm:"index:idx_export_trace;size:128;not null" json:"trace_id"`
	SessionID  string         `gorm:"index:idx_export_session;size:128" json:"session_id"`
	Generated  string         `gorm:"size:64" json:"generated"` // inventory snapshot stamp
	Entries    int            `json:"entries"`
	Carried    int            `json:"carried"`
	Refreshed  int            `json:"refreshed"`
	Retained   int            `json:"retained"`
	Pruned     int            `json:"pruned"`
	Overlaid   int            `json:"overlaid"`
	Edits      int            `json:"edits"`
	PrunedKeys datatypes.JSON `json:"pruned_keys"`
	IP         string         `gorm:"size:45" json:"ip"`
	DurationMs int            `json:"duration_ms"`
	CreatedAt  time.Time      `gorm:"index:idx_export_created;autoCreateTime:milli" json:"created_at"`
}
