package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/tradeboard/audit"
	mw "github.com/kasuganosora/tradeboard/middleware"
	"github.com/kasuganosora/tradeboard/pricing"
	"github.com/kasuganosora/tradeboard/session"
	"github.com/kasuganosora/tradeboard/store"
	"go.uber.org/zap"
)

// ExportHandler builds the downloadable price table.
// Routes should be protected by RequireAdmin.
type ExportHandler struct {
	snaps    *store.Store
	sessions *session.Store
	exporter *pricing.Exporter
	audit    *audit.Service
	filename string
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportHandler creates an ExportHandler. auditSvc may be nil.
func NewExportHandler(
	snaps *store.Store,
	sessions *session.Store,
	exporter *pricing.Exporter,
	auditSvc *audit.Service,
	filename string,
	logger *zap.Logger,
) *ExportHandler {
	if filename == "" {
		filename = "prices.json"
	}
	return &ExportHandler{
		snaps:    snaps,
		sessions: sessions,
		exporter: exporter,
		audit:    auditSvc,
		filename: filename,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the export clock.
func (h *ExportHandler) SetClock(now func() time.Time) { h.now = now }

// Export merges the session's edits into the loaded price table and returns
// the result as an attachment. With ?dry_run=1 only the report is returned.
// POST /api/export
func (h *ExportHandler) Export(c *gin.Context) {
	start := time.Now()
	snap, ok := snapshot(c, h.snaps)
	if !ok {
		return
	}
	edits, ok := sessionEdits(c, h.sessions, h.logger)
	if !ok {
		return
	}

	table, report := h.exporter.ExportIDs(snap.Items, snap.IDs, edits, snap.Prices, h.now())
	if dry, _ := strconv.ParseBool(c.Query("dry_run")); dry {
		c.JSON(http.StatusOK, gin.H{"report": report})
		return
	}
	body, err := table.Encode()
	if err != nil {
		h.logger.Error("encode export", zap.Error(err), zap.String("trace_id", mw.GetTraceID(c)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode failed"})
		return
	}

	h.logger.Info("price table exported",
		zap.String("trace_id", mw.GetTraceID(c)),
		zap.String("session_id", mw.GetSessionID(c)),
		zap.Int("edits", len(edits)),
		zap.Int("entries", report.Entries),
		zap.Int("carried", report.Carried),
		zap.Int("retained", report.Retained),
		zap.Int("pruned", report.Pruned),
		zap.Int("overlaid", report.Overlaid),
	)
	if h.audit != nil {
		h.audit.LogExport(audit.ExportEntry{
			TraceID:    mw.GetTraceID(c),
			SessionID:  mw.GetSessionID(c),
			Generated:  snap.Generated,
			Edits:      len(edits),
			Report:     report,
			IP:         c.ClientIP(),
			DurationMs: int(time.Since(start).Milliseconds()),
		})
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.filename))
	c.Header("X-Export-Entries", strconv.Itoa(report.Entries))
	c.Header("X-Export-Pruned", strconv.Itoa(report.Pruned))
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
