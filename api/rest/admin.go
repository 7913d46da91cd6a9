package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/tradeboard/audit"
	"github.com/kasuganosora/tradeboard/scheduler"
	"github.com/kasuganosora/tradeboard/store"
	"go.uber.org/zap"
)

// AdminHandler exposes operational endpoints to admin-mode callers.
// Routes should be protected by RequireAdmin.
type AdminHandler struct {
	snaps  *store.Store
	audit  *audit.Service
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(snaps *store.Store, auditSvc *audit.Service, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{snaps: snaps, audit: auditSvc, sched: sched, logger: logger}
}

// Reload refetches the inventory and price documents now. On failure the
// previous snapshot keeps serving.
// POST /api/admin/reload
func (h *AdminHandler) Reload(c *gin.Context) {
	snap, err := h.snaps.Load(c.Request.Context())
	if err != nil {
		h.logger.Warn("manual reload failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap.Info())
}

// Exports lists recent export audits, newest first.
// GET /api/admin/exports?limit=
func (h *AdminHandler) Exports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list export audits", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exports": rows, "count": len(rows)})
}

// SchedulerTasks lists registered periodic tasks.
// GET /api/admin/scheduler
func (h *AdminHandler) SchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.ListTickers()})
}
