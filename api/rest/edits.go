package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/tradeboard/catalog"
	mw "github.com/kasuganosora/tradeboard/middleware"
	"github.com/kasuganosora/tradeboard/pricing"
	"github.com/kasuganosora/tradeboard/session"
	"github.com/kasuganosora/tradeboard/store"
	"go.uber.org/zap"
)

// EditHandler manages the admin session's uncommitted price edits.
// Routes should be protected by RequireAdmin.
type EditHandler struct {
	snaps    *store.Store
	sessions *session.Store
	logger   *zap.Logger
}

// NewEditHandler creates an EditHandler.
func NewEditHandler(snaps *store.Store, sessions *session.Store, logger *zap.Logger) *EditHandler {
	return &EditHandler{snaps: snaps, sessions: sessions, logger: logger}
}

func (h *EditHandler) fail(c *gin.Context, op string, err error) {
	h.logger.Error(op, zap.Error(err),
		zap.String("session_id", mw.GetSessionID(c)),
		zap.String("trace_id", mw.GetTraceID(c)))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "session store unavailable"})
}

// List returns the session's edits.
// GET /api/edits
func (h *EditHandler) List(c *gin.Context) {
	edits, err := h.sessions.Edits(c.Request.Context(), mw.GetSessionID(c))
	if err != nil {
		h.fail(c, "list edits", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": mw.GetSessionID(c), "edits": edits})
}

type editRequest struct {
	Value *string `json:"value" binding:"required"`
}

// Put records the raw price text for one row. An empty value clears it.
// The text is stored as typed; unparseable text simply resolves to the
// next price source.
// PUT /api/edits/:stable_id
func (h *EditHandler) Put(c *gin.Context) {
	id := c.Param("stable_id")
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}
	snap, ok := snapshot(c, h.snaps)
	if !ok {
		return
	}
	it, ok := snap.Find(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	ctx := c.Request.Context()
	sid := mw.GetSessionID(c)
	if err := h.sessions.Set(ctx, sid, id, *req.Value); err != nil {
		h.fail(c, "set edit", err)
		return
	}
	edits, err := h.sessions.Edits(ctx, sid)
	if err != nil {
		h.fail(c, "list edits", err)
		return
	}
	h.respond(c, id, it, edits, snap.Prices)
}

// Delete clears the edit of one row.
// DELETE /api/edits/:stable_id
func (h *EditHandler) Delete(c *gin.Context) {
	id := c.Param("stable_id")
	snap, ok := snapshot(c, h.snaps)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	sid := mw.GetSessionID(c)
	if err := h.sessions.Delete(ctx, sid, id); err != nil {
		h.fail(c, "delete edit", err)
		return
	}
	it, ok := snap.Find(id)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	edits, err := h.sessions.Edits(ctx, sid)
	if err != nil {
		h.fail(c, "list edits", err)
		return
	}
	h.respond(c, id, it, edits, snap.Prices)
}

// Clear drops every edit of the session.
// DELETE /api/edits
func (h *EditHandler) Clear(c *gin.Context) {
	if err := h.sessions.Clear(c.Request.Context(), mw.GetSessionID(c)); err != nil {
		h.fail(c, "clear edits", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respond reports the row's edit and the price it now resolves to.
func (h *EditHandler) respond(c *gin.Context, id string, it *catalog.Item, edits pricing.Edits, table pricing.Table) {
	var edit *string
	if raw, ok := edits[id]; ok {
		edit = &raw
	}
	c.JSON(http.StatusOK, gin.H{
		"stable_id": id,
		"edit":      edit,
		"price":     optional(pricing.Resolver{Edits: edits, Table: table}.Price(id, it, pricing.ModeAdmin)),
	})
}
