package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	mw "github.com/kasuganosora/tradeboard/middleware"
	"github.com/kasuganosora/tradeboard/pricing"
	"github.com/kasuganosora/tradeboard/session"
	"github.com/kasuganosora/tradeboard/store"
	"go.uber.org/zap"
)

// snapshot writes 503 and returns false when nothing has been loaded yet.
func snapshot(c *gin.Context, snaps *store.Store) (*store.Snapshot, bool) {
	snap, err := snaps.Current()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotLoaded) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}
	return snap, true
}

// sessionEdits returns the caller's edits. Outside admin mode edits are
// never applied, so none are loaded.
func sessionEdits(c *gin.Context, sessions *session.Store, logger *zap.Logger) (pricing.Edits, bool) {
	if !mw.IsAdmin(c) {
		return nil, true
	}
	edits, err := sessions.Edits(c.Request.Context(), mw.GetSessionID(c))
	if err != nil {
		logger.Error("load session edits", zap.Error(err), zap.String("trace_id", mw.GetTraceID(c)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session store unavailable"})
		return nil, false
	}
	return edits, true
}

func modeOf(c *gin.Context) pricing.Mode {
	if mw.IsAdmin(c) {
		return pricing.ModeAdmin
	}
	return pricing.ModeDisplay
}

// optional converts a resolver result into a JSON-nullable value.
func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}
