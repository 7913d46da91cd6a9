package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/tradeboard/cache"
	"github.com/kasuganosora/tradeboard/store"
	"go.uber.org/zap"
)

// KeepAlive is the interval between comment frames on an idle stream.
const KeepAlive = 30 * time.Second

// Handler handles the SSE endpoint.
type Handler struct {
	pubsub    cache.PubSub
	snapshots *store.Store
	logger    *zap.Logger
	keepAlive time.Duration
}

// NewHandler creates a new SSE Handler.
func NewHandler(pubsub cache.PubSub, snapshots *store.Store, logger *zap.Logger) *Handler {
	return &Handler{pubsub: pubsub, snapshots: snapshots, logger: logger, keepAlive: KeepAlive}
}

// ServeSSE handles GET /sse. It streams a "snapshot" event every time the
// inventory and price documents are reloaded, so open tables can refetch.
func (h *Handler) ServeSSE(c *gin.Context) {
	subCtx, subCancel := context.WithCancel(c.Request.Context())
	defer subCancel()

	msgCh, unsub, err := h.pubsub.Subscribe(subCtx, store.SnapshotChannel)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subscribe failed"})
		return
	}
	defer unsub()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	// The connected event carries the current snapshot so a client that
	// subscribes after a reload does not miss it.
	connected := []byte("{}")
	if snap, err := h.snapshots.Current(); err == nil {
		if b, err := json.Marshal(snap.Info()); err == nil {
			connected = b
		}
	}
	fmt.Fprintf(c.Writer, "event: connected\ndata: %s\n\n", connected)
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", store.SnapshotChannel, msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}
