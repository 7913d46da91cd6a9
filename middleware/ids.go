package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kasuganosora/tradeboard/model"
)

const (
	TraceIDKey    = "trace_id"
	TraceIDHeader = "X-Trace-ID"

	SessionIDKey    = "session_id"
	SessionIDHeader = "X-Session-ID"
)

// maxIDLen bounds caller-supplied ids; longer values are replaced. It equals
// the width of the audit id columns.
const maxIDLen = model.IDSize

// headerID stores the id from header under key, minting a UUID when the
// caller sent none, and echoes it back in the response.
func headerID(header, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" || len(id) > maxIDLen {
			id = uuid.New().String()
		}
		c.Set(key, id)
		c.Header(header, id)
		c.Next()
	}
}

// TraceID injects a UUID trace ID into every request context and response header.
func TraceID() gin.HandlerFunc { return headerID(TraceIDHeader, TraceIDKey) }

// Session identifies the browser session whose edits a request works on.
// Clients keep the echoed X-Session-ID and send it back.
func Session() gin.HandlerFunc { return headerID(SessionIDHeader, SessionIDKey) }

// GetTraceID retrieves the trace ID from the Gin context.
func GetTraceID(c *gin.Context) string { return c.GetString(TraceIDKey) }

// GetSessionID retrieves the session ID from the Gin context.
func GetSessionID(c *gin.Context) string { return c.GetString(SessionIDKey) }
