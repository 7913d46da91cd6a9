package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/tradeboard/api/rest"
	"github.com/kasuganosora/tradeboard/audit"
	mw "github.com/kasuganosora/tradeboard/middleware"
	"github.com/kasuganosora/tradeboard/pricing"
	"github.com/kasuganosora/tradeboard/scheduler"
	"github.com/kasuganosora/tradeboard/session"
	"github.com/kasuganosora/tradeboard/store"
	"github.com/kasuganosora/tradeboard/testutil"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// exportNow is two days after the fixture's price stamp, so the "gone"
// orphan (2024-01-01) is past retention.
var exportNow = time.Date(2025, 3, 2, 8, 30, 15, 0, time.UTC)

type testEnv struct {
	r        *gin.Engine
	snaps    *store.Store
	sessions *session.Store
	audit    *audit.Service
	invPath  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	log := testutil.NopLogger()

	inv := testutil.WriteFile(t, "inventory.json", testutil.InventoryJSON)
	prices := testutil.WriteFile(t, "prices.json", testutil.PricesJSON)
	snaps := store.New(store.Config{Inventory: inv, Prices: prices}, ps, log)
	_, err := snaps.Load(context.Background())
	require.NoError(t, err)

	sessions := session.NewStore(c, time.Hour)
	auditSvc := audit.New(db, log)
	t.Cleanup(auditSvc.Stop)
	sched := scheduler.New(log)
	t.Cleanup(sched.Stop)

	catH := rest.NewCatalogHandler(snaps, sessions, log)
	editH := rest.NewEditHandler(snaps, sessions, log)
	expH := rest.NewExportHandler(snaps, sessions, pricing.NewExporter(pricing.DefaultPolicy(), log), auditSvc, "", log)
	expH.SetClock(func() time.Time { return exportNow })
	adminH := rest.NewAdminHandler(snaps, auditSvc, sched, log)

	r := gin.New()
	r.Use(mw.TraceID(), mw.Session(), mw.AdminMode())
	api := r.Group("/api")
	api.GET("/items", catH.Items)
	api.GET("/items/sort", catH.NextSort)
	api.GET("/summary", catH.Summary)
	api.GET("/snapshot", catH.Snapshot)

	adminG := api.Group("", mw.RequireAdmin())
	adminG.GET("/edits", editH.List)
	adminG.PUT("/edits/:stable_id", editH.Put)
	adminG.DELETE("/edits/:stable_id", editH.Delete)
	adminG.DELETE("/edits", editH.Clear)
	adminG.POST("/export", expH.Export)
	adminG.POST("/admin/reload", adminH.Reload)
	adminG.GET("/admin/exports", adminH.Exports)
	adminG.GET("/admin/scheduler", adminH.SchedulerTasks)

	return &testEnv{r: r, snaps: snaps, sessions: sessions, audit: auditSvc, invPath: inv}
}

// do sends a request in the given session; admin toggles admin mode.
func (e *testEnv) do(method, path, sid string, admin bool, body interface{}) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.Header.Set(mw.SessionIDHeader, sid)
	}
	if admin {
		req.Header.Set(mw.AdminModeHeader, "1")
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
