package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/tradeboard/store"
	"github.com/kasuganosora/tradeboard/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvent(t *testing.T, r *bufio.Reader) (event, data string) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && event != "":
			return event, data
		}
	}
}

func TestServeSSE_StreamsReloads(t *testing.T) {
	gin.SetMode(gin.TestMode)
	inv := testutil.WriteFile(t, "inventory.json", testutil.InventoryJSON)
	prices := testutil.WriteFile(t, "prices.json", testutil.PricesJSON)
	_, ps := testutil.SetupTestCache(t)
	snaps := store.New(store.Config{Inventory: inv, Prices: prices}, ps, testutil.NopLogger())
	_, err := snaps.Load(context.Background())
	require.NoError(t, err)

	h := NewHandler(ps, snaps, testutil.NopLogger())
	h.keepAlive = time.Hour
	r := gin.New()
	r.GET("/sse", h.ServeSSE)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sse", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body := bufio.NewReader(resp.Body)
	event, data := readEvent(t, body)
	assert.Equal(t, "connected", event)
	assert.Contains(t, data, `"items":3`)

	require.NoError(t, snaps.Reload(ctx))
	event, data = readEvent(t, body)
	assert.Equal(t, store.SnapshotChannel, event)
	assert.Contains(t, data, `"price_entries":2`)
}
