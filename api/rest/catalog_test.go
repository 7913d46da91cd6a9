package rest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(t *testing.T, body map[string]interface{}) []map[string]interface{} {
	t.Helper()
	raw, ok := body["items"].([]interface{})
	require.True(t, ok)
	out := make([]map[string]interface{}, len(raw))
	for i, r := range raw {
		out[i] = r.(map[string]interface{})
	}
	return out
}

func TestItems_DisplayMode(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/items", "s1", false, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "display", body["mode"])
	rs := rows(t, body)
	require.Len(t, rs, 3)

	assert.Equal(t, "50-attack-25", rs[0]["stable_id"])
	assert.Equal(t, 100.0, rs[0]["price"])
	assert.Equal(t, "rarity-epic", rs[0]["rarity_class"])
	assert.Equal(t, "Attack +25", rs[0]["bonus"])
	assert.Equal(t, "Weapon", rs[0]["sub_type"])

	assert.Equal(t, 90.0, rs[1]["price"], "table fallback")
	assert.Nil(t, rs[2]["price"], "absence is null, never zero")
	assert.Equal(t, "Scrap x3", rs[2]["label"])
	_, hasEdit := rs[0]["edit"]
	assert.False(t, hasEdit)
}

func TestItems_AdminEditTakesPrecedence(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.do(http.MethodPut, "/api/edits/50-attack-25", "s1", true, map[string]string{"value": "150"}).Code)

	admin := rows(t, decode(t, env.do(http.MethodGet, "/api/items", "s1", true, nil)))
	assert.Equal(t, 150.0, admin[0]["price"])
	assert.Equal(t, "150", admin[0]["edit"])

	display := rows(t, decode(t, env.do(http.MethodGet, "/api/items", "s1", false, nil)))
	assert.Equal(t, 100.0, display[0]["price"], "display mode ignores edits")

	other := rows(t, decode(t, env.do(http.MethodGet, "/api/items", "s2", true, nil)))
	assert.Equal(t, 100.0, other[0]["price"], "edits are per session")
}

func TestItems_SearchAndHighlight(t *testing.T) {
	env := newTestEnv(t)
	body := decode(t, env.do(http.MethodGet, "/api/items?q=hp", "", false, nil))
	rs := rows(t, body)
	require.Len(t, rs, 1)
	assert.Equal(t, "60-hp-10", rs[0]["stable_id"])
	assert.NotEmpty(t, rs[0]["highlight"])
	assert.Equal(t, 3.0, body["total"])

	totals := body["totals"].(map[string]interface{})
	assert.Equal(t, 5.0, totals["total_quantity"], "totals cover the whole inventory")
}

func TestItems_SortByResolvedPrice(t *testing.T) {
	env := newTestEnv(t)
	body := decode(t, env.do(http.MethodGet, "/api/items?sort=price&dir=desc", "", false, nil))
	rs := rows(t, body)
	require.Len(t, rs, 3)
	assert.Equal(t, []interface{}{100.0, 90.0, nil}, []interface{}{rs[0]["price"], rs[1]["price"], rs[2]["price"]})
}

func TestItems_SortByName(t *testing.T) {
	env := newTestEnv(t)
	rs := rows(t, decode(t, env.do(http.MethodGet, "/api/items?sort=name&dir=desc", "", false, nil)))
	assert.Equal(t, "Scrap", rs[0]["name"])
	assert.Equal(t, "Laser", rs[2]["name"])
}

func TestItems_BadSort(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/items?sort=weight", "", false, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/items?sort=name&dir=up", "", false, nil).Code)
}

func TestNextSort(t *testing.T) {
	env := newTestEnv(t)
	body := decode(t, env.do(http.MethodGet, "/api/items/sort?sort=name&dir=desc&column=name", "", false, nil))
	assert.Equal(t, "", body["key"], "third click returns to unsorted")

	body = decode(t, env.do(http.MethodGet, "/api/items/sort?column=price", "", false, nil))
	assert.Equal(t, "price", body["key"])
	assert.Equal(t, "asc", body["dir"])
}

func TestSummary(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.do(http.MethodPut, "/api/edits/60-hp-10", "s1", true, map[string]string{"value": "95"}).Code)

	body := decode(t, env.do(http.MethodGet, "/api/summary", "s1", true, nil))
	totals := body["totals"].(map[string]interface{})
	assert.Equal(t, 5.0, totals["total_quantity"])
	assert.Equal(t, 195.0, totals["total_price"])
	assert.Equal(t, 2.0, totals["priced_items"])
	assert.Equal(t, 1.0, totals["unpriced_items"])
	assert.Equal(t, 1.0, body["edits"])
}

func TestSnapshot(t *testing.T) {
	env := newTestEnv(t)
	body := decode(t, env.do(http.MethodGet, "/api/snapshot", "", false, nil))
	assert.Equal(t, "2025-03-01 12:00:00", body["generated"])
	assert.Equal(t, 3.0, body["items"])
	assert.Equal(t, 2.0, body["price_entries"])
}
