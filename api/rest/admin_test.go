package rest_test

import (
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_Reload(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.invPath, []byte(`[{"id": 1, "item_design_id": 5}]`), 0o644))

	w := env.do(http.MethodPost, "/api/admin/reload", "", true, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["items"])

	require.NoError(t, os.WriteFile(env.invPath, []byte(`nope`), 0o644))
	w = env.do(http.MethodPost, "/api/admin/reload", "", true, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	snap := decode(t, env.do(http.MethodGet, "/api/snapshot", "", false, nil))
	assert.Equal(t, 1.0, snap["items"], "failed reload keeps the previous snapshot")
}

func TestAdmin_Exports(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodPost, "/api/export", "s1", true, nil)
	env.do(http.MethodPost, "/api/export", "s2", true, nil)
	env.audit.Stop()

	body := decode(t, env.do(http.MethodGet, "/api/admin/exports?limit=1", "", true, nil))
	assert.Equal(t, 1.0, body["count"])
	first := body["exports"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "s2", first["session_id"], "newest first")

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/admin/exports?limit=x", "", true, nil).Code)
}

func TestAdmin_SchedulerTasks(t *testing.T) {
	env := newTestEnv(t)
	body := decode(t, env.do(http.MethodGet, "/api/admin/scheduler", "", true, nil))
	assert.Equal(t, []interface{}{}, body["tasks"])
}
