package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/routecore/routecore/auth"
	"github.com/routecore/routecore/core"
	"github.com/routecore/routecore/jobs"
	"github.com/routecore/routecore/routing"
	"github.com/routecore/routecore/store"
)

type testEnv struct {
	srv   *Server
	token string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, st.Close()) })

	g := core.NewGraph()
	require.NoError(t, g.AddEdge(0, 1, 1))
	require.NoError(t, g.AddEdge(1, 2, 2))
	require.NoError(t, g.AddEdge(0, 2, 10))

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	svc := routing.NewService(g, st, logger, 2)
	manager, err := jobs.NewManager(svc, 2, logger)
	require.NoError(t, err)
	t.Cleanup(manager.Close)

	env := &testEnv{srv: New(Options{
		Routing: svc,
		Store:   st,
		Auth:    auth.NewService(st, "test-secret", time.Hour),
		Jobs:    manager,
		Logger:  logger,
	})}

	w := env.do(t, http.MethodPost, "/api/auth/register", "", jsonBody("email", "op@example.com", "password", "hunter2hunter2"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", "", jsonBody("email", "op@example.com", "password", "hunter2hunter2"))
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)
	env.token = login.AccessToken

	return env
}

// jsonBody builds a small JSON object from key/value pairs.
func jsonBody(kv ...interface{}) []byte {
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	b, _ := json.Marshal(m)

	return b
}

func (e *testEnv) do(t *testing.T, method, path, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)

	return w
}

func TestAuthRequired(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodGet, "/api/graph/info", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/graph/info", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/graph/info", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterResponseOmitsHash(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", "", jsonBody("email", "two@example.com", "password", "hunter2hunter2"))
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotContains(t, w.Body.String(), "password_hash")
	require.NotContains(t, w.Body.String(), "$2a$")

	var view struct {
		ID    uint64 `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.NotZero(t, view.ID)
	require.Equal(t, "two@example.com", view.Email)

	// The freshly registered account can log in: hash persisted intact.
	w = env.do(t, http.MethodPost, "/api/auth/login", "", jsonBody("email", "two@example.com", "password", "hunter2hunter2"))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterDuplicate(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", "", jsonBody("email", "op@example.com", "password", "hunter2hunter2"))
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/login", "", jsonBody("email", "op@example.com", "password", "wrong-password"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGraphInfoAndMutation(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodGet, "/api/graph/info", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"node_count":3,"edge_count":3}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/graph/nodes", env.token, jsonBody("node", 5))
	require.Equal(t, http.StatusCreated, w.Code)
	require.JSONEq(t, `{"node_count":6}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/graph/edges", env.token, jsonBody("from_node", 2, "to_node", 5, "weight", 1.5))
	require.Equal(t, http.StatusCreated, w.Code)
	require.JSONEq(t, `{"edge_count":4}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/graph/nodes", env.token, jsonBody("node", -1))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouteEndpoint(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPost, "/api/routes", env.token, jsonBody("source", 0, "target", 2))
	require.Equal(t, http.StatusOK, w.Code)

	var resp routing.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Reachable)
	require.Equal(t, 3.0, *resp.TotalWeight)
	require.Equal(t, []int{0, 1, 2}, resp.Nodes)

	// Unreachable is a 200, not an error.
	w = env.do(t, http.MethodPost, "/api/routes", env.token, jsonBody("source", 2, "target", 0))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Reachable)
	require.Nil(t, resp.TotalWeight)
}

func TestRouteEndpoint_OverlayErrors(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPost, "/api/routes", env.token,
		jsonBody("source", 0, "target", 2, "scenario_id", 1, "profile", "fastest"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/routes", env.token,
		jsonBody("source", 0, "target", 2, "scenario_id", 777))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/routes", env.token,
		jsonBody("source", 0, "target", 2, "profile", "nope"))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouteBatchEndpoint(t *testing.T) {
	env := newEnv(t)

	body, _ := json.Marshal(routing.BatchRequest{
		Queries: []routing.Request{
			{Source: 0, Target: 2},
			{Source: 2, Target: 0},
		},
		Algorithm: "a_star",
	})
	w := env.do(t, http.MethodPost, "/api/routes/batch", env.token, body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count   int                 `json:"count"`
		Results []routing.BatchItem `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.Equal(t, []int{0, 1, 2}, resp.Results[0].Response.Nodes)
	require.False(t, resp.Results[1].Response.Reachable)
	require.Equal(t, "a_star_parallel_batch", resp.Results[0].Response.Algorithm)
}

func TestAsyncJobLifecycle(t *testing.T) {
	env := newEnv(t)

	body, _ := json.Marshal(routing.BatchRequest{
		Queries: []routing.Request{{Source: 0, Target: 2}},
	})
	w := env.do(t, http.MethodPost, "/api/routes/async/submit", env.token, body)
	require.Equal(t, http.StatusAccepted, w.Code)

	var job jobs.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	require.NotEmpty(t, job.ID)

	deadline := time.Now().Add(5 * time.Second)
	for {
		w = env.do(t, http.MethodGet, "/api/routes/async/jobs/"+job.ID, env.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
		if job.Status == jobs.StatusFinished || job.Status == jobs.StatusFailed {
			break
		}
		require.True(t, time.Now().Before(deadline), "job did not finish")
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, jobs.StatusFinished, job.Status)
	require.Len(t, job.Result, 1)

	w = env.do(t, http.MethodGet, "/api/routes/async/jobs/missing", env.token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/routes/async/metrics", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var metrics jobs.Metrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metrics))
	require.Equal(t, 1, metrics.Finished)
}

func TestImportCSVEndpoint(t *testing.T) {
	env := newEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "edges.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("from_node,to_node,weight,travel_time\n3,4,2.5,7\n4,5,bad,1\n4,5,1.0,2\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/graph/import/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		EdgesImported int `json:"edges_imported"`
		SkippedRows   int `json:"skipped_rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	require.Equal(t, 2, summary.EdgesImported)
	require.Equal(t, 1, summary.SkippedRows)

	w = env.do(t, http.MethodGet, "/api/graph/edges/metadata", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "travel_time")
}

func TestQualityEndpoints(t *testing.T) {
	env := newEnv(t)

	// Close a zero-weight cycle 1→2→1 on top of the seeded arcs.
	w := env.do(t, http.MethodPost, "/api/graph/edges", env.token, jsonBody("from_node", 1, "to_node", 2, "weight", 0))
	require.Equal(t, http.StatusCreated, w.Code)
	w = env.do(t, http.MethodPost, "/api/graph/edges", env.token, jsonBody("from_node", 2, "to_node", 1, "weight", 0))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/graph/quality/check", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "zero_weight_cycles")

	w = env.do(t, http.MethodPost, "/api/graph/quality/fix", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fix struct {
		RemovedZeroWeightArcs int `json:"removed_zero_weight_edges"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fix))
	// The pair (1,2) carried a parallel weighted arc; pair removal takes
	// all three arcs of the cycle's pairs.
	require.Equal(t, 3, fix.RemovedZeroWeightArcs)
}

func TestHistoryAndStats(t *testing.T) {
	env := newEnv(t)

	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/api/routes", env.token, jsonBody("source", 0, "target", 2))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/history/queries?limit=2", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Count   int                 `json:"count"`
		Queries []store.QueryRecord `json:"queries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Equal(t, 2, history.Count)

	w = env.do(t, http.MethodGet, "/api/history/queries?limit=no", env.token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/stats/performance", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats []store.PerformanceStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	require.Equal(t, "dijkstra", stats[0].Algorithm)
	require.Equal(t, 3, stats[0].Count)
}

func TestScenarioEndpoints(t *testing.T) {
	env := newEnv(t)

	body := []byte(`{"name":"closure","modifications":[{"from_node":1,"to_node":2,"disable":true}]}`)
	w := env.do(t, http.MethodPost, "/api/scenarios", env.token, body)
	require.Equal(t, http.StatusCreated, w.Code)
	var rec store.ScenarioRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	require.True(t, rec.IsActive)
	require.NotZero(t, rec.ID)

	w = env.do(t, http.MethodPost, "/api/scenarios", env.token, body)
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/api/scenarios", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []store.ScenarioRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	path := fmt.Sprintf("/api/scenarios/%d", rec.ID)
	w = env.do(t, http.MethodGet, path, env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/scenarios/999", env.token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	mods := []byte(`{"modifications":[{"from_node":0,"to_node":1,"weight_multiplier":2.0}]}`)
	w = env.do(t, http.MethodPost, path+"/modifications", env.token, mods)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	require.Len(t, rec.Modifications, 2)

	// Routing through the scenario avoids the disabled arc.
	w = env.do(t, http.MethodPost, "/api/routes", env.token,
		jsonBody("source", 0, "target", 2, "scenario_id", rec.ID))
	require.Equal(t, http.StatusOK, w.Code)
	var resp routing.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, []int{0, 2}, resp.Nodes)
	require.True(t, strings.HasSuffix(resp.Algorithm, "_scenario"))
}

func TestProfileEndpoints(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPost, "/api/profiles", env.token,
		jsonBody("name", "fastest", "weight_time", 1.0))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/profiles", env.token,
		jsonBody("name", "fastest", "weight_time", 2.0))
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/api/profiles", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []store.ProfileRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "fastest", list[0].Name)
}
