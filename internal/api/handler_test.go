package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probflow/bayesnet/internal/api"
	"github.com/probflow/bayesnet/internal/config"
	"github.com/probflow/bayesnet/internal/dataset"
	"github.com/probflow/bayesnet/internal/engine"
)

const testDataset = `
attributes:
  - name: rain
    values: ["yes", "no"]
  - name: sprinkler
    values: ["on", "off"]
  - name: wet
    values: ["yes", "no"]
instances:
  - {rain: "yes", sprinkler: "off", wet: "yes"}
  - {rain: "no", sprinkler: "on", wet: "yes"}
  - {rain: "no", sprinkler: "off", wet: "no"}
`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDataset), 0o644))

	loader, err := dataset.NewLoader(path)
	require.NoError(t, err)

	svc := engine.New(loader, config.NetworkConf{LaplaceCount: 1, RebuildWorkers: 2})
	srv := httptest.NewServer(api.New(svc, loader))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func addNode(t *testing.T, srv *httptest.Server, name string) {
	t.Helper()
	resp, _ := doJSON(t, srv, http.MethodPost, "/v1/nodes", map[string]string{"attribute": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func edge(parent, child string) map[string]interface{} {
	return map[string]interface{}{"parent": parent, "child": child}
}

func TestAddNode(t *testing.T) {
	srv := newServer(t)

	resp, body := doJSON(t, srv, http.MethodPost, "/v1/nodes", map[string]string{"attribute": "rain"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, body["request_id"])
	node := body["node"].(map[string]interface{})
	require.Equal(t, "rain", node["attribute"])
	require.Equal(t, []interface{}{"rain"}, node["cpd_attributes"])
}

func TestAddNode_Errors(t *testing.T) {
	srv := newServer(t)
	addNode(t, srv, "rain")

	resp, _ := doJSON(t, srv, http.MethodPost, "/v1/nodes", map[string]string{"attribute": "rain"})
	require.Equal(t, http.StatusConflict, resp.StatusCode, "duplicate attribute")

	resp, _ = doJSON(t, srv, http.MethodPost, "/v1/nodes", map[string]string{"attribute": "wind"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode, "attribute not in dataset")

	resp, _ = doJSON(t, srv, http.MethodPost, "/v1/nodes", map[string]string{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing attribute field")
}

func TestEdgeLifecycle(t *testing.T) {
	srv := newServer(t)
	addNode(t, srv, "rain")
	addNode(t, srv, "wet")

	resp, body := doJSON(t, srv, http.MethodPost, "/v1/edges", edge("rain", "wet"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["order"])

	resp, _ = doJSON(t, srv, http.MethodPost, "/v1/edges", edge("rain", "wet"))
	require.Equal(t, http.StatusConflict, resp.StatusCode, "duplicate edge")

	resp, _ = doJSON(t, srv, http.MethodPost, "/v1/edges", edge("wet", "rain"))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "cycle")

	resp, _ = doJSON(t, srv, http.MethodPost, "/v1/edges/reverse", edge("rain", "wet"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodDelete, "/v1/edges", edge("wet", "rain"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEdge_MissingNode(t *testing.T) {
	srv := newServer(t)
	addNode(t, srv, "rain")

	resp, _ := doJSON(t, srv, http.MethodPost, "/v1/edges", edge("rain", "wet"))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestValidateEdge(t *testing.T) {
	srv := newServer(t)
	addNode(t, srv, "rain")
	addNode(t, srv, "wet")

	resp, _ := doJSON(t, srv, http.MethodPost, "/v1/edges", edge("rain", "wet"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, srv, http.MethodPost, "/v1/edges/validate", edge("wet", "rain"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, false, body["valid"])

	payload := edge("rain", "wet")
	payload["reverse"] = true
	resp, body = doJSON(t, srv, http.MethodPost, "/v1/edges/validate", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["valid"])
}

func TestOrderEndpoint(t *testing.T) {
	srv := newServer(t)
	addNode(t, srv, "rain")
	addNode(t, srv, "sprinkler")
	addNode(t, srv, "wet")
	resp, _ := doJSON(t, srv, http.MethodPost, "/v1/edges", edge("rain", "wet"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, srv, http.MethodGet, "/v1/order", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	order := body["order"].([]interface{})
	require.Len(t, order, 3)

	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name.(string)] = i
	}
	require.Less(t, pos["rain"], pos["wet"])
}

func TestListEndpoints(t *testing.T) {
	srv := newServer(t)
	addNode(t, srv, "rain")
	addNode(t, srv, "wet")

	resp, body := doJSON(t, srv, http.MethodGet, "/v1/nodes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["nodes"], 2)

	resp, body = doJSON(t, srv, http.MethodGet, "/v1/attributes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["attributes"], 2)
}

func TestDatasetReload(t *testing.T) {
	srv := newServer(t)
	addNode(t, srv, "rain")
	addNode(t, srv, "wet")

	resp, body := doJSON(t, srv, http.MethodPost, "/v1/dataset/reload", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["reloaded"])
	require.Equal(t, float64(2), body["refreshed"])
}

func TestHealthEndpoints(t *testing.T) {
	srv := newServer(t)

	resp, body := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])

	resp, body = doJSON(t, srv, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ready", body["status"])
}
