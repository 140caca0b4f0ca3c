package integration

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/api/rest"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/api/rest/middleware"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/collection"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/observability"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space/builtin"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/sparsevec"
)

// setupTestServer brings up the REST handler chain directly over an
// httptest.Server: the collection.Manager and the HTTP layer live in
// the same process, so there is no child process to start and no port
// to wait for.
func setupTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()

	manager := collection.NewManager()
	metrics := observability.NewMetrics()
	log := observability.NewLogger(observability.ERROR, os.Stderr)

	cfg := rest.Config{
		Host:        "127.0.0.1",
		CORSEnabled: false,
		Auth:        middleware.AuthConfig{Enabled: false},
		RateLimit:   middleware.RateLimitConfig{Enabled: false},
	}
	server := rest.NewServer(cfg, manager, metrics, log)

	ts := httptest.NewServer(server.Handler())
	return ts, ts.Close
}

func denseVectorPayload(v []float32) string {
	return base64.StdEncoding.EncodeToString(builtin.EncodeDenseVector(v))
}

func sparseVectorPayload(entries ...sparsevec.Entry) string {
	return base64.StdEncoding.EncodeToString(builtin.EncodeSparseEntries(entries))
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body interface{}) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func createCollection(t *testing.T, ts *httptest.Server, name, spaceName, method string) {
	t.Helper()
	resp := postJSON(t, ts, "/v1/collections", map[string]interface{}{
		"name":   name,
		"space":  spaceName,
		"method": method,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create collection %q: expected 201, got %d", name, resp.StatusCode)
	}
}

func TestHealthCheck(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := http.Get(ts.URL + "/v1/health")
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body["status"])
	}
}

func TestCreateCollection(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	createCollection(t, ts, "docs", "l2", "hnsw")

	resp, err := http.Get(ts.URL + "/v1/collections")
	if err != nil {
		t.Fatalf("list collections: %v", err)
	}
	defer resp.Body.Close()

	var stats []collection.Stats
	decodeJSON(t, resp, &stats)
	if len(stats) != 1 || stats[0].Name != "docs" {
		t.Fatalf("expected one collection named docs, got %+v", stats)
	}
}

func TestCreateCollectionInvalidRequest(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing name", map[string]interface{}{"space": "l2", "method": "hnsw"}},
		{"unknown space", map[string]interface{}{"name": "x", "space": "nope", "method": "hnsw"}},
		{"unknown method", map[string]interface{}{"name": "x", "space": "l2", "method": "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts, "/v1/collections", tt.body)
			defer resp.Body.Close()
			if resp.StatusCode < 400 {
				t.Errorf("expected an error status, got %d", resp.StatusCode)
			}
		})
	}
}

func TestInsertAndSearchHNSW(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	createCollection(t, ts, "vecs", "l2", "hnsw")

	vectors := [][]float32{
		{0.1, 0.2, 0.3},
		{0.2, 0.3, 0.4},
		{0.9, 0.8, 0.7},
	}
	for i, v := range vectors {
		resp := postJSON(t, ts, "/v1/collections/vecs/objects", map[string]interface{}{
			"label": i,
			"data":  denseVectorPayload(v),
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("insert vector %d: expected 201, got %d", i, resp.StatusCode)
		}
	}

	resp := postJSON(t, ts, "/v1/collections/vecs/search", map[string]interface{}{
		"query": map[string]interface{}{"data": denseVectorPayload([]float32{0.15, 0.25, 0.35})},
		"k":     2,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			ID       int32
			Label    int32
			Distance float64
		}
	}
	decodeJSON(t, resp, &body)
	if len(body.Results) == 0 || len(body.Results) > 2 {
		t.Fatalf("expected 1-2 results, got %d", len(body.Results))
	}
	for i := 1; i < len(body.Results); i++ {
		if body.Results[i].Distance < body.Results[i-1].Distance {
			t.Error("results not sorted by ascending distance")
		}
	}
}

func TestSearchBeforeBuildOnBatchMethodFails(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	createCollection(t, ts, "sparse", "cosinesimil_sparse", "simple_invindx")

	resp := postJSON(t, ts, "/v1/collections/sparse/objects", map[string]interface{}{
		"label": 0,
		"data":  sparseVectorPayload(sparsevec.Entry{ID: 1, Value: 1.0}),
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("insert: expected 201, got %d", resp.StatusCode)
	}

	resp = postJSON(t, ts, "/v1/collections/sparse/search", map[string]interface{}{
		"query": map[string]interface{}{"data": sparseVectorPayload(sparsevec.Entry{ID: 1, Value: 1.0})},
		"k":     1,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 (Build not yet called), got %d", resp.StatusCode)
	}
}

func TestBuildThenSearchInvertedIndex(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	createCollection(t, ts, "wand-docs", "cosinesimil_sparse", "wand")

	docs := [][]sparsevec.Entry{
		{{ID: 1, Value: 1.0}, {ID: 2, Value: 1.0}},
		{{ID: 2, Value: 1.0}, {ID: 3, Value: 1.0}},
		{{ID: 5, Value: 1.0}},
	}
	for i, entries := range docs {
		resp := postJSON(t, ts, "/v1/collections/wand-docs/objects", map[string]interface{}{
			"label": i,
			"data":  sparseVectorPayload(entries...),
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("insert doc %d: expected 201, got %d", i, resp.StatusCode)
		}
	}

	buildResp := postJSON(t, ts, "/v1/collections/wand-docs/build", map[string]interface{}{})
	defer buildResp.Body.Close()
	if buildResp.StatusCode != http.StatusOK {
		t.Fatalf("build: expected 200, got %d", buildResp.StatusCode)
	}

	resp := postJSON(t, ts, "/v1/collections/wand-docs/search", map[string]interface{}{
		"query": map[string]interface{}{"data": sparseVectorPayload(sparsevec.Entry{ID: 1, Value: 1.0}, sparsevec.Entry{ID: 2, Value: 1.0})},
		"k":     2,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", resp.StatusCode)
	}

	var body struct{ Results []map[string]interface{} }
	decodeJSON(t, resp, &body)
	if len(body.Results) == 0 {
		t.Fatal("expected at least one result")
	}
}

func TestRangeSearchAlwaysAvailable(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	createCollection(t, ts, "range-docs", "l2", "simple_invindx")

	vectors := [][]float32{{0, 0, 0}, {10, 10, 10}}
	for i, v := range vectors {
		resp := postJSON(t, ts, "/v1/collections/range-docs/objects", map[string]interface{}{
			"label": i,
			"data":  denseVectorPayload(v),
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("insert vector %d: expected 201, got %d", i, resp.StatusCode)
		}
	}

	// No Build call: range search is always available, unlike k-NN
	// search on the batch-built methods.
	resp := postJSON(t, ts, "/v1/collections/range-docs/range-search", map[string]interface{}{
		"query":  map[string]interface{}{"data": denseVectorPayload([]float32{0, 0, 0})},
		"radius": 1.0,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("range-search: expected 200, got %d", resp.StatusCode)
	}

	var body struct{ Results []map[string]interface{} }
	decodeJSON(t, resp, &body)
	if len(body.Results) != 1 {
		t.Fatalf("expected exactly 1 result within radius 1.0, got %d", len(body.Results))
	}
}

func TestCollectionStatsNotFound(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := http.Get(ts.URL + "/v1/collections/missing/stats")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
