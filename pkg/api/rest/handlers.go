package rest

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/collection"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/factory"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/observability"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
)

// Handler implements the §6 REST surface directly over a
// collection.Manager: no intermediate RPC client, since the index
// lives in the same process as the HTTP server.
type Handler struct {
	manager *collection.Manager
	metrics *observability.Metrics
	log     *observability.Logger
}

// NewHandler constructs a Handler bound to manager.
func NewHandler(manager *collection.Manager, m *observability.Metrics, log *observability.Logger) *Handler {
	return &Handler{manager: manager, metrics: m, log: log}
}

// HealthCheck handles GET /v1/health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":      "ok",
		"collections": h.manager.Count(),
	}, http.StatusOK)
}

// createCollectionRequest is the body of POST /v1/collections.
type createCollectionRequest struct {
	Name   string   `json:"name"`
	Space  string   `json:"space"`
	Method string   `json:"method"`
	Params []string `json:"params"`
}

// CreateCollection handles POST /v1/collections: builds a Space and an
// (empty) index from the request's space/method/params and registers
// the pair under name.
func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeError(w, "name is required", http.StatusBadRequest)
		return
	}

	sp, err := factory.CreateSpace(req.Space)
	if err != nil {
		writeSimError(w, err)
		return
	}
	indexParams, err := factory.IndexTimeParams(req.Method, req.Params)
	if err != nil {
		writeSimError(w, err)
		return
	}
	c, err := collection.New(req.Name, sp, req.Method, indexParams)
	if err != nil {
		writeSimError(w, err)
		return
	}
	if err := h.manager.Create(req.Name, c); err != nil {
		writeSimError(w, err)
		return
	}
	h.metrics.UpdateCollectionCount(h.manager.Count())

	writeJSON(w, c.Stats(), http.StatusCreated)
}

// ListCollections handles GET /v1/collections.
func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.manager.List(), http.StatusOK)
}

// CollectionStats handles GET /v1/collections/{name}/stats.
func (h *Handler) CollectionStats(w http.ResponseWriter, r *http.Request) {
	c, ok := h.manager.Get(r.PathValue("name"))
	if !ok {
		writeError(w, "unknown collection: "+r.PathValue("name"), http.StatusNotFound)
		return
	}
	stats := c.Stats()
	h.metrics.UpdateIndexSize(stats.Name, stats.Method, stats.Size)
	writeJSON(w, stats, http.StatusOK)
}

// objectRequest carries one Object's (label, data) pair, data being the
// base64-encoded raw object payload (a space.Space's wire format:
// dense-vector bytes, sparse entries, a string, etc.) — kept opaque
// here so the REST layer needn't special-case each space.
type objectRequest struct {
	Label int32  `json:"label"`
	Data  string `json:"data"`
}

func (req objectRequest) decode() ([]byte, error) {
	if req.Data == "" {
		return nil, &simerrors.FormatError{Reason: "data must not be empty"}
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return nil, &simerrors.FormatError{Reason: "data is not valid base64: " + err.Error()}
	}
	return data, nil
}

// InsertObject handles POST /v1/collections/{name}/objects.
func (h *Handler) InsertObject(w http.ResponseWriter, r *http.Request) {
	c, ok := h.manager.Get(r.PathValue("name"))
	if !ok {
		writeError(w, "unknown collection: "+r.PathValue("name"), http.StatusNotFound)
		return
	}

	var req objectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	label := req.Label
	if label == 0 {
		label = object.EmptyLabel
	}
	data, err := req.decode()
	if err != nil {
		writeSimError(w, err)
		return
	}

	id, err := c.Insert(label, data)
	if err != nil {
		writeSimError(w, err)
		return
	}
	h.metrics.RecordInsert(c.Name(), 1)

	writeJSON(w, map[string]interface{}{"id": id}, http.StatusCreated)
}

// BuildCollection handles POST /v1/collections/{name}/build: runs the
// batch index build for the inverted-index/NAPP methods. A no-op (but
// not an error) for HNSW, which is already incrementally built.
func (h *Handler) BuildCollection(w http.ResponseWriter, r *http.Request) {
	c, ok := h.manager.Get(r.PathValue("name"))
	if !ok {
		writeError(w, "unknown collection: "+r.PathValue("name"), http.StatusNotFound)
		return
	}

	start := time.Now()
	if err := c.Build(); err != nil {
		writeSimError(w, err)
		return
	}
	h.metrics.RecordBuild(c.Name(), c.Method(), time.Since(start))

	writeJSON(w, c.Stats(), http.StatusOK)
}

// searchRequest is the body of POST /v1/collections/{name}/search.
type searchRequest struct {
	Query  objectRequest `json:"query"`
	K      int           `json:"k"`
	Params []string      `json:"params"`
}

// Search handles POST /v1/collections/{name}/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	c, ok := h.manager.Get(r.PathValue("name"))
	if !ok {
		writeError(w, "unknown collection: "+r.PathValue("name"), http.StatusNotFound)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.K <= 0 {
		writeError(w, "k must be > 0", http.StatusBadRequest)
		return
	}
	data, err := req.Query.decode()
	if err != nil {
		writeSimError(w, err)
		return
	}
	queryParams, err := factory.QueryTimeParams(c.Method(), req.Params)
	if err != nil {
		writeSimError(w, err)
		return
	}

	query := object.New(-1, object.EmptyLabel, data)
	start := time.Now()
	results, err := c.Search(query, req.K, queryParams)
	if err != nil {
		writeSimError(w, err)
		return
	}
	h.metrics.RecordSearch(c.Method(), time.Since(start), len(results), len(results), 0)

	writeJSON(w, map[string]interface{}{"results": results}, http.StatusOK)
}

// rangeSearchRequest is the body of POST /v1/collections/{name}/range-search.
type rangeSearchRequest struct {
	Query  objectRequest `json:"query"`
	Radius float64       `json:"radius"`
}

// RangeSearch handles POST /v1/collections/{name}/range-search.
func (h *Handler) RangeSearch(w http.ResponseWriter, r *http.Request) {
	c, ok := h.manager.Get(r.PathValue("name"))
	if !ok {
		writeError(w, "unknown collection: "+r.PathValue("name"), http.StatusNotFound)
		return
	}

	var req rangeSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	data, err := req.Query.decode()
	if err != nil {
		writeSimError(w, err)
		return
	}

	query := object.New(-1, object.EmptyLabel, data)
	start := time.Now()
	results := c.RangeSearch(query, req.Radius)
	h.metrics.RecordSearch(c.Method()+"_range", time.Since(start), len(results), len(results), 0)

	writeJSON(w, map[string]interface{}{"results": results}, http.StatusOK)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}

// writeSimError maps a simerrors kind to an HTTP status: malformed
// input is 400, an unrecognized config value is 422, a missing
// resource is 404, and a broken internal invariant is 500.
func writeSimError(w http.ResponseWriter, err error) {
	switch err.(type) {
	case *simerrors.FormatError:
		writeError(w, err.Error(), http.StatusBadRequest)
	case *simerrors.ConfigError:
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
	case *simerrors.ResourceError:
		writeError(w, err.Error(), http.StatusNotFound)
	case *simerrors.InvariantViolation:
		writeError(w, err.Error(), http.StatusInternalServerError)
	default:
		writeError(w, err.Error(), http.StatusInternalServerError)
	}
}
