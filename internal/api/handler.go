package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/probflow/bayesnet/internal/dataset"
	"github.com/probflow/bayesnet/internal/engine"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	svc    *engine.Service
	loader *dataset.Loader
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(svc *engine.Service, loader *dataset.Loader) http.Handler {
	h := &Handler{svc: svc, loader: loader, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/nodes", h.addNode)
	h.mux.HandleFunc("GET /v1/nodes", h.listNodes)
	h.mux.HandleFunc("POST /v1/edges", h.createEdge)
	h.mux.HandleFunc("DELETE /v1/edges", h.removeEdge)
	h.mux.HandleFunc("POST /v1/edges/reverse", h.reverseEdge)
	h.mux.HandleFunc("POST /v1/edges/validate", h.validateEdge)
	h.mux.HandleFunc("GET /v1/order", h.order)
	h.mux.HandleFunc("GET /v1/attributes", h.listAttributes)
	h.mux.HandleFunc("POST /v1/dataset/reload", h.reloadDataset)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

type nodeRequest struct {
	Attribute string `json:"attribute"`
}

type edgeRequest struct {
	Parent  string `json:"parent"`
	Child   string `json:"child"`
	Reverse bool   `json:"reverse,omitempty"`
}

func (r *edgeRequest) validate() error {
	if r.Parent == "" {
		return fmt.Errorf("parent is required")
	}
	if r.Child == "" {
		return fmt.Errorf("child is required")
	}
	return nil
}

// POST /v1/nodes — register a node for a dataset attribute.
func (h *Handler) addNode(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if req.Attribute == "" {
		writeError(w, http.StatusBadRequest, "attribute is required")
		return
	}

	view, err := h.svc.AddNode(req.Attribute)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"request_id": uuid.New().String(),
		"node":       view,
		"order":      h.svc.Order(),
	})
}

// GET /v1/nodes — list nodes in topological order.
func (h *Handler) listNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"nodes": h.svc.Nodes(),
	})
}

// POST /v1/edges — create a directed edge.
func (h *Handler) createEdge(w http.ResponseWriter, r *http.Request) {
	h.edgeMutation(w, r, h.svc.CreateEdge)
}

// DELETE /v1/edges — remove a directed edge.
func (h *Handler) removeEdge(w http.ResponseWriter, r *http.Request) {
	h.edgeMutation(w, r, h.svc.RemoveEdge)
}

// POST /v1/edges/reverse — reverse a directed edge.
func (h *Handler) reverseEdge(w http.ResponseWriter, r *http.Request) {
	h.edgeMutation(w, r, h.svc.ReverseEdge)
}

func (h *Handler) edgeMutation(w http.ResponseWriter, r *http.Request, op func(parent, child string) error) {
	var req edgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := op(req.Parent, req.Child); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request_id": uuid.New().String(),
		"parent":     req.Parent,
		"child":      req.Child,
		"order":      h.svc.Order(),
	})
}

// POST /v1/edges/validate — dry-run an edge addition or reversal.
func (h *Handler) validateEdge(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	valid, err := h.svc.ValidateEdge(req.Parent, req.Child, req.Reverse)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"parent":  req.Parent,
		"child":   req.Child,
		"reverse": req.Reverse,
		"valid":   valid,
	})
}

// GET /v1/order — current topological order.
func (h *Handler) order(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order": h.svc.Order(),
	})
}

// GET /v1/attributes — attributes represented by nodes.
func (h *Handler) listAttributes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"attributes": h.svc.Attributes(),
	})
}

// POST /v1/dataset/reload — re-read the dataset and refresh every CPD.
func (h *Handler) reloadDataset(w http.ResponseWriter, r *http.Request) {
	if _, err := h.loader.Reload(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	refreshed, err := h.svc.RefreshCPDs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":    uuid.New().String(),
		"reloaded":  true,
		"instances": h.loader.Data().Len(),
		"refreshed": refreshed,
	})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 until the dataset has loaded.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	ds := h.loader.Data()
	if ds == nil || ds.Attributes().Len() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "no dataset",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"nodes":     h.svc.NumNodes(),
		"instances": ds.Len(),
	})
}
