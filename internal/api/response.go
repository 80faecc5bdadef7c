package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/probflow/bayesnet/internal/bn"
	"github.com/probflow/bayesnet/internal/engine"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps the core's error taxonomy onto HTTP statuses. All
// of these are recoverable rejections; the network is unchanged.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bn.ErrMissingNode), errors.Is(err, engine.ErrUnknownAttribute):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, bn.ErrDuplicateAttribute), errors.Is(err, bn.ErrDuplicateEdge):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, bn.ErrCycle), errors.Is(err, bn.ErrInvalidRelation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
