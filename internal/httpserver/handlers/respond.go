package handlers

import (
	"encoding/json"
	"errors"
	"famlink/internal/store"
	"famlink/internal/validate"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type errorBody struct {
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"requestId"`
}

// WriteError renders the shared error shape. detail is omitted when empty.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message, detail string) {
	respondJSON(w, status, errorBody{
		Message:   message,
		Error:     detail,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// NotFound answers every unmatched route or method.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusNotFound, "Route not found", "")
}

type bodyError struct {
	status int
	msg    string
	err    error
}

func (e *bodyError) Error() string { return e.msg }
func (e *bodyError) Unwrap() error { return e.err }

var errBadID = &store.Error{Kind: store.KindNotFound, Op: "parse id"}

// fail maps err to a response. Only unclassified failures are logged; their
// detail reaches the client only when ExposeErrorDetail is set.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, res resource, op string, err error) {
	var verr *validate.Error
	var berr *bodyError
	switch {
	case errors.As(err, &verr):
		WriteError(w, r, http.StatusBadRequest, verr.Message, "")
	case errors.As(err, &berr):
		WriteError(w, r, berr.status, berr.msg, "")
	case store.IsKind(err, store.KindConflict):
		WriteError(w, r, http.StatusConflict, res.conflict, "")
	case store.IsKind(err, store.KindNotFound):
		WriteError(w, r, http.StatusNotFound, res.title+" not found", "")
	default:
		msg := "Failed to " + op
		h.log.Errorw(msg, "requestId", middleware.GetReqID(r.Context()), "error", err)
		detail := ""
		if h.opts.ExposeErrorDetail {
			detail = err.Error()
		}
		WriteError(w, r, http.StatusInternalServerError, msg, detail)
	}
}

// decode reads the request body as JSON. An empty body is an empty object.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request) (any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.opts.BodyLimit))
	var payload any
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &bodyError{status: http.StatusRequestEntityTooLarge, msg: "request entity too large", err: err}
		}
		return nil, &bodyError{status: http.StatusBadRequest, msg: fmt.Sprintf("invalid JSON body: %v", err), err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &bodyError{status: http.StatusBadRequest, msg: "invalid JSON body: unexpected data after top-level value"}
	}
	return payload, nil
}

// pathID canonicalizes the {id} route parameter. A malformed id cannot match
// any row.
func pathID(r *http.Request) (string, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return "", errBadID
	}
	return id.String(), nil
}
