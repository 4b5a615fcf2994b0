package handlers

import (
	"famlink/internal/validate"
	"net/http"
)

type resource struct {
	singular string
	plural   string
	title    string
	conflict string
}

// binder turns validated values into positional statement arguments.
type binder func(v validate.Values) []any

func list[T any](h *Handlers, res resource, query string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows := []T{}
		if err := h.store.QueryRows(r.Context(), &rows, query); err != nil {
			h.fail(w, r, res, "fetch "+res.plural, err)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	}
}

func get[T any](h *Handlers, res resource, query string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op := "fetch " + res.singular
		id, err := pathID(r)
		if err != nil {
			h.fail(w, r, res, op, err)
			return
		}
		var row T
		if err := h.store.QueryRow(r.Context(), &row, query, id); err != nil {
			h.fail(w, r, res, op, err)
			return
		}
		respondJSON(w, http.StatusOK, row)
	}
}

func create[T any](h *Handlers, res resource, schema *validate.Schema, query string, bind binder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op := "create " + res.singular
		payload, err := h.decode(w, r)
		if err != nil {
			h.fail(w, r, res, op, err)
			return
		}
		v, err := schema.Validate(payload)
		if err != nil {
			h.fail(w, r, res, op, err)
			return
		}
		var row T
		if err := h.store.QueryRow(r.Context(), &row, query, bind(v)...); err != nil {
			h.fail(w, r, res, op, err)
			return
		}
		respondJSON(w, http.StatusCreated, row)
	}
}

// update binds the values first and the row id last.
func update[T any](h *Handlers, res resource, schema *validate.Schema, query string, bind binder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op := "update " + res.singular
		payload, err := h.decode(w, r)
		if err != nil {
			h.fail(w, r, res, op, err)
			return
		}
		v, err := schema.Validate(payload)
		if err != nil {
			h.fail(w, r, res, op, err)
			return
		}
		id, err := pathID(r)
		if err != nil {
			h.fail(w, r, res, op, err)
			return
		}
		var row T
		if err := h.store.QueryRow(r.Context(), &row, query, append(bind(v), id)...); err != nil {
			h.fail(w, r, res, op, err)
			return
		}
		respondJSON(w, http.StatusOK, row)
	}
}

func remove[T any](h *Handlers, res resource, query string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op := "delete " + res.singular
		id, err := pathID(r)
		if err != nil {
			h.fail(w, r, res, op, err)
			return
		}
		var row T
		if err := h.store.QueryRow(r.Context(), &row, query, id); err != nil {
			h.fail(w, r, res, op, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": res.title + " deleted successfully"})
	}
}
