package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Created writes v with 201 and a Location header.
func Created(w http.ResponseWriter, location string, v any) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	WriteJSON(w, http.StatusCreated, v)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON reads exactly one JSON value from the body into dst.
// Unknown fields, trailing data and empty bodies are rejected with 400.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.BadRequest("request body is required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.BadRequest("request body is required")
		case errors.As(err, &tooLarge):
			return &apperr.ValidationError{Status: http.StatusRequestEntityTooLarge, Detail: "request body too large"}
		default:
			return apperr.BadRequest("invalid JSON: " + err.Error())
		}
	}
	if dec.More() {
		return apperr.BadRequest("request body must contain a single JSON value")
	}
	return nil
}

// ReadBody returns the raw body, mapping oversize bodies to 413.
func ReadBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, apperr.BadRequest("request body is required")
	}
	defer r.Body.Close()
	b, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &apperr.ValidationError{Status: http.StatusRequestEntityTooLarge, Detail: "request body too large"}
		}
		return nil, apperr.BadRequest("could not read request body")
	}
	if len(b) == 0 {
		return nil, apperr.BadRequest("request body is required")
	}
	return b, nil
}
