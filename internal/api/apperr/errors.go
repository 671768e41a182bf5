package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/5w1tchy/course-library-api/internal/logging"
)

var ErrNotFound = errors.New("not found")

// NotFound wraps ErrNotFound with the missing resource's description.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// ValidationError is a client error carrying per-field details.
// Status is 400 for query/path input and 422 for request bodies.
type ValidationError struct {
	Status int
	Detail string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Detail
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Query reports an invalid query-string or path value.
func Query(field, code, message string) *ValidationError {
	return &ValidationError{
		Status: http.StatusBadRequest,
		Fields: []FieldError{{Field: field, Code: code, Message: message}},
	}
}

// BadRequest reports a request that could not be read at all.
func BadRequest(detail string) *ValidationError {
	return &ValidationError{Status: http.StatusBadRequest, Detail: detail}
}

// Unprocessable reports a well-formed body that breaks validation rules.
func Unprocessable(fields ...FieldError) *ValidationError {
	return &ValidationError{Status: http.StatusUnprocessableEntity, Fields: fields}
}

// Handle writes the Problem matching err. Unknown errors are logged and
// reported as 500 without detail.
func Handle(w http.ResponseWriter, r *http.Request, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		Write(w, r, Problem{
			Type:        "https://tools.ietf.org/html/rfc7231#section-6.5.1",
			Title:       "One or more validation errors occurred.",
			Status:      ve.Status,
			Detail:      ve.Detail,
			FieldErrors: ve.Fields,
		})
		return
	case errors.Is(err, ErrNotFound):
		Write(w, r, Problem{Status: http.StatusNotFound, Detail: err.Error()})
		return
	}

	if p, ok := FromPG(err); ok {
		if p.Status >= http.StatusInternalServerError {
			logging.FromContext(r.Context()).WithError(err).Error("database error")
		}
		Write(w, r, p)
		return
	}

	logging.FromContext(r.Context()).WithError(err).Errorf("%s %s failed", r.Method, r.URL.Path)
	Write(w, r, Problem{Status: http.StatusInternalServerError, Title: "An unexpected fault happened. Try again later."})
}
