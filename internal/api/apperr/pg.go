package apperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var constraintField = map[string]string{
	"authors_pkey":           "id",
	"courses_pkey":           "id",
	"courses_author_id_fkey": "authorId",
}

var detailColumns = []struct{ column, field string }{
	{"author_id", "authorId"},
	{"first_name", "firstName"},
	{"last_name", "lastName"},
	{"main_category", "mainCategory"},
	{"date_of_birth", "dateOfBirth"},
	{"description", "description"},
	{"title", "title"},
	{"id", "id"},
}

func fieldFromDetail(detail string) string {
	for _, c := range detailColumns {
		if strings.Contains(detail, c.column) {
			return c.field
		}
	}
	return ""
}

// FromPG maps a *pgconn.PgError anywhere in err's chain to a Problem.
func FromPG(err error) (Problem, bool) {
	var pg *pgconn.PgError
	if !errors.As(err, &pg) {
		return Problem{}, false
	}

	p := Problem{
		Title:  "Database error",
		Status: http.StatusInternalServerError,
	}

	field := constraintField[pg.ConstraintName]
	if field == "" && pg.Detail != "" {
		field = fieldFromDetail(pg.Detail)
	}
	withField := func(def, code, msg string) {
		if field == "" {
			field = def
		}
		p.FieldErrors = []FieldError{{Field: field, Code: code, Message: msg}}
	}

	switch pg.Code {
	case "23505": // unique_violation
		p.Status, p.Title = http.StatusConflict, "Conflict"
		withField("resource", "unique", "value already exists")
	case "23503": // foreign_key_violation
		p.Status, p.Title = http.StatusConflict, "Conflict"
		withField("resource", "fk", "referenced resource does not exist or is still in use")
	case "23502": // not_null_violation
		if pg.ColumnName != "" && field == "" {
			field = fieldFromDetail(pg.ColumnName)
		}
		p.Status, p.Title = http.StatusUnprocessableEntity, "Unprocessable Entity"
		withField("field", "required", "required field is missing")
	case "23514": // check_violation
		p.Status, p.Title = http.StatusUnprocessableEntity, "Unprocessable Entity"
		withField("field", "check", "constraint failed")
	case "22P02": // invalid_text_representation
		p.Status, p.Title = http.StatusBadRequest, "Bad Request"
		withField("id", "invalid", "invalid format")
	case "22001": // string_data_right_truncation
		p.Status, p.Title = http.StatusUnprocessableEntity, "Unprocessable Entity"
		withField("field", "max", "value is too long")
	case "40001": // serialization_failure
		p.Status, p.Title = http.StatusConflict, "Conflict"
		p.Detail = "transaction conflict, please retry"
		p.Retryable = true
	case "40P01": // deadlock_detected
		p.Status, p.Title = http.StatusConflict, "Conflict"
		p.Detail = "deadlock detected, please retry"
		p.Retryable = true
	}

	return p, true
}
