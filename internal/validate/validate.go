package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return val
}

// Struct validates a request body and reports failures as a 422
// *apperr.ValidationError. prefix is prepended to field paths, e.g. "[2]"
// for the third element of a bulk body.
func Struct(s any, prefix string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{
			Field:   prefix + fieldPath(fe),
			Code:    fe.Tag(),
			Message: message(fe),
		})
	}
	return apperr.Unprocessable(fields...)
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "nefield":
		return fe.Field() + " must be different from " + strings.ToLower(fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

// ParseID parses a path identifier, reporting failure as a 400.
func ParseID(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.Query(name, "invalid", name+" must be a UUID")
	}
	return id, nil
}

// ParseIDList parses "(id1,id2,...)" or "id1,id2". Duplicates are dropped,
// first occurrence wins.
func ParseIDList(name, raw string) ([]uuid.UUID, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	if strings.TrimSpace(s) == "" {
		return nil, apperr.Query(name, "required", name+" must list at least one id")
	}
	parts := strings.Split(s, ",")
	seen := make(map[uuid.UUID]struct{}, len(parts))
	out := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, apperr.Query(name, "invalid", fmt.Sprintf("%q is not a UUID", strings.TrimSpace(p)))
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
