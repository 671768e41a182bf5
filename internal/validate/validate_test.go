package validate_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/config"
	"github.com/5w1tchy/course-library-api/internal/models"
	"github.com/5w1tchy/course-library-api/internal/validate"
	"github.com/google/uuid"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want *apperr.ValidationError, got %v", err)
	}
	if ve.Status != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d", ve.Status)
	}
	out := map[string]string{}
	for _, f := range ve.Fields {
		out[f.Field] = f.Code
	}
	return out
}

func TestStruct_ValidAuthor(t *testing.T) {
	in := models.AuthorForCreation{
		FirstName: "Nancy", LastName: "Rye", MainCategory: "Rum",
		DateOfBirth: time.Date(1978, 5, 3, 0, 0, 0, 0, time.UTC),
	}
	if err := validate.Struct(in, ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestStruct_AuthorFieldErrors(t *testing.T) {
	in := models.AuthorForCreation{
		FirstName:    strings.Repeat("x", 51),
		MainCategory: "Rum",
		Courses:      []models.CourseForCreation{{Title: "Same", Description: "Same"}},
	}
	got := fieldsOf(t, validate.Struct(in, ""))

	want := map[string]string{
		"firstName":              "max",
		"lastName":               "required",
		"dateOfBirth":            "required",
		"courses[0].description": "nefield",
	}
	for field, code := range want {
		if got[field] != code {
			t.Errorf("field %s: want %q, got %q (all: %v)", field, code, got[field], got)
		}
	}
}

func TestStruct_CourseForUpdateRequiresDescription(t *testing.T) {
	got := fieldsOf(t, validate.Struct(models.CourseForUpdate{Title: "T"}, "[1]."))
	if got["[1].description"] != "required" {
		t.Fatalf("want [1].description required, got %v", got)
	}
}

func TestStruct_CourseForCreationAllowsEmptyDescription(t *testing.T) {
	if err := validate.Struct(models.CourseForCreation{Title: "T"}, ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestParseIDList(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ids, err := validate.ParseIDList("ids", "("+a.String()+", "+b.String()+","+a.String()+")")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Fatalf("unexpected ids %v", ids)
	}

	for _, raw := range []string{"()", "", "(not-a-uuid)", "(" + a.String() + ",)"} {
		_, err := validate.ParseIDList("ids", raw)
		var ve *apperr.ValidationError
		if !errors.As(err, &ve) || ve.Status != http.StatusBadRequest {
			t.Errorf("%q: want 400 validation error, got %v", raw, err)
		}
	}
}

func TestParseID(t *testing.T) {
	id := uuid.New()
	got, err := validate.ParseID("authorId", id.String())
	if err != nil || got != id {
		t.Fatalf("got %v, %v", got, err)
	}
	if _, err := validate.ParseID("authorId", "42"); err == nil {
		t.Fatal("expected error")
	}
}

func TestHardeningWarnings(t *testing.T) {
	cfg := config.Config{
		Env:            "production",
		AllowedOrigins: []string{"*"},
		Redis:          config.Redis{URL: "redis://cache:6379"},
	}
	warns := validate.HardeningWarnings(cfg)
	joined := strings.Join(warns, "\n")
	for _, want := range []string{"TLS_CERT_FILE", "redis://", "contains *", "STRICT_SECURITY"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing warning about %s in:\n%s", want, joined)
		}
	}

	if w := validate.HardeningWarnings(config.Config{Env: "development"}); len(w) != 0 {
		t.Errorf("development should not warn: %v", w)
	}
}
