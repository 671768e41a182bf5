package courselib_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/models"
	"github.com/5w1tchy/course-library-api/internal/paging"
	"github.com/5w1tchy/course-library-api/internal/repository/sqlconnect"
	"github.com/5w1tchy/course-library-api/internal/store/courselib"
	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startPostgres runs a throwaway Postgres container with migrations applied.
// Set COURSELIB_INTEGRATION=1 to enable; skipped otherwise.
func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	if os.Getenv("COURSELIB_INTEGRATION") != "1" {
		t.Skip("set COURSELIB_INTEGRATION=1 to run against a Postgres container")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	const passwd = "courselib"
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env:        []string{"POSTGRES_PASSWORD=" + passwd, "POSTGRES_DB=courselib"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.NeverRestart()
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("postgres://postgres:%s@localhost:%s/courselib?sslmode=disable",
		passwd, resource.GetPort("5432/tcp"))

	var db *sql.DB
	pool.MaxWait = time.Minute
	require.NoError(t, pool.Retry(func() error {
		var err error
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return err
		}
		return db.Ping()
	}))
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlconnect.Migrate(context.Background(), db))
	return db
}

func TestIntegration_AuthorLifecycle(t *testing.T) {
	db := startPostgres(t)
	sorts, err := courselib.NewSortRegistry()
	require.NoError(t, err)
	ctx := context.Background()

	p, _ := paging.Parse(url.Values{"mainCategory": {"rum"}, "orderBy": {"age desc"}})
	page, err := courselib.New(db, sorts).GetAuthors(ctx, p)
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalCount)
	assert.Equal(t, "Nancy", page.Items[0].FirstName, "oldest first for age desc")

	repo := courselib.New(db, sorts)
	a := models.Author{
		FirstName: "Ada", LastName: "Quill", MainCategory: "Maps",
		DateOfBirth: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
		Courses:     []models.Course{{Title: "Charting", Description: "Stars"}},
	}
	repo.AddAuthor(&a)
	require.NoError(t, repo.Save(ctx))

	got, err := repo.GetAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quill", got.LastName)

	courses, err := repo.GetCourses(ctx, a.ID, "")
	require.NoError(t, err)
	require.Len(t, courses, 1)

	c := courses[0]
	c.Title = "Charting II"
	repo.UpdateCourse(c)
	require.NoError(t, repo.Save(ctx))

	repo.DeleteAuthor(got)
	require.NoError(t, repo.Save(ctx))

	_, err = repo.GetCourse(ctx, a.ID, c.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "courses cascade with their author")

	repo.DeleteCourse(models.Course{ID: uuid.New(), AuthorID: a.ID})
	assert.ErrorIs(t, repo.Save(ctx), apperr.ErrNotFound)
}
