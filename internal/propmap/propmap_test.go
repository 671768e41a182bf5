package propmap_test

import (
	"sync"
	"testing"

	"github.com/5w1tchy/course-library-api/internal/propmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authorRegistry(t *testing.T) *propmap.Registry {
	t.Helper()
	b := propmap.NewBuilder()
	require.NoError(t, b.Register("Author", "AuthorDto", propmap.NewMapping(
		propmap.Map("id", propmap.Col("id")),
		propmap.Map("mainCategory", propmap.Col("main_category")),
		propmap.Map("age", propmap.Reversed("date_of_birth")),
		propmap.Map("name", propmap.Col("first_name"), propmap.Col("last_name")),
	)))
	return b.Build()
}

func TestRegister_Duplicate(t *testing.T) {
	b := propmap.NewBuilder()
	m := propmap.NewMapping(propmap.Map("id", propmap.Col("id")))
	require.NoError(t, b.Register("A", "B", m))
	err := b.Register("A", "B", m)
	assert.ErrorIs(t, err, propmap.ErrDuplicateMapping)
}

func TestResolve_NotFound(t *testing.T) {
	reg := authorRegistry(t)
	_, err := reg.Resolve("Course", "CourseDto")
	assert.ErrorIs(t, err, propmap.ErrMappingNotFound)
}

func TestIsValid(t *testing.T) {
	reg := authorRegistry(t)
	cases := []struct {
		clause string
		want   bool
	}{
		{"", true},
		{"name", true},
		{"name,age desc", true},
		{"NAME DESC, MainCategory asc", true},
		{"  age   desc  ", true},
		{"unknownfield", false},
		{"name,", false},
		{"name sideways", false},
		{"name asc extra", false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, reg.IsValid("Author", "AuthorDto", tc.clause), "clause %q", tc.clause)
	}
	assert.False(t, reg.IsValid("Nope", "AuthorDto", "name"))
}

func TestTranslate_ExpandsAndReverses(t *testing.T) {
	reg := authorRegistry(t)

	keys, err := reg.Translate("Author", "AuthorDto", "age desc, name")
	require.NoError(t, err)
	assert.Equal(t, []propmap.SortKey{
		{Column: "date_of_birth", Descending: false},
		{Column: "first_name", Descending: false},
		{Column: "last_name", Descending: false},
	}, keys)

	keys, err = reg.Translate("Author", "AuthorDto", "age")
	require.NoError(t, err)
	assert.Equal(t, []propmap.SortKey{{Column: "date_of_birth", Descending: true}}, keys)
}

func TestTranslate_Blank(t *testing.T) {
	reg := authorRegistry(t)
	keys, err := reg.Translate("Author", "AuthorDto", " ")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestOrderByAndTieBreaker(t *testing.T) {
	keys := []propmap.SortKey{{Column: "first_name"}, {Column: "date_of_birth", Descending: true}}
	keys = propmap.WithTieBreaker(keys, "id")
	assert.Equal(t, "first_name ASC, date_of_birth DESC, id ASC", propmap.OrderBy(keys))

	already := []propmap.SortKey{{Column: "id", Descending: true}}
	assert.Equal(t, "id DESC", propmap.OrderBy(propmap.WithTieBreaker(already, "id")))
}

func TestNewMapping_PanicsOnDuplicateKey(t *testing.T) {
	assert.Panics(t, func() {
		propmap.NewMapping(
			propmap.Map("name", propmap.Col("a")),
			propmap.Map("Name", propmap.Col("b")),
		)
	})
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	reg := authorRegistry(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = reg.Translate("Author", "AuthorDto", "name desc, age")
			}
		}()
	}
	wg.Wait()
}
