package store

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/switchblade/internal/query"
	"github.com/roach88/switchblade/internal/schema"
	"github.com/roach88/switchblade/internal/value"
)

func seedPeople(t *testing.T, s *Store) []person {
	t.Helper()
	people := []person{
		{ID: uuid.New(), Name: "Sam", Age: 30},
		{ID: uuid.New(), Name: "Sam", Age: 12},
		{ID: uuid.New(), Name: "Kim", Age: 45, Score: ptr(1.5)},
		{ID: uuid.New(), Name: "Sam", Age: 52},
	}
	for _, p := range people {
		require.NoError(t, s.Put(context.Background(), p))
	}
	return people
}

func names(people []person) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.Name
	}
	return out
}

func ages(people []person) []int {
	out := make([]int, len(people))
	for i, p := range people {
		out[i] = p.Age
	}
	return out
}

func TestQuery_WhereOrderLimit(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	seedPeople(t, s)

	got, err := Query[person](ctx, s, query.New().
		Where("age", query.Greater, value.Int(18)).
		Where("name", query.Equals, value.String("Sam")).
		OrderBy("age DESC").
		Limit(10))
	require.NoError(t, err)
	assert.Equal(t, []int{52, 30}, ages(got))
}

func TestQuery_Less(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	seedPeople(t, s)

	got, err := Query[person](ctx, s, query.New().Where("age", query.Less, value.Int(31)).OrderBy("age"))
	require.NoError(t, err)
	assert.Equal(t, []int{12, 30}, ages(got))
}

func TestQuery_NullChecks(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	seedPeople(t, s)

	scored, err := Query[person](ctx, s, query.New().IsNotNull("score"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Kim"}, names(scored))

	unscored, err := Query[person](ctx, s, query.New().IsNull("score"))
	require.NoError(t, err)
	assert.Len(t, unscored, 3)
}

func TestQuery_ByIdentifier(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	people := seedPeople(t, s)

	got, err := Query[person](ctx, s, query.New().Where("id", query.Equals, value.UUID(people[2].ID)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, people[2].ID, got[0].ID)
}

func TestQuery_NoMatchesIsEmptyNotNil(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	got, err := Query[person](ctx, s, query.New().Where("name", query.Equals, value.String("nobody")))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestQuery_InvalidQuery(t *testing.T) {
	s := createTestStore(t)

	_, err := Query[person](context.Background(), s, query.New().OrderBy("age").OrderBy("name"))
	assert.ErrorIs(t, err, query.ErrDuplicateOrder)
}

func TestQuery_SkipsUndecodableRows(t *testing.T) {
	ctx := context.Background()

	var logs bytes.Buffer
	s := createTestStore(t, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Put(ctx, note{Slug: string(rune('a' + i)), Body: "ok"}))
	}
	// A body the registry says is text but which the record cannot hold.
	_, err := s.db.Exec("UPDATE Note SET body = x'00ff' WHERE slug = 'c'")
	require.NoError(t, err)

	got, err := Query[note](ctx, s, query.New().OrderBy("slug"))
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"a", "b", "d", "e"}, []string{got[0].Slug, got[1].Slug, got[2].Slug, got[3].Slug})
	assert.Contains(t, logs.String(), "skipping row")
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	require.NoError(t, s.Put(ctx, note{Slug: "x", Body: "found"}))

	got, ok, err := Get[note](ctx, s, value.String("x"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, note{Slug: "x", Body: "found"}, got)

	got, ok, err = Get[note](ctx, s, value.String("y"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, note{}, got)
}

func TestRows_LoadedTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rows.db")

	s1, err := Open(path, WithLogger(quietLogger()))
	require.NoError(t, err)
	seedPeople(t, s1)
	require.NoError(t, s1.Close())

	// A fresh store knows nothing about Person until it loads the table.
	s2, err := Open(path, WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { s2.Close() })

	tbl, err := s2.LoadTable(ctx, "Person")
	require.NoError(t, err)
	assert.Equal(t, "id", tbl.PrimaryKey)

	rows, err := s2.Rows(ctx, "Person", query.New().Where("name", query.Equals, value.String("Kim")))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, value.Integer(45), rows[0]["age"])
	assert.Equal(t, value.Real(1.5), rows[0]["score"])

	_, err = s2.LoadTable(ctx, "Ghost")
	assert.ErrorIs(t, err, schema.ErrUnknownTable)
}
