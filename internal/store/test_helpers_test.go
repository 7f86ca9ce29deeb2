package store

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/roach88/switchblade/internal/schema"
	"github.com/roach88/switchblade/internal/value"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// person exercises every value kind.
type person struct {
	ID     uuid.UUID         `json:"id"`
	Name   string            `json:"name"`
	Age    int               `json:"age"`
	Karma  uint64            `json:"karma"`
	Score  *float64          `json:"score"`
	Avatar []byte            `json:"avatar"`
	Tags   map[string]string `json:"tags"`
}

var personDescriptor = schema.Describe("Person").
	Key("id", value.KindIdentifier).
	Field("name", value.KindString).
	Field("age", value.KindInt).
	Field("karma", value.KindUint).
	Field("score", value.KindFloat).
	Field("avatar", value.KindBlob).
	Field("tags", value.KindInterpreted).
	Index("name").
	MustBuild()

func (person) Descriptor() *schema.Descriptor { return personDescriptor }

func (p person) Values() map[string]value.Native {
	vals := map[string]value.Native{
		"id":     value.UUID(p.ID),
		"name":   value.String(p.Name),
		"age":    value.Int(p.Age),
		"karma":  value.Uint(p.Karma),
		"avatar": value.Bytes(p.Avatar),
		"tags":   value.Interpret(p.Tags),
	}
	if p.Score != nil {
		vals["score"] = value.Float(*p.Score)
	}
	return vals
}

// note has a string key and lives in a table named by alias in some tests.
type note struct {
	Slug string `json:"slug"`
	Body string `json:"body"`
}

var noteDescriptor = schema.Describe("Note").
	Key("slug", value.KindString).
	Field("body", value.KindString).
	MustBuild()

func (note) Descriptor() *schema.Descriptor { return noteDescriptor }

func (n note) Values() map[string]value.Native {
	return map[string]value.Native{
		"slug": value.String(n.Slug),
		"body": value.String(n.Body),
	}
}

// event has a backend-assigned key.
type event struct {
	Seq  int64  `json:"seq"`
	Kind string `json:"kind"`
}

var eventDescriptor = schema.Describe("Event").
	Key("seq", value.KindInt).
	AutoIncrement().
	Field("kind", value.KindString).
	MustBuild()

func (event) Descriptor() *schema.Descriptor { return eventDescriptor }

func (e event) Values() map[string]value.Native {
	vals := map[string]value.Native{"kind": value.String(e.Kind)}
	if e.Seq != 0 {
		vals["seq"] = value.Int(e.Seq)
	}
	return vals
}

// rawRecord lets a test hand arbitrary values to Put.
type rawRecord struct {
	desc *schema.Descriptor
	vals map[string]value.Native
}

func (r rawRecord) Descriptor() *schema.Descriptor  { return r.desc }
func (r rawRecord) Values() map[string]value.Native { return r.vals }

func ptr[T any](v T) *T { return &v }

// release is a TextMarshaler whose text reads like a number.
type release struct{ Major, Minor int }

func (r release) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d.%d", r.Major, r.Minor)), nil
}

func (r *release) UnmarshalText(b []byte) error {
	_, err := fmt.Sscanf(string(b), "%d.%d", &r.Major, &r.Minor)
	return err
}

// setting stores scalars through the interpreted kind.
type setting struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Enabled bool    `json:"enabled"`
	Release release `json:"release"`
}

var settingDescriptor = schema.Describe("Setting").
	Key("key", value.KindString).
	Field("label", value.KindInterpreted).
	Field("enabled", value.KindInterpreted).
	Field("release", value.KindInterpreted).
	MustBuild()

func (setting) Descriptor() *schema.Descriptor { return settingDescriptor }

func (s setting) Values() map[string]value.Native {
	return map[string]value.Native{
		"key":     value.String(s.Key),
		"label":   value.Interpreted{Text: s.Label},
		"enabled": value.Interpret(s.Enabled),
		"release": value.Interpret(s.Release),
	}
}
