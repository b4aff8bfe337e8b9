package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/deplist/pkg/deplist"
	"github.com/matzehuels/deplist/pkg/errors"
)

func plan(id string, at time.Time, entries ...string) *deplist.Plan {
	p := &deplist.Plan{
		ID:        id,
		CreatedAt: at,
		Targets:   []string{"cat/one"},
		Options:   map[string]string{"blocks": "accumulate"},
	}
	for _, e := range entries {
		p.Entries = append(p.Entries, deplist.PlanEntry{Package: e, Kind: "package"})
	}
	return p
}

var (
	t0  = time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	id1 = "0b6f1a8e-5f7e-4a55-9a39-8c3e3f1b2d10"
	id2 = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	id3 = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
)

func TestFileArchive(t *testing.T) {
	ctx := context.Background()
	a, err := NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileArchive() error = %v", err)
	}
	defer a.Close(ctx)

	for _, p := range []*deplist.Plan{
		plan(id1, t0, "cat/one-1:0::main"),
		plan(id2, t0.Add(time.Hour), "cat/one-2:0::main", "cat/two-1:0::main"),
		plan(id3, t0.Add(-time.Hour)),
	} {
		if err := a.Save(ctx, p); err != nil {
			t.Fatalf("Save(%s) error = %v", p.ID, err)
		}
	}

	got, err := a.Get(ctx, id2)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Entries) != 2 || got.Entries[1].Package != "cat/two-1:0::main" {
		t.Errorf("Get() entries = %+v", got.Entries)
	}

	list, err := a.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var ids []string
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	if want := []string{id2, id1, id3}; !equal(ids, want) {
		t.Errorf("List() = %v, want %v", ids, want)
	}
	if list[0].Entries != 2 {
		t.Errorf("List()[0].Entries = %d, want 2", list[0].Entries)
	}

	list, _ = a.List(ctx, 1)
	if len(list) != 1 || list[0].ID != id2 {
		t.Errorf("List(1) = %+v", list)
	}
}

func TestFileArchive_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a, err := NewFileArchive(dir)
	if err != nil {
		t.Fatalf("NewFileArchive() error = %v", err)
	}

	if _, err := a.Get(ctx, id1); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get(missing) error = %v, want NOT_FOUND", err)
	}
	if _, err := a.Get(ctx, "../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Get(bad id) error = %v, want INVALID_INPUT", err)
	}
	if err := a.Save(ctx, plan("latest", t0)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Save(bad id) error = %v, want INVALID_INPUT", err)
	}

	// stray files are ignored by List
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, id3+".json"), []byte("{"), 0o644)
	list, err := a.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List() = %+v, want empty", list)
	}
}

func TestMongoDoc(t *testing.T) {
	p := plan(id1, t0, "cat/one-1:0::main")
	p.HasErrors = true

	doc, err := encodeDoc(p)
	if err != nil {
		t.Fatalf("encodeDoc() error = %v", err)
	}
	if doc.ID != id1 || doc.Entries != 1 || !doc.HasErrors {
		t.Errorf("encodeDoc() summary = %+v", doc.Summary)
	}

	got, err := decodeDoc(doc)
	if err != nil {
		t.Fatalf("decodeDoc() error = %v", err)
	}
	if got.ID != p.ID || !got.CreatedAt.Equal(p.CreatedAt) || got.Entries[0].Package != p.Entries[0].Package {
		t.Errorf("decodeDoc() = %+v, want %+v", got, p)
	}

	if _, err := encodeDoc(plan("", t0)); err == nil {
		t.Error("encodeDoc() accepted a plan without ID")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	a, err := Open(ctx, "", "", "")
	if err != nil || a != nil {
		t.Errorf("Open() = %v, %v, want nil, nil", a, err)
	}

	a, err = Open(ctx, "", "", t.TempDir())
	if err != nil {
		t.Fatalf("Open(dir) error = %v", err)
	}
	if _, ok := a.(*FileArchive); !ok {
		t.Errorf("Open(dir) = %T, want *FileArchive", a)
	}

	if _, err := Open(ctx, "http://localhost", "", ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Open(bad uri) error = %v, want INVALID_INPUT", err)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
