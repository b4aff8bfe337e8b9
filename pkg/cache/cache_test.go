package cache

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deplist/pkg/deplist"
	dlerrors "github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set() error = %v", err)
	}
	data, ok, err := c.Get(ctx, "key")
	if err != nil || ok || data != nil {
		t.Errorf("Get() = %q, %v, %v, want miss", data, ok, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	if _, ok, _ := c.Get(ctx, "plan:a"); ok {
		t.Error("Get() hit on empty cache")
	}
	if err := c.Set(ctx, "plan:a", []byte("one"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, ok, err := c.Get(ctx, "plan:a")
	if err != nil || !ok || string(data) != "one" {
		t.Errorf("Get() = %q, %v, %v, want one", data, ok, err)
	}

	if err := c.Set(ctx, "plan:a", []byte("two"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if data, _, _ := c.Get(ctx, "plan:a"); string(data) != "two" {
		t.Errorf("Get() after overwrite = %q, want two", data)
	}

	if err := c.Delete(ctx, "plan:a"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := c.Delete(ctx, "plan:a"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "plan:a"); ok {
		t.Error("Get() hit after Delete")
	}
}

func TestFileCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", []byte("x"), time.Minute)
	_ = c.Set(ctx, "long", []byte("y"), time.Hour)
	_ = c.Set(ctx, "forever", []byte("z"), 0)

	now = now.Add(10 * time.Minute)
	if _, ok, _ := c.Get(ctx, "short"); ok {
		t.Error("Get(short) hit after expiry")
	}
	if _, ok, _ := c.Get(ctx, "long"); !ok {
		t.Error("Get(long) missed before expiry")
	}

	now = now.Add(2 * time.Hour)
	removed, kept, err := c.Prune(ctx, false)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 1 || kept != 1 {
		t.Errorf("Prune() = %d removed, %d kept, want 1, 1", removed, kept)
	}

	removed, kept, err = c.Prune(ctx, true)
	if err != nil {
		t.Fatalf("Prune(all) error = %v", err)
	}
	if removed != 1 || kept != 0 {
		t.Errorf("Prune(all) = %d removed, %d kept, want 1, 0", removed, kept)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash() is not deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Hash() collides on different input")
	}
	if len(h1) != 64 {
		t.Errorf("len(Hash()) = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := PlanKeyOpts{Targets: []string{"cat/one"}, Options: map[string]string{"blocks": "error"}}
	tests := []struct {
		name string
		opts PlanKeyOpts
		same bool
	}{
		{"identical", PlanKeyOpts{Targets: []string{"cat/one"}, Options: map[string]string{"blocks": "error"}}, true},
		{"other target", PlanKeyOpts{Targets: []string{"cat/two"}, Options: base.Options}, false},
		{"other option", PlanKeyOpts{Targets: base.Targets, Options: map[string]string{"blocks": "discard"}}, false},
		{"no options", PlanKeyOpts{Targets: base.Targets}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := k.PlanKey("u1", base), k.PlanKey("u1", tt.opts)
			if (a == b) != tt.same {
				t.Errorf("PlanKey equal = %v, want %v", a == b, tt.same)
			}
		})
	}

	if !strings.HasPrefix(k.PlanKey("u1", base), "plan:") {
		t.Errorf("PlanKey() = %q, want plan: prefix", k.PlanKey("u1", base))
	}
	if k.PlanKey("u1", base) == k.PlanKey("u2", base) {
		t.Error("PlanKey ignores the universe hash")
	}
	if k.GraphKey("p", GraphKeyOpts{Format: "svg"}) == k.GraphKey("p", GraphKeyOpts{Format: "dot"}) {
		t.Error("GraphKey ignores the format")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "deplist:test:")

	opts := PlanKeyOpts{Targets: []string{"cat/one"}}
	if got, want := scoped.PlanKey("u", opts), "deplist:test:"+inner.PlanKey("u", opts); got != want {
		t.Errorf("PlanKey() = %q, want %q", got, want)
	}
	if got := NewScopedKeyer(nil, "p:").GraphKey("h", GraphKeyOpts{}); got != "p:"+inner.GraphKey("h", GraphKeyOpts{}) {
		t.Errorf("GraphKey() with nil inner = %q", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable() = false for wrapped error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("errors.Is(Retryable(ErrNetwork), ErrNetwork) = false")
	}
	if IsRetryable(ErrNetwork) {
		t.Error("IsRetryable() = true for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	retryDelay = time.Millisecond
	defer func() { retryDelay = 100 * time.Millisecond }()
	ctx := context.Background()
	permanent := errors.New("permanent")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"success", 0, nil, 1, nil},
		{"permanent", 5, permanent, 1, permanent},
		{"recovers", 1, Retryable(ErrNetwork), 2, nil},
		{"gives up", 5, Retryable(ErrNetwork), 3, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoff_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, "", "")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, ok := c.(NullCache); !ok {
		t.Errorf("Open() = %T, want NullCache", c)
	}

	c, err = Open(ctx, "", t.TempDir())
	if err != nil {
		t.Fatalf("Open(dir) error = %v", err)
	}
	if _, ok := c.(*FileCache); !ok {
		t.Errorf("Open(dir) = %T, want *FileCache", c)
	}

	_, err = Open(ctx, "http://localhost:6379", "")
	if !dlerrors.Is(err, dlerrors.ErrCodeInvalidInput) {
		t.Errorf("Open(http url) error = %v, want invalid input", err)
	}
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestPlans(t *testing.T) {
	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	s := NewPlans(fc)
	s.Logger = log.New(io.Discard)

	key := s.Keys.PlanKey("u", PlanKeyOpts{Targets: []string{"cat/one"}})
	if _, _, ok := s.GetPlan(ctx, key); ok {
		t.Fatal("GetPlan() hit on empty cache")
	}

	want := &deplist.Plan{
		ID:        "0b6f1a8e-5f7e-4a55-9a39-8c3e3f1b2d10",
		CreatedAt: time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC),
		Targets:   []string{"cat/one"},
		Entries:   []deplist.PlanEntry{{Package: "cat/one-1:0::main", Kind: "package"}},
	}
	planHash, err := s.PutPlan(ctx, key, want)
	if err != nil {
		t.Fatalf("PutPlan() error = %v", err)
	}
	if len(planHash) != 64 {
		t.Errorf("PutPlan() hash = %q", planHash)
	}

	got, gotHash, ok := s.GetPlan(ctx, key)
	if !ok {
		t.Fatal("GetPlan() missed after PutPlan")
	}
	if gotHash != planHash {
		t.Errorf("GetPlan() hash = %q, want %q", gotHash, planHash)
	}
	if got.ID != want.ID || len(got.Entries) != 1 || got.Entries[0].Package != "cat/one-1:0::main" {
		t.Errorf("GetPlan() = %+v, want %+v", got, want)
	}

	gk := s.Keys.GraphKey(planHash, GraphKeyOpts{Format: "dot"})
	s.PutGraph(ctx, gk, []byte("digraph G {}"))
	if data, ok := s.GetGraph(ctx, gk); !ok || string(data) != "digraph G {}" {
		t.Errorf("GetGraph() = %q, %v", data, ok)
	}

	if hooks.hits != 2 || hooks.misses != 1 || hooks.sets != 2 {
		t.Errorf("hooks = %d hits, %d misses, %d sets, want 2, 1, 2", hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestPlans_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	s := NewPlans(fc)
	s.Logger = log.New(io.Discard)

	_ = fc.Set(ctx, "plan:bad", []byte("{not json"), 0)
	if _, _, ok := s.GetPlan(ctx, "plan:bad"); ok {
		t.Error("GetPlan() hit on corrupt entry")
	}
	if _, ok, _ := fc.Get(ctx, "plan:bad"); ok {
		t.Error("corrupt entry was not dropped")
	}
}
