package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deplist/pkg/archive"
	"github.com/matzehuels/deplist/pkg/cache"
	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/repository"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"json", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"ok", Options{Targets: []string{"app-misc/editor"}}, ""},
		{"no targets", Options{}, errors.ErrCodeInvalidInput},
		{"empty target", Options{Targets: []string{""}}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Targets: []string{"a/b"}, Formats: []string{"pdf"}}, errors.ErrCodeInvalidInput},
		{"bad option", Options{Targets: []string{"a/b"}, Options: map[string]string{"blocks": "maybe"}}, errors.ErrCodeMalformedOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("ValidateAndSetDefaults() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestValidateAndSetDefaults_DependencyTags(t *testing.T) {
	o := Options{Targets: []string{"a/b"}}
	_ = o.ValidateAndSetDefaults()
	if o.ResolverOptions().DependencyTags {
		t.Error("DependencyTags set without formats")
	}

	o = Options{Targets: []string{"a/b"}, Formats: []string{"dot"}}
	_ = o.ValidateAndSetDefaults()
	if !o.ResolverOptions().DependencyTags {
		t.Error("DependencyTags not set for graph output")
	}
}

func testRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	db := repository.NewDatabase()
	db.MustAdd(repository.PackageDef{ID: "app-misc/editor-2.1", Depend: "dev-libs/core", RDepend: "sys-libs/term"}, false)
	db.MustAdd(repository.PackageDef{ID: "dev-libs/core-1.4"}, false)
	db.MustAdd(repository.PackageDef{ID: "sys-libs/term-6"}, false)

	r, err := NewRunner(db, "test-universe", c, nil, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	return r
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := testRunner(t, fc)
	arch, err := archive.NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r.Archive = arch
	defer r.Close(ctx)

	opts := Options{Targets: []string{"app-misc/editor"}, Formats: []string{"dot", "json"}}
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var got []string
	for _, e := range res.Plan.Entries {
		got = append(got, e.Package)
	}
	want := "dev-libs/core-1.4:0::main sys-libs/term-6:0::main app-misc/editor-2.1:0::main"
	if strings.Join(got, " ") != want {
		t.Errorf("plan = %v, want %s", got, want)
	}
	if res.CacheInfo.PlanHit || res.CacheInfo.RenderHit {
		t.Errorf("CacheInfo = %+v on first run", res.CacheInfo)
	}
	if res.Stats.NodeCount != 3 || res.Stats.EdgeCount != 2 {
		t.Errorf("Stats = %+v, want 3 nodes, 2 edges", res.Stats)
	}
	if !bytes.Contains(res.Artifacts["dot"], []byte(`"app-misc/editor-2.1:0::main" -> "dev-libs/core-1.4:0::main";`)) {
		t.Errorf("dot artifact lacks dependency edge:\n%s", res.Artifacts["dot"])
	}
	if !bytes.Contains(res.Artifacts["json"], []byte(`"from": "app-misc/editor-2.1:0::main"`)) {
		t.Errorf("json artifact lacks edge:\n%s", res.Artifacts["json"])
	}

	if _, err := arch.Get(ctx, res.Plan.ID); err != nil {
		t.Errorf("archived plan: %v", err)
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() again error = %v", err)
	}
	if !again.CacheInfo.PlanHit || !again.CacheInfo.RenderHit {
		t.Errorf("CacheInfo = %+v on second run, want hits", again.CacheInfo)
	}
	if again.Plan.ID != res.Plan.ID || again.PlanHash != res.PlanHash {
		t.Errorf("cached plan %s/%s, want %s/%s", again.Plan.ID, again.PlanHash, res.Plan.ID, res.PlanHash)
	}

	opts.Refresh = true
	fresh, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute(refresh) error = %v", err)
	}
	if fresh.CacheInfo.PlanHit || fresh.Plan.ID == res.Plan.ID {
		t.Error("Refresh reused the cached plan")
	}
}

func TestExecute_PlanOnly(t *testing.T) {
	r := testRunner(t, nil)
	res, err := r.Execute(context.Background(), Options{Targets: []string{"dev-libs/core", "sys-libs/term"}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(res.Plan.Entries) != 2 || len(res.Artifacts) != 0 {
		t.Errorf("Execute() = %d entries, %d artifacts, want 2, 0", len(res.Plan.Entries), len(res.Artifacts))
	}
	if strings.Join(res.Plan.Targets, ",") != "dev-libs/core,sys-libs/term" {
		t.Errorf("Plan.Targets = %v", res.Plan.Targets)
	}
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		code   errors.Code
	}{
		{"unknown package", "app-misc/missing", errors.ErrCodeAllMasked},
		{"unparseable target", "|| ( app-misc/editor", errors.ErrCodeInvalidSpec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRunner(t, nil)
			_, err := r.Execute(context.Background(), Options{Targets: []string{tt.target}})
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestGraph_Normalize(t *testing.T) {
	r := testRunner(t, nil)
	opts := Options{Targets: []string{"app-misc/editor"}, Formats: []string{"dot"}, Normalize: true}
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !bytes.Contains(res.Artifacts["dot"], []byte("rank=same")) {
		t.Errorf("normalized dot lacks ranks:\n%s", res.Artifacts["dot"])
	}
}
