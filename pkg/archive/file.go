package archive

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/deplist/pkg/deplist"
	"github.com/matzehuels/deplist/pkg/errors"
	planio "github.com/matzehuels/deplist/pkg/io"
)

// FileArchive stores each plan as <dir>/<id>.json.
type FileArchive struct {
	dir string
}

// NewFileArchive creates an archive in dir, creating it if needed.
func NewFileArchive(dir string) (*FileArchive, error) {
	if err := errors.ValidatePath(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileArchive{dir: dir}, nil
}

func (a *FileArchive) Save(ctx context.Context, p *deplist.Plan) error {
	if err := validateID(p.ID); err != nil {
		return err
	}
	return planio.ExportPlan(p, a.path(p.ID))
}

func (a *FileArchive) Get(ctx context.Context, id string) (*deplist.Plan, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	p, err := planio.ImportPlan(a.path(id))
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return nil, notFound(id)
	}
	return p, err
}

// List reads every archived plan. Unreadable files are skipped.
func (a *FileArchive) List(ctx context.Context, limit int) ([]Summary, error) {
	files, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, err
	}
	var out []Summary
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, ok := strings.CutSuffix(f.Name(), ".json")
		if !ok || f.IsDir() || validateID(id) != nil {
			continue
		}
		p, err := planio.ImportPlan(filepath.Join(a.dir, f.Name()))
		if err != nil {
			continue
		}
		out = append(out, Summarize(p))
	}
	slices.SortFunc(out, func(x, y Summary) int {
		if c := y.CreatedAt.Compare(x.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *FileArchive) Close(context.Context) error { return nil }

func (a *FileArchive) path(id string) string {
	return filepath.Join(a.dir, id+".json")
}

var _ Archive = (*FileArchive)(nil)
