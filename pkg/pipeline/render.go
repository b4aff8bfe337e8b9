package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/deplist/pkg/dag"
	planio "github.com/matzehuels/deplist/pkg/io"
	"github.com/matzehuels/deplist/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, g *dag.DAG, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	var dot string
	dotOpts := nodelink.Options{Detailed: opts.Detailed, RankRows: opts.Normalize}
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot = nodelink.ToDOT(g, dotOpts)
			}
			if format == FormatDOT {
				data = []byte(dot)
			} else {
				data, err = nodelink.RenderSVG(ctx, dot)
			}
		case FormatJSON:
			var buf bytes.Buffer
			err = planio.WriteJSON(g, &buf)
			data = buf.Bytes()
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
