package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/deplist/pkg/deplist"
	"github.com/matzehuels/deplist/pkg/errors"
)

// Format is a plan encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a format name or file extension to a [Format].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported plan format %q", s)
}

// FormatOf returns the format for path's extension.
func FormatOf(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// WritePlan encodes p in format f and writes it to w.
func WritePlan(p *deplist.Plan, w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeUnsupported, "unsupported plan format %q", f)
}

// ReadPlan decodes a plan in format f from r. Entries with an unknown kind
// are rejected.
func ReadPlan(r io.Reader, f Format) (*deplist.Plan, error) {
	var p deplist.Plan
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&p); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&p); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported plan format %q", f)
	}
	for i, e := range p.Entries {
		if _, ok := deplist.ParseKind(e.Kind); !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "entry %d (%s): unknown kind %q", i, e.Package, e.Kind)
		}
		for _, t := range e.Tags {
			if _, ok := deplist.ParseTagKind(t.Kind); !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "entry %d (%s): unknown tag kind %q", i, e.Package, t.Kind)
			}
		}
	}
	return &p, nil
}

// ExportPlan writes p to path in the format named by its extension.
func ExportPlan(p *deplist.Plan, path string) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WritePlan(p, out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ImportPlan reads a plan file in the format named by its extension.
func ImportPlan(path string) (*deplist.Plan, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	in, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer in.Close()
	return ReadPlan(in, f)
}
