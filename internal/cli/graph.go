package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deplist/pkg/pipeline"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags     resolveFlags
		formats   string
		output    string
		detailed  bool
		normalize bool
	)

	cmd := &cobra.Command{
		Use:   "graph <target>...",
		Short: "Render the dependency graph of a merge list",
		Long: `Resolve targets and render the graph of the resulting merge list.

Edges run from each entry to the entries it depends on. Normalizing breaks
cycles, drops transitive edges and ranks entries into rows.`,
		Example: `  deplist graph app-editors/vim
  deplist graph @world -f svg,dot -o world
  deplist graph dev-lang/python -f dot -o -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureTargets(args); err != nil {
				return err
			}
			fmts := parseFormats(formats)
			if err := pipeline.ValidateFormats(fmts); err != nil {
				return err
			}
			if output == "-" && len(fmts) != 1 {
				return fmt.Errorf("writing to stdout needs exactly one format, got %d", len(fmts))
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := pipeline.Options{
				Targets:   args,
				Options:   mergeOptions(cfg.Options, flags.options),
				Refresh:   flags.refresh,
				Formats:   fmts,
				Detailed:  detailed,
				Normalize: normalize,
			}
			result, err := c.runResolve(cmd.Context(), cfg, opts, flags.noCache)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := os.Stdout.Write(result.Artifacts[fmts[0]])
				return err
			}
			if output == "" {
				output = defaultGraphBase(args)
			}

			printSuccess("Rendered %d nodes, %d edges", result.Stats.NodeCount, result.Stats.EdgeCount)
			for _, f := range fmts {
				path := output + "." + f
				if err := os.WriteFile(path, result.Artifacts[f], 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				printFile(path)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatSVG, "output formats, comma separated (svg, dot, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path without extension, or - for stdout")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with kind and destination")
	cmd.Flags().BoolVar(&normalize, "normalize", true, "remove cycles and transitive edges, rank into rows")

	return cmd
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return parts
}

// defaultGraphBase derives an output name from the first target, e.g.
// "vim" for ">=app-editors/vim-9.0".
func defaultGraphBase(targets []string) string {
	name := strings.TrimLeft(targets[0], "<>=!~@")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return -1
	}, name)
	if name == "" {
		return appName
	}
	return name
}
