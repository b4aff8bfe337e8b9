package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deplist/pkg/config"
	"github.com/matzehuels/deplist/pkg/deplist"
	"github.com/matzehuels/deplist/pkg/errors"
	planio "github.com/matzehuels/deplist/pkg/io"
	"github.com/matzehuels/deplist/pkg/pipeline"
)

// resolveFlags are shared by commands that resolve targets.
type resolveFlags struct {
	options map[string]string
	refresh bool
	noCache bool
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringToStringVarP(&f.options, "option", "O", nil, "resolver option as name=value (repeatable, see 'deplist options')")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "resolve again even if a cached plan exists")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the plan cache and archive")
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		flags       resolveFlags
		output      string
		format      string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <target>...",
		Short: "Resolve targets into a merge list",
		Long: `Resolve package targets against the repository and print the merge list.

Targets are dependency specifications: package atoms, named sets, or any
expression the repository format accepts.`,
		Example: `  deplist resolve app-editors/vim
  deplist resolve '>=dev-lang/python-3.11' @world -O blocks=accumulate
  deplist resolve @system -o plan.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureTargets(args); err != nil {
				return err
			}
			f, err := planio.ParseFormat(format)
			if format != "table" && err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := pipeline.Options{
				Targets: args,
				Options: mergeOptions(cfg.Options, flags.options),
				Refresh: flags.refresh,
			}
			result, err := c.runResolve(cmd.Context(), cfg, opts, flags.noCache)
			if err != nil {
				return err
			}

			if output != "" {
				if err := planio.ExportPlan(result.Plan, output); err != nil {
					return err
				}
				printSuccess("Plan written")
				printFile(output)
			}

			switch {
			case interactive:
				_, err := tea.NewProgram(NewPlanBrowserModel(result.Plan), tea.WithAltScreen()).Run()
				return err
			case format == "table":
				printPlan(result)
			default:
				if err := planio.WritePlan(result.Plan, os.Stdout, f); err != nil {
					return err
				}
			}

			if result.Plan.HasErrors {
				printWarning("The merge list contains blocks or masked packages")
				printNextStep("Inspect", "deplist resolve -i "+quoteArgs(args))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the plan to a file (.json, .yaml)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "stdout format: table, json, yaml")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the plan interactively")

	return cmd
}

// runResolve runs the pipeline with a spinner and reports timing.
func (c *CLI) runResolve(ctx context.Context, cfg config.Config, opts pipeline.Options, noCache bool) (*pipeline.Result, error) {
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close(context.Background())

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %s...", quoteArgs(opts.Targets)))
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		if spinner.Cancelled() {
			return nil, ctx.Err()
		}
		return nil, err
	}
	prog.done(fmt.Sprintf("Resolved %d entries", len(result.Plan.Entries)))
	return result, nil
}

// printPlan prints the merge list as a table with a summary line.
func printPlan(result *pipeline.Result) {
	p := result.Plan
	if len(p.Entries) == 0 {
		printInfo("Nothing to merge")
		return
	}
	fmt.Println(planTable(p).Render())
	printStats(os.Stdout, p, result.CacheInfo.PlanHit)
}

// optionsCommand creates the options command listing resolver options.
func (c *CLI) optionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List resolver options and their effective values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := cfg.ResolverOptions()
			if err != nil {
				return err
			}
			values := opts.Map()
			defaults := deplist.DefaultOptions().Map()
			for _, name := range deplist.FieldNames() {
				line := fmt.Sprintf("%-22s %s", name, StyleValue.Render(values[name]))
				if values[name] != defaults[name] {
					line += StyleDim.Render(" (default " + defaults[name] + ")")
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

// ensureTargets rejects empty target strings early with a clear message.
func ensureTargets(args []string) error {
	for i, a := range args {
		if a == "" {
			return errors.New(errors.ErrCodeInvalidInput, "target %d is empty", i+1)
		}
	}
	return nil
}

// quoteArgs joins targets for display, quoting those a shell would split.
func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " <>=!()|&") {
			quoted[i] = "'" + a + "'"
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}
