package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deplist/pkg/archive"
	"github.com/matzehuels/deplist/pkg/errors"
	planio "github.com/matzehuels/deplist/pkg/io"
)

// plansCommand creates the plan history command.
func (c *CLI) plansCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Browse archived plans",
	}

	cmd.AddCommand(c.plansListCommand())
	cmd.AddCommand(c.plansShowCommand())

	return cmd
}

func (c *CLI) plansListCommand() *cobra.Command {
	var (
		limit       int
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived plans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.openArchive(ctx)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			plans, err := a.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				printInfo("No archived plans")
				return nil
			}

			if !interactive {
				for _, p := range plans {
					status := StyleSuccess.Render(iconSuccess)
					if p.HasErrors {
						status = StyleError.Render(iconError)
					}
					fmt.Printf("%s %s  %s  %s\n", status, StyleValue.Render(p.ID),
						StyleDim.Render(fmt.Sprintf("%4d entries", p.Entries)), quoteArgs(p.Targets))
				}
				return nil
			}

			final, err := tea.NewProgram(NewPlanPickerModel(plans)).Run()
			if err != nil {
				return err
			}
			picked := final.(PlanPickerModel).Selected
			if picked == nil {
				return nil
			}
			p, err := a.Get(ctx, picked.ID)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(NewPlanBrowserModel(p), tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of plans")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a plan and browse it")
	return cmd
}

func (c *CLI) plansShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an archived plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.openArchive(ctx)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			p, err := a.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if format == "table" {
				fmt.Println(StyleTitle.Render(quoteArgs(p.Targets)) + "  " + StyleDim.Render(p.CreatedAt.Local().Format("2006-01-02 15:04:05")))
				fmt.Println(planTable(p).Render())
				printStats(os.Stdout, p, true)
				return nil
			}
			f, err := planio.ParseFormat(format)
			if err != nil {
				return err
			}
			return planio.WritePlan(p, os.Stdout, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json, yaml")
	return cmd
}

// openArchive opens the configured plan archive.
func (c *CLI) openArchive(ctx context.Context) (archive.Archive, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := archive.Open(ctx, cfg.Archive.MongoURI, cfg.Archive.Database, cfg.Archive.Dir)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no plan archive configured (set archive.dir or archive.mongo_uri)")
	}
	return a, nil
}
