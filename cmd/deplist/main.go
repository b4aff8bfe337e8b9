package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deplist/internal/cli"
	dlerrors "github.com/matzehuels/deplist/pkg/errors"
)

// Exit codes.
const (
	exitError       = 1
	exitUnresolved  = 2   // the targets cannot be resolved
	exitInterrupted = 130 // shell convention for SIGINT
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := run(ctx)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		os.Exit(exitInterrupted)
	}
	code := dlerrors.GetCode(err)
	if code == "" {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitError)
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", code, dlerrors.UserMessage(err))
	os.Exit(exitCode(code))
}

func exitCode(code dlerrors.Code) int {
	switch code {
	case dlerrors.ErrCodeAllMasked, dlerrors.ErrCodeUseRequirementsNotMet,
		dlerrors.ErrCodeCircularDependency, dlerrors.ErrCodeBlockConflict,
		dlerrors.ErrCodeDowngradeNotAllowed, dlerrors.ErrCodeSlotConflict:
		return exitUnresolved
	}
	return exitError
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// The log level is only known once flags are parsed.
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
