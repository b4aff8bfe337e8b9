// Package cli implements the deplist command-line interface.
//
// The CLI resolves targets against a repository file, prints or exports the
// resulting plan, renders its graph, browses archived plans and runs the
// HTTP API. It is built on cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - resolve: resolve targets into a merge list
//   - graph: render the dependency graph of a plan
//   - options: list resolver options and their defaults
//   - plans: list and show archived plans
//   - serve: run the HTTP API
//   - cache: inspect and prune the plan cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, including
// the resolver's own decisions.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w with short timestamps
// ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the duration of an operation when it completes.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Resolved 42 entries (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
