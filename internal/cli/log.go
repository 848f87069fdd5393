// Package cli implements the railgen command-line interface.
//
// Every command reads one network document, given as a file path or an
// http(s) URL, and either renders it (render, dump, dot, nodes, export),
// inspects it (check, browse), serves it (serve) or stores it (publish).
// The CLI is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - render: HTML listing through the built-in or a custom template
//   - dump: plain-text listing of lines and stations
//   - check: load and validate only
//   - dot: Graphviz diagram as DOT, SVG, PDF or PNG
//   - nodes: station neighbour map as JSON or JavaScript
//   - export: GeoJSON, SQLite or snapshot JSON
//   - browse: interactive terminal browser
//   - serve: HTTP API
//   - publish, snapshots: MongoDB snapshot history
//   - cache: manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps that writes to
// w and filters below level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
// It is not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond, e.g.
// "Rendered metro.html (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
