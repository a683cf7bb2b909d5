package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/razeghi71/xmlq/ast"
	"github.com/razeghi71/xmlq/config"
	"github.com/razeghi71/xmlq/engine"
	"github.com/razeghi71/xmlq/parser"
	"github.com/razeghi71/xmlq/table"
)

// runner executes queries for both the one-shot command and the REPL.
type runner struct {
	opts   *options
	engine *engine.Engine
	logger log.Logger
	stdout io.Writer
	stderr io.Writer
}

// newRunner loads the configuration and builds the engine. A nil reg keeps
// metrics on a private registry.
func newRunner(opts *options, reg prometheus.Registerer, stdout, stderr io.Writer) (*runner, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Logger(stderr)
	if err != nil {
		return nil, err
	}

	engineOpts := []engine.Option{
		engine.WithConfig(cfg.Engine()),
		engine.WithLogger(logger),
	}
	if reg != nil {
		engineOpts = append(engineOpts, engine.WithMetrics(engine.NewMetrics(reg)))
	}
	if cfg.Parallelism > 0 {
		engineOpts = append(engineOpts, engine.WithParallelism(cfg.Parallelism))
	}

	return &runner{
		opts:   opts,
		engine: engine.New(engineOpts...),
		logger: logger,
		stdout: stdout,
		stderr: stderr,
	}, nil
}

func (r *runner) run(query string) error {
	q, err := parser.Parse(query)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	if !r.opts.noAmbiguityCheck {
		for _, field := range r.engine.DetectAmbiguous(q) {
			fmt.Fprintf(r.stderr, "warning: %s matches more than one element, the first match is used\n", field)
		}
	}

	var progress engine.ProgressFunc
	if r.opts.progress {
		progress = r.reportProgress
	}
	var stats engine.ExecutionStats
	rows := r.engine.ExecuteWithProgress(q, progress, &stats)
	if r.opts.progress && stats.TotalFiles > 0 {
		fmt.Fprintln(r.stderr)
	}

	t := table.FromRows(rows)
	if len(t.Columns) == 0 {
		t.Columns = selectLabels(q)
	}
	printTable(r.stdout, t)

	if r.opts.stats {
		fmt.Fprintf(r.stderr, "run=%s files=%d workers=%d concurrent=%t rows=%d elapsed=%.3fs\n",
			stats.RunID, stats.TotalFiles, stats.Workers, stats.Concurrent, len(rows), stats.Seconds())
	}
	return nil
}

func (r *runner) reportProgress(completed, total, workers int) {
	fmt.Fprintf(r.stderr, "\rprocessed %d/%d documents (%d workers)", completed, total, workers)
}

func selectLabels(q *ast.Query) []string {
	labels := make([]string, len(q.Select))
	for i, f := range q.Select {
		labels[i] = f.Label()
	}
	return labels
}

func printTable(w io.Writer, t *table.Table) {
	if len(t.Columns) == 0 {
		return
	}

	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = len(col)
	}
	for _, row := range t.Rows {
		for j, v := range row {
			if len(v) > widths[j] {
				widths[j] = len(v)
			}
		}
	}

	headerParts := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headerParts[i] = padRight(col, widths[i])
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(headerParts, " | "), " "))

	sepParts := make([]string, len(t.Columns))
	for i := range t.Columns {
		sepParts[i] = strings.Repeat("-", widths[i])
	}
	fmt.Fprintln(w, strings.Join(sepParts, "-+-"))

	for _, row := range t.Rows {
		parts := make([]string, len(t.Columns))
		for i := range t.Columns {
			parts[i] = padRight(row[i], widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, " | "), " "))
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
