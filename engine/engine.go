package engine

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/razeghi71/xmlq/ast"
	"github.com/razeghi71/xmlq/document"
	"github.com/razeghi71/xmlq/loader"
	"github.com/razeghi71/xmlq/table"
)

// LoadFunc turns a file path into a document tree.
type LoadFunc func(path string) (*document.Node, error)

// ResolveFunc expands a FROM path into the documents to query.
type ResolveFunc func(path string) ([]string, error)

// ProgressFunc receives the number of completed documents, the total and
// the number of workers.
type ProgressFunc func(completed, total, workers int)

// Config tunes the scheduler.
type Config struct {
	ParallelThreshold int           // minimum document count for concurrent execution
	MaxWorkers        int           // upper bound on workers
	DefaultWorkers    int           // workers when parallelism is unknown
	ProgressInterval  time.Duration // cadence of progress callbacks in concurrent mode
}

// DefaultConfig returns the default scheduler settings.
func DefaultConfig() Config {
	return Config{
		ParallelThreshold: 5,
		MaxWorkers:        16,
		DefaultWorkers:    4,
		ProgressInterval:  time.Second,
	}
}

// Engine executes queries over document sets. It holds no per-query state
// and may be shared between goroutines.
type Engine struct {
	cfg         Config
	load        LoadFunc
	resolve     ResolveFunc
	logger      log.Logger
	metrics     *Metrics
	parallelism int
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the scheduler settings.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the metrics sink. The default registers on a private registry.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLoader replaces loader.Load.
func WithLoader(load LoadFunc) Option {
	return func(e *Engine) {
		e.load = load
	}
}

// WithResolver replaces loader.Resolve.
func WithResolver(resolve ResolveFunc) Option {
	return func(e *Engine) {
		e.resolve = resolve
	}
}

// WithParallelism sets the hardware parallelism hint. Zero or less means
// unknown, which selects Config.DefaultWorkers.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:         DefaultConfig(),
		load:        loader.Load,
		resolve:     loader.Resolve,
		logger:      log.NewNopLogger(),
		parallelism: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(prometheus.NewRegistry())
	}
	if e.cfg.ProgressInterval <= 0 {
		e.cfg.ProgressInterval = DefaultConfig().ProgressInterval
	}
	return e
}

// ExecutionStats describes one execution.
type ExecutionStats struct {
	RunID      string
	TotalFiles int
	Workers    int
	Concurrent bool
	Elapsed    time.Duration
}

// Seconds returns the elapsed wall-clock time in seconds.
func (s ExecutionStats) Seconds() float64 {
	return s.Elapsed.Seconds()
}

// Execute runs q and returns the final rows. Unreadable documents are
// logged and skipped. A FROM path with no documents behaves like documents
// that match nothing: no rows, or a single row for an aggregate query.
func (e *Engine) Execute(q *ast.Query) []table.Row {
	return e.ExecuteWithProgress(q, nil, nil)
}

// ExecuteWithProgress is Execute with optional progress reporting and
// statistics. Either argument may be nil.
func (e *Engine) ExecuteWithProgress(q *ast.Query, progress ProgressFunc, stats *ExecutionStats) []table.Row {
	start := time.Now()
	runID := uuid.NewString()
	logger := log.With(e.logger, "run", runID)

	files := e.resolveFiles(logger, q.FromPath)
	if len(files) == 0 {
		level.Warn(logger).Log("msg", "no documents found", "path", q.FromPath)
		if stats != nil {
			*stats = ExecutionStats{RunID: runID, Workers: 1, Elapsed: time.Since(start)}
		}
		return postProcess(q, nil)
	}

	plan := e.Plan(len(files))
	level.Debug(logger).Log("msg", "executing query", "path", q.FromPath, "files", len(files),
		"workers", plan.Workers, "concurrent", plan.Concurrent, "mode", ModeOf(q))

	var rows []table.Row
	if plan.Concurrent {
		rows = e.runConcurrent(logger, q, files, plan.Workers, progress)
	} else {
		rows = e.runSequential(logger, q, files, progress)
	}
	rows = postProcess(q, rows)

	elapsed := time.Since(start)
	e.metrics.QueryDuration.WithLabelValues(plan.label()).Observe(elapsed.Seconds())
	level.Debug(logger).Log("msg", "query finished", "rows", len(rows), "elapsed", elapsed)

	if stats != nil {
		*stats = ExecutionStats{
			RunID:      runID,
			TotalFiles: len(files),
			Workers:    plan.Workers,
			Concurrent: plan.Concurrent,
			Elapsed:    elapsed,
		}
	}
	return rows
}

// resolveFiles logs resolution failures and treats them as an empty set.
func (e *Engine) resolveFiles(logger log.Logger, path string) []string {
	files, err := e.resolve(path)
	if err != nil {
		level.Warn(logger).Log("msg", "cannot resolve documents", "path", path, "err", err)
		return nil
	}
	return files
}

// docResult is the outcome of one document. err is set when the document
// could not be loaded or traversed; rows is then empty.
type docResult struct {
	path string
	rows []table.Row
	err  error
}

// processDocument loads and executes one document. Panics raised while
// traversing are turned into an error for that document only.
func (e *Engine) processDocument(q *ast.Query, path string) (res docResult) {
	res.path = path
	defer func() {
		if r := recover(); r != nil {
			res.rows = nil
			res.err = fmt.Errorf("panic while processing document: %v", r)
		}
	}()

	doc, err := e.load(path)
	if err != nil {
		res.err = err
		return res
	}
	res.rows = ExecuteDocument(doc, q, filepath.Base(path))
	return res
}

// record accounts for a finished document.
func (e *Engine) record(logger log.Logger, res docResult) {
	e.metrics.DocumentsProcessed.Inc()
	if res.err != nil {
		e.metrics.DocumentErrors.Inc()
		level.Warn(logger).Log("msg", "error processing document", "path", res.path, "err", res.err)
		return
	}
	e.metrics.RowsEmitted.Add(float64(len(res.rows)))
}
