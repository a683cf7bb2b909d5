package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/panjf2000/ants/v2"

	"github.com/razeghi71/xmlq/ast"
	"github.com/razeghi71/xmlq/table"
)

// ShouldUseThreading reports whether fileCount documents are worth
// spreading over several workers.
func ShouldUseThreading(fileCount, threshold int) bool {
	return fileCount >= threshold
}

// WorkerCount returns the number of workers for the given parallelism hint:
// fallback when the hint is unknown (<= 0), capped at max.
func WorkerCount(parallelism, max, fallback int) int {
	n := parallelism
	if n <= 0 {
		n = fallback
	}
	if max > 0 && n > max {
		n = max
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Plan is the scheduling decision for one execution.
type Plan struct {
	Concurrent bool
	Workers    int
}

func (p Plan) label() string {
	if p.Concurrent {
		return "concurrent"
	}
	return "sequential"
}

// Plan decides how fileCount documents will be executed.
func (e *Engine) Plan(fileCount int) Plan {
	if !ShouldUseThreading(fileCount, e.cfg.ParallelThreshold) {
		return Plan{Workers: 1}
	}
	return Plan{
		Concurrent: true,
		Workers:    WorkerCount(e.parallelism, e.cfg.MaxWorkers, e.cfg.DefaultWorkers),
	}
}

// runSequential processes documents in order, reporting progress after each.
func (e *Engine) runSequential(logger log.Logger, q *ast.Query, files []string, progress ProgressFunc) []table.Row {
	var rows []table.Row
	for i, path := range files {
		res := e.processDocument(q, path)
		e.record(logger, res)
		rows = append(rows, res.rows...)
		if progress != nil {
			progress(i+1, len(files), 1)
		}
	}
	return rows
}

// runConcurrent splits files over workers by stride: worker k takes
// indices k, k+workers, k+2*workers and so on. Workers send one result per
// document to this goroutine, which alone merges rows, counts completions
// and drives progress. Row order across documents follows completion order.
func (e *Engine) runConcurrent(logger log.Logger, q *ast.Query, files []string, workers int, progress ProgressFunc) []table.Row {
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v any) {
		level.Error(logger).Log("msg", "worker panic", "panic", fmt.Sprint(v))
	}))
	if err != nil {
		level.Warn(logger).Log("msg", "cannot create worker pool, running sequentially", "err", err)
		return e.runSequential(logger, q, files, progress)
	}
	defer pool.Release()

	results := make(chan docResult, workers)
	var wg sync.WaitGroup
	for k := 0; k < workers; k++ {
		wg.Add(1)
		task := e.stride(q, files, k, workers, results, &wg)
		if err := pool.Submit(task); err != nil {
			level.Warn(logger).Log("msg", "worker pool rejected task, starting goroutine", "worker", k, "err", err)
			go task()
		}
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	total := len(files)
	var tick <-chan time.Time
	if progress != nil {
		ticker := time.NewTicker(e.cfg.ProgressInterval)
		defer ticker.Stop()
		tick = ticker.C
		progress(0, total, workers)
	}

	var rows []table.Row
	completed := 0
	for done := false; !done; {
		select {
		case res, ok := <-results:
			if !ok {
				done = true
				continue
			}
			completed++
			e.record(logger, res)
			rows = append(rows, res.rows...)
		case <-tick:
			progress(completed, total, workers)
		}
	}

	if progress != nil {
		progress(total, total, workers)
	}
	return rows
}

// stride returns the task run by worker k.
func (e *Engine) stride(q *ast.Query, files []string, k, workers int, results chan<- docResult, wg *sync.WaitGroup) func() {
	return func() {
		defer wg.Done()
		for i := k; i < len(files); i += workers {
			results <- e.processDocument(q, files[i])
		}
	}
}
