package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/peterh/liner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const historyFileName = ".xmlq_history"

func newReplCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Run queries interactively",
		Long:  "Reads one query per line until EOF or exit. History is kept in ~/" + historyFileName + ".",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			r, err := newRunner(opts, reg, stdout, stderr)
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				srv := serveMetrics(r.logger, reg, metricsAddr)
				defer srv.Close()
			}
			return r.repl()
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the REPL runs")
	return cmd
}

func (r *runner) repl() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	history := historyPath()
	if f, err := os.Open(history); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer r.saveHistory(line, history)

	for {
		input, err := line.Prompt("xmlq> ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(r.stdout)
				return nil
			}
			return fmt.Errorf("read query: %w", err)
		}

		input = strings.TrimSpace(input)
		switch strings.ToLower(input) {
		case "":
			continue
		case "exit", "quit", `\q`:
			return nil
		}
		line.AppendHistory(input)

		if err := r.run(input); err != nil {
			fmt.Fprintf(r.stderr, "error: %v\n", err)
		}
	}
}

func (r *runner) saveHistory(line *liner.State, path string) {
	f, err := os.Create(path)
	if err != nil {
		level.Debug(r.logger).Log("msg", "cannot save history", "path", path, "err", err)
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		level.Debug(r.logger).Log("msg", "cannot save history", "path", path, "err", err)
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, historyFileName)
}

func serveMetrics(logger log.Logger, reg *prometheus.Registry, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		level.Info(logger).Log("msg", "starting metrics server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(logger).Log("msg", "metrics server failed", "err", err)
		}
	}()
	return srv
}
