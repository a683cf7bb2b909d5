package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

type options struct {
	configFile       string
	progress         bool
	stats            bool
	noAmbiguityCheck bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "xmlq '<query>'",
		Short: "Query directories of XML, JSON, Avro and Parquet documents",
		Example: `  xmlq "SELECT FILE_NAME, id FROM ./orders WHERE status = 'active'"
  xmlq "SELECT id, total FROM ./orders FOR o IN order WHERE total > 100 ORDER BY total DESC LIMIT 10"
  xmlq repl`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(opts, nil, stdout, stderr)
			if err != nil {
				return err
			}
			return r.run(args[0])
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")
	flags.BoolVar(&opts.progress, "progress", false, "report progress on stderr")
	flags.BoolVar(&opts.stats, "stats", false, "print execution statistics on stderr")
	flags.BoolVar(&opts.noAmbiguityCheck, "no-ambiguity-check", false, "skip the ambiguous field check")

	root.AddCommand(newReplCmd(opts, stdout, stderr))
	return root
}
