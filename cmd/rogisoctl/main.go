// Command rogisoctl is a diagnostic harness around the isolate/collector
// library: it constructs an isolate, drives one of a fixed set of scenarios
// or a synthetic allocation workload against it, and reports the resulting
// statistics as structured log lines. It is not a language front-end; it
// never parses or executes a script.
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/dragonation/rogiso-go/isolate"
)

var logLevel string

func newLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "rogisoctl",
		Level: hclog.LevelFromString(logLevel),
	})
}

func newIsolate() (*isolate.Isolate, error) {
	return isolate.New(isolate.IsolateOptions{Logger: newLogger()})
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "rogisoctl",
		Short: "Exercise and inspect a rogiso-go isolate outside of tests",
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newScenarioCmd())
	rootCmd.AddCommand(newBenchCmd())
	rootCmd.AddCommand(newStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
