// Package cmd provides the command-line interface of cachesim.
package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/mem/trace"
)

// NewRootCommand creates the base command with all its subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cachesim",
		Short: "cachesim replays memory traces against cache organizations.",
		Long: `cachesim replays a trace of loads and stores against ` +
			`direct-mapped, set-associative, fully-associative, ` +
			`no-write-allocate, prefetching and LFU caches, and reports ` +
			`the number of hits of every configuration.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return configureLogging(cmd)
		},
	}

	rootCmd.PersistentFlags().String("trace-dir", trace.DefaultDir,
		"Directory that bare trace names are resolved in. "+
			"Defaults to $"+envTraceDir+".")
	rootCmd.PersistentFlags().String("log-level", "warning",
		"Logging level: debug, info, warning or error. "+
			"Defaults to $"+envLogLevel+".")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newPolicyCommand())

	return rootCmd
}

func configureLogging(cmd *cobra.Command) error {
	level, err := logrus.ParseLevel(stringSetting(cmd, "log-level", envLogLevel))
	if err != nil {
		return err
	}

	logrus.SetLevel(level)
	logrus.SetOutput(cmd.ErrOrStderr())

	return nil
}

// Execute loads the optional .env file and runs the command line.
func Execute() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Warn("cannot load .env")
	}

	err = NewRootCommand().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
