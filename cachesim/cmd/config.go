package cmd

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// Environment variables that provide the defaults of flags.
const (
	envTraceDir    = "CACHESIM_TRACE_DIR"
	envLogLevel    = "CACHESIM_LOG_LEVEL"
	envDB          = "CACHESIM_DB"
	envMonitorPort = "CACHESIM_MONITOR_PORT"
)

// stringSetting returns the flag value if it is set on the command line, the
// environment variable if that is set, or else the flag default.
func stringSetting(cmd *cobra.Command, flag, env string) string {
	value, _ := cmd.Flags().GetString(flag)
	if cmd.Flags().Changed(flag) {
		return value
	}

	if fromEnv, ok := os.LookupEnv(env); ok && fromEnv != "" {
		return fromEnv
	}

	return value
}

func intSetting(cmd *cobra.Command, flag, env string) (int, error) {
	value, _ := cmd.Flags().GetInt(flag)
	if cmd.Flags().Changed(flag) {
		return value, nil
	}

	if fromEnv, ok := os.LookupEnv(env); ok && fromEnv != "" {
		return strconv.Atoi(fromEnv)
	}

	return value, nil
}
