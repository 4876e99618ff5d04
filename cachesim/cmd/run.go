package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/report"
	"github.com/sarchlab/cachesim/simulation"
)

func newRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <trace> [output]",
		Short: "Replay a trace against every policy family and write the report.",
		Long: "`run <trace> [output]` replays the trace against every " +
			"configuration of the selected families and writes one report " +
			"line per family to the output file, or to stdout.",
		Args: cobra.RangeArgs(1, 2),
		RunE: runReport,
	}

	flags := runCmd.Flags()
	flags.String("families", "",
		"Comma-separated policies to report, in order. Defaults to all.")
	flags.Bool("parallel", false, "Replay the configurations concurrently.")
	flags.Bool("record", false, "Record the replays into a SQLite database.")
	flags.String("db", "",
		"Name of the SQLite database, without extension. Implies --record. "+
			"Defaults to $"+envDB+".")
	flags.Bool("trace-accesses", false,
		"Record the outcome of every access. Implies --record.")
	flags.Bool("monitor", false, "Serve the progress of the replays over HTTP.")
	flags.Int("monitor-port", 0,
		"Port of the monitoring server. Implies --monitor. "+
			"Defaults to $"+envMonitorPort+".")
	flags.Bool("open-monitor", false,
		"Open the monitoring page in a browser. Implies --monitor.")
	flags.Bool("summary", false, "Print hit-rate statistics to stderr.")

	return runCmd
}

func runReport(cmd *cobra.Command, args []string) error {
	t, err := loadTrace(cmd, args[0])
	if err != nil {
		return err
	}

	builder, err := buildSimulation(cmd)
	if err != nil {
		return err
	}

	s := builder.Build(t)
	defer s.Terminate()

	openMonitor, _ := cmd.Flags().GetBool("open-monitor")
	if openMonitor {
		if err := s.GetMonitor().OpenInBrowser(); err != nil {
			logrus.WithError(err).Warn("cannot open the monitor")
		}
	}

	results, err := s.Run()
	if err != nil {
		return err
	}

	if len(args) == 2 {
		err = writeReportFile(args[1], results)
	} else {
		err = writeReport(cmd.OutOrStdout(), results)
	}

	if err != nil {
		return err
	}

	summary, _ := cmd.Flags().GetBool("summary")
	if summary {
		return writeSummary(cmd.ErrOrStderr(), results)
	}

	return nil
}

func loadTrace(cmd *cobra.Command, name string) (trace.Trace, error) {
	loader := trace.NewLoader(stringSetting(cmd, "trace-dir", envTraceDir))

	t, err := loader.Load(name)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"trace":  loader.Resolve(name),
		"loads":  t.Loads(),
		"stores": t.Stores(),
	}).Info("trace loaded")

	return t, nil
}

func buildSimulation(cmd *cobra.Command) (simulation.Builder, error) {
	flags := cmd.Flags()
	b := simulation.MakeBuilder()

	familyList, _ := flags.GetString("families")
	if familyList != "" {
		families, err := simulation.ParseFamilies(familyList)
		if err != nil {
			return b, err
		}

		b = b.WithFamilies(families)
	}

	if parallel, _ := flags.GetBool("parallel"); parallel {
		b = b.WithParallelRuns()
	}

	record, _ := flags.GetBool("record")
	db := stringSetting(cmd, "db", envDB)
	if record || db != "" {
		b = b.WithResultRecording().WithOutputFileName(db)
	}

	if traceAccesses, _ := flags.GetBool("trace-accesses"); traceAccesses {
		b = b.WithAccessTracing().WithOutputFileName(db)
	}

	port, err := intSetting(cmd, "monitor-port", envMonitorPort)
	if err != nil {
		return b, fmt.Errorf("invalid monitor port: %w", err)
	}

	monitor, _ := flags.GetBool("monitor")
	openMonitor, _ := flags.GetBool("open-monitor")
	if monitor || openMonitor || port != 0 {
		b = b.WithMonitoring().WithMonitorPort(port)
	}

	return b, nil
}

func writeReportFile(path string, results []simulation.FamilyResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	return writeAndClose(f, results)
}

// writeAndClose reports a failed close, which may be the only sign that the
// report did not reach the disk.
func writeAndClose(wc io.WriteCloser, results []simulation.FamilyResult) error {
	if err := writeReport(wc, results); err != nil {
		wc.Close()
		return err
	}

	return wc.Close()
}

func writeReport(w io.Writer, results []simulation.FamilyResult) error {
	families := make([][]cache.Result, 0, len(results))
	for _, fr := range results {
		families = append(families, fr.Results)
	}

	return report.NewWriter(w).WriteReport(families)
}

func writeSummary(w io.Writer, results []simulation.FamilyResult) error {
	summaries := make([]report.Summary, 0, len(results))
	for _, fr := range results {
		if s, ok := report.Summarize(fr.Results); ok {
			summaries = append(summaries, s)
		}
	}

	return report.WriteSummary(w, summaries)
}
