package simulation

import (
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
)

// Builder can be used to build a simulation.
type Builder struct {
	parallel       bool
	families       []Family
	recordResults  bool
	traceAccesses  bool
	outputFileName string
	monitorOn      bool
	monitorPort    int
	logger         logrus.FieldLogger
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		families: DefaultFamilies(),
		logger:   logrus.StandardLogger(),
	}
}

// WithParallelRuns makes the simulation replay the configurations
// concurrently.
func (b Builder) WithParallelRuns() Builder {
	b.parallel = true
	return b
}

// WithFamilies sets the families to replay, in report order.
func (b Builder) WithFamilies(families []Family) Builder {
	b.families = families
	return b
}

// WithResultRecording records every replay into a SQLite database.
func (b Builder) WithResultRecording() Builder {
	b.recordResults = true
	return b
}

// WithAccessTracing records the outcome of every access as well. It implies
// result recording.
func (b Builder) WithAccessTracing() Builder {
	b.recordResults = true
	b.traceAccesses = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithMonitoring serves the progress of the simulation over HTTP.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithLogger sets the logger that reports the runs.
func (b Builder) WithLogger(logger logrus.FieldLogger) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordResults && b.outputFileName != "" {
		panic("output file cannot be set when recording is disabled")
	}

	if len(b.families) == 0 {
		panic("simulation needs at least one family")
	}
}

// Build builds a simulation that replays t.
func (b Builder) Build(t trace.Trace) *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:       xid.New().String(),
		model:    cache.NewModel(t),
		families: b.families,
		parallel: b.parallel,
		logger:   b.logger,
	}

	if b.recordResults {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "cachesim_" + s.id
		}

		s.dataRecorder = datarecording.NewDataRecorder(outputPath)
		s.tracer = trace.NewDBTracer(s.dataRecorder)

		if !b.traceAccesses {
			s.tracer.SkipAccesses()
		}

		s.model.AcceptHook(s.tracer)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}

		s.model.AcceptHook(s.monitor)
		s.monitor.StartServer()
	}

	return s
}
