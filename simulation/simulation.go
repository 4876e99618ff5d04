// Package simulation replays a trace against families of cache
// configurations and collects the results in report order.
package simulation

import (
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
)

// A Simulation replays one trace against a list of families.
type Simulation struct {
	id       string
	model    *cache.Model
	families []Family
	parallel bool
	logger   logrus.FieldLogger

	dataRecorder datarecording.DataRecorder
	tracer       *trace.DBTracer
	monitor      *monitoring.Monitor
}

// ID returns the simulation ID.
func (s *Simulation) ID() string {
	return s.id
}

// Model returns the cache model that replays the trace.
func (s *Simulation) Model() *cache.Model {
	return s.model
}

// Families returns the families in report order.
func (s *Simulation) Families() []Family {
	return s.families
}

// GetDataRecorder returns the data recorder. It is nil unless results are
// recorded.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor. It is nil unless monitoring is on.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

type job struct {
	family, config int
}

// Run replays every configuration of every family. The results keep the
// order of the families and of their parameters, whether or not the runs are
// parallel. The first invalid configuration fails the whole simulation. Serial
// runs stop at that configuration; parallel runs report it once every worker
// is done.
func (s *Simulation) Run() ([]FamilyResult, error) {
	out := make([]FamilyResult, len(s.families))
	errs := make([][]error, len(s.families))

	var jobs []job
	for i, f := range s.families {
		out[i] = FamilyResult{
			Family:  f,
			Results: make([]cache.Result, len(f.Params)),
		}
		errs[i] = make([]error, len(f.Params))

		for j := range f.Params {
			jobs = append(jobs, job{family: i, config: j})
		}
	}

	s.logger.WithFields(logrus.Fields{
		"simulation": s.id,
		"accesses":   s.model.Len(),
		"configs":    len(jobs),
		"parallel":   s.parallel,
	}).Info("replaying trace")

	runJob := func(j job) {
		f := s.families[j.family]
		out[j.family].Results[j.config], errs[j.family][j.config] =
			s.runOne(f.Policy, f.Params[j.config])
	}

	if s.parallel {
		s.runParallel(jobs, runJob)
	} else {
		for _, j := range jobs {
			runJob(j)

			if err := errs[j.family][j.config]; err != nil {
				return nil, err
			}
		}
	}

	for _, familyErrs := range errs {
		for _, err := range familyErrs {
			if err != nil {
				return nil, err
			}
		}
	}

	if s.dataRecorder != nil {
		s.dataRecorder.Flush()
	}

	return out, nil
}

func (s *Simulation) runParallel(jobs []job, runJob func(job)) {
	jobChan := make(chan job)

	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	if workers > len(jobs) {
		workers = len(jobs)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := range jobChan {
				runJob(j)
			}
		}()
	}

	for _, j := range jobs {
		jobChan <- j
	}
	close(jobChan)

	wg.Wait()
}

func (s *Simulation) runOne(p cache.Policy, param int) (cache.Result, error) {
	r, err := s.model.Run(p, param)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"policy": p,
			"param":  param,
		}).WithError(err).Error("invalid configuration")

		return cache.Result{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"run":      r.RunID,
		"policy":   p,
		"param":    r.Param,
		"hits":     r.Hits,
		"accesses": r.Accesses,
	}).Debug("replay finished")

	return r, nil
}

// Terminate flushes the recorded results and stops the monitor.
func (s *Simulation) Terminate() {
	if s.dataRecorder != nil {
		err := s.dataRecorder.Close()
		if err != nil {
			s.logger.WithError(err).Error("closing data recorder")
		}
	}

	if s.monitor != nil {
		s.monitor.StopServer()
	}
}
