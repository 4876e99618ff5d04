package simulation

import (
	"database/sql"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
)

func sampleTrace() trace.Trace {
	var t trace.Trace

	for i := 0; i < 3; i++ {
		for line := uint64(0); line < 700; line += 3 {
			kind := trace.Load
			if line%7 == 0 {
				kind = trace.Store
			}

			t = append(t, trace.AccessRecord{Kind: kind, Address: line * cache.LineSize})
		}
	}

	return t
}

func countRows(path, table string) int {
	db, err := sql.Open("sqlite3", path+".sqlite3")
	Expect(err).NotTo(HaveOccurred())
	defer db.Close()

	var n int
	err = db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	Expect(err).NotTo(HaveOccurred())

	return n
}

var _ = Describe("Families", func() {
	It("should list every policy in report order", func() {
		families := DefaultFamilies()

		Expect(families).To(HaveLen(8))
		Expect(families[0].Policy).To(Equal(cache.DirectMapped))
		Expect(families[0].Params).To(Equal([]int{32, 128, 512, 1024}))
		Expect(families[2].Params).To(Equal([]int{cache.Capacity}))
		Expect(families[3].Params).To(Equal([]int{512}))
		Expect(families[7].Policy).To(Equal(cache.LFU))
		Expect(families[7].Params).To(Equal([]int{2, 4, 8, 16}))
	})

	It("should select families by name", func() {
		families, err := ParseFamilies("lfu, dm,,hcr")

		Expect(err).NotTo(HaveOccurred())
		Expect(families).To(HaveLen(3))
		Expect(families[0].Policy).To(Equal(cache.LFU))
		Expect(families[1].Policy).To(Equal(cache.DirectMapped))
		Expect(families[2].Policy).To(Equal(cache.FullyAssociativeHCR))
	})

	It("should reject unknown names", func() {
		_, err := ParseFamilies("dm,mru")

		Expect(err).To(HaveOccurred())
	})

	It("should reject an empty list", func() {
		_, err := ParseFamilies(" , ")

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Simulation", func() {
	var (
		logger  *logrus.Logger
		logHook *logtest.Hook
		t       trace.Trace
	)

	BeforeEach(func() {
		logger, logHook = logtest.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)
		t = sampleTrace()
	})

	It("should replay every configuration in report order", func() {
		s := MakeBuilder().WithLogger(logger).Build(t)
		defer s.Terminate()

		results, err := s.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(8))

		model := cache.NewModel(t)
		for _, fr := range results {
			Expect(fr.Results).To(HaveLen(len(fr.Family.Params)))

			for i, r := range fr.Results {
				expected, err := model.Run(fr.Family.Policy, fr.Family.Params[i])
				Expect(err).NotTo(HaveOccurred())

				Expect(r.Policy).To(Equal(fr.Family.Policy))
				Expect(r.Param).To(Equal(fr.Family.Params[i]))
				Expect(r.Hits).To(Equal(expected.Hits))
				Expect(r.Accesses).To(Equal(len(t)))
			}
		}

		Expect(logHook.AllEntries()).To(HaveLen(1 + 26))
		Expect(logHook.AllEntries()[0].Message).To(Equal("replaying trace"))
	})

	It("should give the same results in parallel", func() {
		serial, err := MakeBuilder().WithLogger(logger).Build(t).Run()
		Expect(err).NotTo(HaveOccurred())

		parallel, err := MakeBuilder().
			WithLogger(logger).
			WithParallelRuns().
			Build(t).
			Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(parallel).To(HaveLen(len(serial)))
		for i := range serial {
			Expect(parallel[i].Family).To(Equal(serial[i].Family))

			for j := range serial[i].Results {
				Expect(parallel[i].Results[j].Hits).
					To(Equal(serial[i].Results[j].Hits))
			}
		}
	})

	It("should fail on an invalid configuration", func() {
		s := MakeBuilder().
			WithLogger(logger).
			WithFamilies([]Family{
				{Policy: cache.DirectMapped, Params: []int{32}},
				{Policy: cache.SetAssociative, Params: []int{2, 3}},
			}).
			Build(t)

		results, err := s.Run()

		Expect(err).To(MatchError(cache.ErrInvalidConfiguration))
		Expect(results).To(BeNil())
		Expect(logHook.LastEntry().Level).To(Equal(logrus.ErrorLevel))
	})

	It("should stop at the first invalid configuration", func() {
		s := MakeBuilder().
			WithLogger(logger).
			WithFamilies([]Family{
				{Policy: cache.SetAssociative, Params: []int{3}},
				{Policy: cache.DirectMapped, Params: []int{32, 128}},
			}).
			Build(t)

		_, err := s.Run()

		Expect(err).To(MatchError(cache.ErrInvalidConfiguration))
		for _, entry := range logHook.AllEntries() {
			Expect(entry.Message).NotTo(Equal("replay finished"))
		}
	})

	It("should panic when the monitor port is set without monitoring", func() {
		Expect(func() {
			MakeBuilder().WithMonitorPort(8080).Build(t)
		}).To(Panic())
	})

	It("should panic without families", func() {
		Expect(func() {
			MakeBuilder().WithFamilies(nil).Build(t)
		}).To(Panic())
	})

	It("should record the replays", func() {
		path := filepath.Join(GinkgoT().TempDir(), "results")

		s := MakeBuilder().
			WithLogger(logger).
			WithResultRecording().
			WithOutputFileName(path).
			Build(t)

		_, err := s.Run()
		Expect(err).NotTo(HaveOccurred())
		s.Terminate()

		Expect(countRows(path, "cache_replays")).To(Equal(26))
		Expect(countRows(path, "cache_accesses")).To(BeZero())
	})

	It("should record every access when tracing", func() {
		path := filepath.Join(GinkgoT().TempDir(), "accesses")

		s := MakeBuilder().
			WithLogger(logger).
			WithFamilies([]Family{{Policy: cache.DirectMapped, Params: []int{32}}}).
			WithAccessTracing().
			WithOutputFileName(path).
			Build(t)

		_, err := s.Run()
		Expect(err).NotTo(HaveOccurred())
		s.Terminate()

		Expect(countRows(path, "cache_replays")).To(Equal(1))
		Expect(countRows(path, "cache_accesses")).To(Equal(len(t)))
	})

	It("should trace accesses to addresses with the top bit set", func() {
		path := filepath.Join(GinkgoT().TempDir(), "high")

		s := MakeBuilder().
			WithLogger(logger).
			WithFamilies([]Family{{Policy: cache.DirectMapped, Params: []int{32}}}).
			WithAccessTracing().
			WithOutputFileName(path).
			Build(trace.Trace{{Kind: trace.Load, Address: 0xffff800000001000}})

		_, err := s.Run()
		Expect(err).NotTo(HaveOccurred())
		s.Terminate()

		db, err := sql.Open("sqlite3", path+".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		var address string
		err = db.QueryRow("SELECT Address FROM cache_accesses").Scan(&address)
		Expect(err).NotTo(HaveOccurred())
		Expect(address).To(Equal("ffff800000001000"))
	})

	It("should report the runs to the monitor", func() {
		s := MakeBuilder().
			WithLogger(logger).
			WithFamilies([]Family{{Policy: cache.LFU, Params: []int{2, 4}}}).
			WithMonitoring().
			Build(t)
		defer s.Terminate()

		_, err := s.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(s.GetMonitor().URL()).NotTo(BeEmpty())
		Expect(s.GetMonitor().Runs()).To(HaveLen(2))
	})
})
