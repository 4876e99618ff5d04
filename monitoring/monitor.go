// Package monitoring serves the progress and the results of cache replays over
// HTTP while a simulation runs.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// RunRecord is a finished replay as listed by the monitor.
type RunRecord struct {
	ID       string        `json:"id"`
	Policy   string        `json:"policy"`
	Param    int           `json:"param"`
	Hits     int           `json:"hits"`
	Accesses int           `json:"accesses"`
	HitRate  float64       `json:"hit_rate"`
	Duration time.Duration `json:"duration"`
}

// Monitor is a hook that tracks the replays of cache models. It can turn
// itself into a web server that reports the replays in progress and the
// finished runs.
type Monitor struct {
	portNumber int
	server     *http.Server
	url        string

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
	activeRuns       map[string]*activeRun

	runsLock sync.Mutex
	runs     []RunRecord
}

type activeRun struct {
	bar    *ProgressBar
	policy string
	param  int
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		activeRuns: make(map[string]*activeRun),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// Func updates the progress bars and the run list from replay hook items.
func (m *Monitor) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case trace.HookPosReplayStart:
		item := ctx.Item.(trace.ReplayStart)
		m.startRun(item)
	case trace.HookPosAccess:
		item := ctx.Item.(trace.AccessOutcome)
		if !item.Prefetch {
			m.advanceRun(item.RunID)
		}
	case trace.HookPosReplayEnd:
		item := ctx.Item.(trace.ReplayEnd)
		m.finishRun(item)
	}
}

func (m *Monitor) startRun(item trace.ReplayStart) {
	bar := m.CreateProgressBar(
		fmt.Sprintf("%s %d", item.Policy, item.Param),
		uint64(item.Total),
	)

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bar.ID = item.RunID
	m.activeRuns[item.RunID] = &activeRun{
		bar:    bar,
		policy: item.Policy,
		param:  item.Param,
	}
}

func (m *Monitor) advanceRun(runID string) {
	m.progressBarsLock.Lock()
	run := m.activeRuns[runID]
	m.progressBarsLock.Unlock()

	if run != nil {
		run.bar.IncrementFinished(1)
	}
}

func (m *Monitor) finishRun(item trace.ReplayEnd) {
	m.progressBarsLock.Lock()
	run, found := m.activeRuns[item.RunID]
	delete(m.activeRuns, item.RunID)
	m.progressBarsLock.Unlock()

	if !found {
		log.Panicf("replay %s ended without starting", item.RunID)
	}

	m.CompleteProgressBar(run.bar)

	record := RunRecord{
		ID:       item.RunID,
		Policy:   run.policy,
		Param:    run.param,
		Hits:     item.Hits,
		Accesses: item.Accesses,
		Duration: time.Since(run.bar.StartTime),
	}

	if item.Accesses > 0 {
		record.HitRate = float64(item.Hits) / float64(item.Accesses)
	}

	m.runsLock.Lock()
	defer m.runsLock.Unlock()

	m.runs = append(m.runs, record)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Runs returns the finished runs in the order they finished.
func (m *Monitor) Runs() []RunRecord {
	m.runsLock.Lock()
	defer m.runsLock.Unlock()

	runs := make([]RunRecord, len(m.runs))
	copy(runs, m.runs)

	return runs
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/runs", m.listRuns)
	r.HandleFunc("/api/run/{id}", m.runDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server with a custom port if wanted.
func (m *Monitor) StartServer() {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	m.server = &http.Server{
		Handler:           m.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.url)

	go func() {
		err := m.server.Serve(listener)
		if err != http.ErrServerClosed {
			dieOnErr(err)
		}
	}()
}

// URL returns the address of the server. It is empty before StartServer.
func (m *Monitor) URL() string {
	return m.url
}

// OpenInBrowser opens the progress page in the default browser.
func (m *Monitor) OpenInBrowser() error {
	if m.url == "" {
		return fmt.Errorf("monitoring server is not running")
	}

	return browser.OpenURL(m.url + "/api/progress")
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer() {
	if m.server == nil {
		return
	}

	err := m.server.Close()
	dieOnErr(err)

	m.server = nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressBarStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.status())
	}
	m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(bars)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listRuns(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(m.Runs())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) runDetails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var run *RunRecord
	for _, record := range m.Runs() {
		if record.ID == id {
			record := record
			run = &record
		}
	}

	if run == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Run not found"))
		dieOnErr(err)

		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(run)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
