package trace

import (
	"log"
	"strconv"
	"sync"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/sim"
)

// replayEntry represents a policy replay in the database
type replayEntry struct {
	ID       string `json:"id"`
	Policy   string `json:"policy"`
	Param    int    `json:"param"`
	Total    int    `json:"total"`
	Hits     int    `json:"hits"`
	Accesses int    `json:"accesses"`
}

// accessEntry represents one lookup of a replay in the database. Addresses
// and tags are hexadecimal strings since SQLite integers are signed.
type accessEntry struct {
	RunID     string `json:"run_id"`
	Step      int    `json:"step"`
	Kind      string `json:"kind"`
	Address   string `json:"address"`
	SetID     int    `json:"set_id"`
	Tag       string `json:"tag"`
	Hit       bool   `json:"hit"`
	Prefetch  bool   `json:"prefetch"`
	Allocated bool   `json:"allocated"`
}

// A DBTracer is a hook that records replays and the outcome of every access
// into a database using the data recorder.
type DBTracer struct {
	sync.Mutex
	dataRecorder   datarecording.DataRecorder
	pendingReplays map[string]*replayEntry
	skipAccesses   bool
}

// NewDBTracer creates a new database-based tracer.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		dataRecorder:   dataRecorder,
		pendingReplays: make(map[string]*replayEntry),
	}

	t.dataRecorder.CreateTable("cache_replays", replayEntry{})
	t.dataRecorder.CreateTable("cache_accesses", accessEntry{})

	return t
}

// SkipAccesses makes the tracer record only the replays, not the individual
// accesses.
func (t *DBTracer) SkipAccesses() *DBTracer {
	t.skipAccesses = true
	return t
}

// Func records the hook item.
func (t *DBTracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosReplayStart:
		t.startReplay(ctx.Item.(ReplayStart))
	case HookPosAccess:
		if !t.skipAccesses {
			t.recordAccess(ctx.Item.(AccessOutcome))
		}
	case HookPosReplayEnd:
		t.endReplay(ctx.Item.(ReplayEnd))
	}
}

func (t *DBTracer) startReplay(item ReplayStart) {
	t.Lock()
	defer t.Unlock()

	if _, found := t.pendingReplays[item.RunID]; found {
		log.Panicf("replay %s started twice", item.RunID)
	}

	t.pendingReplays[item.RunID] = &replayEntry{
		ID:     item.RunID,
		Policy: item.Policy,
		Param:  item.Param,
		Total:  item.Total,
	}
}

func (t *DBTracer) recordAccess(item AccessOutcome) {
	entry := accessEntry{
		RunID:     item.RunID,
		Step:      item.Step,
		Kind:      item.Record.Kind.String(),
		Address:   strconv.FormatUint(item.Record.Address, 16),
		SetID:     item.SetID,
		Tag:       strconv.FormatUint(item.Tag, 16),
		Hit:       item.Hit,
		Prefetch:  item.Prefetch,
		Allocated: item.Allocated,
	}

	t.dataRecorder.InsertData("cache_accesses", entry)
}

func (t *DBTracer) endReplay(item ReplayEnd) {
	t.Lock()
	entry, found := t.pendingReplays[item.RunID]
	delete(t.pendingReplays, item.RunID)
	t.Unlock()

	if !found {
		return
	}

	entry.Hits = item.Hits
	entry.Accesses = item.Accesses
	t.dataRecorder.InsertData("cache_replays", *entry)
}
