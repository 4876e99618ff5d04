package trace

import "github.com/sarchlab/cachesim/sim"

// Hook positions invoked by cache models while replaying a trace.
var (
	HookPosReplayStart = &sim.HookPos{Name: "ReplayStart"}
	HookPosAccess      = &sim.HookPos{Name: "Access"}
	HookPosReplayEnd   = &sim.HookPos{Name: "ReplayEnd"}
)

// ReplayStart is the hook item passed when a policy starts replaying a trace.
type ReplayStart struct {
	RunID  string
	Policy string
	Param  int
	Total  int
}

// AccessOutcome is the hook item passed for every lookup a policy performs.
// Prefetch lookups are reported with Prefetch set. They never count as hits
// of the replay.
type AccessOutcome struct {
	RunID     string
	Step      int
	Record    AccessRecord
	SetID     int
	Tag       uint64
	Hit       bool
	Prefetch  bool
	Allocated bool
}

// ReplayEnd is the hook item passed when a policy has consumed the whole
// trace.
type ReplayEnd struct {
	RunID    string
	Hits     int
	Accesses int
}
