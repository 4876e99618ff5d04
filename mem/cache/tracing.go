package cache

import (
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/sim"
)

// A replay counts the hits of one policy run and reports the run to the
// hooks of the model.
type replay struct {
	model  *Model
	runID  string
	policy Policy
	param  int
	hooked bool
	hits   int
}

func (m *Model) startReplay(p Policy, param int) *replay {
	r := &replay{
		model:  m,
		runID:  sim.GetIDGenerator().Generate(),
		policy: p,
		param:  param,
		hooked: m.NumHooks() > 0,
	}

	if r.hooked {
		m.InvokeHook(sim.HookCtx{
			Domain: m,
			Pos:    trace.HookPosReplayStart,
			Item: trace.ReplayStart{
				RunID:  r.runID,
				Policy: p.String(),
				Param:  param,
				Total:  len(m.trace),
			},
		})
	}

	return r
}

func (r *replay) access(
	step int,
	record trace.AccessRecord,
	setID int,
	tag uint64,
	hit, allocated bool,
) {
	if hit {
		r.hits++
	}

	if !r.hooked {
		return
	}

	r.model.InvokeHook(sim.HookCtx{
		Domain: r.model,
		Pos:    trace.HookPosAccess,
		Item: trace.AccessOutcome{
			RunID:     r.runID,
			Step:      step,
			Record:    record,
			SetID:     setID,
			Tag:       tag,
			Hit:       hit,
			Allocated: allocated,
		},
	})
}

// prefetch reports a lookup of the next line. It never counts as a hit.
func (r *replay) prefetch(
	step int,
	record trace.AccessRecord,
	setID int,
	tag uint64,
	hit bool,
) {
	if !r.hooked {
		return
	}

	r.model.InvokeHook(sim.HookCtx{
		Domain: r.model,
		Pos:    trace.HookPosAccess,
		Item: trace.AccessOutcome{
			RunID:     r.runID,
			Step:      step,
			Record:    record,
			SetID:     setID,
			Tag:       tag,
			Hit:       hit,
			Prefetch:  true,
			Allocated: !hit,
		},
	})
}

func (r *replay) finish() Result {
	result := Result{
		RunID:    r.runID,
		Policy:   r.policy,
		Param:    r.param,
		Hits:     r.hits,
		Accesses: len(r.model.trace),
	}

	if r.hooked {
		r.model.InvokeHook(sim.HookCtx{
			Domain: r.model,
			Pos:    trace.HookPosReplayEnd,
			Item: trace.ReplayEnd{
				RunID:    r.runID,
				Hits:     result.Hits,
				Accesses: result.Accesses,
			},
		})
	}

	return result
}
