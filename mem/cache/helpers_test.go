package cache

import "github.com/sarchlab/cachesim/mem/trace"

func loads(addresses ...uint64) trace.Trace {
	t := make(trace.Trace, 0, len(addresses))
	for _, a := range addresses {
		t = append(t, trace.AccessRecord{Kind: trace.Load, Address: a})
	}

	return t
}

func load(a uint64) trace.AccessRecord {
	return trace.AccessRecord{Kind: trace.Load, Address: a}
}

func store(a uint64) trace.AccessRecord {
	return trace.AccessRecord{Kind: trace.Store, Address: a}
}

func repeat(t trace.Trace, times int) trace.Trace {
	out := make(trace.Trace, 0, len(t)*times)
	for i := 0; i < times; i++ {
		out = append(out, t...)
	}

	return out
}

// randomTrace produces a deterministic mix of loads and stores with some
// locality, so that every policy sees both hits and misses.
func randomTrace(n int, seed uint64) trace.Trace {
	t := make(trace.Trace, 0, n)
	state := seed

	for i := 0; i < n; i++ {
		state = state*6364136223846793005 + 1442695040888963407

		line := (state >> 33) % 2048
		if (state>>20)%4 != 0 {
			line %= 256
		}

		kind := trace.Load
		if (state>>12)%3 == 0 {
			kind = trace.Store
		}

		t = append(t, trace.AccessRecord{
			Kind:    kind,
			Address: line*LineSize + (state>>8)%LineSize,
		})
	}

	return t
}
