package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how far a replay has gone through its trace.
type ProgressBar struct {
	sync.Mutex
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// progressBarStatus is a copy of a bar that can be encoded while the bar keeps
// advancing.
type progressBarStatus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

func (b *ProgressBar) status() progressBarStatus {
	b.Lock()
	defer b.Unlock()

	return progressBarStatus{
		ID:        b.ID,
		Name:      b.Name,
		StartTime: b.StartTime,
		Total:     b.Total,
		Finished:  b.Finished,
	}
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// Fraction returns the finished share of the total.
func (b *ProgressBar) Fraction() float64 {
	b.Lock()
	defer b.Unlock()

	if b.Total == 0 {
		return 1
	}

	return float64(b.Finished) / float64(b.Total)
}
