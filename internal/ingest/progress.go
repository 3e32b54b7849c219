package ingest

import (
	"fmt"
	"sync/atomic"
)

// Progress counts applied events and says when to log.
type Progress struct {
	step  int64
	count int64
}

func NewProgress(step int64) (*Progress, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be greater than 0: %d", step)
	}
	return &Progress{step: step}, nil
}

// Add counts one event. report is true on every step-th event.
func (p *Progress) Add() (n int64, report bool) {
	n = atomic.AddInt64(&p.count, 1)
	return n, n%p.step == 0
}

func (p *Progress) Count() int64 {
	return atomic.LoadInt64(&p.count)
}
