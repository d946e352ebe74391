package app

import "sync"

// progressTracker serializes progress callbacks from concurrent estimation
// goroutines. A nil callback makes step a cheap no-op.
type progressTracker struct {
	mu    sync.Mutex
	done  int
	total int
	fn    func(done, total int)
}

func newProgressTracker(total int, fn func(done, total int)) *progressTracker {
	return &progressTracker{total: total, fn: fn}
}

func (p *progressTracker) step() {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	p.done++
	done := p.done
	p.mu.Unlock()
	p.fn(done, p.total)
}
