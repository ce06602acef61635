package renderer

import (
	"sync/atomic"
	"time"
)

// Stats summarizes a finished render
type Stats struct {
	Width           int
	Height          int
	SamplesPerPixel int
	Tiles           int
	Workers         int
	Paths           int // camera paths traced
	Elapsed         time.Duration
}

// PathsPerSecond is the render throughput
func (s Stats) PathsPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Paths) / s.Elapsed.Seconds()
}

// Progress counts finished tiles. It is safe for concurrent use; the callback
// runs on the worker that finished the tile and must not block.
type Progress struct {
	done     atomic.Int64
	total    int
	callback func(done, total int)
}

// NewProgress creates a progress counter for total tiles. callback may be nil.
func NewProgress(total int, callback func(done, total int)) *Progress {
	return &Progress{total: total, callback: callback}
}

// Done returns the number of finished tiles
func (p *Progress) Done() int {
	if p == nil {
		return 0
	}
	return int(p.done.Load())
}

// Total returns the number of tiles
func (p *Progress) Total() int {
	if p == nil {
		return 0
	}
	return p.total
}

func (p *Progress) tileDone() {
	if p == nil {
		return
	}
	done := int(p.done.Add(1))
	if p.callback != nil {
		p.callback(done, p.total)
	}
}
