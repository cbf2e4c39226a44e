package device

import (
	"runtime"
	"time"
)

// wakeMargin is how long before the clock edge Paced stops sleeping and
// starts polling, so that timer oversleep does not delay the read.
const wakeMargin = 200 * time.Microsecond

// Paced wraps a BlockReader so that reads complete no faster than one block
// per period, the way a hardware sample clock releases input. When the
// caller falls more than a period behind, the schedule restarts from the
// current time instead of bursting to catch up.
//
// Paced sleeps until shortly before each edge and then yields the processor
// until the edge passes, so reads return at the edge rather than at the
// timer's wake-up.
type Paced struct {
	r      BlockReader
	period time.Duration
	margin time.Duration
	next   time.Time
	now    func() time.Time
	sleep  func(time.Duration)
	yield  func()
}

// NewPaced paces r to one block per period.
func NewPaced(r BlockReader, period time.Duration) *Paced {
	return &Paced{
		r:      r,
		period: period,
		margin: min(wakeMargin, period/4),
		now:    time.Now,
		sleep:  time.Sleep,
		yield:  runtime.Gosched,
	}
}

// Period returns the pacing interval.
func (p *Paced) Period() time.Duration { return p.period }

// ReadBlock implements BlockReader.
func (p *Paced) ReadBlock(b []byte) error {
	now := p.now()
	switch {
	case p.next.IsZero(), now.Sub(p.next) > p.period:
		p.next = now
	case p.next.After(now):
		if wake := p.next.Add(-p.margin); wake.After(now) {
			p.sleep(wake.Sub(now))
		}
		for p.now().Before(p.next) {
			p.yield()
		}
	}
	p.next = p.next.Add(p.period)
	return p.r.ReadBlock(b)
}
