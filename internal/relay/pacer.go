package relay

import (
	"context"
	"math/rand"
	"time"
)

const (
	maxBackoff   = 10 * time.Second
	jitterSpread = 250 * time.Millisecond
)

// pacer spaces poll cycles. Each failed cycle doubles the wait up to
// ceiling; a healthy cycle resets it.
type pacer struct {
	base    time.Duration
	ceiling time.Duration
	current time.Duration
	spread  time.Duration
	rnd     *rand.Rand
}

func newPacer(base time.Duration) *pacer {
	return &pacer{
		base:    base,
		ceiling: maxBackoff,
		current: base,
		spread:  jitterSpread,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *pacer) idle() time.Duration {
	return p.jitter(p.base)
}

func (p *pacer) failed() time.Duration {
	next := p.current * 2
	if next <= 0 {
		next = p.base
	}
	if next > p.ceiling {
		next = p.ceiling
	}
	p.current = next
	return p.jitter(next)
}

func (p *pacer) reset() {
	p.current = p.base
}

func (p *pacer) jitter(d time.Duration) time.Duration {
	if d <= 0 || p.spread <= 0 {
		return d
	}
	return d + time.Duration(p.rnd.Int63n(int64(p.spread)))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
