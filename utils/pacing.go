package utils

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Pacer suspends the caller for a duration somewhere in [min, max].
// It returns ctx.Err() if the context ends first.
type Pacer interface {
	Pause(ctx context.Context, min, max time.Duration) error
}

// RandomPacer waits a uniformly random duration to mimic human pacing.
type RandomPacer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPacer creates a RandomPacer seeded from the clock.
func NewRandomPacer() *RandomPacer {
	return &RandomPacer{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (p *RandomPacer) Pause(ctx context.Context, min, max time.Duration) error {
	d := p.pick(min, max)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *RandomPacer) pick(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return min + time.Duration(p.rng.Int63n(int64(max-min)))
}

// Shuffle permutes ids in place.
func (p *RandomPacer) Shuffle(ids []int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

// NoPacer never waits.
type NoPacer struct{}

func (NoPacer) Pause(ctx context.Context, _, _ time.Duration) error {
	return ctx.Err()
}
