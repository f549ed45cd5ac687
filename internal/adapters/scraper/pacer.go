package scraper

import (
	"context"
	"math/rand"
	"time"
)

// Band is a half-open delay range [Min, Max) from which each pause is
// drawn. A fixed constant delay is a detectable automation signature,
// so every pause in the engine goes through a band.
type Band struct {
	Min time.Duration
	Max time.Duration
}

// delay returns a random duration within the band.
func (b Band) delay() time.Duration {
	if b.Max <= b.Min {
		return b.Min
	}
	return b.Min + time.Duration(rand.Int63n(int64(b.Max-b.Min)))
}

// Pacer inserts randomized pauses around a sequence of per-item
// interactions: one short delay per item and a longer pause after every
// GroupSize items. It knows nothing about page semantics; it is a pure
// timing policy shared by the hover pass and the batch layer.
type Pacer struct {
	Item      Band
	GroupSize int
	Group     Band

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer with explicit bands. GroupSize <= 0 disables
// group pauses.
func NewPacer(item Band, groupSize int, group Band) *Pacer {
	return &Pacer{Item: item, GroupSize: groupSize, Group: group, sleep: sleepCtx}
}

// HoverPacer returns the pacing used while hovering list items:
// 800-1500ms per item and an extra 1-2s pause after every third item.
func HoverPacer() *Pacer {
	return NewPacer(
		Band{800 * time.Millisecond, 1500 * time.Millisecond},
		3,
		Band{1 * time.Second, 2 * time.Second},
	)
}

// BatchPacer returns the pacing used between consecutive detail-page
// fetches. Moving to a new document is a stronger automation signal
// than an in-page hover, so the band is wider: 1-3s.
func BatchPacer() *Pacer {
	return NewPacer(Band{1 * time.Second, 3 * time.Second}, 0, Band{})
}

// Each runs interact for indices [0, count), pausing after every item
// and inserting the group pause after every GroupSize items. A failed
// interaction is skipped, never fatal: a single unhoverable element
// must not abort the pass. Returns the number of successful
// interactions, or the context error if cancelled mid-sequence.
func (p *Pacer) Each(ctx context.Context, count int, interact func(i int) error) (int, error) {
	done := 0
	for i := 0; i < count; i++ {
		if err := interact(i); err == nil {
			done++
		}

		if err := p.sleeper()(ctx, p.Item.delay()); err != nil {
			return done, err
		}

		if p.GroupSize > 0 && (i+1)%p.GroupSize == 0 {
			if err := p.sleeper()(ctx, p.Group.delay()); err != nil {
				return done, err
			}
		}
	}
	return done, nil
}

// Pause sleeps for one item-band delay. Used by the batch layer between
// documents.
func (p *Pacer) Pause(ctx context.Context) error {
	return p.sleeper()(ctx, p.Item.delay())
}

func (p *Pacer) sleeper() func(context.Context, time.Duration) error {
	if p.sleep != nil {
		return p.sleep
	}
	return sleepCtx
}

// sleepCtx blocks for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
