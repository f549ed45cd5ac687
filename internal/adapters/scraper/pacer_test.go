package scraper

import (
	"context"
	"errors"
	"testing"
	"time"
)

// recordingSleep captures every pause a pacer inserts.
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func TestPacer_Each_InsertsGroupPauses(t *testing.T) {
	// Arrange
	rec := &recordingSleep{}
	p := NewPacer(Band{10 * time.Millisecond, 20 * time.Millisecond}, 3, Band{100 * time.Millisecond, 200 * time.Millisecond})
	p.sleep = rec.sleep

	// Act
	done, err := p.Each(context.Background(), 7, func(i int) error { return nil })

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done != 7 {
		t.Errorf("done: got %d, want 7", done)
	}
	// 7 item delays plus group pauses after items 3 and 6.
	if len(rec.delays) != 9 {
		t.Fatalf("delays: got %d, want 9", len(rec.delays))
	}
	for _, i := range []int{3, 7} {
		if rec.delays[i] < 100*time.Millisecond {
			t.Errorf("delay %d: got %v, want a group pause >= 100ms", i, rec.delays[i])
		}
	}
}

func TestPacer_Each_DelaysVaryWithinBand(t *testing.T) {
	// Arrange
	rec := &recordingSleep{}
	p := NewPacer(Band{800 * time.Millisecond, 1500 * time.Millisecond}, 0, Band{})
	p.sleep = rec.sleep

	// Act
	if _, err := p.Each(context.Background(), 20, func(i int) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Assert
	distinct := map[time.Duration]bool{}
	for _, d := range rec.delays {
		if d < 800*time.Millisecond || d >= 1500*time.Millisecond {
			t.Errorf("delay %v outside band", d)
		}
		distinct[d] = true
	}
	if len(distinct) < 2 {
		t.Error("expected randomized delays, got a single constant")
	}
}

func TestPacer_Each_FailedInteractionSkipped(t *testing.T) {
	// Arrange
	p := NewPacer(Band{}, 0, Band{})
	p.sleep = func(context.Context, time.Duration) error { return nil }

	// Act
	done, err := p.Each(context.Background(), 5, func(i int) error {
		if i == 2 {
			return errors.New("element detached")
		}
		return nil
	})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done != 4 {
		t.Errorf("done: got %d, want 4", done)
	}
}

func TestPacer_Each_StopsOnCancelledContext(t *testing.T) {
	// Arrange
	p := HoverPacer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	_, err := p.Each(ctx, 3, func(i int) error { return nil })

	// Assert
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
