package browser

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// tabGate mimics WithTab's semaphore discipline without needing Chrome.
type tabGate struct {
	sem chan struct{}
}

func newTabGate() *tabGate {
	return &tabGate{sem: make(chan struct{}, 1)}
}

func (g *tabGate) withTab(fn func(ctx context.Context) error) error {
	g.sem <- struct{}{}
	defer func() { <-g.sem }()
	return fn(context.Background())
}

func TestWithTab_OnlyOneTabAtATime(t *testing.T) {
	// Arrange
	gate := newTabGate()

	var concurrent int32
	var maxConcurrent int32
	var wg sync.WaitGroup

	// Act
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = gate.withTab(func(ctx context.Context) error {
				current := atomic.AddInt32(&concurrent, 1)
				for {
					max := atomic.LoadInt32(&maxConcurrent)
					if current <= max || atomic.CompareAndSwapInt32(&maxConcurrent, max, current) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&concurrent, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	// Assert
	if maxConcurrent != 1 {
		t.Errorf("maxConcurrent: got %d, want 1", maxConcurrent)
	}
}

func TestWithTab_SemaphoreReleased_OnError(t *testing.T) {
	// Arrange
	gate := newTabGate()
	wantErr := errors.New("tab work failed")

	// Act
	if err := gate.withTab(func(ctx context.Context) error { return wantErr }); err != wantErr {
		t.Fatalf("error: got %v, want %v", err, wantErr)
	}

	// Assert: a second acquisition must not block
	done := make(chan struct{}, 1)
	go func() {
		_ = gate.withTab(func(ctx context.Context) error { return nil })
		done <- struct{}{}
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("second tab blocked after an error in the first")
	}
}

func TestWithTab_SequentialCallers_RunInOrder(t *testing.T) {
	// Arrange
	gate := newTabGate()
	var order []int

	// Act
	for i := 0; i < 3; i++ {
		idx := i
		_ = gate.withTab(func(ctx context.Context) error {
			order = append(order, idx)
			return nil
		})
	}

	// Assert
	for i := 0; i < 3; i++ {
		if order[i] != i {
			t.Errorf("order[%d]: got %d, want %d", i, order[i], i)
		}
	}
}
