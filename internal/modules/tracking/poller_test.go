// README: Tracking poller tests (cadence tiers, jitter bounds, pause/resume).
package tracking

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"courierdash/internal/backend"
	"courierdash/internal/modules/draft"
)

type stubGetter struct {
	calls  atomic.Int64
	status draft.Status
}

func (g *stubGetter) Order(_ context.Context, id string) (backend.OrderRecord, error) {
	g.calls.Add(1)
	return backend.OrderRecord{OrderID: id, Status: g.status}, nil
}

func TestIntervalForStatusTiers(t *testing.T) {
	cases := []struct {
		status draft.Status
		want   time.Duration
	}{
		{draft.StatusAssigned, 10 * time.Second},
		{draft.StatusPickedUp, 10 * time.Second},
		{draft.StatusArrivedAtDelivery, 10 * time.Second},
		{draft.StatusNewOrder, 30 * time.Second},
		{draft.StatusProcessing, 30 * time.Second},
		{draft.StatusDelivered, 60 * time.Second},
		{draft.StatusCanceled, 60 * time.Second},
	}
	for _, tc := range cases {
		if got := IntervalFor(tc.status); got != tc.want {
			t.Errorf("IntervalFor(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestJitterStaysWithinBounds(t *testing.T) {
	base := 10 * time.Second
	lo := time.Duration(float64(base) * 0.9)
	hi := time.Duration(float64(base) * 1.1)
	for i := 0; i < 200; i++ {
		if d := Jitter(base); d < lo || d > hi {
			t.Fatalf("Jitter(%v) = %v, outside [%v, %v]", base, d, lo, hi)
		}
	}
}

func TestPausedPollerDoesNotFetch(t *testing.T) {
	g := &stubGetter{status: draft.StatusAssigned}
	p := NewPoller(g, "ord_1")
	p.Pause()

	ctx := context.Background()
	p.refresh(ctx)
	if n := g.calls.Load(); n != 0 {
		t.Fatalf("paused poller fetched %d times", n)
	}

	p.Resume()
	p.refresh(ctx)
	if n := g.calls.Load(); n != 1 {
		t.Fatalf("calls = %d after resume, want 1", n)
	}
	rec, err := p.Latest()
	if err != nil || rec.OrderID != "ord_1" {
		t.Fatalf("Latest() = %+v, %v", rec, err)
	}
}

func TestResumeWakesRunLoop(t *testing.T) {
	g := &stubGetter{status: draft.StatusDelivered}
	p := NewPoller(g, "ord_1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// The first refresh happens immediately; the next is a minute out unless
	// Resume wakes the loop.
	deadline := time.After(2 * time.Second)
	for g.calls.Load() < 1 {
		select {
		case <-deadline:
			t.Fatal("first refresh never happened")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	p.Resume()
	deadline = time.After(2 * time.Second)
	for g.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("Resume did not wake the loop")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	cancel()
	<-done
}
