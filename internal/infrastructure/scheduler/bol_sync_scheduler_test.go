package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fulfilhub/backend/internal/application/bolsync"
)

type fakeInstallationSource struct {
	ids []int64
	err error
}

func (f *fakeInstallationSource) IDsWithActiveIntegration(ctx context.Context, platform string) ([]int64, error) {
	return f.ids, f.err
}

type fakeReconciler struct {
	mu      sync.Mutex
	calls   []int64
	block   chan struct{}
	failFor map[int64]error
}

func (f *fakeReconciler) Reconcile(ctx context.Context, installationID int64) (*bolsync.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, installationID)
	f.mu.Unlock()

	if f.block != nil {
		<-f.block
	}
	if err, ok := f.failFor[installationID]; ok {
		return nil, err
	}
	return &bolsync.Result{Imported: 1, Total: 1}, nil
}

func (f *fakeReconciler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeReconciler) seen() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.calls...)
}

func newTestScheduler(reconciler Reconciler, source InstallationSource, interval time.Duration) *BolSyncScheduler {
	return NewBolSyncScheduler(BolSyncSchedulerConfig{
		Interval:    interval,
		StopTimeout: time.Second,
	}, reconciler, source, zap.NewNop())
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestBolSyncScheduler_RunsImmediatelyOnStart(t *testing.T) {
	reconciler := &fakeReconciler{}
	scheduler := newTestScheduler(reconciler, &fakeInstallationSource{ids: []int64{42, 57}}, time.Hour)

	require.NoError(t, scheduler.Start(context.Background()))
	defer scheduler.Stop(context.Background())

	waitFor(t, time.Second, func() bool { return reconciler.callCount() >= 2 })
	assert.Equal(t, []int64{42, 57}, reconciler.seen())
}

func TestBolSyncScheduler_SkipsOverlappingCycles(t *testing.T) {
	block := make(chan struct{})
	reconciler := &fakeReconciler{block: block}
	scheduler := newTestScheduler(reconciler, &fakeInstallationSource{ids: []int64{42}}, 10*time.Millisecond)

	require.NoError(t, scheduler.Start(context.Background()))

	// The first cycle is blocked inside Reconcile; ticks keep firing but
	// must all be skipped while it is in flight.
	waitFor(t, time.Second, func() bool { return reconciler.callCount() == 1 })
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, reconciler.callCount(), "ticks during a running cycle must be skipped")

	close(block)
	require.NoError(t, scheduler.Stop(context.Background()))
}

func TestBolSyncScheduler_ReleasedCycleDoesNotReplayMissedTicks(t *testing.T) {
	block := make(chan struct{})
	reconciler := &fakeReconciler{block: block}
	scheduler := newTestScheduler(reconciler, &fakeInstallationSource{ids: []int64{42}}, 250*time.Millisecond)

	require.NoError(t, scheduler.Start(context.Background()))

	waitFor(t, time.Second, func() bool { return reconciler.callCount() == 1 })

	// Hold the first cycle across at least one tick, then release it. The
	// missed tick must have been skipped outright, not buffered: right
	// after the release no new cycle may start.
	time.Sleep(400 * time.Millisecond)
	close(block)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, reconciler.callCount(), "missed ticks must not be replayed after the cycle ends")

	require.NoError(t, scheduler.Stop(context.Background()))
}

func TestBolSyncScheduler_FailingInstallationDoesNotBlockOthers(t *testing.T) {
	reconciler := &fakeReconciler{failFor: map[int64]error{42: errors.New("credentials rejected")}}
	scheduler := newTestScheduler(reconciler, &fakeInstallationSource{ids: []int64{42, 57, 61}}, time.Hour)

	require.NoError(t, scheduler.Start(context.Background()))
	defer scheduler.Stop(context.Background())

	waitFor(t, time.Second, func() bool { return reconciler.callCount() >= 3 })
	assert.Equal(t, []int64{42, 57, 61}, reconciler.seen())
}

func TestBolSyncScheduler_StartIsIdempotent(t *testing.T) {
	var listCalls atomic.Int32
	source := &countingSource{calls: &listCalls}
	reconciler := &fakeReconciler{}
	scheduler := newTestScheduler(reconciler, source, time.Hour)

	require.NoError(t, scheduler.Start(context.Background()))
	require.NoError(t, scheduler.Start(context.Background()))
	defer scheduler.Stop(context.Background())

	waitFor(t, time.Second, func() bool { return listCalls.Load() >= 1 })
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), listCalls.Load(), "second Start must not spawn a second loop")
}

type countingSource struct {
	calls *atomic.Int32
}

func (c *countingSource) IDsWithActiveIntegration(ctx context.Context, platform string) ([]int64, error) {
	c.calls.Add(1)
	return nil, nil
}

func TestBolSyncScheduler_StopWithoutStart(t *testing.T) {
	scheduler := newTestScheduler(&fakeReconciler{}, &fakeInstallationSource{}, time.Hour)
	assert.NoError(t, scheduler.Stop(context.Background()))
}

func TestBolSyncScheduler_StopCancelsLoop(t *testing.T) {
	reconciler := &fakeReconciler{}
	scheduler := newTestScheduler(reconciler, &fakeInstallationSource{ids: []int64{42}}, time.Hour)

	require.NoError(t, scheduler.Start(context.Background()))
	waitFor(t, time.Second, func() bool { return reconciler.callCount() >= 1 })

	require.NoError(t, scheduler.Stop(context.Background()))
	calls := reconciler.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, reconciler.callCount(), "no cycles may run after Stop")
}
