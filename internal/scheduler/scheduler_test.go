package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/dto"
	"github.com/fekuna/omnipos-stockcount-service/internal/logger"
	"github.com/fekuna/omnipos-stockcount-service/internal/model"
	"github.com/fekuna/omnipos-stockcount-service/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type staticCycles struct {
	snaps []dto.CycleSnapshot
	err   error
}

func (s staticCycles) ListActiveCycles(context.Context) ([]dto.CycleSnapshot, error) {
	return s.snaps, s.err
}

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Publish(_ context.Context, ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestHeartbeatScheduler_Beat(t *testing.T) {
	rollup := model.Rollup{TotalSectors: 4, CompletedSectors: 1, PercentComplete: 25}
	cycles := staticCycles{snaps: []dto.CycleSnapshot{
		{Cycle: model.InventoryCycle{ID: "c1", CompanyID: "acme"}, Rollup: rollup},
		{Cycle: model.InventoryCycle{ID: "c2", CompanyID: "tiny"}},
	}}
	rec := &recorder{}
	s := NewHeartbeatScheduler(cycles, rec, logger.NewNop(), "@every 1h", time.Second)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 123456789, time.UTC) }

	n, err := s.Beat(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, rec.events, 2)
	first := rec.events[0]
	assert.Equal(t, notify.KindCycleHeartbeat, first.Kind)
	assert.Equal(t, "c1", first.CycleID)
	assert.Equal(t, "acme", first.CompanyID)
	assert.Equal(t, rollup, first.Rollup)
	assert.Equal(t, time.Date(2026, 3, 1, 8, 0, 0, 123000000, time.UTC), first.At)
	assert.NotEqual(t, first.ID, rec.events[1].ID)
}

func TestHeartbeatScheduler_BeatError(t *testing.T) {
	rec := &recorder{}
	s := NewHeartbeatScheduler(staticCycles{err: errors.New("db down")}, rec, logger.NewNop(), "@every 1h", time.Second)

	_, err := s.Beat(context.Background())
	require.Error(t, err)
	assert.Zero(t, rec.count())
}

func TestHeartbeatScheduler_Runs(t *testing.T) {
	rec := &recorder{}
	cycles := staticCycles{snaps: []dto.CycleSnapshot{{Cycle: model.InventoryCycle{ID: "c1"}}}}
	s := NewHeartbeatScheduler(cycles, rec, logger.NewNop(), "* * * * * *", time.Second)

	require.NoError(t, s.Start())
	assert.Eventually(t, func() bool { return rec.count() > 0 }, 5*time.Second, 20*time.Millisecond)
	s.Stop()
}

func TestHeartbeatScheduler_BadSpec(t *testing.T) {
	s := NewHeartbeatScheduler(staticCycles{}, &recorder{}, logger.NewNop(), "not a spec", time.Second)
	assert.Error(t, s.Start())
}
