package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
	catrepo "github.com/fekuna/omnipos-stockcount-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/dto"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/repository"
	"github.com/fekuna/omnipos-stockcount-service/internal/database"
	"github.com/fekuna/omnipos-stockcount-service/internal/ledger"
	"github.com/fekuna/omnipos-stockcount-service/internal/lock"
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

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Publish(_ context.Context, ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event{}, r.events...)
}

func (r *recorder) sectorStates(sectorID string) []model.SectorState {
	var out []model.SectorState
	for _, ev := range r.all() {
		if ev.Kind == notify.KindSectorChanged && ev.SectorID == sectorID {
			out = append(out, ev.State)
		}
	}
	return out
}

// failingRepo lets reads through and fails every write.
type failingRepo struct {
	cycle.Repository
}

func (failingRepo) SaveSectorCounts(context.Context, *model.InventoryCycle, ...*model.SectorCount) error {
	return errors.New("disk full")
}

type fixture struct {
	uc     cycle.UseCase
	repo   *repository.SQLRepository
	events *recorder
}

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, wrap func(cycle.Repository) cycle.Repository) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db))

	cat := catrepo.NewSQLRepository(db)
	for i, id := range []string{"s1", "s2", "s3", "s4"} {
		require.NoError(t, cat.UpsertSector(ctx, &model.Sector{ID: id, CompanyID: "acme", Code: id, Name: id, SortOrder: i, IsActive: true}))
	}
	require.NoError(t, cat.UpsertSector(ctx, &model.Sector{ID: "solo", CompanyID: "tiny", Code: "S", Name: "Solo", IsActive: true}))
	require.NoError(t, cat.UpsertStock(ctx, []model.StockLevel{
		{SectorID: "s1", ProductID: "p1", Quantity: 10},
		{SectorID: "s2", ProductID: "p1", Quantity: 5},
		{SectorID: "s2", ProductID: "p2", Quantity: 3},
		{SectorID: "solo", ProductID: "p1", Quantity: 10},
	}))

	repo := repository.NewSQLRepository(db)
	var r cycle.Repository = repo
	if wrap != nil {
		r = wrap(repo)
	}

	var tick, seq atomic.Int64
	events := &recorder{}
	uc := NewCycleUseCase(r, cat, lock.NewMemoryLocker(), events, ledger.StockPolicyCounterA, logger.NewNop(),
		WithClock(func() time.Time { return t0.Add(time.Duration(tick.Add(1)) * time.Second) }),
		WithIDGenerator(func() string { return fmt.Sprintf("id-%d", seq.Add(1)) }),
	)
	return &fixture{uc: uc, repo: repo, events: events}
}

func (f *fixture) start(t *testing.T, companyID string) string {
	t.Helper()
	snap, err := f.uc.StartCycle(context.Background(), &dto.StartCycleInput{CompanyID: companyID})
	require.NoError(t, err)
	return snap.Cycle.ID
}

func sector(companyID, cycleID, sectorID string) dto.SectorRef {
	return dto.SectorRef{CompanyID: companyID, CycleID: cycleID, SectorID: sectorID}
}

func (f *fixture) assign(t *testing.T, ref dto.SectorRef, a, b string) {
	t.Helper()
	_, err := f.uc.AssignCounters(context.Background(), &dto.AssignCountersInput{SectorRef: ref, CounterA: a, CounterB: b})
	require.NoError(t, err)
}

func (f *fixture) count(t *testing.T, ref dto.SectorRef, counter, product, expr string) *dto.ProductCountSnapshot {
	t.Helper()
	snap, err := f.uc.SubmitCount(context.Background(), &dto.SubmitCountInput{SectorRef: ref, CounterID: counter, ProductID: product, Expression: expr})
	require.NoError(t, err)
	return snap
}

func (f *fixture) recount(t *testing.T, ref dto.SectorRef, counter, product, expr string) {
	t.Helper()
	_, err := f.uc.SubmitRecount(context.Background(), &dto.SubmitCountInput{SectorRef: ref, CounterID: counter, ProductID: product, Expression: expr})
	require.NoError(t, err)
}

func (f *fixture) finalize(t *testing.T, ref dto.SectorRef, counter string) *dto.SectorCountSnapshot {
	t.Helper()
	snap, err := f.uc.FinalizeRound(context.Background(), &dto.FinalizeInput{SectorRef: ref, CounterID: counter})
	require.NoError(t, err)
	return snap
}

func (f *fixture) finalizeRecount(t *testing.T, ref dto.SectorRef, counter string) *dto.SectorCountSnapshot {
	t.Helper()
	snap, err := f.uc.FinalizeRecount(context.Background(), &dto.FinalizeInput{SectorRef: ref, CounterID: counter})
	require.NoError(t, err)
	return snap
}

// completeAgreeing runs a sector with one product through a first round in
// which both counters agree.
func (f *fixture) completeAgreeing(t *testing.T, ref dto.SectorRef, qty string) {
	t.Helper()
	f.assign(t, ref, "ana", "ben")
	f.count(t, ref, "ana", "p1", qty)
	f.count(t, ref, "ben", "p1", qty)
	f.finalize(t, ref, "ana")
	snap := f.finalize(t, ref, "ben")
	require.Equal(t, model.SectorStateCompleted, snap.SectorCount.State)
}

func TestStartCycle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	snap, err := f.uc.StartCycle(ctx, &dto.StartCycleInput{CompanyID: "acme"})
	require.NoError(t, err)
	assert.Equal(t, model.CycleStateInProgress, snap.Cycle.State)
	assert.Equal(t, model.Rollup{TotalSectors: 4, PendingSectors: 4}, snap.Rollup)
	require.Len(t, snap.Sectors, 4)
	assert.Equal(t, "s1", snap.Sectors[0].SectorID)

	_, err = f.uc.StartCycle(ctx, &dto.StartCycleInput{CompanyID: "acme"})
	assert.ErrorIs(t, err, apperr.ErrCycleAlreadyActive)

	active, err := f.uc.GetActiveCycle(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, snap.Cycle.ID, active.Cycle.ID)

	_, err = f.uc.GetActiveCycle(ctx, "globex")
	assert.ErrorIs(t, err, apperr.ErrNoActiveCycle)

	_, err = f.uc.GetCycle(ctx, &dto.CycleRef{CompanyID: "globex", CycleID: snap.Cycle.ID})
	assert.ErrorIs(t, err, apperr.ErrNotFound, "cycles of other companies are invisible")

	_, err = f.uc.StartCycle(ctx, &dto.StartCycleInput{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	events := f.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, notify.KindCycleStarted, events[0].Kind)
}

func TestAssignmentKeepsSectorPendingUntilFirstCount(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cy := f.start(t, "acme")
	ref := sector("acme", cy, "s2")

	_, err := f.uc.AssignCounters(ctx, &dto.AssignCountersInput{SectorRef: ref, CounterA: "ana", CounterB: "ana"})
	assert.ErrorIs(t, err, apperr.ErrInvalidAssignment)

	snap, err := f.uc.AssignCounters(ctx, &dto.AssignCountersInput{SectorRef: ref, CounterA: "ana", CounterB: "ben"})
	require.NoError(t, err)
	assert.Equal(t, model.SectorStatePending, snap.SectorCount.State)
	assert.Equal(t, []model.SectorProduct{{ProductID: "p1", SystemStock: 5}, {ProductID: "p2", SystemStock: 3}}, snap.SectorCount.Products)

	pc := f.count(t, ref, "ana", "p1", "2*2 + 1")
	assert.Equal(t, model.SectorStateInProgress, pc.SectorState)
	assert.Equal(t, int64(5), pc.Detail.A.Quantity)
	assert.Equal(t, model.ProductStateAwaitingPeer, pc.Detail.State)

	_, err = f.uc.SubmitCount(ctx, &dto.SubmitCountInput{SectorRef: ref, CounterID: "carla", ProductID: "p1", Expression: "1"})
	assert.ErrorIs(t, err, apperr.ErrNotAssigned)

	_, err = f.uc.SubmitCount(ctx, &dto.SubmitCountInput{SectorRef: ref, CounterID: "ana", ProductID: "p1", Expression: "2*"})
	assert.ErrorIs(t, err, apperr.ErrMalformedExpression)

	_, err = f.uc.SubmitCount(ctx, &dto.SubmitCountInput{SectorRef: ref, ProductID: "p1", Expression: "1"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.uc.FinalizeRound(ctx, &dto.FinalizeInput{SectorRef: ref, CounterID: "ana"})
	assert.ErrorIs(t, err, apperr.ErrIncompleteCount)
	assert.Equal(t, []string{"p2"}, apperr.DetailsOf(err))
}

func TestRollupQuarterComplete(t *testing.T) {
	f := newFixture(t, nil)
	cy := f.start(t, "acme")
	f.completeAgreeing(t, sector("acme", cy, "s1"), "10")

	snap, err := f.uc.GetCycle(context.Background(), &dto.CycleRef{CompanyID: "acme", CycleID: cy})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Rollup.CompletedSectors)
	assert.Equal(t, 3, snap.Rollup.PendingSectors)
	assert.Equal(t, 25.0, snap.Rollup.PercentComplete)

	assert.Equal(t, []model.SectorState{
		model.SectorStatePending,
		model.SectorStateInProgress,
		model.SectorStateInProgress,
		model.SectorStateWaitingForVerification,
		model.SectorStateCompleted,
	}, f.events.sectorStates("s1"))

	last := f.events.all()[len(f.events.all())-1]
	assert.Equal(t, 25.0, last.Rollup.PercentComplete, "events carry the rollup")
}

func TestConvergenceThroughRecount(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cy := f.start(t, "acme")
	ref := sector("acme", cy, "s1")

	f.assign(t, ref, "ana", "ben")
	f.count(t, ref, "ana", "p1", "2*5")
	f.count(t, ref, "ben", "p1", "8")

	_, err := f.uc.GetRecountReference(ctx, &ref)
	assert.ErrorIs(t, err, apperr.ErrWrongRound)

	f.finalize(t, ref, "ana")
	snap := f.finalize(t, ref, "ben")
	assert.Equal(t, model.SectorStateWithDifferences, snap.SectorCount.State)
	assert.Equal(t, model.RoundRecount, snap.SectorCount.Round)
	assert.Equal(t, []string{"p1"}, snap.SectorCount.RecountScope)

	refs, err := f.uc.GetRecountReference(ctx, &ref)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, int64(10), refs[0].A.Quantity)
	assert.Equal(t, []string{"2*5"}, refs[0].A.Expressions())
	assert.Equal(t, int64(8), refs[0].B.Quantity)
	assert.Equal(t, int64(2), refs[0].DiffBetweenCounters)

	_, err = f.uc.SubmitCount(ctx, &dto.SubmitCountInput{SectorRef: ref, CounterID: "ana", ProductID: "p1", Expression: "9"})
	assert.ErrorIs(t, err, apperr.ErrWrongRound)

	f.recount(t, ref, "ana", "p1", "9")
	f.recount(t, ref, "ben", "p1", "4+5")
	f.finalizeRecount(t, ref, "ana")
	snap = f.finalizeRecount(t, ref, "ben")
	assert.Equal(t, model.SectorStateCompleted, snap.SectorCount.State)

	d := snap.SectorCount.Detail("p1")
	require.NotNil(t, d)
	assert.Equal(t, model.ProductStateReconciled, d.State)
	require.NotNil(t, d.DiffVsSystem)
	assert.Equal(t, int64(-1), *d.DiffVsSystem)

	_, err = f.uc.FinalizeCycle(ctx, &dto.CycleRef{CompanyID: "acme", CycleID: cy})
	assert.ErrorIs(t, err, apperr.ErrCycleNotComplete)
	assert.Equal(t, []string{"s2", "s3", "s4"}, apperr.DetailsOf(err))
}

func TestSnapshotIsByteIdentical(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cy := f.start(t, "acme")
	ref := sector("acme", cy, "s2")
	f.assign(t, ref, "ana", "ben")
	f.count(t, ref, "ana", "p1", "2*2+1")
	f.count(t, ref, "ben", "p2", "3")

	var first []byte
	for i := 0; i < 5; i++ {
		snap, err := f.uc.GetSectorCount(ctx, &ref)
		require.NoError(t, err)
		b, err := json.Marshal(snap)
		require.NoError(t, err)
		if first == nil {
			first = b
			continue
		}
		assert.Equal(t, string(first), string(b))
	}
}

func TestMutationResultMatchesStoredSnapshot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cy := f.start(t, "acme")
	ref := sector("acme", cy, "s1")
	f.assign(t, ref, "ana", "ben")
	f.count(t, ref, "ana", "p1", "10")
	f.count(t, ref, "ben", "p1", "10")
	f.finalize(t, ref, "ana")
	returned := f.finalize(t, ref, "ben")

	stored, err := f.uc.GetSectorCount(ctx, &ref)
	require.NoError(t, err)

	a, err := json.Marshal(returned)
	require.NoError(t, err)
	b, err := json.Marshal(stored)
	require.NoError(t, err)
	assert.JSONEq(t, string(b), string(a))
}

func TestCancellationCascade(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cy := f.start(t, "acme")

	s1 := sector("acme", cy, "s1")
	f.assign(t, s1, "ana", "ben")
	f.count(t, s1, "ana", "p1", "10")
	f.count(t, s1, "ben", "p1", "8")
	f.finalize(t, s1, "ana")
	f.finalize(t, s1, "ben")

	s2 := sector("acme", cy, "s2")
	f.assign(t, s2, "carla", "dan")
	f.count(t, s2, "carla", "p1", "5")

	snap, err := f.uc.CancelCycle(ctx, &dto.CycleRef{CompanyID: "acme", CycleID: cy})
	require.NoError(t, err)
	assert.Equal(t, model.CycleStateCancelled, snap.Cycle.State)
	require.NotNil(t, snap.Cycle.CancelledAt)
	for _, s := range snap.Sectors {
		assert.Equal(t, model.SectorStateCancelled, s.State, s.SectorID)
	}
	assert.Equal(t, 4, snap.Rollup.CancelledSectors)

	for _, ref := range []dto.SectorRef{s1, s2} {
		_, err = f.uc.SubmitCount(ctx, &dto.SubmitCountInput{SectorRef: ref, CounterID: "ana", ProductID: "p1", Expression: "1"})
		assert.ErrorIs(t, err, apperr.ErrSectorClosed)
	}
	_, err = f.uc.SubmitRecount(ctx, &dto.SubmitCountInput{SectorRef: s1, CounterID: "ana", ProductID: "p1", Expression: "1"})
	assert.ErrorIs(t, err, apperr.ErrSectorClosed)

	_, err = f.uc.CancelCycle(ctx, &dto.CycleRef{CompanyID: "acme", CycleID: cy})
	assert.ErrorIs(t, err, apperr.ErrNoActiveCycle)

	_, err = f.uc.GetActiveCycle(ctx, "acme")
	assert.ErrorIs(t, err, apperr.ErrNoActiveCycle)
	f.start(t, "acme")

	kinds := map[notify.Kind]int{}
	for _, ev := range f.events.all() {
		kinds[ev.Kind]++
	}
	assert.Equal(t, 1, kinds[notify.KindCycleCancelled])
}

func TestConcurrentFinalizeComparesOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cy := f.start(t, "acme")
	ref := sector("acme", cy, "s1")
	f.assign(t, ref, "ana", "ben")
	f.count(t, ref, "ana", "p1", "10")
	f.count(t, ref, "ben", "p1", "8")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, counter := range []string{"ana", "ben"} {
		wg.Add(1)
		go func(counter string) {
			defer wg.Done()
			_, err := f.uc.FinalizeRound(ctx, &dto.FinalizeInput{SectorRef: ref, CounterID: counter})
			errs <- err
		}(counter)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	compared := 0
	for _, s := range f.events.sectorStates("s1") {
		if s == model.SectorStateWithDifferences {
			compared++
		}
	}
	assert.Equal(t, 1, compared)

	snap, err := f.uc.GetSectorCount(ctx, &ref)
	require.NoError(t, err)
	assert.Equal(t, model.RoundRecount, snap.SectorCount.Round)
	d := snap.SectorCount.Detail("p1")
	require.NotNil(t, d)
	require.NotNil(t, d.FirstRound)
	assert.Equal(t, int64(10), d.FirstRound.A.Quantity)
}

func TestFailedWriteLeavesNoPartialState(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cy := f.start(t, "acme")
	ref := sector("acme", cy, "s1")
	f.assign(t, ref, "ana", "ben")

	broken := NewCycleUseCase(failingRepo{f.repo}, nil, lock.NewMemoryLocker(), f.events, "", logger.NewNop())
	before := len(f.events.all())

	_, err := broken.SubmitCount(ctx, &dto.SubmitCountInput{SectorRef: ref, CounterID: "ana", ProductID: "p1", Expression: "4"})
	require.Error(t, err)
	assert.Equal(t, apperr.Code(""), apperr.CodeOf(err))

	_, err = broken.CancelCycle(ctx, &dto.CycleRef{CompanyID: "acme", CycleID: cy})
	require.Error(t, err)

	snap, err := f.uc.GetSectorCount(ctx, &ref)
	require.NoError(t, err)
	assert.Empty(t, snap.SectorCount.Details)
	assert.Equal(t, model.SectorStatePending, snap.SectorCount.State)

	c, err := f.uc.GetCycle(ctx, &dto.CycleRef{CompanyID: "acme", CycleID: cy})
	require.NoError(t, err)
	assert.Equal(t, model.CycleStateInProgress, c.Cycle.State)
	assert.Len(t, f.events.all(), before, "nothing is announced for a failed write")
}

func TestPeerTally(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cy := f.start(t, "acme")
	ref := sector("acme", cy, "s1")
	f.assign(t, ref, "ana", "ben")
	f.count(t, ref, "ana", "p1", "2*5+3*4")

	peer, err := f.uc.GetPeerTally(ctx, &dto.PeerTallyInput{SectorRef: ref, CounterID: "ben", ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "ana", peer.CounterID)
	assert.Equal(t, int64(22), peer.Quantity)
	assert.Equal(t, [][]string{{"2*5", "3*4"}}, peer.Terms)

	_, err = f.uc.GetPeerTally(ctx, &dto.PeerTallyInput{SectorRef: ref, CounterID: "zoe", ProductID: "p1"})
	assert.ErrorIs(t, err, apperr.ErrNotAssigned)

	_, err = f.uc.GetPeerTally(ctx, &dto.PeerTallyInput{SectorRef: ref, CounterID: "ben", ProductID: "p9"})
	assert.ErrorIs(t, err, apperr.ErrProductNotInScope)
}

func TestEscalationResolutionAndReport(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cy := f.start(t, "tiny")
	ref := sector("tiny", cy, "solo")

	f.assign(t, ref, "ana", "ben")
	f.count(t, ref, "ana", "p1", "10")
	f.count(t, ref, "ben", "p1", "8")
	f.finalize(t, ref, "ana")
	f.finalize(t, ref, "ben")
	f.recount(t, ref, "ana", "p1", "10")
	f.recount(t, ref, "ben", "p1", "7")
	f.finalizeRecount(t, ref, "ana")
	snap := f.finalizeRecount(t, ref, "ben")
	assert.Equal(t, model.SectorStateWithDifferences, snap.SectorCount.State)
	assert.Equal(t, model.OutcomeEscalated, snap.SectorCount.Outcome)

	_, err := f.uc.BuildReport(ctx, cy)
	assert.ErrorIs(t, err, apperr.ErrCycleNotComplete)

	snap, err = f.uc.ResolveDifferences(ctx, &dto.ResolveInput{
		SectorRef:   ref,
		ResolvedBy:  "boss",
		Resolutions: map[string]string{"p1": "3*3"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.SectorStateCompleted, snap.SectorCount.State)

	done, err := f.uc.FinalizeCycle(ctx, &dto.CycleRef{CompanyID: "tiny", CycleID: cy})
	require.NoError(t, err)
	assert.Equal(t, model.CycleStateCompleted, done.Cycle.State)
	require.NotNil(t, done.Cycle.FinalizedAt)

	report, err := f.uc.BuildReport(ctx, cy)
	require.NoError(t, err)
	assert.Equal(t, []dto.ReportLine{{
		SectorID:      "solo",
		ProductID:     "p1",
		SystemStock:   10,
		FinalQuantity: 9,
		Difference:    -1,
		Recounted:     true,
		Resolved:      true,
	}}, report.Lines)
	assert.Equal(t, 100.0, report.Rollup.PercentComplete)

	_, err = f.uc.StartCycle(ctx, &dto.StartCycleInput{CompanyID: "tiny"})
	assert.NoError(t, err, "a finalized cycle frees the company")
}

func TestCycleWithoutSectorsFinalizes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cy := f.start(t, "empty")

	snap, err := f.uc.FinalizeCycle(ctx, &dto.CycleRef{CompanyID: "empty", CycleID: cy})
	require.NoError(t, err)
	assert.Equal(t, model.CycleStateCompleted, snap.Cycle.State)
	assert.Equal(t, 0.0, snap.Rollup.PercentComplete)

	report, err := f.uc.BuildReport(ctx, cy)
	require.NoError(t, err)
	assert.Empty(t, report.Lines)
}

func TestListActiveCycles(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.start(t, "acme")
	done := f.start(t, "empty")
	_, err := f.uc.FinalizeCycle(ctx, &dto.CycleRef{CompanyID: "empty", CycleID: done})
	require.NoError(t, err)

	active, err := f.uc.ListActiveCycles(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "acme", active[0].Cycle.CompanyID)
	assert.Equal(t, 4, active[0].Rollup.TotalSectors)
}
