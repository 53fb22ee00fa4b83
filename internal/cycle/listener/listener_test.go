package listener

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/dto"
	"github.com/fekuna/omnipos-stockcount-service/internal/logger"
	"github.com/fekuna/omnipos-stockcount-service/internal/notify"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type read struct {
	msg kafka.Message
	err error
}

type fakeConsumer struct {
	reads chan read
}

func (f *fakeConsumer) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case r := <-f.reads:
		return r.msg, r.err
	}
}

func (f *fakeConsumer) Close() error { return nil }

type reportUseCase struct {
	cycle.UseCase
}

func (reportUseCase) BuildReport(_ context.Context, cycleID string) (*dto.Report, error) {
	if cycleID == "open" {
		return nil, apperr.New(apperr.CodeCycleNotComplete, "s1")
	}
	return &dto.Report{CycleID: cycleID, Lines: []dto.ReportLine{}}, nil
}

type fakeIndexer struct {
	mu      sync.Mutex
	indexed []string
	done    chan struct{}
}

func (f *fakeIndexer) Index(_ context.Context, r *dto.Report) error {
	f.mu.Lock()
	f.indexed = append(f.indexed, r.CycleID)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func event(t *testing.T, kind notify.Kind, cycleID string) read {
	t.Helper()
	b, err := json.Marshal(notify.Event{ID: "e-" + cycleID, Kind: kind, CycleID: cycleID})
	require.NoError(t, err)
	return read{msg: kafka.Message{Value: b}}
}

func TestReportListener_IndexesFinalizedCycles(t *testing.T) {
	consumer := &fakeConsumer{reads: make(chan read)}
	indexer := &fakeIndexer{done: make(chan struct{}, 4)}
	l := NewReportListener(consumer, reportUseCase{}, indexer, logger.NewNop())
	l.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(stopped)
	}()

	consumer.reads <- event(t, notify.KindSectorChanged, "c0")
	consumer.reads <- read{err: errors.New("broker down")}
	consumer.reads <- read{msg: kafka.Message{Value: []byte("not json")}}
	consumer.reads <- event(t, notify.KindCycleFinalized, "open")
	consumer.reads <- event(t, notify.KindCycleFinalized, "c1")

	select {
	case <-indexer.done:
	case <-time.After(5 * time.Second):
		t.Fatal("report was not indexed")
	}
	cancel()
	<-stopped

	indexer.mu.Lock()
	defer indexer.mu.Unlock()
	assert.Equal(t, []string{"c1"}, indexer.indexed)
}

func TestReportListener_StopsOnCancel(t *testing.T) {
	l := NewReportListener(&fakeConsumer{reads: make(chan read)}, reportUseCase{}, &fakeIndexer{}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop")
	}
}
