// Package notify carries change signals about cycles and sector counts.
// Delivery is best effort: clients that miss a signal re-fetch the snapshot.
package notify

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stockcount-service/internal/model"
)

type Kind string

const (
	KindCycleStarted   Kind = "cycle.started"
	KindCycleCancelled Kind = "cycle.cancelled"
	KindCycleFinalized Kind = "cycle.finalized"
	KindSectorChanged  Kind = "sector.changed"
	KindCycleHeartbeat Kind = "cycle.heartbeat"
)

type Event struct {
	ID        string            `json:"event_id"`
	Kind      Kind              `json:"event_type"`
	CompanyID string            `json:"company_id"`
	CycleID   string            `json:"cycle_id"`
	SectorID  string            `json:"sector_id,omitempty"`
	State     model.SectorState `json:"state,omitempty"`
	Round     int               `json:"round,omitempty"`
	Rollup    model.Rollup      `json:"rollup"`
	At        time.Time         `json:"timestamp"`
}

// Publisher never blocks the caller on a slow consumer.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Fanout publishes to every wrapped publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, ev)
		}
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

func Nop() Publisher { return nopPublisher{} }
