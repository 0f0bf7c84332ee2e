// README: Package service implements creation, acceptance and listings.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"roadie/internal/events"
	"roadie/internal/modules/pricing"
	"roadie/internal/observability"
	"roadie/internal/types"
)

type Pricing interface {
	Quote(ctx context.Context, kind string, pickup, dropoff types.Point) (pricing.PricingResult, error)
}

// PendingIndex mirrors pending pickups for nearby search.
type PendingIndex interface {
	Add(ctx context.Context, id types.ID, pickup types.Point) error
	Remove(ctx context.Context, id types.ID) error
}

type Service struct {
	store   *Store
	pricing Pricing
	index   PendingIndex
	events  events.Publisher
}

func NewService(store *Store, pricing Pricing, index PendingIndex, publisher events.Publisher) *Service {
	return &Service{store: store, pricing: pricing, index: index, events: publisher}
}

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("package not found")
	ErrConflict     = errors.New("package state conflict")
	ErrBadRequest   = errors.New("bad request")
)

const createAttempts = 3

type CreateCommand struct {
	ClientID types.ID
	Pickup   types.Point
	Dropoff  types.Point
}

type AcceptCommand struct {
	PackageID types.ID
	DriverID  types.ID
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Package, error) {
	if cmd.ClientID == "" {
		return nil, ErrBadRequest
	}
	quote, err := s.pricing.Quote(ctx, pricing.KindMarketplace, cmd.Pickup, cmd.Dropoff)
	if err != nil {
		return nil, fmt.Errorf("quote package: %w", err)
	}

	now := time.Now()
	p := &Package{
		ClientID:   cmd.ClientID,
		Status:     StatusPending,
		Pickup:     cmd.Pickup,
		Dropoff:    cmd.Dropoff,
		DistanceKm: quote.DistanceKm,
		EtaMin:     quote.DurationMin,
		Price:      quote.Fare,
		Currency:   quote.Currency,
		CreatedAt:  now,
	}
	// Short ids can collide; retry with a fresh one.
	for attempt := 0; ; attempt++ {
		p.ID = types.NewShortID()
		err = s.store.Create(ctx, p)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrConflict) || attempt+1 >= createAttempts {
			return nil, err
		}
	}

	_ = s.store.AppendEvent(ctx, &Event{
		PackageID:  p.ID,
		FromStatus: StatusNone,
		ToStatus:   StatusPending,
		ActorType:  "client",
		ActorID:    &cmd.ClientID,
		CreatedAt:  now,
	})
	if s.index != nil {
		if err := s.index.Add(ctx, p.ID, p.Pickup); err != nil {
			slog.WarnContext(ctx, "pending_index_add_failed", "package_id", string(p.ID), "error", err)
		}
	}
	observability.PackagesCreated.Inc()
	observability.FareAmount.WithLabelValues(pricing.KindMarketplace).Observe(p.Price)
	events.PublishBestEffort(ctx, s.events, events.Event{
		Type:        events.PackageCreated,
		AggregateID: p.ID,
		ActorID:     cmd.ClientID,
		From:        string(StatusNone),
		To:          string(StatusPending),
		Payload: map[string]any{
			"distance_km": p.DistanceKm,
			"eta_min":     p.EtaMin,
			"price":       p.Price,
		},
		At: now,
	})
	return p, nil
}

// Accept assigns the driver exactly once. Accepting a package that is no
// longer pending fails with ErrInvalidState and leaves the driver unchanged;
// losing a concurrent race fails with ErrConflict.
func (s *Service) Accept(ctx context.Context, cmd AcceptCommand) error {
	if cmd.DriverID == "" {
		return ErrBadRequest
	}
	p, err := s.store.Get(ctx, cmd.PackageID)
	if err != nil {
		return err
	}
	if !CanTransition(p.Status, StatusAccepted) {
		observability.AcceptConflicts.Inc()
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, p.ID, p.Status, StatusAccepted, p.StatusVersion, &cmd.DriverID)
	if err != nil {
		return err
	}
	if !ok {
		observability.AcceptConflicts.Inc()
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		PackageID:  p.ID,
		FromStatus: StatusPending,
		ToStatus:   StatusAccepted,
		ActorType:  "driver",
		ActorID:    &cmd.DriverID,
		CreatedAt:  time.Now(),
	})
	if s.index != nil {
		if err := s.index.Remove(ctx, p.ID); err != nil {
			slog.WarnContext(ctx, "pending_index_remove_failed", "package_id", string(p.ID), "error", err)
		}
	}
	observability.PackagesAccepted.Inc()
	events.PublishBestEffort(ctx, s.events, events.Event{
		Type:        events.PackageAccepted,
		AggregateID: p.ID,
		ActorID:     cmd.DriverID,
		From:        string(StatusPending),
		To:          string(StatusAccepted),
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Package, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListPending(ctx context.Context) []Package {
	return s.store.List(ctx, func(p *Package) bool { return p.Status == StatusPending })
}

func (s *Service) ListByClient(ctx context.Context, clientID types.ID) []Package {
	return s.store.List(ctx, func(p *Package) bool { return p.ClientID == clientID })
}

func (s *Service) ListByDriver(ctx context.Context, driverID types.ID) []Package {
	return s.store.List(ctx, func(p *Package) bool { return p.DriverID != nil && *p.DriverID == driverID })
}

func (s *Service) Events(ctx context.Context, id types.ID) []Event {
	return s.store.Events(ctx, id)
}
