// README: Shift service drives the request/accept/animate/complete cycle.
package shift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roadie/internal/config"
	"roadie/internal/events"
	"roadie/internal/modules/location"
	"roadie/internal/modules/pricing"
	"roadie/internal/observability"
	"roadie/internal/types"
)

var (
	ErrNotFound     = errors.New("shift not found")
	ErrInvalidState = errors.New("invalid shift state")
	ErrBadRequest   = errors.New("bad request")
)

const defaultStepInterval = 300 * time.Millisecond

type Pricing interface {
	Quote(ctx context.Context, kind string, pickup, dropoff types.Point) (pricing.PricingResult, error)
}

type Service struct {
	store   *Store
	pricing Pricing
	sampler *location.Sampler
	cfg     config.ShiftConfig
	events  events.Publisher
}

func NewService(store *Store, pricing Pricing, sampler *location.Sampler, cfg config.ShiftConfig, publisher events.Publisher) *Service {
	if cfg.StepsPerLeg < 1 {
		cfg.StepsPerLeg = 1
	}
	if cfg.StepInterval <= 0 {
		cfg.StepInterval = defaultStepInterval
	}
	return &Service{store: store, pricing: pricing, sampler: sampler, cfg: cfg, events: publisher}
}

// transition records one status change on sess and returns the event to
// publish once the store lock is released.
func transition(sess *Session, to Status) (events.Event, error) {
	from := sess.Status
	if !CanTransition(from, to) {
		return events.Event{}, fmt.Errorf("%w: %s -> %s", ErrInvalidState, from, to)
	}
	sess.Status = to
	return events.Event{
		Type:        events.ShiftTransition,
		AggregateID: sess.DriverID,
		ActorID:     sess.DriverID,
		From:        string(from),
		To:          string(to),
	}, nil
}

func (s *Service) publish(ctx context.Context, evs []events.Event) {
	for _, e := range evs {
		events.PublishBestEffort(ctx, s.events, e)
	}
}

// StartShift places the driver at the configured start point with zero
// earnings. Calling it again resets the shift, abandoning any trip that is
// pending or in progress.
func (s *Service) StartShift(ctx context.Context, driverID types.ID) (*Session, error) {
	if driverID == "" {
		return nil, ErrBadRequest
	}
	sess := &Session{
		DriverID:  driverID,
		Position:  types.Point{Lat: s.cfg.StartLat, Lng: s.cfg.StartLng},
		Status:    StatusNone,
		StartedAt: time.Now(),
	}
	payload := map[string]any{"position": sess.Position}
	if prev := s.store.Start(ctx, sess); prev != nil {
		payload["previous_status"] = string(prev.Status)
		if prev.Pending != nil {
			payload["abandoned_trip_id"] = prev.Pending.ID
			observability.ShiftTrips.WithLabelValues("abandoned").Inc()
		}
	}
	observability.ShiftsStarted.Inc()
	events.PublishBestEffort(ctx, s.events, events.Event{
		Type:        events.ShiftStarted,
		AggregateID: driverID,
		ActorID:     driverID,
		Payload:     payload,
	})
	return sess, nil
}

func (s *Service) Get(ctx context.Context, driverID types.ID) (*Session, error) {
	return s.store.Get(ctx, driverID)
}

// RequestTrip generates a pickup near the driver and a dropoff near the
// pickup, priced at the shift rate.
func (s *Service) RequestTrip(ctx context.Context, driverID types.ID) (*TripRequest, error) {
	var evs []events.Event
	sess, err := s.store.Update(ctx, driverID, func(sess *Session) error {
		if sess.Status != StatusNone {
			return fmt.Errorf("%w: trip already %s", ErrInvalidState, sess.Status)
		}
		pickup := s.sampler.RandPoint(sess.Position, s.cfg.PickupRadiusM)
		dropoff := s.sampler.RandPoint(pickup, s.cfg.DropoffRadiusM)
		quote, err := s.pricing.Quote(ctx, pricing.KindShift, pickup, dropoff)
		if err != nil {
			return fmt.Errorf("quote trip: %w", err)
		}
		e, err := transition(sess, StatusRequested)
		if err != nil {
			return err
		}
		sess.Pending = &TripRequest{
			ID:          types.NewShortID(),
			Pickup:      pickup,
			Dropoff:     dropoff,
			DistanceKm:  quote.DistanceKm,
			EtaMin:      quote.DurationMin,
			Fare:        quote.Fare,
			Currency:    quote.Currency,
			RequestedAt: time.Now(),
		}
		e.Payload = map[string]any{"trip_id": sess.Pending.ID, "fare": quote.Fare}
		evs = append(evs, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evs)
	observability.FareAmount.WithLabelValues(pricing.KindShift).Observe(sess.Pending.Fare)
	return sess.Pending, nil
}

// Accept builds the route position -> pickup -> dropoff and starts the trip.
func (s *Service) Accept(ctx context.Context, driverID types.ID) (*Session, error) {
	var evs []events.Event
	sess, err := s.store.Update(ctx, driverID, func(sess *Session) error {
		if sess.Status != StatusRequested || sess.Pending == nil {
			return fmt.Errorf("%w: no pending trip", ErrInvalidState)
		}
		for _, to := range []Status{StatusAccepted, StatusInProgress} {
			e, err := transition(sess, to)
			if err != nil {
				return err
			}
			evs = append(evs, e)
		}
		sess.Route = location.BuildRoute(s.cfg.StepsPerLeg, sess.Position, sess.Pending.Pickup, sess.Pending.Dropoff)
		sess.Cursor = 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evs)
	return sess, nil
}

func (s *Service) Decline(ctx context.Context, driverID types.ID) (*Session, error) {
	var evs []events.Event
	sess, err := s.store.Update(ctx, driverID, func(sess *Session) error {
		if sess.Status != StatusRequested {
			return fmt.Errorf("%w: no pending trip", ErrInvalidState)
		}
		for _, to := range []Status{StatusDeclined, StatusNone} {
			e, err := transition(sess, to)
			if err != nil {
				return err
			}
			evs = append(evs, e)
		}
		sess.Pending = nil
		sess.TripsDeclined++
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.ShiftTrips.WithLabelValues("declined").Inc()
	s.publish(ctx, evs)
	return sess, nil
}

// Step advances the driver one point along the route. The call made with
// the cursor on the last point completes the trip: the fare is added to
// earnings and the driver is left at the dropoff.
func (s *Service) Step(ctx context.Context, driverID types.ID) (StepResult, error) {
	var (
		evs []events.Event
		res StepResult
	)
	_, err := s.store.Update(ctx, driverID, func(sess *Session) error {
		if sess.Status != StatusInProgress {
			return fmt.Errorf("%w: no trip in progress", ErrInvalidState)
		}
		res.Total = len(sess.Route)
		next, done := location.Step(sess.Route, sess.Cursor)
		if !done {
			sess.Cursor = next
			sess.Position = sess.Route[next]
			res.Cursor, res.Position, res.Earnings = sess.Cursor, sess.Position, sess.Earnings
			return nil
		}

		trip := sess.Pending
		if last, ok := sess.Route.Last(); ok {
			sess.Position = last
		}
		sess.Earnings = pricing.RoundCents(sess.Earnings + trip.Fare)
		sess.TripsCompleted++
		for _, to := range []Status{StatusCompleted, StatusNone} {
			e, err := transition(sess, to)
			if err != nil {
				return err
			}
			evs = append(evs, e)
		}
		evs[0].Payload = map[string]any{"trip_id": trip.ID, "fare": trip.Fare, "earnings": sess.Earnings}
		sess.LastCompleted = trip
		sess.Pending = nil
		sess.Route = nil
		sess.Cursor = 0

		res = StepResult{
			Cursor:   res.Total - 1,
			Total:    res.Total,
			Position: sess.Position,
			Done:     true,
			Earnings: sess.Earnings,
			Trip:     trip,
		}
		return nil
	})
	if err != nil {
		return StepResult{}, err
	}
	if res.Done {
		observability.ShiftTrips.WithLabelValues("completed").Inc()
		// Counter.Add panics on negative values.
		if res.Trip.Fare > 0 {
			observability.ShiftEarnings.Add(res.Trip.Fare)
		}
	}
	s.publish(ctx, evs)
	return res, nil
}
