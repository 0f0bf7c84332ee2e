// README: Timer-driven animation loop over Step.
package shift

import (
	"context"
	"time"

	"roadie/internal/types"
)

// RunAnimation calls Step every interval until the trip completes, the
// context is cancelled or Step fails. onStep may be nil.
func (s *Service) RunAnimation(ctx context.Context, driverID types.ID, interval time.Duration, onStep func(StepResult) error) error {
	if interval <= 0 {
		interval = s.cfg.StepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		res, err := s.Step(ctx, driverID)
		if err != nil {
			return err
		}
		if onStep != nil {
			if err := onStep(res); err != nil {
				return err
			}
		}
		if res.Done {
			return nil
		}
	}
}

// StepInterval is the configured animation tick.
func (s *Service) StepInterval() time.Duration {
	return s.cfg.StepInterval
}
