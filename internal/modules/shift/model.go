// README: Simulated driver shift: session state, trip requests and status flow.
package shift

import (
	"time"

	"roadie/internal/modules/location"
	"roadie/internal/types"
)

type Status string

const (
	StatusNone       Status = "none"
	StatusRequested  Status = "requested"
	StatusAccepted   Status = "accepted"
	StatusDeclined   Status = "declined"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// TripRequest is a generated trip offered to the driver.
type TripRequest struct {
	ID          types.ID    `json:"id"`
	Pickup      types.Point `json:"pickup"`
	Dropoff     types.Point `json:"dropoff"`
	DistanceKm  float64     `json:"distance_km"`
	EtaMin      float64     `json:"eta_min"`
	Fare        float64     `json:"fare"`
	Currency    string      `json:"currency"`
	RequestedAt time.Time   `json:"requested_at"`
}

// Session is one driver's shift. Route and Cursor are only set while a
// trip is in progress.
type Session struct {
	DriverID       types.ID       `json:"driver_id"`
	Position       types.Point    `json:"position"`
	Earnings       float64        `json:"earnings"`
	TripsCompleted int            `json:"trips_completed"`
	TripsDeclined  int            `json:"trips_declined"`
	Status         Status         `json:"status"`
	Pending        *TripRequest   `json:"pending,omitempty"`
	Route          location.Route `json:"route,omitempty"`
	Cursor         int            `json:"cursor"`
	LastCompleted  *TripRequest   `json:"last_completed,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
}

// StepResult reports one animation tick. Trip is set on the tick that
// completes the trip.
type StepResult struct {
	Cursor   int          `json:"cursor"`
	Total    int          `json:"total"`
	Position types.Point  `json:"position"`
	Done     bool         `json:"done"`
	Earnings float64      `json:"earnings"`
	Trip     *TripRequest `json:"trip,omitempty"`
}

// AllowedTransitions is the shift trip cycle.
var AllowedTransitions = map[Status][]Status{
	StatusNone:       {StatusRequested},
	StatusRequested:  {StatusAccepted, StatusDeclined},
	StatusDeclined:   {StatusNone},
	StatusAccepted:   {StatusInProgress},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {StatusNone},
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
