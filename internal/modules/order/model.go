// README: Package (delivery request) aggregate and status definitions.
package order

import (
	"time"

	"roadie/internal/types"
)

type Status string

const (
	StatusNone     Status = "none"
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
)

type Package struct {
	ID            types.ID    `json:"id"`
	ClientID      types.ID    `json:"client_id"`
	DriverID      *types.ID   `json:"driver_id,omitempty"`
	Status        Status      `json:"status"`
	StatusVersion int         `json:"-"`
	Pickup        types.Point `json:"pickup"`
	Dropoff       types.Point `json:"dropoff"`
	DistanceKm    float64     `json:"distance_km"`
	EtaMin        float64     `json:"eta_min"`
	Price         float64     `json:"price"`
	Currency      string      `json:"currency"`
	CreatedAt     time.Time   `json:"created_at"`
	AcceptedAt    *time.Time  `json:"accepted_at,omitempty"`
}

type Event struct {
	ID         int64
	PackageID  types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

// AllowedTransitions represents the package state flow as code.
// Accepted is terminal.
var AllowedTransitions = map[Status][]Status{
	StatusNone:    {StatusPending},
	StatusPending: {StatusAccepted},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
