// README: Candidates returned by the pending-package geo index.
package matching

import "roadie/internal/types"

// Candidate is a pending package near a query point.
type Candidate struct {
	ID         types.ID
	Position   types.Point
	DistanceKm float64
}
