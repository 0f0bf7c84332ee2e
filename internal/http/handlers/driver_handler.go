// README: Driver marketplace handlers for pending search, accept and history.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"roadie/internal/http/middleware"
	"roadie/internal/modules/matching"
	"roadie/internal/modules/order"
	"roadie/internal/types"
)

type DriverHandler struct {
	order    *order.Service
	matching *matching.Service
}

func NewDriverHandler(orderSvc *order.Service, matchingSvc *matching.Service) *DriverHandler {
	return &DriverHandler{order: orderSvc, matching: matchingSvc}
}

type nearbyPackage struct {
	order.Package
	AwayKm float64 `json:"away_km"`
}

// ListPending returns every pending package, or with lat/lng only those
// near that point ordered by distance.
func (h *DriverHandler) ListPending(c *gin.Context) {
	ctx := c.Request.Context()
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" && lngStr == "" {
		writeJSON(c, http.StatusOK, gin.H{"packages": h.order.ListPending(ctx)})
		return
	}

	lat, err1 := strconv.ParseFloat(latStr, 64)
	lng, err2 := strconv.ParseFloat(lngStr, 64)
	at := types.Point{Lat: lat, Lng: lng}
	if err1 != nil || err2 != nil || !at.Valid() {
		writeError(c, http.StatusBadRequest, "invalid coordinates")
		return
	}
	var radiusKm float64
	if v := c.Query("radius_km"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			writeError(c, http.StatusBadRequest, "invalid radius_km")
			return
		}
		radiusKm = r
	}

	candidates, err := h.matching.NearbyPending(ctx, at, radiusKm)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]nearbyPackage, 0, len(candidates))
	for _, cand := range candidates {
		p, err := h.order.Get(ctx, cand.ID)
		// The index can briefly lag behind accepts.
		if err != nil || p.Status != order.StatusPending {
			continue
		}
		out = append(out, nearbyPackage{Package: *p, AwayKm: cand.DistanceKm})
	}
	writeJSON(c, http.StatusOK, gin.H{"packages": out})
}

func (h *DriverHandler) Accept(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid package id")
		return
	}
	err := h.order.Accept(c.Request.Context(), order.AcceptCommand{
		PackageID: types.ID(id),
		DriverID:  middleware.CallerUID(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	p, err := h.order.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

func (h *DriverHandler) ListMine(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"packages": h.order.ListByDriver(c.Request.Context(), middleware.CallerUID(c))})
}
