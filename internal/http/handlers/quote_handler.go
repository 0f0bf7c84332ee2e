// README: Fare quote handler.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roadie/internal/modules/pricing"
)

type QuoteHandler struct {
	pricing *pricing.Service
}

func NewQuoteHandler(svc *pricing.Service) *QuoteHandler {
	return &QuoteHandler{pricing: svc}
}

type quoteReq struct {
	Kind    string   `json:"kind"`
	Pickup  pointReq `json:"pickup"`
	Dropoff pointReq `json:"dropoff"`
}

type quoteResp struct {
	Kind       string             `json:"kind"`
	DistanceKm float64            `json:"distance_km"`
	EtaMin     float64            `json:"eta_min"`
	Fare       float64            `json:"fare"`
	Currency   string             `json:"currency"`
	Breakdown  map[string]float64 `json:"breakdown"`
}

func (h *QuoteHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	pickup, ok1 := req.Pickup.point()
	dropoff, ok2 := req.Dropoff.point()
	if !ok1 || !ok2 {
		writeError(c, http.StatusBadRequest, "invalid coordinates")
		return
	}
	if req.Kind == "" {
		req.Kind = pricing.KindMarketplace
	}
	res, err := h.pricing.Quote(c.Request.Context(), req.Kind, pickup, dropoff)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, quoteResp{
		Kind:       req.Kind,
		DistanceKm: res.DistanceKm,
		EtaMin:     res.DurationMin,
		Fare:       res.Fare,
		Currency:   res.Currency,
		Breakdown:  res.Breakdown,
	})
}
