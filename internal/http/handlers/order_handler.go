// README: Client package handlers (create/list own).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roadie/internal/http/middleware"
	"roadie/internal/modules/order"
)

type OrderHandler struct {
	order *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{order: svc}
}

type createPackageReq struct {
	Pickup  pointReq `json:"pickup"`
	Dropoff pointReq `json:"dropoff"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createPackageReq
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
	p, err := h.order.Create(c.Request.Context(), order.CreateCommand{
		ClientID: middleware.CallerUID(c),
		Pickup:   pickup,
		Dropoff:  dropoff,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, p)
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"packages": h.order.ListByClient(c.Request.Context(), middleware.CallerUID(c))})
}
