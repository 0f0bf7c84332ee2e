// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"roadie/internal/modules/account"
	"roadie/internal/modules/order"
	"roadie/internal/modules/pricing"
	"roadie/internal/modules/shift"
	"roadie/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

type pointReq struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// point reports false when a coordinate is missing or out of range.
func (p pointReq) point() (types.Point, bool) {
	if p.Lat == nil || p.Lng == nil {
		return types.Point{}, false
	}
	pt := types.Point{Lat: *p.Lat, Lng: *p.Lng}
	return pt, pt.Valid()
}

// isValidID accepts short alphanumeric ids (matches the id generator).
func isValidID(v string) bool {
	if v == "" || len(v) > 32 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module sentinel errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrBadRequest),
		errors.Is(err, account.ErrBadRequest),
		errors.Is(err, shift.ErrBadRequest),
		errors.Is(err, pricing.ErrBadRequest),
		errors.Is(err, pricing.ErrUnknownRate):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, order.ErrNotFound), errors.Is(err, shift.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrInvalidState),
		errors.Is(err, order.ErrConflict),
		errors.Is(err, shift.ErrInvalidState),
		errors.Is(err, account.ErrDuplicate):
		writeError(c, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "handler_error", "path", c.FullPath(), "error", err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
