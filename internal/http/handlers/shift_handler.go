// README: Shift simulator handlers, including the websocket animation stream.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"roadie/internal/http/middleware"
	"roadie/internal/modules/shift"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type ShiftHandler struct {
	shift *shift.Service
}

func NewShiftHandler(svc *shift.Service) *ShiftHandler {
	return &ShiftHandler{shift: svc}
}

type stepFrame struct {
	Type string `json:"type"`
	shift.StepResult
}

func (h *ShiftHandler) Start(c *gin.Context) {
	sess, err := h.shift.StartShift(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, sess)
}

func (h *ShiftHandler) Current(c *gin.Context) {
	sess, err := h.shift.Get(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sess)
}

func (h *ShiftHandler) Request(c *gin.Context) {
	trip, err := h.shift.RequestTrip(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, trip)
}

func (h *ShiftHandler) Accept(c *gin.Context) {
	sess, err := h.shift.Accept(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sess)
}

func (h *ShiftHandler) Decline(c *gin.Context) {
	sess, err := h.shift.Decline(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sess)
}

func (h *ShiftHandler) Step(c *gin.Context) {
	res, err := h.shift.Step(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

// Stream upgrades to a websocket and pushes one frame per animation tick
// until the trip completes or the client goes away.
func (h *ShiftHandler) Stream(c *gin.Context) {
	driverID := middleware.CallerUID(c)
	sess, err := h.shift.Get(c.Request.Context(), driverID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if sess.Status != shift.StatusInProgress {
		writeServiceError(c, shift.ErrInvalidState)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err = h.shift.RunAnimation(ctx, driverID, 0, func(r shift.StepResult) error {
		frameType := "step"
		if r.Done {
			frameType = "completed"
		}
		return conn.WriteJSON(stepFrame{Type: frameType, StepResult: r})
	})
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		_ = conn.WriteJSON(errorResponse{Error: err.Error()})
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}
