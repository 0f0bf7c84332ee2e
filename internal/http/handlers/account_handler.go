// README: Account handlers for register/login/logout.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roadie/internal/http/middleware"
	"roadie/internal/modules/account"
)

type AccountHandler struct {
	account *account.Service
}

func NewAccountHandler(svc *account.Service) *AccountHandler {
	return &AccountHandler{account: svc}
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.account.Register(c.Request.Context(), account.RegisterCommand{
		Email:    req.Email,
		Password: req.Password,
		Role:     account.Role(req.Role),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"status": "registered"})
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	sess, err := h.account.Login(c.Request.Context(), account.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
		Role:     account.Role(req.Role),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"token": sess.Token, "user_id": sess.UserID, "role": sess.Role})
}

func (h *AccountHandler) Logout(c *gin.Context) {
	if err := h.account.Logout(c.Request.Context(), middleware.CallerToken(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
