// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roadie/internal/http/handlers"
	"roadie/internal/http/middleware"
	"roadie/internal/modules/account"
	"roadie/internal/modules/matching"
	"roadie/internal/modules/order"
	"roadie/internal/modules/pricing"
	"roadie/internal/modules/shift"
)

type ServerDeps struct {
	Account  *account.Service
	Order    *order.Service
	Matching *matching.Service
	Pricing  *pricing.Service
	Shift    *shift.Service
	Logger   *slog.Logger
}

type Server struct {
	account  *account.Service
	order    *order.Service
	matching *matching.Service
	pricing  *pricing.Service
	shift    *shift.Service
	log      *slog.Logger
}

func NewServer(deps ServerDeps) *Server {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		account:  deps.Account,
		order:    deps.Order,
		matching: deps.Matching,
		pricing:  deps.Pricing,
		shift:    deps.Shift,
		log:      log,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(s.log), middleware.Logging(s.log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	accountHandler := handlers.NewAccountHandler(s.account)
	quoteHandler := handlers.NewQuoteHandler(s.pricing)
	api := r.Group("/api")
	api.POST("/accounts/register", accountHandler.Register)
	api.POST("/accounts/login", accountHandler.Login)
	api.POST("/quotes", quoteHandler.Quote)

	authed := api.Group("", middleware.Auth(s.account))
	authed.POST("/accounts/logout", accountHandler.Logout)

	orderHandler := handlers.NewOrderHandler(s.order)
	client := authed.Group("/packages", middleware.RequireRole(account.RoleClient))
	client.POST("", orderHandler.Create)
	client.GET("", orderHandler.ListMine)

	driverHandler := handlers.NewDriverHandler(s.order, s.matching)
	drivers := authed.Group("/drivers/packages", middleware.RequireRole(account.RoleDriver))
	drivers.GET("/pending", driverHandler.ListPending)
	drivers.POST("/:id/accept", driverHandler.Accept)
	drivers.GET("", driverHandler.ListMine)

	shiftHandler := handlers.NewShiftHandler(s.shift)
	shifts := authed.Group("/shifts", middleware.RequireRole(account.RoleDriver))
	shifts.POST("/start", shiftHandler.Start)
	shifts.GET("/current", shiftHandler.Current)
	shifts.POST("/current/request", shiftHandler.Request)
	shifts.POST("/current/accept", shiftHandler.Accept)
	shifts.POST("/current/decline", shiftHandler.Decline)
	shifts.POST("/current/step", shiftHandler.Step)
	shifts.GET("/current/stream", shiftHandler.Stream)

	return r
}
