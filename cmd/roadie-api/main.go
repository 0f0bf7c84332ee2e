// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"roadie/internal/config"
	"roadie/internal/events"
	httptransport "roadie/internal/http"
	"roadie/internal/infra"
	"roadie/internal/logging"
	"roadie/internal/modules/account"
	"roadie/internal/modules/location"
	"roadie/internal/modules/matching"
	"roadie/internal/modules/order"
	"roadie/internal/modules/pricing"
	"roadie/internal/modules/shift"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := logging.NewLogger(cfg.Log.Level)
	slog.SetDefault(log)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var index matching.Index = matching.NewMemoryIndex()
	if cfg.Redis.Addr != "" {
		rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			log.Error("redis init", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		redisIndex := matching.NewRedisIndex(rdb)
		if err := redisIndex.Reset(ctx); err != nil {
			log.Error("redis reset pending index", "error", err)
			os.Exit(1)
		}
		index = redisIndex
		log.Info("pending index", "backend", "redis", "addr", cfg.Redis.Addr)
	}

	var publisher events.Publisher = events.NewLogPublisher(log)
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(infra.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer kp.Close()
		publisher = kp
		log.Info("event publisher", "backend", "kafka", "topic", cfg.Kafka.Topic)
	}

	pricingSvc := pricing.NewService(pricing.NewStore(
		pricing.RateFromConfig(pricing.KindMarketplace, cfg.Marketplace),
		pricing.RateFromConfig(pricing.KindShift, cfg.Shift.Pricing),
	))
	accountSvc := account.NewService(account.NewStore(), cfg.Auth.BcryptCost)
	matchingSvc := matching.NewService(index, cfg.Matching)
	orderSvc := order.NewService(order.NewStore(), pricingSvc, matchingSvc, publisher)
	shiftSvc := shift.NewService(shift.NewStore(), pricingSvc, location.NewSampler(cfg.Shift.Seed), cfg.Shift, publisher)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Account:  accountSvc,
		Order:    orderSvc,
		Matching: matchingSvc,
		Pricing:  pricingSvc,
		Shift:    shiftSvc,
		Logger:   log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", "error", err)
		}
	}()

	log.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server", "error", err)
		os.Exit(1)
	}
	log.Info("stopped")
}
