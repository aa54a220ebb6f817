package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/clirdec/presence/internal/config"
	"github.com/clirdec/presence/internal/database"
	"github.com/clirdec/presence/internal/engine"
	"github.com/clirdec/presence/internal/logger"
	"github.com/clirdec/presence/internal/notify"
	"github.com/clirdec/presence/internal/repository"
	"github.com/clirdec/presence/internal/routes"
	"github.com/clirdec/presence/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "presence")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}
	if err := database.SeedAdmin(db, cfg); err != nil {
		log.Fatal("admin seed failed", zap.Error(err))
	}
	if cfg.SeedDemo {
		if err := database.SeedDemo(db, cfg); err != nil {
			log.Fatal("demo seed failed", zap.Error(err))
		}
		log.Info("demo data seeded")
	}

	var notifier engine.Notifier
	if cfg.RedisAddr != "" {
		rn := notify.NewRedisNotifier(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.LivenessChannel, log)
		defer rn.Close()
		notifier = rn
		log.Info("liveness notifications via redis", zap.String("addr", cfg.RedisAddr), zap.String("channel", cfg.LivenessChannel))
	} else {
		notifier = notify.NewLogNotifier(log)
	}

	stores := repository.NewStores(db)
	coord := engine.New(stores, notifier, engine.Config{
		CooldownWindow:     cfg.ScanCooldown,
		StalenessThreshold: cfg.StalenessThreshold,
		SweepInterval:      cfg.SweepInterval,
		GracePeriod:        cfg.GracePeriod,
	}, nil, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	coord.Start(ctx)

	hubs := ws.NewHubs(log)
	hubs.Run()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	routes.Register(r, db, cfg, coord, hubs, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}
