package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kyaha-vine/DistruptFightingICE/internal/audit"
	"github.com/kyaha-vine/DistruptFightingICE/internal/bridge"
	"github.com/kyaha-vine/DistruptFightingICE/internal/catalog"
	"github.com/kyaha-vine/DistruptFightingICE/internal/chat"
	"github.com/kyaha-vine/DistruptFightingICE/internal/config"
	"github.com/kyaha-vine/DistruptFightingICE/internal/core"
	"github.com/kyaha-vine/DistruptFightingICE/internal/httpapi"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		logger.Fatal("bad configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditLog, err := audit.Open(cfg.AuditPath)
	if err != nil {
		// Placement flow degrades to unlogged; everything else still runs.
		logger.Warn("audit log unavailable", zap.String("path", cfg.AuditPath), zap.Error(err))
		auditLog = nil
	} else {
		defer auditLog.Close()
	}

	br := bridge.New(cfg.BridgeAddr, logger.Named("bridge"))
	defer br.Close()

	c := core.New(ctx, core.Config{
		StartupDelay:     cfg.StartupDelay,
		RoundDuration:    cfg.RoundDuration,
		GraceWindow:      cfg.GraceWindow,
		Cooldown:         cfg.Cooldown,
		PlacementTimeout: cfg.PlacementTimeout,
	},
		catalog.Default(),
		br,
		auditLog,
		chat.LogAnnouncer{Log: logger.Named("chat")},
		rand.New(rand.NewSource(time.Now().UnixNano())),
		logger.Named("core"),
	)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(c, logger.Named("ws")),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("bye")
}
