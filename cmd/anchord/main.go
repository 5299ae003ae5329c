// Command anchord is the Anchor server: the main HTTP surface plus the
// metrics/health sidecar, wired from a single loaded config.Config.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anchorvcs/anchor/internal/authtoken"
	"github.com/anchorvcs/anchor/internal/config"
	"github.com/anchorvcs/anchor/internal/httpapi"
	"github.com/anchorvcs/anchor/internal/logger"
	"github.com/anchorvcs/anchor/internal/metrics"
	"github.com/anchorvcs/anchor/internal/ratelimit"
	"github.com/anchorvcs/anchor/internal/rbac"
	"github.com/anchorvcs/anchor/internal/sshauth"
	"github.com/anchorvcs/anchor/internal/userstore"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML configuration file")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose || strings.EqualFold(os.Getenv("ANCHOR_LOG_LEVEL"), "debug") {
		logger.SetLevel(logger.DEBUG)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load configuration: %v", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// newRefreshStore picks Postgres when cfg.RefreshStoreDSN is set, otherwise
// the default JSON file under RootDir.
func newRefreshStore(ctx context.Context, cfg *config.Config) (authtoken.Store, error) {
	if cfg.RefreshStoreDSN != "" {
		return authtoken.NewPostgresStore(ctx, cfg.RefreshStoreDSN)
	}
	return authtoken.NewJSONFileStore(cfg.RootDir + "/.refresh-tokens.json")
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	objects, err := cfg.NewObjectStore(ctx)
	if err != nil {
		return fmt.Errorf("construct object store: %w", err)
	}

	accessTokens, err := authtoken.NewManager([]byte(cfg.JWTSecret), "anchor")
	if err != nil {
		return fmt.Errorf("construct access token manager: %w", err)
	}
	refreshStore, err := newRefreshStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open refresh token store: %w", err)
	}
	refreshTokens := authtoken.NewRefreshManager(refreshStore)

	users := userstore.New(cfg.RootDir)
	limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer limiter.Close()

	metricsReg := metrics.New()

	srv := &httpapi.Server{
		ReposRoot:     cfg.RootDir,
		AdminUsername: cfg.AdminUsername,
		AccessTokens:  accessTokens,
		RefreshTokens: refreshTokens,
		RBAC:          rbac.NewManager(cfg.AdminUsername),
		Users:         users,
		Objects:       objects,
		Limiter:       limiter,
		Challenges:    sshauth.NewChallengeStore(),
		Metrics:       metricsReg,
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpapi.NewRouter(srv),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// readiness is trivial today: anchord has no external dependency to
	// probe (objects/users/repos all live under RootDir, which Load
	// already confirmed is usable).
	sidecar := metrics.NewServer(cfg.MetricsAddr, func() error { return nil })

	errCh := make(chan error, 2)
	go func() {
		logger.Info("anchord listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		logger.Info("metrics sidecar listening on %s", cfg.MetricsAddr)
		if err := sidecar.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received %s, shutting down", sig)
	case err := <-errCh:
		logger.Error("%v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown: %v", err)
	}
	if err := sidecar.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics sidecar shutdown: %v", err)
	}

	logger.Info("anchord stopped")
	return nil
}
