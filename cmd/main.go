// cmd/main.go is the application entry point.
// It wires together all layers and starts the API and ops listeners.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/tickethub/internal/auth"
	"github.com/Shivanand-hulikatti/tickethub/internal/booking"
	"github.com/Shivanand-hulikatti/tickethub/internal/cache"
	"github.com/Shivanand-hulikatti/tickethub/internal/config"
	"github.com/Shivanand-hulikatti/tickethub/internal/database"
	"github.com/Shivanand-hulikatti/tickethub/internal/handler"
	"github.com/Shivanand-hulikatti/tickethub/internal/logging"
	"github.com/Shivanand-hulikatti/tickethub/internal/mail"
	"github.com/Shivanand-hulikatti/tickethub/internal/ops"
	"github.com/Shivanand-hulikatti/tickethub/internal/repository"
	"github.com/Shivanand-hulikatti/tickethub/internal/server"
	"github.com/Shivanand-hulikatti/tickethub/internal/service"
)

func main() {
	configPath := flag.String("config", getEnv("TICKETHUB_CONFIG", ""), "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logging.New(cfg.Log)

	ctx := context.Background()

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	defer pool.Close()
	log.Info("connected to PostgreSQL")

	queries := database.DefaultQueries()
	if cfg.Database.QueriesFile != "" {
		if queries, err = database.LoadQueries(cfg.Database.QueriesFile); err != nil {
			log.WithError(err).Fatal("load queries")
		}
	}
	gw := database.NewGateway(pool, queries)
	log.WithField("queries", queries.Len()).Info("query book loaded")

	if cfg.Database.Migrate {
		if err := gw.Migrate(ctx); err != nil {
			log.WithError(err).Fatal("migrate")
		}
		log.Info("schema applied")
	}

	// ── 2. Cache and mail ─────────────────────────────────────────────────
	var catalogCache cache.Cache = cache.Nop{}
	checks := map[string]ops.Pinger{"database": gw}
	if cfg.Redis.Enabled {
		rc := cache.NewRedisCache(cache.NewRedisClient(cfg.Redis), cfg.Redis.CacheTTL)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unreachable, catalog lookups will hit the database")
		}
		catalogCache = rc
		checks["redis"] = rc
	}
	mailer := mail.New(cfg.SMTP, log)

	// ── 3. Wire up layers ────────────────────────────────────────────────
	users := repository.NewUserRepository(gw)
	codes := repository.NewCodeRepository(gw)
	catalogRepo := repository.NewCatalogRepository(gw)
	adminRepo := repository.NewAdminRepository(gw)
	bookingRepo := repository.NewBookingRepository(gw)

	tokens, err := auth.NewTokenCodec([]byte(cfg.JWT.Secret), auth.WithTTL(cfg.JWT.TTL))
	if err != nil {
		log.WithError(err).Fatal("token codec")
	}
	hasher := auth.NewPasswordHasher(0)
	engine := booking.NewEngine(bookingRepo, log)

	accounts := service.NewAuthService(users, codes, hasher, tokens, mailer, log)
	if err := accounts.SeedAdminPassword(ctx, cfg.Admin.InitialPassword); err != nil {
		log.WithError(err).Warn("admin password not seeded")
	}
	catalog := service.NewCatalogService(catalogRepo, catalogCache, log)

	api := handler.New(handler.Deps{
		Auth:     auth.NewAuthenticator(tokens, users),
		Accounts: accounts,
		Catalog:  catalog,
		Admin:    service.NewAdminService(adminRepo, catalogRepo, catalogCache, log),
		Bookings: service.NewBookingService(engine, bookingRepo),
		Log:      log,
	})

	// ── 4. Build the router ───────────────────────────────────────────────
	router := server.NewRouter()
	api.Register(router)
	if cfg.Server.StaticDir != "" {
		router.Static(server.NewStaticFiles(cfg.Server.StaticDir))
	}

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr(),
		ReadBufferSize: cfg.Server.ReadBufferSize,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		HandlerTimeout: cfg.Server.HandlerTimeout,
		MaxConnections: cfg.Server.MaxConnections,
	}, router, log)

	// ── 5. Start listeners with graceful shutdown ─────────────────────────
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, server.ErrServerClosed) {
			log.WithError(err).Fatal("api server")
		}
	}()

	var opsSrv *http.Server
	if cfg.Server.OpsPort != "" {
		opsSrv = ops.NewServer(cfg.Server.Host+":"+cfg.Server.OpsPort, ops.NewRouter(log, checks))
		go func() {
			log.WithField("addr", opsSrv.Addr).Info("ops server listening")
			if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Fatal("ops server")
			}
		}()
	}

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.WithField("signal", sig.String()).Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("api shutdown incomplete")
	}
	if opsSrv != nil {
		if err := opsSrv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("ops shutdown incomplete")
		}
	}
	log.Info("server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
