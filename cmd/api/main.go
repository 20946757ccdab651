package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	server "github.com/MovieMinds2/Client/internal/adapters/http_server"
	"github.com/MovieMinds2/Client/internal/adapters/observability"
	redisad "github.com/MovieMinds2/Client/internal/adapters/redis"
	"github.com/MovieMinds2/Client/internal/adapters/reviewapi"
	"github.com/MovieMinds2/Client/internal/adapters/tmdb"
	"github.com/MovieMinds2/Client/internal/app"
	"github.com/MovieMinds2/Client/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// deps
	catalog, err := tmdb.New(cfg.TMDBBase, cfg.TMDBKey, cfg.TMDBLang, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize TMDB client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	reviewSvc := reviewapi.New(cfg.ReviewAPIBase, 10)

	movies := app.NewCatalogService(catalog, cache, cfg.CacheTTL)
	sessions := app.NewSessions(reviewSvc, cfg.PageSize, cfg.SessionTTL)
	go sessions.Run(ctx)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Catalog: movies, Sessions: sessions})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("gateway listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
