package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "github.com/MovieMinds2/Client/internal/adapters/http_server"
	"github.com/MovieMinds2/Client/internal/adapters/observability"
	"github.com/MovieMinds2/Client/internal/reviewsvc"
	"github.com/MovieMinds2/Client/internal/shared"
	mysqlrepo "github.com/MovieMinds2/Client/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	repo := mysqlrepo.New(db)
	svc := reviewsvc.New(repo, reviewsvc.Policy{
		SingleReviewPerMovie: cfg.SingleReview,
		ProfanityWords:       cfg.ProfanityWords,
	})

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	reviewsvc.Mount(srv, &reviewsvc.Handlers{Svc: svc})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("review backend listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
