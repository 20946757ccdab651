package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/MovieMinds2/Client/internal/adapters/observability"
	redisad "github.com/MovieMinds2/Client/internal/adapters/redis"
	"github.com/MovieMinds2/Client/internal/adapters/tmdb"
	"github.com/MovieMinds2/Client/internal/app"
	"github.com/MovieMinds2/Client/internal/shared"
)

// The warmer primes the movie cache before the gateway takes traffic:
// the first WarmPages of now-playing plus the detail record of every
// movie on them.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.TMDBBase).
		Int("workers", cfg.WarmWorkers).
		Int("pages", cfg.WarmPages).
		Msg("warmer starting")

	catalog, err := tmdb.New(cfg.TMDBBase, cfg.TMDBKey, cfg.TMDBLang, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize TMDB client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	movies := app.NewCatalogService(catalog, cache, cfg.CacheTTL)

	sem := semaphore.NewWeighted(int64(cfg.WarmWorkers))
	var wg sync.WaitGroup

	for page := 1; page <= cfg.WarmPages; page++ {
		mp, err := movies.NowPlaying(ctx, page)
		if err != nil {
			log.Warn().Int("page", page).Err(err).Msg("now-playing fetch failed")
			continue
		}
		for _, m := range mp.Results {
			id := m.ID

			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, int64(1)); err != nil {
				log.Fatal().Err(err).Msg("semaphore acquire failed")
			}

			wg.Add(1)
			go func(movieID int64) {
				defer wg.Done()
				defer sem.Release(int64(1))

				if _, err := movies.GetMovie(ctx, movieID); err != nil {
					log.Warn().Int64("id", movieID).Err(err).Msg("warm failed")
					return
				}
				log.Info().Int64("id", movieID).Msg("warm ok")
			}(id)
		}
		if !mp.HasMore() {
			break
		}
	}

	wg.Wait()
	log.Info().Msg("warm completed")
}
