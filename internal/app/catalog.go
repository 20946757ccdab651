package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MovieMinds2/Client/internal/domain"
)

// CatalogService serves movie metadata through the cache. Keys are
// scoped per query so a page for one search never shadows another.
type CatalogService struct {
	catalog  domain.MovieCatalog
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalogService(c domain.MovieCatalog, cache domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{catalog: c, cache: cache, cacheTTL: ttl}
}

func (s *CatalogService) GetMovie(ctx context.Context, id int64) (domain.Movie, error) {
	key := fmt.Sprintf("movie:%d", id)
	var m domain.Movie
	if ok, _ := s.cache.Get(ctx, key, &m); ok {
		return m, nil
	}
	m, err := s.catalog.GetMovie(ctx, id)
	if err != nil {
		return domain.Movie{}, err
	}
	_ = s.cache.Set(ctx, key, m, int(s.cacheTTL.Seconds()))
	return m, nil
}

func (s *CatalogService) NowPlaying(ctx context.Context, page int) (domain.MoviePage, error) {
	return s.page(ctx, fmt.Sprintf("nowplaying:%d", page), func() (domain.MoviePage, error) {
		return s.catalog.NowPlaying(ctx, page)
	})
}

func (s *CatalogService) Search(ctx context.Context, query string, page int) (domain.MoviePage, error) {
	return s.page(ctx, fmt.Sprintf("search:%s:%d", query, page), func() (domain.MoviePage, error) {
		return s.catalog.Search(ctx, query, page)
	})
}

func (s *CatalogService) page(ctx context.Context, key string, fetch func() (domain.MoviePage, error)) (domain.MoviePage, error) {
	var out domain.MoviePage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	p, err := fetch()
	if err != nil {
		return domain.MoviePage{}, err
	}

	// copy before caching so callers can't mutate the cached value
	cp := deepCopyMoviePage(p)

	// size guard; a runaway payload should not evict everything else
	if b, _ := json.Marshal(cp); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	}
	return cp, nil
}

func deepCopyMoviePage(in domain.MoviePage) domain.MoviePage {
	out := in
	if n := len(in.Results); n > 0 {
		out.Results = make([]domain.Movie, n)
		copy(out.Results, in.Results)
	}
	return out
}
