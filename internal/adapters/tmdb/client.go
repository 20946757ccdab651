package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/MovieMinds2/Client/internal/adapters/httpx"
	"github.com/MovieMinds2/Client/internal/adapters/observability"
	"github.com/MovieMinds2/Client/internal/domain"
)

// Client talks to the movie metadata API (TMDB wire shape). Requests
// are rate limited client-side and retried on 429/transient 5xx,
// honoring Retry-After when provided.
type Client struct {
	base string
	hc   *http.Client
	key  string
	lang string
	rl   *rate.Limiter
}

func New(base, key, lang string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if lang == "" {
		lang = "en-US"
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		lang: lang,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- wire types ----

type movieJSON struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	PosterPath  *string  `json:"poster_path"`
	Overview    *string  `json:"overview"`
	ReleaseDate *string  `json:"release_date"`
	VoteAverage *float64 `json:"vote_average"`
}

type pageJSON struct {
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
	Results      []movieJSON `json:"results"`
}

func (m movieJSON) toDomain() domain.Movie {
	return domain.Movie{
		ID:          m.ID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
		VoteAverage: m.VoteAverage,
	}
}

func (p pageJSON) toDomain() domain.MoviePage {
	out := domain.MoviePage{
		Page:         p.Page,
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
		Results:      make([]domain.Movie, 0, len(p.Results)),
	}
	for _, m := range p.Results {
		out.Results = append(out.Results, m.toDomain())
	}
	return out
}

// ---- public API ----

func (c *Client) NowPlaying(ctx context.Context, page int) (domain.MoviePage, error) {
	if page < 1 {
		page = 1
	}
	var out pageJSON
	err := c.get(ctx, "/movie/now_playing", url.Values{"page": {fmt.Sprint(page)}}, &out)
	if err != nil {
		return domain.MoviePage{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) Search(ctx context.Context, query string, page int) (domain.MoviePage, error) {
	if strings.TrimSpace(query) == "" {
		return domain.MoviePage{}, fmt.Errorf("%w: empty query", domain.ErrValidation)
	}
	if page < 1 {
		page = 1
	}
	var out pageJSON
	err := c.get(ctx, "/search/movie", url.Values{"query": {query}, "page": {fmt.Sprint(page)}}, &out)
	if err != nil {
		return domain.MoviePage{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) GetMovie(ctx context.Context, id int64) (domain.Movie, error) {
	var out movieJSON
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), nil, &out); err != nil {
		return domain.Movie{}, err
	}
	return out.toDomain(), nil
}

// ---- internals ----

// get performs a GET with client-side rate limiting, retries, and JSON
// decode into out.
func (c *Client) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.key)
	q.Set("language", c.lang)
	u := c.base + endpoint + "?" + q.Encode()

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && httpx.SleepCtx(ctx, httpx.Backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("tmdb", endpoint, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrNotFound

		case resp.StatusCode == http.StatusUnauthorized:
			resp.Body.Close()
			return fmt.Errorf("tmdb: invalid api key")

		case httpx.Retriable(resp.StatusCode):
			wait := httpx.RetryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = httpx.Backoff(i)
			}
			lastErr = fmt.Errorf("tmdb: remote %d", resp.StatusCode)
			if i < 3 && httpx.SleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("tmdb: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}
