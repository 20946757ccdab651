package reviewapi

import (
	"bytes"
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

// Client implements domain.ReviewService against the review backend's
// REST surface. Reads are retried on 429/transient 5xx; mutations are
// single-shot, the controllers own what happens after a failure.
type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) *Client {
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// ---- wire types (shared shape with the backend handlers) ----

type reviewJSON struct {
	ID            int64     `json:"id"`
	AuthorID      string    `json:"authorId"`
	AuthorName    string    `json:"authorName"`
	MovieID       int64     `json:"movieId"`
	MovieTitle    string    `json:"movieTitle,omitempty"`
	Score         int       `json:"score"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
	LikeCount     int       `json:"likeCount"`
	LikedByViewer bool      `json:"likedByViewer"`
}

type movieReviewsJSON struct {
	AverageScore float64      `json:"averageScore"`
	Reviews      []reviewJSON `json:"reviews"`
}

type paginationJSON struct {
	CurrentPage int `json:"currentPage"`
	TotalCount  int `json:"totalCount"`
}

type feedJSON struct {
	Reviews    []reviewJSON    `json:"reviews"`
	Pagination *paginationJSON `json:"pagination,omitempty"`
}

func toDomain(rs []reviewJSON) []domain.Review {
	out := make([]domain.Review, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.Review{
			ID:            r.ID,
			AuthorID:      r.AuthorID,
			AuthorName:    r.AuthorName,
			MovieID:       r.MovieID,
			MovieTitle:    r.MovieTitle,
			Score:         r.Score,
			Content:       r.Content,
			CreatedAt:     r.CreatedAt,
			LikeCount:     r.LikeCount,
			LikedByViewer: r.LikedByViewer,
		})
	}
	return out
}

// ---- domain.ReviewService ----

func (c *Client) FetchReviews(ctx context.Context, movieID int64, viewer domain.Viewer) (domain.MovieReviews, error) {
	var out movieReviewsJSON
	err := c.get(ctx, fmt.Sprintf("/v1/movies/%d/reviews", movieID), nil, viewer, &out)
	if err != nil {
		return domain.MovieReviews{}, err
	}
	return domain.MovieReviews{Average: out.AverageScore, Reviews: toDomain(out.Reviews)}, nil
}

func (c *Client) FetchFeed(ctx context.Context, sort domain.SortKey, page, pageSize int, viewer domain.Viewer) (domain.ReviewFeed, error) {
	q := url.Values{
		"sort":  {string(sort)},
		"page":  {fmt.Sprint(page)},
		"limit": {fmt.Sprint(pageSize)},
	}
	var out feedJSON
	if err := c.get(ctx, "/v1/reviews", q, viewer, &out); err != nil {
		return domain.ReviewFeed{}, err
	}
	feed := domain.ReviewFeed{Reviews: toDomain(out.Reviews)}
	if out.Pagination != nil {
		feed.Page = &domain.PageInfo{
			CurrentPage: out.Pagination.CurrentPage,
			TotalCount:  out.Pagination.TotalCount,
		}
	}
	return feed, nil
}

func (c *Client) FetchMyReviews(ctx context.Context, viewer domain.Viewer) ([]domain.Review, error) {
	var out struct {
		Reviews []reviewJSON `json:"reviews"`
	}
	if err := c.get(ctx, "/v1/reviews/mine", nil, viewer, &out); err != nil {
		return nil, err
	}
	return toDomain(out.Reviews), nil
}

func (c *Client) SubmitReview(ctx context.Context, viewer domain.Viewer, draft domain.ReviewDraft) error {
	body := map[string]any{
		"movieTitle": draft.MovieTitle,
		"score":      draft.Score,
		"content":    draft.Content,
	}
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/v1/movies/%d/reviews", draft.MovieID), nil, viewer, body)
}

func (c *Client) DeleteReview(ctx context.Context, viewer domain.Viewer, reviewID, movieID int64) error {
	q := url.Values{"movie": {fmt.Sprint(movieID)}}
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/v1/reviews/%d", reviewID), q, viewer, nil)
}

func (c *Client) UpdateReview(ctx context.Context, viewer domain.Viewer, reviewID int64, content string) error {
	return c.send(ctx, http.MethodPut, fmt.Sprintf("/v1/reviews/%d", reviewID), nil, viewer, map[string]any{"content": content})
}

func (c *Client) AddLike(ctx context.Context, viewer domain.Viewer, reviewID, movieID int64) error {
	q := url.Values{"movie": {fmt.Sprint(movieID)}}
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/v1/reviews/%d/like", reviewID), q, viewer, nil)
}

func (c *Client) RemoveLike(ctx context.Context, viewer domain.Viewer, reviewID, movieID int64) error {
	q := url.Values{"movie": {fmt.Sprint(movieID)}}
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/v1/reviews/%d/like", reviewID), q, viewer, nil)
}

// ---- internals ----

func (c *Client) newRequest(ctx context.Context, method, endpoint string, q url.Values, viewer domain.Viewer, body any) (*http.Request, error) {
	u := c.base + endpoint
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !viewer.Zero() {
		req.Header.Set("X-Viewer-ID", viewer.ID)
		req.Header.Set("X-Viewer-Name", viewer.Name)
	}
	return req, nil
}

// statusErr maps the backend's status codes onto the error taxonomy.
// Anything unmapped is a transient failure.
func statusErr(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrUnauthenticated
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrDuplicate
	case http.StatusUnprocessableEntity:
		return domain.ErrDisallowed
	case http.StatusBadRequest:
		return domain.ErrValidation
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("reviews: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values, viewer domain.Viewer, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := c.newRequest(ctx, http.MethodGet, endpoint, q, viewer, nil)
		if err != nil {
			return err
		}
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
			return lastErr
		}
		observability.ObserveExternal("reviews", endpoint, resp.StatusCode, time.Since(start))

		if resp.StatusCode == http.StatusOK {
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err
		}
		if httpx.Retriable(resp.StatusCode) {
			wait := httpx.RetryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = httpx.Backoff(i)
			}
			lastErr = fmt.Errorf("reviews: remote %d", resp.StatusCode)
			if i < 3 && httpx.SleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		err = statusErr(resp)
		resp.Body.Close()
		return err
	}
	return lastErr
}

func (c *Client) send(ctx context.Context, method, endpoint string, q url.Values, viewer domain.Viewer, body any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, endpoint, q, viewer, body)
	if err != nil {
		return err
	}
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("reviews", endpoint, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return statusErr(resp)
}
