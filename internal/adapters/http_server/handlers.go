package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MovieMinds2/Client/internal/adapters/observability"
	"github.com/MovieMinds2/Client/internal/app"
	"github.com/MovieMinds2/Client/internal/domain"
	"github.com/MovieMinds2/Client/internal/reviews"
)

// Handlers is the edge API: catalog reads plus the session-hosted
// review operations.
type Handlers struct {
	Catalog  *app.CatalogService
	Sessions *app.Sessions
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/movies/now_playing", h.nowPlaying)
	s.mux.Get("/v1/movies/search", h.search)
	s.mux.Get("/v1/movies/{id}", h.getMovie)

	s.mux.Get("/v1/movies/{id}/reviews", h.movieReviews)
	s.mux.Post("/v1/movies/{id}/reviews", h.submitReview)
	s.mux.Get("/v1/reviews/mine", h.myReviews)
	s.mux.Post("/v1/reviews/{id}/toggle-like", h.toggleLike)
	s.mux.Put("/v1/reviews/{id}", h.updateReview)
	s.mux.Delete("/v1/reviews/{id}", h.deleteReview)

	s.mux.Get("/v1/feed", h.feed)
	s.mux.Post("/v1/feed/more", h.feedMore)
}

// ---- view models ----

type reviewView struct {
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

type collectionView struct {
	AverageScore float64      `json:"averageScore"`
	Reviews      []reviewView `json:"reviews"`
}

type feedView struct {
	Reviews     []reviewView   `json:"reviews"`
	Sort        domain.SortKey `json:"sort"`
	Page        int            `json:"page"`
	HasNextPage bool           `json:"hasNextPage"`
}

func toViews(rs []domain.Review) []reviewView {
	out := make([]reviewView, 0, len(rs))
	for _, r := range rs {
		out = append(out, reviewView{
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

func collectionViewOf(c *reviews.Collection) collectionView {
	items, avg := c.Snapshot()
	return collectionView{AverageScore: avg, Reviews: toViews(items)}
}

func feedViewOf(f *reviews.Feed) feedView {
	v := f.Snapshot()
	return feedView{Reviews: toViews(v.Reviews), Sort: v.Sort, Page: v.Page, HasNextPage: v.HasNextPage}
}

// ---- catalog ----

func pageParam(r *http.Request) int {
	p, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if p < 1 {
		p = 1
	}
	return p
}

func (h *Handlers) nowPlaying(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.NowPlaying(r.Context(), pageParam(r))
	if err != nil {
		WriteError(w, err, http.StatusBadGateway)
		return
	}
	WriteCacheable(w, r, out)
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	out, err := h.Catalog.Search(r.Context(), query, pageParam(r))
	if err != nil {
		WriteError(w, err, http.StatusBadGateway)
		return
	}
	WriteCacheable(w, r, out)
}

func (h *Handlers) getMovie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	out, err := h.Catalog.GetMovie(r.Context(), id)
	if err != nil {
		WriteError(w, err, http.StatusBadGateway)
		return
	}
	WriteCacheable(w, r, out)
}

// ---- reviews ----

func (h *Handlers) movieReviews(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	sess := h.Sessions.Get(Viewer(r))
	c := sess.Collection(movieID)
	if err := c.Load(r.Context(), sess.Viewer()); err != nil {
		WriteError(w, err, http.StatusBadGateway)
		return
	}
	WriteJSON(w, http.StatusOK, collectionViewOf(c))
}

func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	var in struct {
		MovieTitle string `json:"movieTitle"`
		Score      int    `json:"score"`
		Content    string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteProblem(w, http.StatusBadRequest, "Invalid body", "malformed JSON")
		return
	}
	sess := h.Sessions.Get(Viewer(r))
	c := sess.Collection(movieID)
	draft := domain.ReviewDraft{MovieID: movieID, MovieTitle: in.MovieTitle, Score: in.Score, Content: in.Content}
	if err := c.Submit(r.Context(), sess.Viewer(), draft); err != nil {
		WriteError(w, err, http.StatusBadGateway)
		return
	}
	WriteJSON(w, http.StatusCreated, collectionViewOf(c))
}

func (h *Handlers) myReviews(w http.ResponseWriter, r *http.Request) {
	sess := h.Sessions.Get(Viewer(r))
	rs, err := sess.MyReviews(r.Context())
	if err != nil {
		WriteError(w, err, http.StatusBadGateway)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"reviews": toViews(rs)})
}

func (h *Handlers) toggleLike(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	sess := h.Sessions.Get(Viewer(r))
	if err := sess.ToggleLike(r.Context(), reviewID); err != nil {
		if !errors.Is(err, domain.ErrUnauthenticated) && !errors.Is(err, domain.ErrNotFound) {
			observability.LikeRollbacks.Inc()
		}
		WriteError(w, err, http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) updateReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	var in struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteProblem(w, http.StatusBadRequest, "Invalid body", "malformed JSON")
		return
	}
	sess := h.Sessions.Get(Viewer(r))
	c, ok := sess.FindReview(reviewID)
	if !ok {
		WriteProblem(w, http.StatusNotFound, "Not Found", "review is not open in this session")
		return
	}
	if err := c.Update(r.Context(), sess.Viewer(), reviewID, in.Content); err != nil {
		WriteError(w, err, http.StatusBadGateway)
		return
	}
	WriteJSON(w, http.StatusOK, collectionViewOf(c))
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	sess := h.Sessions.Get(Viewer(r))
	c, ok := sess.FindReview(reviewID)
	if !ok {
		WriteProblem(w, http.StatusNotFound, "Not Found", "review is not open in this session")
		return
	}
	if err := c.Delete(r.Context(), sess.Viewer(), reviewID); err != nil {
		WriteError(w, err, http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- feed ----

func (h *Handlers) feed(w http.ResponseWriter, r *http.Request) {
	sort := domain.SortKey(r.URL.Query().Get("sort"))
	if sort == "" {
		sort = domain.SortLatest
	}
	sess := h.Sessions.Get(Viewer(r))
	f := sess.Feed()
	if err := f.ChangeSort(r.Context(), sess.Viewer(), sort); err != nil {
		WriteError(w, err, http.StatusBadGateway)
		return
	}
	WriteJSON(w, http.StatusOK, feedViewOf(f))
}

func (h *Handlers) feedMore(w http.ResponseWriter, r *http.Request) {
	sess := h.Sessions.Get(Viewer(r))
	f := sess.Feed()
	if err := f.LoadMore(r.Context(), sess.Viewer()); err != nil {
		WriteError(w, err, http.StatusBadGateway)
		return
	}
	WriteJSON(w, http.StatusOK, feedViewOf(f))
}
