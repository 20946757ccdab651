package reviewsvc

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	httpserver "github.com/MovieMinds2/Client/internal/adapters/http_server"
	"github.com/MovieMinds2/Client/internal/domain"
)

// Handlers exposes the review store over the REST surface the edge
// gateway's reviewapi client speaks.
type Handlers struct {
	Svc *Service
}

func Mount(s *httpserver.Server, h *Handlers) {
	r := s.Router()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/v1/movies/{movieID}/reviews", h.movieReviews)
	r.Post("/v1/movies/{movieID}/reviews", h.submit)
	r.Get("/v1/reviews", h.feed)
	r.Get("/v1/reviews/mine", h.mine)
	r.Put("/v1/reviews/{id}", h.update)
	r.Delete("/v1/reviews/{id}", h.delete)
	r.Post("/v1/reviews/{id}/like", h.addLike)
	r.Delete("/v1/reviews/{id}/like", h.removeLike)
}

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

func toWire(rs []domain.Review) []reviewJSON {
	out := make([]reviewJSON, 0, len(rs))
	for _, r := range rs {
		out = append(out, reviewJSON{
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

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handlers) movieReviews(w http.ResponseWriter, r *http.Request) {
	movieID, ok := pathID(r, "movieID")
	if !ok {
		httpserver.WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid movie id")
		return
	}
	mr, err := h.Svc.MovieReviews(r.Context(), movieID, httpserver.Viewer(r))
	if err != nil {
		httpserver.WriteError(w, err, http.StatusInternalServerError)
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, movieReviewsJSON{
		AverageScore: mr.Average,
		Reviews:      toWire(mr.Reviews),
	})
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request) {
	movieID, ok := pathID(r, "movieID")
	if !ok {
		httpserver.WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid movie id")
		return
	}
	var in struct {
		MovieTitle string `json:"movieTitle"`
		Score      int    `json:"score"`
		Content    string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpserver.WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	id, err := h.Svc.Submit(r.Context(), httpserver.Viewer(r), domain.ReviewDraft{
		MovieID:    movieID,
		MovieTitle: in.MovieTitle,
		Score:      in.Score,
		Content:    in.Content,
	})
	if err != nil {
		httpserver.WriteError(w, err, http.StatusInternalServerError)
		return
	}
	httpserver.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handlers) feed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort := domain.SortKey(q.Get("sort"))
	if sort == "" {
		sort = domain.SortLatest
	}
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	feed, err := h.Svc.Feed(r.Context(), sort, page, limit, httpserver.Viewer(r))
	if err != nil {
		httpserver.WriteError(w, err, http.StatusInternalServerError)
		return
	}
	out := feedJSON{Reviews: toWire(feed.Reviews)}
	if feed.Page != nil {
		out.Pagination = &paginationJSON{
			CurrentPage: feed.Page.CurrentPage,
			TotalCount:  feed.Page.TotalCount,
		}
	}
	httpserver.WriteJSON(w, http.StatusOK, out)
}

func (h *Handlers) mine(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Svc.MyReviews(r.Context(), httpserver.Viewer(r))
	if err != nil {
		httpserver.WriteError(w, err, http.StatusInternalServerError)
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, map[string]any{"reviews": toWire(rs)})
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpserver.WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid review id")
		return
	}
	var in struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpserver.WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.Svc.Update(r.Context(), httpserver.Viewer(r), id, in.Content); err != nil {
		httpserver.WriteError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpserver.WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid review id")
		return
	}
	if err := h.Svc.Delete(r.Context(), httpserver.Viewer(r), id); err != nil {
		httpserver.WriteError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) addLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpserver.WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid review id")
		return
	}
	if err := h.Svc.AddLike(r.Context(), httpserver.Viewer(r), id); err != nil {
		httpserver.WriteError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) removeLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpserver.WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid review id")
		return
	}
	if err := h.Svc.RemoveLike(r.Context(), httpserver.Viewer(r), id); err != nil {
		httpserver.WriteError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
