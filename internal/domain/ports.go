package domain

import "context"

// ReviewService is the remote review backend as the client assumes it.
type ReviewService interface {
	FetchReviews(ctx context.Context, movieID int64, viewer Viewer) (MovieReviews, error)
	FetchFeed(ctx context.Context, sort SortKey, page, pageSize int, viewer Viewer) (ReviewFeed, error)
	FetchMyReviews(ctx context.Context, viewer Viewer) ([]Review, error)
	SubmitReview(ctx context.Context, viewer Viewer, draft ReviewDraft) error
	DeleteReview(ctx context.Context, viewer Viewer, reviewID, movieID int64) error
	UpdateReview(ctx context.Context, viewer Viewer, reviewID int64, content string) error
	AddLike(ctx context.Context, viewer Viewer, reviewID, movieID int64) error
	RemoveLike(ctx context.Context, viewer Viewer, reviewID, movieID int64) error
}

// MovieCatalog is the third-party movie metadata API.
type MovieCatalog interface {
	NowPlaying(ctx context.Context, page int) (MoviePage, error)
	Search(ctx context.Context, query string, page int) (MoviePage, error)
	GetMovie(ctx context.Context, id int64) (Movie, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ReviewRepository is the backend's persistence port.
type ReviewRepository interface {
	InsertReview(ctx context.Context, r Review) (int64, error)
	GetReview(ctx context.Context, id int64, viewerID string) (Review, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	DeleteReview(ctx context.Context, id int64) error
	CountByAuthor(ctx context.Context, authorID string, movieID int64) (int, error)
	ListByMovie(ctx context.Context, movieID int64, viewerID string) ([]Review, float64, error)
	ListFeed(ctx context.Context, sort SortKey, limit, offset int, viewerID string) ([]Review, int, error)
	ListByAuthor(ctx context.Context, authorID string) ([]Review, error)
	AddLike(ctx context.Context, reviewID int64, viewerID string) error
	RemoveLike(ctx context.Context, reviewID int64, viewerID string) error
}
