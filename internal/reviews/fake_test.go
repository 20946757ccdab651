package reviews_test

import (
	"context"
	"errors"
	"sync"

	"github.com/MovieMinds2/Client/internal/domain"
)

// fakeService is a scriptable domain.ReviewService. Call names are
// recorded in order; per-method errors simulate remote failures.
type fakeService struct {
	mu    sync.Mutex
	calls []string

	reviews   domain.MovieReviews
	mine      []domain.Review
	feedPages map[int]domain.ReviewFeed
	feedFn    func(sort domain.SortKey, page int) domain.ReviewFeed

	fetchErr  error
	mineErr   error
	feedErr   error
	submitErr error
	deleteErr error
	updateErr error
	likeErr   error
	unlikeErr error

	// feedGate, when set, is closed by the test to release a blocked
	// FetchFeed (stale-response scenarios).
	feedGate chan struct{}
}

var errRemote = errors.New("remote failure")

func (f *fakeService) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeService) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeService) FetchReviews(ctx context.Context, movieID int64, viewer domain.Viewer) (domain.MovieReviews, error) {
	f.record("fetch")
	if f.fetchErr != nil {
		return domain.MovieReviews{}, f.fetchErr
	}
	return f.reviews, nil
}

func (f *fakeService) FetchFeed(ctx context.Context, sort domain.SortKey, page, pageSize int, viewer domain.Viewer) (domain.ReviewFeed, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "feed")
	gate := f.feedGate
	f.feedGate = nil
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.feedErr != nil {
		return domain.ReviewFeed{}, f.feedErr
	}
	if f.feedFn != nil {
		return f.feedFn(sort, page), nil
	}
	return f.feedPages[page], nil
}

func (f *fakeService) FetchMyReviews(ctx context.Context, viewer domain.Viewer) ([]domain.Review, error) {
	f.record("mine")
	if f.mineErr != nil {
		return nil, f.mineErr
	}
	return f.mine, nil
}

func (f *fakeService) SubmitReview(ctx context.Context, viewer domain.Viewer, draft domain.ReviewDraft) error {
	f.record("submit")
	return f.submitErr
}

func (f *fakeService) DeleteReview(ctx context.Context, viewer domain.Viewer, reviewID, movieID int64) error {
	f.record("delete")
	return f.deleteErr
}

func (f *fakeService) UpdateReview(ctx context.Context, viewer domain.Viewer, reviewID int64, content string) error {
	f.record("update")
	return f.updateErr
}

func (f *fakeService) AddLike(ctx context.Context, viewer domain.Viewer, reviewID, movieID int64) error {
	f.record("like")
	return f.likeErr
}

func (f *fakeService) RemoveLike(ctx context.Context, viewer domain.Viewer, reviewID, movieID int64) error {
	f.record("unlike")
	return f.unlikeErr
}

var viewer = domain.Viewer{ID: "u1", Name: "tester"}

func rev(id int64, likes int, liked bool) domain.Review {
	return domain.Review{
		ID: id, AuthorID: "a1", AuthorName: "Ana", MovieID: 7,
		Score: 4, Content: "fine", LikeCount: likes, LikedByViewer: liked,
	}
}
