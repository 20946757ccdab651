package reviews

import (
	"context"
	"sync"
	"testing"

	"github.com/MovieMinds2/Client/internal/domain"
)

type staticService struct{}

func (staticService) FetchReviews(ctx context.Context, movieID int64, v domain.Viewer) (domain.MovieReviews, error) {
	return domain.MovieReviews{}, nil
}
func (staticService) FetchFeed(ctx context.Context, sort domain.SortKey, page, pageSize int, v domain.Viewer) (domain.ReviewFeed, error) {
	return domain.ReviewFeed{}, nil
}
func (staticService) FetchMyReviews(ctx context.Context, v domain.Viewer) ([]domain.Review, error) {
	return nil, nil
}
func (staticService) SubmitReview(ctx context.Context, v domain.Viewer, d domain.ReviewDraft) error {
	return nil
}
func (staticService) DeleteReview(ctx context.Context, v domain.Viewer, reviewID, movieID int64) error {
	return nil
}
func (staticService) UpdateReview(ctx context.Context, v domain.Viewer, reviewID int64, content string) error {
	return nil
}
func (staticService) AddLike(ctx context.Context, v domain.Viewer, reviewID, movieID int64) error {
	return nil
}
func (staticService) RemoveLike(ctx context.Context, v domain.Viewer, reviewID, movieID int64) error {
	return nil
}

func lockCount(m *Mutator) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// Record locks must not accumulate: a session lives for its TTL and a
// viewer can toggle across hundreds of reviews in that time.
func TestMutator_RecordLocksEvictedAfterSettle(t *testing.T) {
	store := NewStore()
	var seed []domain.Review
	for id := int64(1); id <= 20; id++ {
		seed = append(seed, domain.Review{ID: id, Score: 3})
	}
	store.Replace(seed)
	m := NewMutator(staticService{}, store, nil)
	v := domain.Viewer{ID: "u1", Name: "tester"}

	var wg sync.WaitGroup
	for id := int64(1); id <= 20; id++ {
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_ = m.ToggleLike(context.Background(), v, id)
			}(id)
		}
	}
	wg.Wait()

	if n := lockCount(m); n != 0 {
		t.Fatalf("%d record locks left after all toggles settled", n)
	}
}
