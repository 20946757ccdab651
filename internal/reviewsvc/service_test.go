package reviewsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MovieMinds2/Client/internal/domain"
)

type fakeRepo struct {
	reviews map[int64]domain.Review
	likes   map[int64]map[string]bool
	nextID  int64

	countByAuthor int
	inserted      []domain.Review
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		reviews: map[int64]domain.Review{},
		likes:   map[int64]map[string]bool{},
		nextID:  1,
	}
}

func (f *fakeRepo) InsertReview(_ context.Context, rv domain.Review) (int64, error) {
	rv.ID = f.nextID
	f.nextID++
	rv.CreatedAt = time.Now()
	f.reviews[rv.ID] = rv
	f.inserted = append(f.inserted, rv)
	return rv.ID, nil
}

func (f *fakeRepo) GetReview(_ context.Context, id int64, viewerID string) (domain.Review, error) {
	rv, ok := f.reviews[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	rv.LikedByViewer = f.likes[id][viewerID]
	return rv, nil
}

func (f *fakeRepo) UpdateContent(_ context.Context, id int64, content string) error {
	rv, ok := f.reviews[id]
	if !ok {
		return domain.ErrNotFound
	}
	rv.Content = content
	f.reviews[id] = rv
	return nil
}

func (f *fakeRepo) DeleteReview(_ context.Context, id int64) error {
	if _, ok := f.reviews[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeRepo) CountByAuthor(_ context.Context, _ string, _ int64) (int, error) {
	return f.countByAuthor, nil
}

func (f *fakeRepo) ListByMovie(_ context.Context, movieID int64, _ string) ([]domain.Review, float64, error) {
	var out []domain.Review
	var sum float64
	for _, rv := range f.reviews {
		if rv.MovieID == movieID {
			out = append(out, rv)
			sum += float64(rv.Score)
		}
	}
	if len(out) == 0 {
		return nil, 0, nil
	}
	return out, sum / float64(len(out)), nil
}

func (f *fakeRepo) ListFeed(_ context.Context, _ domain.SortKey, limit, offset int, _ string) ([]domain.Review, int, error) {
	var out []domain.Review
	for _, rv := range f.reviews {
		out = append(out, rv)
	}
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeRepo) ListByAuthor(_ context.Context, authorID string) ([]domain.Review, error) {
	var out []domain.Review
	for _, rv := range f.reviews {
		if rv.AuthorID == authorID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (f *fakeRepo) AddLike(_ context.Context, id int64, viewerID string) error {
	if f.likes[id] == nil {
		f.likes[id] = map[string]bool{}
	}
	f.likes[id][viewerID] = true
	return nil
}

func (f *fakeRepo) RemoveLike(_ context.Context, id int64, viewerID string) error {
	delete(f.likes[id], viewerID)
	return nil
}

var (
	alice = domain.Viewer{ID: "u1", Name: "alice"}
	bob   = domain.Viewer{ID: "u2", Name: "bob"}
)

func validDraft() domain.ReviewDraft {
	return domain.ReviewDraft{MovieID: 7, MovieTitle: "Heat", Score: 4, Content: "tense and meticulous"}
}

func TestSubmit_RequiresViewer(t *testing.T) {
	svc := New(newFakeRepo(), Policy{})
	if _, err := svc.Submit(context.Background(), domain.Viewer{}, validDraft()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
}

func TestSubmit_RejectsInvalidDraft(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, Policy{})

	d := validDraft()
	d.Score = 9
	if _, err := svc.Submit(context.Background(), alice, d); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("invalid draft must not reach the repository")
	}
}

func TestSubmit_RejectsDisallowedWords(t *testing.T) {
	svc := New(newFakeRepo(), Policy{ProfanityWords: []string{"rubbish"}})

	d := validDraft()
	d.Content = "utter RUBBISH from start to end"
	if _, err := svc.Submit(context.Background(), alice, d); !errors.Is(err, domain.ErrDisallowed) {
		t.Fatalf("want ErrDisallowed, got %v", err)
	}
}

func TestSubmit_DuplicatePolicy(t *testing.T) {
	repo := newFakeRepo()
	repo.countByAuthor = 1
	svc := New(repo, Policy{SingleReviewPerMovie: true})

	if _, err := svc.Submit(context.Background(), alice, validDraft()); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}

	// With the policy off the same state is accepted.
	svc = New(repo, Policy{SingleReviewPerMovie: false})
	id, err := svc.Submit(context.Background(), alice, validDraft())
	if err != nil || id == 0 {
		t.Fatalf("submit: id=%d err=%v", id, err)
	}
}

func TestUpdate_AuthorOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, Policy{})
	id, err := svc.Submit(context.Background(), alice, validDraft())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := svc.Update(context.Background(), bob, id, "mine now"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if err := svc.Update(context.Background(), alice, id, "second thoughts"); err != nil {
		t.Fatalf("author update: %v", err)
	}
	if repo.reviews[id].Content != "second thoughts" {
		t.Fatalf("content not updated: %q", repo.reviews[id].Content)
	}
}

func TestDelete_AuthorOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, Policy{})
	id, err := svc.Submit(context.Background(), alice, validDraft())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := svc.Delete(context.Background(), bob, id); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), alice, id); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if err := svc.Delete(context.Background(), alice, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestFeed_RejectsUnknownSortAndClampsPaging(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, Policy{})
	for i := 0; i < 3; i++ {
		if _, err := svc.Submit(context.Background(), alice, validDraft()); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	if _, err := svc.Feed(context.Background(), "newest_first", 1, 15, alice); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}

	feed, err := svc.Feed(context.Background(), domain.SortLatest, 0, -5, alice)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if feed.Page == nil || feed.Page.CurrentPage != 1 || feed.Page.TotalCount != 3 {
		t.Fatalf("page metadata: %+v", feed.Page)
	}
}

func TestMyReviews_AuthorScoped(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, Policy{})

	if _, err := svc.MyReviews(context.Background(), domain.Viewer{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}

	if _, err := svc.Submit(context.Background(), alice, validDraft()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	other := validDraft()
	other.MovieID = 9
	if _, err := svc.Submit(context.Background(), bob, other); err != nil {
		t.Fatalf("submit: %v", err)
	}

	mine, err := svc.MyReviews(context.Background(), alice)
	if err != nil {
		t.Fatalf("my reviews: %v", err)
	}
	if len(mine) != 1 || mine[0].AuthorID != alice.ID {
		t.Fatalf("want only alice's review, got %+v", mine)
	}
}

func TestLike_RequiresExistingReview(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, Policy{})

	if err := svc.AddLike(context.Background(), alice, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	id, err := svc.Submit(context.Background(), alice, validDraft())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.AddLike(context.Background(), bob, id); err != nil {
		t.Fatalf("like: %v", err)
	}
	rv, err := svc.repo.GetReview(context.Background(), id, bob.ID)
	if err != nil || !rv.LikedByViewer {
		t.Fatalf("like not recorded: %+v err=%v", rv, err)
	}
	if err := svc.RemoveLike(context.Background(), bob, id); err != nil {
		t.Fatalf("unlike: %v", err)
	}
}
