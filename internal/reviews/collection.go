package reviews

import (
	"context"
	"fmt"

	"github.com/MovieMinds2/Client/internal/domain"
)

// Collection is the review state for one movie page: a Store plus the
// mutation controller bound to it. It is created when the page opens
// and discarded when the viewer navigates away.
type Collection struct {
	svc     domain.ReviewService
	movieID int64
	store   *Store
	mut     *Mutator
}

func NewCollection(svc domain.ReviewService, movieID int64) *Collection {
	c := &Collection{svc: svc, movieID: movieID, store: NewStore()}
	c.mut = NewMutator(svc, c.store, c.Load)
	return c
}

func (c *Collection) MovieID() int64 { return c.movieID }

// Load refetches the collection from the remote service and replaces
// the local state wholesale, installing the server's aggregate.
func (c *Collection) Load(ctx context.Context, viewer domain.Viewer) error {
	res, err := c.svc.FetchReviews(ctx, c.movieID, viewer)
	if err != nil {
		return fmt.Errorf("fetch reviews for movie %d: %w", c.movieID, err)
	}
	c.store.Replace(res.Reviews)
	c.store.SetAverage(res.Average)
	return nil
}

func (c *Collection) Snapshot() ([]domain.Review, float64) { return c.store.Snapshot() }

func (c *Collection) Get(reviewID int64) (domain.Review, bool) { return c.store.Get(reviewID) }

func (c *Collection) ToggleLike(ctx context.Context, viewer domain.Viewer, reviewID int64) error {
	return c.mut.ToggleLike(ctx, viewer, reviewID)
}

func (c *Collection) Submit(ctx context.Context, viewer domain.Viewer, draft domain.ReviewDraft) error {
	draft.MovieID = c.movieID
	return c.mut.Submit(ctx, viewer, draft)
}

func (c *Collection) Update(ctx context.Context, viewer domain.Viewer, reviewID int64, content string) error {
	return c.mut.Update(ctx, viewer, reviewID, content)
}

func (c *Collection) Delete(ctx context.Context, viewer domain.Viewer, reviewID int64) error {
	return c.mut.Delete(ctx, viewer, reviewID)
}
