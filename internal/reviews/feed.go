package reviews

import (
	"context"
	"fmt"
	"sync"

	"github.com/MovieMinds2/Client/internal/domain"
)

type FeedState int

const (
	FeedIdle FeedState = iota
	FeedLoading
	FeedLoaded
	FeedLoadingMore
)

// Feed drives the paged, sortable community feed. Each fetch is tagged
// with the generation current at issue time; a response whose
// generation no longer matches arrives for a stale query and must not
// touch the store.
type Feed struct {
	svc      domain.ReviewService
	pageSize int
	store    *Store
	mut      *Mutator

	mu      sync.Mutex
	state   FeedState
	sort    domain.SortKey
	page    int
	gen     uint64
	hasNext bool
}

// FeedView is a read-only snapshot of the controller state.
type FeedView struct {
	Reviews     []domain.Review
	Sort        domain.SortKey
	Page        int
	HasNextPage bool
	State       FeedState
}

func NewFeed(svc domain.ReviewService, pageSize int) *Feed {
	f := &Feed{
		svc:      svc,
		pageSize: pageSize,
		store:    NewStore(),
		sort:     domain.SortLatest,
	}
	f.mut = NewMutator(svc, f.store, nil)
	return f
}

// ChangeSort resets to page 1 under the new sort key, clears the
// collection and fetches the first page. Calling it with the current
// key is a refresh.
func (f *Feed) ChangeSort(ctx context.Context, viewer domain.Viewer, sort domain.SortKey) error {
	if !sort.Valid() {
		return fmt.Errorf("%w: unknown sort key %q", domain.ErrValidation, sort)
	}
	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.sort = sort
	f.page = 1
	f.state = FeedLoading
	f.hasNext = false
	f.store.Clear()
	f.mu.Unlock()

	res, err := f.svc.FetchFeed(ctx, sort, 1, f.pageSize, viewer)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		// Stale response: a newer sort change owns the store now.
		return nil
	}
	if err != nil {
		f.state = FeedIdle
		return fmt.Errorf("fetch feed: %w", err)
	}
	f.store.Replace(res.Reviews)
	f.hasNext = hasNextPage(res.Page, f.pageSize)
	f.state = FeedLoaded
	return nil
}

// LoadMore fetches the next page and appends it after the current
// members. It is a no-op unless a page is loaded and the server
// reported another one.
func (f *Feed) LoadMore(ctx context.Context, viewer domain.Viewer) error {
	f.mu.Lock()
	if f.state != FeedLoaded || !f.hasNext {
		f.mu.Unlock()
		return nil
	}
	gen := f.gen
	sort := f.sort
	page := f.page + 1
	f.state = FeedLoadingMore
	f.mu.Unlock()

	res, err := f.svc.FetchFeed(ctx, sort, page, f.pageSize, viewer)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return nil
	}
	if err != nil {
		f.state = FeedLoaded
		return fmt.Errorf("fetch feed page %d: %w", page, err)
	}
	f.page = page
	f.store.Append(res.Reviews)
	f.hasNext = hasNextPage(res.Page, f.pageSize)
	f.state = FeedLoaded
	return nil
}

func (f *Feed) ToggleLike(ctx context.Context, viewer domain.Viewer, reviewID int64) error {
	return f.mut.ToggleLike(ctx, viewer, reviewID)
}

// Snapshot reads the store under the controller mutex so the members
// always belong to the generation the Sort/Page fields describe.
func (f *Feed) Snapshot() FeedView {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, _ := f.store.Snapshot()
	return FeedView{
		Reviews:     items,
		Sort:        f.sort,
		Page:        f.page,
		HasNextPage: f.hasNext,
		State:       f.state,
	}
}

// hasNextPage derives from server pagination metadata; absent metadata
// conservatively means no more pages.
func hasNextPage(p *domain.PageInfo, pageSize int) bool {
	if p == nil || pageSize <= 0 {
		return false
	}
	totalPages := (p.TotalCount + pageSize - 1) / pageSize
	return p.CurrentPage < totalPages
}
