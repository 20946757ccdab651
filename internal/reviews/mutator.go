package reviews

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MovieMinds2/Client/internal/domain"
)

// Mutator applies local mutations optimistically (like toggling) or
// confirm-first (submit, update, delete) against one Store and the
// remote review service.
//
// Like toggles are serialized per record: the record's lock is held
// from the optimistic patch until the remote call settles, so a second
// toggle queues behind the first and derives its target from whatever
// local state the first one left behind (confirmed or rolled back).
// Opposite-direction requests can never be in flight at the same time.
type Mutator struct {
	svc   domain.ReviewService
	store *Store

	// reload refetches the owning collection after a confirmed write.
	// May be nil for contexts that never submit (the feed).
	reload func(ctx context.Context, viewer domain.Viewer) error

	mu    sync.Mutex
	locks map[int64]*recordLock
}

// recordLock is refcounted so the map entry can be dropped as soon as
// no toggle holds or waits on it; the map stays bounded by in-flight
// work, not by every review ever toggled.
type recordLock struct {
	sync.Mutex
	refs int
}

func NewMutator(svc domain.ReviewService, store *Store, reload func(context.Context, domain.Viewer) error) *Mutator {
	return &Mutator{svc: svc, store: store, reload: reload, locks: map[int64]*recordLock{}}
}

func (m *Mutator) acquireRecord(id int64) *recordLock {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &recordLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()
	l.Lock()
	return l
}

func (m *Mutator) releaseRecord(id int64, l *recordLock) {
	l.Unlock()
	m.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, id)
	}
	m.mu.Unlock()
}

// ToggleLike flips the viewer's like on a review. The store is patched
// before the remote call is issued; on remote failure the exact prior
// values are restored and the error returned.
func (m *Mutator) ToggleLike(ctx context.Context, viewer domain.Viewer, reviewID int64) error {
	if viewer.Zero() {
		return domain.ErrUnauthenticated
	}

	l := m.acquireRecord(reviewID)
	defer m.releaseRecord(reviewID, l)

	prev, ok := m.store.Get(reviewID)
	if !ok {
		return domain.ErrNotFound
	}
	target := !prev.LikedByViewer
	delta := 1
	if !target {
		delta = -1
	}
	m.store.ApplyPatch(reviewID, Patch{LikedByViewer: &target, LikeCountDelta: delta})

	var err error
	if target {
		err = m.svc.AddLike(ctx, viewer, reviewID, prev.MovieID)
	} else {
		err = m.svc.RemoveLike(ctx, viewer, reviewID, prev.MovieID)
	}
	if err != nil {
		m.store.ApplyPatch(reviewID, Patch{LikedByViewer: &prev.LikedByViewer, LikeCount: &prev.LikeCount})
		return fmt.Errorf("toggle like %d: %w", reviewID, err)
	}
	return nil
}

// Submit sends a new review. Creation is never shown optimistically:
// the server owns acceptance (duplicate and content policy) and the
// assigned id, so on success the whole collection is refetched.
func (m *Mutator) Submit(ctx context.Context, viewer domain.Viewer, draft domain.ReviewDraft) error {
	if viewer.Zero() {
		return domain.ErrUnauthenticated
	}
	if err := draft.Validate(); err != nil {
		return err
	}
	if err := m.svc.SubmitReview(ctx, viewer, draft); err != nil {
		return fmt.Errorf("submit review: %w", err)
	}
	if m.reload != nil {
		return m.reload(ctx, viewer)
	}
	return nil
}

// Update sends replacement content and refetches on success; the
// server may transform the stored text, so the submitted string is
// never installed locally.
func (m *Mutator) Update(ctx context.Context, viewer domain.Viewer, reviewID int64, content string) error {
	if viewer.Zero() {
		return domain.ErrUnauthenticated
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content must not be empty", domain.ErrValidation)
	}
	if err := m.svc.UpdateReview(ctx, viewer, reviewID, content); err != nil {
		return fmt.Errorf("update review %d: %w", reviewID, err)
	}
	if m.reload != nil {
		return m.reload(ctx, viewer)
	}
	return nil
}

// Delete removes a review from the store only after the remote delete
// is confirmed. A failed delete must never look like it succeeded.
func (m *Mutator) Delete(ctx context.Context, viewer domain.Viewer, reviewID int64) error {
	if viewer.Zero() {
		return domain.ErrUnauthenticated
	}
	rec, ok := m.store.Get(reviewID)
	if !ok {
		return domain.ErrNotFound
	}
	if err := m.svc.DeleteReview(ctx, viewer, reviewID, rec.MovieID); err != nil {
		return fmt.Errorf("delete review %d: %w", reviewID, err)
	}
	m.store.Remove(reviewID)
	return nil
}
