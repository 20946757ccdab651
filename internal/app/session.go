package app

import (
	"context"
	"sync"
	"time"

	"github.com/MovieMinds2/Client/internal/domain"
	"github.com/MovieMinds2/Client/internal/reviews"
)

// Session is one viewer's review state: the open per-movie collections
// and the community feed. It is the server-side home of the state the
// browser pages used to keep.
type Session struct {
	viewer domain.Viewer

	mu          sync.Mutex
	collections map[int64]*reviews.Collection
	feed        *reviews.Feed
	lastSeen    time.Time

	svc      domain.ReviewService
	pageSize int
}

func (s *Session) Viewer() domain.Viewer { return s.viewer }

// Collection returns the review collection for a movie, creating it on
// first access. The caller decides when to Load.
func (s *Session) Collection(movieID int64) *reviews.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[movieID]
	if !ok {
		c = reviews.NewCollection(s.svc, movieID)
		s.collections[movieID] = c
	}
	return c
}

// CloseCollection discards a movie's collection (viewer navigated away).
func (s *Session) CloseCollection(movieID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, movieID)
}

func (s *Session) Feed() *reviews.Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feed == nil {
		s.feed = reviews.NewFeed(s.svc, s.pageSize)
	}
	return s.feed
}

// FindReview looks a review up across the session's open collections.
// Handlers use it to route a mutation to the right store.
func (s *Session) FindReview(reviewID int64) (*reviews.Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.collections {
		if _, ok := c.Get(reviewID); ok {
			return c, true
		}
	}
	return nil, false
}

// ToggleLike routes the toggle to whichever open context holds the
// record; the per-movie collections win over the feed when both do.
func (s *Session) ToggleLike(ctx context.Context, reviewID int64) error {
	if c, ok := s.FindReview(reviewID); ok {
		return c.ToggleLike(ctx, s.viewer, reviewID)
	}
	return s.Feed().ToggleLike(ctx, s.viewer, reviewID)
}

// MyReviews fetches everything the viewer has written, across movies.
func (s *Session) MyReviews(ctx context.Context) ([]domain.Review, error) {
	if s.viewer.Zero() {
		return nil, domain.ErrUnauthenticated
	}
	return s.svc.FetchMyReviews(ctx, s.viewer)
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}

// Sessions is the registry of live viewer sessions, evicted after a
// period of inactivity.
type Sessions struct {
	svc      domain.ReviewService
	pageSize int
	ttl      time.Duration

	mu   sync.Mutex
	byID map[string]*Session
}

func NewSessions(svc domain.ReviewService, pageSize int, ttl time.Duration) *Sessions {
	return &Sessions{svc: svc, pageSize: pageSize, ttl: ttl, byID: map[string]*Session{}}
}

// Get returns the viewer's session, creating one if needed. A zero
// viewer still gets a session: browsing and reading reviews does not
// require sign-in, only mutations do. All signed-out viewers share
// the one anonymous session: its state is read-only cache (mutations
// need a signed-in viewer), so the worst contention is one browser's
// sort change refreshing another's feed.
func (m *Sessions) Get(viewer domain.Viewer) *Session {
	key := viewer.ID
	if key == "" {
		key = "anonymous"
	}
	m.mu.Lock()
	s, ok := m.byID[key]
	if !ok {
		s = &Session{
			viewer:      viewer,
			collections: map[int64]*reviews.Collection{},
			svc:         m.svc,
			pageSize:    m.pageSize,
			lastSeen:    time.Now(),
		}
		m.byID[key] = s
	}
	m.mu.Unlock()
	s.touch()
	return s
}

// Run sweeps idle sessions until ctx is canceled.
func (m *Sessions) Run(ctx context.Context) {
	interval := m.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.sweep(time.Now().Add(-m.ttl))
		}
	}
}

func (m *Sessions) sweep(cutoff time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.byID {
		if s.idleSince(cutoff) {
			delete(m.byID, id)
		}
	}
}
