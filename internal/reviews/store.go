package reviews

import (
	"sync"

	"github.com/MovieMinds2/Client/internal/domain"
)

// Store holds the ordered review list for one query context (a movie
// page or the community feed) together with its aggregate score. It is
// the only shared mutable state; every change goes through Replace,
// Append, ApplyPatch or Remove so readers never observe duplicate ids
// or half-applied updates.
type Store struct {
	mu      sync.RWMutex
	items   []domain.Review
	index   map[int64]int // id -> position in items
	average float64
}

// Patch is a partial update for one record. Nil fields are untouched.
// LikeCountDelta applies relative to the current value and is ignored
// when LikeCount is set absolutely.
type Patch struct {
	LikeCount      *int
	LikeCountDelta int
	LikedByViewer  *bool
	Content        *string
	Score          *int
}

func NewStore() *Store {
	return &Store{index: map[int64]int{}}
}

// Replace discards the current members, installs rs and recomputes the
// aggregate from the new member set.
func (s *Store) Replace(rs []domain.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items[:0]
	s.index = make(map[int64]int, len(rs))
	for _, r := range rs {
		if _, dup := s.index[r.ID]; dup {
			continue
		}
		s.index[r.ID] = len(s.items)
		s.items = append(s.items, r)
	}
	s.average = mean(s.items)
}

// Append adds rs after the current members, dropping any record whose
// id is already present (page overlap must not break the unique-id
// invariant). The aggregate is left as is: on paged feeds it is
// server-supplied per response.
func (s *Store) Append(rs []domain.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rs {
		if _, dup := s.index[r.ID]; dup {
			continue
		}
		s.index[r.ID] = len(s.items)
		s.items = append(s.items, r)
	}
}

// ApplyPatch updates the record with the given id. A patch for an id
// that is no longer present is a silent no-op: a late reconciliation
// for a record the viewer navigated away from must not fail.
func (s *Store) ApplyPatch(id int64, p Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return
	}
	r := &s.items[i]
	switch {
	case p.LikeCount != nil:
		r.LikeCount = *p.LikeCount
	case p.LikeCountDelta != 0:
		r.LikeCount += p.LikeCountDelta
	}
	if r.LikeCount < 0 {
		r.LikeCount = 0
	}
	if p.LikedByViewer != nil {
		r.LikedByViewer = *p.LikedByViewer
	}
	if p.Content != nil {
		r.Content = *p.Content
	}
	if p.Score != nil {
		r.Score = *p.Score
		s.average = mean(s.items)
	}
}

// Remove deletes the record with the given id if present, preserving
// the order of the rest, and recomputes the aggregate.
func (s *Store) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	s.average = mean(s.items)
}

// Clear empties the store. Used when the query context changes.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items[:0]
	s.index = map[int64]int{}
	s.average = 0
}

// SetAverage installs a server-supplied aggregate verbatim.
func (s *Store) SetAverage(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.average = v
}

func (s *Store) Get(id int64) (domain.Review, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Review{}, false
	}
	return s.items[i], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Snapshot returns a copy of the members and the current aggregate.
// The copy keeps callers from aliasing the store's backing array (same
// discipline as copying before caching).
func (s *Store) Snapshot() ([]domain.Review, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Review, len(s.items))
	copy(out, s.items)
	return out, s.average
}

func mean(rs []domain.Review) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.Score
	}
	return float64(sum) / float64(len(rs))
}
