package domain

import (
	"fmt"
	"strings"
	"time"
)

// Viewer is the identity performing an operation. It is passed
// explicitly everywhere; a zero Viewer means "not signed in".
type Viewer struct {
	ID   string
	Name string
}

func (v Viewer) Zero() bool { return v.ID == "" }

type Review struct {
	ID            int64
	AuthorID      string
	AuthorName    string
	MovieID       int64
	MovieTitle    string
	Score         int // 1..5
	Content       string
	CreatedAt     time.Time
	LikeCount     int
	LikedByViewer bool // annotated per request, not part of the canonical record
}

type ReviewDraft struct {
	MovieID    int64
	MovieTitle string
	Score      int
	Content    string
}

// Validate checks the local constraints. A failing draft must never
// cause a network round-trip.
func (d ReviewDraft) Validate() error {
	if strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("%w: content must not be empty", ErrValidation)
	}
	if d.Score < 1 || d.Score > 5 {
		return fmt.Errorf("%w: score must be between 1 and 5", ErrValidation)
	}
	return nil
}

type MovieReviews struct {
	Average float64
	Reviews []Review
}

type PageInfo struct {
	CurrentPage int
	TotalCount  int
}

type ReviewFeed struct {
	Reviews []Review
	Page    *PageInfo // nil when the server sent no pagination metadata
}

type SortKey string

const (
	SortLatest    SortKey = "latest"
	SortOldest    SortKey = "oldest"
	SortMostLiked SortKey = "likes_desc"
)

func (s SortKey) Valid() bool {
	switch s {
	case SortLatest, SortOldest, SortMostLiked:
		return true
	}
	return false
}
