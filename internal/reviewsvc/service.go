package reviewsvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/MovieMinds2/Client/internal/domain"
)

// Policy is the server-side acceptance policy. Whether a viewer may
// hold more than one review per movie is configuration, not a client
// rule; clients only ever see the Duplicate error kind.
type Policy struct {
	SingleReviewPerMovie bool
	ProfanityWords       []string
}

type Service struct {
	repo   domain.ReviewRepository
	policy Policy
}

func New(repo domain.ReviewRepository, policy Policy) *Service {
	words := make([]string, 0, len(policy.ProfanityWords))
	for _, w := range policy.ProfanityWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, w)
		}
	}
	policy.ProfanityWords = words
	return &Service{repo: repo, policy: policy}
}

func (s *Service) checkContent(content string) error {
	low := strings.ToLower(content)
	for _, w := range s.policy.ProfanityWords {
		if strings.Contains(low, w) {
			return fmt.Errorf("%w: disallowed word", domain.ErrDisallowed)
		}
	}
	return nil
}

func (s *Service) Submit(ctx context.Context, viewer domain.Viewer, draft domain.ReviewDraft) (int64, error) {
	if viewer.Zero() {
		return 0, domain.ErrUnauthenticated
	}
	if err := draft.Validate(); err != nil {
		return 0, err
	}
	if err := s.checkContent(draft.Content); err != nil {
		return 0, err
	}
	if s.policy.SingleReviewPerMovie {
		n, err := s.repo.CountByAuthor(ctx, viewer.ID, draft.MovieID)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return 0, domain.ErrDuplicate
		}
	}
	return s.repo.InsertReview(ctx, domain.Review{
		MovieID:    draft.MovieID,
		MovieTitle: draft.MovieTitle,
		AuthorID:   viewer.ID,
		AuthorName: viewer.Name,
		Score:      draft.Score,
		Content:    draft.Content,
	})
}

func (s *Service) Update(ctx context.Context, viewer domain.Viewer, reviewID int64, content string) error {
	if viewer.Zero() {
		return domain.ErrUnauthenticated
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content must not be empty", domain.ErrValidation)
	}
	if err := s.checkContent(content); err != nil {
		return err
	}
	rv, err := s.repo.GetReview(ctx, reviewID, viewer.ID)
	if err != nil {
		return err
	}
	if rv.AuthorID != viewer.ID {
		return domain.ErrForbidden
	}
	return s.repo.UpdateContent(ctx, reviewID, content)
}

func (s *Service) Delete(ctx context.Context, viewer domain.Viewer, reviewID int64) error {
	if viewer.Zero() {
		return domain.ErrUnauthenticated
	}
	rv, err := s.repo.GetReview(ctx, reviewID, viewer.ID)
	if err != nil {
		return err
	}
	if rv.AuthorID != viewer.ID {
		return domain.ErrForbidden
	}
	return s.repo.DeleteReview(ctx, reviewID)
}

func (s *Service) MovieReviews(ctx context.Context, movieID int64, viewer domain.Viewer) (domain.MovieReviews, error) {
	rs, avg, err := s.repo.ListByMovie(ctx, movieID, viewer.ID)
	if err != nil {
		return domain.MovieReviews{}, err
	}
	return domain.MovieReviews{Average: avg, Reviews: rs}, nil
}

func (s *Service) Feed(ctx context.Context, sort domain.SortKey, page, limit int, viewer domain.Viewer) (domain.ReviewFeed, error) {
	if !sort.Valid() {
		return domain.ReviewFeed{}, fmt.Errorf("%w: unknown sort key %q", domain.ErrValidation, sort)
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 15
	}
	rs, total, err := s.repo.ListFeed(ctx, sort, limit, (page-1)*limit, viewer.ID)
	if err != nil {
		return domain.ReviewFeed{}, err
	}
	return domain.ReviewFeed{
		Reviews: rs,
		Page:    &domain.PageInfo{CurrentPage: page, TotalCount: total},
	}, nil
}

func (s *Service) MyReviews(ctx context.Context, viewer domain.Viewer) ([]domain.Review, error) {
	if viewer.Zero() {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListByAuthor(ctx, viewer.ID)
}

func (s *Service) AddLike(ctx context.Context, viewer domain.Viewer, reviewID int64) error {
	if viewer.Zero() {
		return domain.ErrUnauthenticated
	}
	if _, err := s.repo.GetReview(ctx, reviewID, viewer.ID); err != nil {
		return err
	}
	return s.repo.AddLike(ctx, reviewID, viewer.ID)
}

func (s *Service) RemoveLike(ctx context.Context, viewer domain.Viewer, reviewID int64) error {
	if viewer.Zero() {
		return domain.ErrUnauthenticated
	}
	if _, err := s.repo.GetReview(ctx, reviewID, viewer.ID); err != nil {
		return err
	}
	return s.repo.RemoveLike(ctx, reviewID, viewer.ID)
}
