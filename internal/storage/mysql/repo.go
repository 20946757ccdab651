package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MovieMinds2/Client/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) InsertReview(ctx context.Context, rv domain.Review) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.MovieID,
		rv.MovieTitle,
		rv.AuthorID,
		rv.AuthorName,
		rv.Score,
		rv.Content,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) UpdateContent(ctx context.Context, id int64, content string) error {
	res, err := r.db.ExecContext(ctx, updateContentSQL, content, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *Repo) DeleteReview(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteReviewSQL, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *Repo) CountByAuthor(ctx context.Context, authorID string, movieID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countByAuthorSQL, authorID, movieID).Scan(&n)
	return n, err
}

func (r *Repo) GetReview(ctx context.Context, id int64, viewerID string) (domain.Review, error) {
	row := r.db.QueryRowContext(ctx, getReviewSQL, viewerID, id)
	rv, err := scanReview(row)
	if err == sql.ErrNoRows {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, err
}

func (r *Repo) ListByMovie(ctx context.Context, movieID int64, viewerID string) ([]domain.Review, float64, error) {
	rows, err := r.db.QueryContext(ctx, listByMovieSQL, viewerID, movieID)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectReviews(rows)
	if err != nil {
		return nil, 0, err
	}
	var avg float64
	if err := r.db.QueryRowContext(ctx, averageByMovieSQL, movieID).Scan(&avg); err != nil {
		return nil, 0, err
	}
	return out, avg, nil
}

func (r *Repo) ListFeed(ctx context.Context, sort domain.SortKey, limit, offset int, viewerID string) ([]domain.Review, int, error) {
	order := feedOrderLatest
	switch sort {
	case domain.SortOldest:
		order = feedOrderOldest
	case domain.SortMostLiked:
		order = feedOrderMostLiked
	}
	q := fmt.Sprintf("%s%s LIMIT ? OFFSET ?", selectReviewPrefix, order)
	rows, err := r.db.QueryContext(ctx, q, viewerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectReviews(rows)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countAllSQL).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repo) ListByAuthor(ctx context.Context, authorID string) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listByAuthorSQL, authorID, authorID)
	if err != nil {
		return nil, err
	}
	return collectReviews(rows)
}

func (r *Repo) AddLike(ctx context.Context, reviewID int64, viewerID string) error {
	_, err := r.db.ExecContext(ctx, addLikeSQL, reviewID, viewerID)
	return err
}

func (r *Repo) RemoveLike(ctx context.Context, reviewID int64, viewerID string) error {
	_, err := r.db.ExecContext(ctx, removeLikeSQL, reviewID, viewerID)
	return err
}

// ---- scanning ----

type rowScanner interface{ Scan(dest ...any) error }

func scanReview(row rowScanner) (domain.Review, error) {
	var rv domain.Review
	var liked int
	err := row.Scan(
		&rv.ID,
		&rv.MovieID,
		&rv.MovieTitle,
		&rv.AuthorID,
		&rv.AuthorName,
		&rv.Score,
		&rv.Content,
		&rv.CreatedAt,
		&rv.LikeCount,
		&liked,
	)
	rv.LikedByViewer = liked != 0
	return rv, err
}

func collectReviews(rows *sql.Rows) ([]domain.Review, error) {
	defer rows.Close()
	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
