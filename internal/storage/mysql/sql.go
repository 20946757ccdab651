package mysql

const insertReviewSQL = `
INSERT INTO reviews
  (movie_id, movie_title, author_id, author_name, score, content)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const updateContentSQL = `
UPDATE reviews SET content = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

const deleteReviewSQL = `
DELETE FROM reviews WHERE id = ?
`

const countByAuthorSQL = `
SELECT COUNT(*) FROM reviews WHERE author_id = ? AND movie_id = ?
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Every read selects the same projection: the review row, its live
// like count, and whether the requesting viewer liked it. The viewer
// id is always the first bind parameter.
const selectReviewPrefix = `
SELECT
  r.id,
  r.movie_id,
  r.movie_title,
  r.author_id,
  r.author_name,
  r.score,
  r.content,
  r.created_at,
  (SELECT COUNT(*) FROM review_likes l WHERE l.review_id = r.id)                        AS like_count,
  EXISTS(SELECT 1 FROM review_likes l WHERE l.review_id = r.id AND l.viewer_id = ?)     AS liked_by_viewer
FROM reviews r
`

const getReviewSQL = selectReviewPrefix + `WHERE r.id = ?`

// Newest first; aligns with the index on (movie_id, created_at, id)
const listByMovieSQL = selectReviewPrefix + `
WHERE r.movie_id = ?
ORDER BY r.created_at DESC, r.id DESC
`

const averageByMovieSQL = `
SELECT COALESCE(AVG(score), 0) FROM reviews WHERE movie_id = ?
`

const listByAuthorSQL = selectReviewPrefix + `
WHERE r.author_id = ?
ORDER BY r.created_at DESC, r.id DESC
`

const countAllSQL = `
SELECT COUNT(*) FROM reviews
`

// Feed pages; the ORDER BY clause is chosen per sort key in the repo.
const (
	feedOrderLatest    = "ORDER BY r.created_at DESC, r.id DESC"
	feedOrderOldest    = "ORDER BY r.created_at ASC, r.id ASC"
	feedOrderMostLiked = "ORDER BY like_count DESC, r.id DESC"
)

// -----------------------------------------------------------------------------
// LIKES
// -----------------------------------------------------------------------------

// Idempotent: liking twice leaves a single row.
const addLikeSQL = `
INSERT INTO review_likes (review_id, viewer_id)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE review_id = review_id
`

const removeLikeSQL = `
DELETE FROM review_likes WHERE review_id = ? AND viewer_id = ?
`
