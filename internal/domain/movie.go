package domain

type Movie struct {
	ID          int64
	Title       string
	PosterPath  *string
	Overview    *string
	ReleaseDate *string
	VoteAverage *float64
}

type MoviePage struct {
	Page         int
	TotalPages   int
	TotalResults int
	Results      []Movie
}

// HasMore mirrors the metadata API's own pagination fields.
func (p MoviePage) HasMore() bool { return p.Page < p.TotalPages }
