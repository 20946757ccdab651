package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/MovieMinds2/Client/internal/domain"
)

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func WriteProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// WriteError maps a taxonomy error onto its status; anything unmapped
// gets the fallback (502 at the edge, 500 in the backend).
func WriteError(w http.ResponseWriter, err error, fallback int) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		WriteProblem(w, http.StatusUnauthorized, "Unauthenticated", "sign in to perform this action")
	case errors.Is(err, domain.ErrValidation):
		WriteProblem(w, http.StatusBadRequest, "Invalid input", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		WriteProblem(w, http.StatusForbidden, "Forbidden", "only the author may modify a review")
	case errors.Is(err, domain.ErrNotFound):
		WriteProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		WriteProblem(w, http.StatusConflict, "Duplicate review", "a review for this movie already exists")
	case errors.Is(err, domain.ErrDisallowed):
		WriteProblem(w, http.StatusUnprocessableEntity, "Content not allowed", "the review content violates the content policy")
	default:
		WriteProblem(w, fallback, http.StatusText(fallback), err.Error())
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// CalcETagAndBody marshals once and hashes once, returning both ETag
// and body.
func CalcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// WriteCacheable sends v with an ETag, short-circuiting to 304 when
// the client already holds the current version.
func WriteCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := CalcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// Viewer extracts the identity the edge trusts from request headers.
// Verifying those headers is the identity provider integration's job,
// which sits outside this service.
func Viewer(r *http.Request) domain.Viewer {
	return domain.Viewer{
		ID:   r.Header.Get("X-Viewer-ID"),
		Name: r.Header.Get("X-Viewer-Name"),
	}
}
