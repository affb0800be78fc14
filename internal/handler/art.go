package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/moodart/internal/auth"
	"github.com/sakif/moodart/internal/model"
	"github.com/sakif/moodart/internal/service"
)

// Gallery is the part of *service.ArtService the handlers use.
type Gallery interface {
	Generate(ctx context.Context, id auth.Identity, in service.GenerateInput) (*model.ArtPiece, error)
	Collaborate(ctx context.Context, userID string, in service.CollaborateInput) (*model.ArtPiece, error)
	Vote(ctx context.Context, id string) (*model.ArtPiece, error)
	GetByID(ctx context.Context, id string) (*model.ArtPiece, error)
	History(ctx context.Context, userID string) ([]model.ArtPiece, error)
	Timeline(ctx context.Context, userID, mood string) ([]model.ArtPiece, error)
}

// ArtHandler serves the /api/art routes.
type ArtHandler struct {
	gallery Gallery
	logger  *slog.Logger
}

func NewArtHandler(gallery Gallery, logger *slog.Logger) *ArtHandler {
	return &ArtHandler{gallery: gallery, logger: logger}
}

// HandleGenerate handles POST /api/art/generate. Authentication is
// optional; anonymous pieces have no owner.
//
// Request: {"mood": "Happy", "prompt": "...", "style": "Abstract", "colors": ["red"]}
func (h *ArtHandler) HandleGenerate(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var in service.GenerateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	piece, err := h.gallery.Generate(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, piece)
}

// HandleCollaborate handles POST /api/art/collaborate.
//
// Request: {"mood1": "Happy", "mood2": "Sad", "partnerEmail": "b@c.com"}
func (h *ArtHandler) HandleCollaborate(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var in service.CollaborateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	piece, err := h.gallery.Collaborate(r.Context(), id.UserID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, piece)
}

// HandleHistory handles GET /api/art/history.
func (h *ArtHandler) HandleHistory(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	pieces, err := h.gallery.History(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pieces)
}

// HandleTimeline handles GET /api/art/timeline/{mood}.
func (h *ArtHandler) HandleTimeline(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	pieces, err := h.gallery.Timeline(r.Context(), id.UserID, chi.URLParam(r, "mood"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pieces)
}

// HandleGetByID handles GET /api/art/{id}. No authentication.
func (h *ArtHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	piece, err := h.gallery.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, piece)
}

// HandleVote handles POST /api/art/{id}/vote.
func (h *ArtHandler) HandleVote(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	artID := chi.URLParam(r, "id")

	piece, err := h.gallery.Vote(r.Context(), artID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Debug("vote recorded",
		slog.String("artID", artID),
		slog.String("userID", id.UserID),
	)
	writeJSON(w, http.StatusOK, piece)
}
