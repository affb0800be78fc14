package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/moodart/internal/apperror"
	"github.com/sakif/moodart/internal/artgen"
	"github.com/sakif/moodart/internal/auth"
	"github.com/sakif/moodart/internal/model"
	"github.com/sakif/moodart/internal/repository"
)

// ArtGenerator resolves a prompt to an image URL. *artgen.Generator is the
// production implementation.
type ArtGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ArtService creates, lists and votes on art pieces.
type ArtService struct {
	art       repository.ArtRepository
	users     repository.UserRepository
	generator ArtGenerator
	logger    *slog.Logger
}

func NewArtService(
	art repository.ArtRepository,
	users repository.UserRepository,
	generator ArtGenerator,
	logger *slog.Logger,
) *ArtService {
	return &ArtService{
		art:       art,
		users:     users,
		generator: generator,
		logger:    logger,
	}
}

type GenerateInput struct {
	Mood   string   `json:"mood" validate:"omitempty,mood"`
	Prompt string   `json:"prompt" validate:"max=1000"`
	Style  string   `json:"style" validate:"max=64"`
	Colors []string `json:"colors" validate:"max=16,dive,required,max=32"`
}

type CollaborateInput struct {
	Mood1        string `json:"mood1" validate:"required,mood"`
	Mood2        string `json:"mood2" validate:"required,mood"`
	PartnerEmail string `json:"partnerEmail" validate:"omitempty,email"`
}

// Generate creates one art piece. Anonymous callers get an unowned piece.
// A request with neither a mood nor a prompt fails with
// artgen.ErrInvalidPrompt before anything is generated.
// A missing mood is stored as Mixed and a missing style as Abstract, but
// neither default is added to the prompt sent for generation.
func (s *ArtService) Generate(ctx context.Context, id auth.Identity, in GenerateInput) (*model.ArtPiece, error) {
	in.Mood = strings.TrimSpace(in.Mood)
	in.Prompt = strings.TrimSpace(in.Prompt)
	in.Style = strings.TrimSpace(in.Style)
	in.Colors = trimAll(in.Colors)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	// Style and colours only decorate a subject; without a mood or a
	// prompt there is nothing to draw.
	if in.Mood == "" && in.Prompt == "" {
		return nil, artgen.ErrInvalidPrompt
	}

	prompt := artgen.ComposePrompt(in.Mood, in.Prompt, in.Style, in.Colors)
	url, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	mood := model.Mood(in.Mood)
	if mood == "" {
		mood = model.MoodMixed
	}
	style := in.Style
	if style == "" {
		style = model.DefaultStyle
	}

	piece := &model.ArtPiece{
		UserID:   id.OwnerID(),
		Mood:     mood,
		ImageURL: url,
		Prompt:   in.Prompt,
		Style:    style,
		Colors:   in.Colors,
	}
	if err := s.art.Create(ctx, piece); err != nil {
		return nil, fmt.Errorf("service/art: saving art piece: %w", err)
	}

	s.logger.Info("art generated",
		slog.String("artID", piece.ID),
		slog.String("mood", string(piece.Mood)),
		slog.Bool("anonymous", !id.Authenticated()),
	)
	return piece, nil
}

// Collaborate blends two moods into a Mixed piece owned by userID. The
// partner is added as a collaborator when their email resolves; otherwise
// the piece is created without them.
func (s *ArtService) Collaborate(ctx context.Context, userID string, in CollaborateInput) (*model.ArtPiece, error) {
	in.Mood1 = strings.TrimSpace(in.Mood1)
	in.Mood2 = strings.TrimSpace(in.Mood2)
	in.PartnerEmail = normalizeEmail(in.PartnerEmail)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	collaborators := []string{userID}
	if in.PartnerEmail != "" {
		partner, err := s.users.GetByEmail(ctx, in.PartnerEmail)
		switch {
		case err == nil:
			if partner.ID != userID {
				collaborators = append(collaborators, partner.ID)
			}
		case errors.Is(err, apperror.ErrNotFound):
			s.logger.Warn("collaboration partner not found, continuing without them",
				slog.String("userID", userID),
			)
		default:
			return nil, fmt.Errorf("service/art: looking up partner: %w", err)
		}
	}

	prompt := artgen.CollaborationPrompt(in.Mood1, in.Mood2)
	url, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	owner := userID
	piece := &model.ArtPiece{
		UserID:        &owner,
		Mood:          model.MoodMixed,
		ImageURL:      url,
		Prompt:        prompt,
		Style:         model.DefaultStyle,
		Collaborators: collaborators,
	}
	if err := s.art.Create(ctx, piece); err != nil {
		return nil, fmt.Errorf("service/art: saving collaboration: %w", err)
	}

	s.logger.Info("collaboration created",
		slog.String("artID", piece.ID),
		slog.Int("collaborators", len(collaborators)),
	)
	return piece, nil
}

// Vote adds one vote. Callers may vote any number of times.
func (s *ArtService) Vote(ctx context.Context, id string) (*model.ArtPiece, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "art piece ID is required")
	}

	piece, err := s.art.IncrementVotes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/art: voting on %s: %w", id, err)
	}
	return piece, nil
}

func (s *ArtService) GetByID(ctx context.Context, id string) (*model.ArtPiece, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "art piece ID is required")
	}

	piece, err := s.art.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/art: getting %s: %w", id, err)
	}
	return piece, nil
}

// History lists the user's pieces, newest first.
func (s *ArtService) History(ctx context.Context, userID string) ([]model.ArtPiece, error) {
	pieces, err := s.art.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/art: listing history: %w", err)
	}
	return pieces, nil
}

// Timeline lists the user's pieces for one mood, oldest first.
func (s *ArtService) Timeline(ctx context.Context, userID, mood string) ([]model.ArtPiece, error) {
	m := model.Mood(strings.TrimSpace(mood))
	if !m.Valid() {
		return nil, apperror.ValidationFailed("mood", fmt.Sprintf("mood must be one of %s", moodList()))
	}

	pieces, err := s.art.ListByOwnerAndMood(ctx, userID, m)
	if err != nil {
		return nil, fmt.Errorf("service/art: listing timeline: %w", err)
	}
	return pieces, nil
}

// generate wraps the generator so its typed errors reach the handler
// unchanged.
func (s *ArtService) generate(ctx context.Context, prompt string) (string, error) {
	url, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("art generation failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("service/art: generating image: %w", err)
	}
	return url, nil
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
