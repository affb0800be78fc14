// Package repository declares the storage contracts used by the service layer.
// Implementations live in sub-packages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/moodart/internal/model"
)

// UserRepository stores user accounts.
//
// Create must fail with apperror.ErrConflict when the email is taken.
// Lookups return apperror.ErrNotFound for missing rows.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// ArtRepository stores generated art pieces.
type ArtRepository interface {
	Create(ctx context.Context, piece *model.ArtPiece) error
	GetByID(ctx context.Context, id string) (*model.ArtPiece, error)

	// IncrementVotes adds one vote in a single atomic statement and returns
	// the updated piece.
	IncrementVotes(ctx context.Context, id string) (*model.ArtPiece, error)

	// ListByOwner returns the owner's pieces, newest first.
	ListByOwner(ctx context.Context, userID string) ([]model.ArtPiece, error)

	// ListByOwnerAndMood returns the owner's pieces with the given mood,
	// oldest first.
	ListByOwnerAndMood(ctx context.Context, userID string, mood model.Mood) ([]model.ArtPiece, error)
}
