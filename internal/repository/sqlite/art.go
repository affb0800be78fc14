package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/moodart/internal/apperror"
	"github.com/sakif/moodart/internal/model"
	"github.com/sakif/moodart/internal/repository"
)

var _ repository.ArtRepository = (*ArtDB)(nil)

const artColumns = `id, user_id, mood, image_url, prompt, style, colors, votes, collaborators, created_at`

// ArtDB is the art_pieces table.
type ArtDB struct {
	conn *sql.DB
}

// Create inserts a piece and fills in ID and CreatedAt. Votes always start
// at zero regardless of what the caller set.
func (a *ArtDB) Create(ctx context.Context, piece *model.ArtPiece) error {
	piece.ID = xid.New().String()
	piece.CreatedAt = time.Now().UTC()
	piece.Votes = 0
	if piece.Colors == nil {
		piece.Colors = []string{}
	}
	if piece.Collaborators == nil {
		piece.Collaborators = []string{}
	}

	colors, err := json.Marshal(piece.Colors)
	if err != nil {
		return fmt.Errorf("sqlite: encoding colors: %w", err)
	}
	collaborators, err := json.Marshal(piece.Collaborators)
	if err != nil {
		return fmt.Errorf("sqlite: encoding collaborators: %w", err)
	}

	var owner sql.NullString
	if piece.UserID != nil {
		owner = sql.NullString{String: *piece.UserID, Valid: true}
	}

	_, err = a.conn.ExecContext(ctx,
		`INSERT INTO art_pieces (`+artColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		piece.ID,
		owner,
		string(piece.Mood),
		piece.ImageURL,
		piece.Prompt,
		piece.Style,
		string(colors),
		piece.Votes,
		string(collaborators),
		piece.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting art piece: %w", err)
	}

	return nil
}

// GetByID returns apperror.ErrNotFound when no piece has the given ID.
func (a *ArtDB) GetByID(ctx context.Context, id string) (*model.ArtPiece, error) {
	row := a.conn.QueryRowContext(ctx,
		`SELECT `+artColumns+` FROM art_pieces WHERE id = ?`, id)

	piece, err := scanArt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("art piece", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting art piece %s: %w", id, err)
	}
	return piece, nil
}

// IncrementVotes bumps the counter inside the UPDATE itself, so concurrent
// voters never overwrite each other.
func (a *ArtDB) IncrementVotes(ctx context.Context, id string) (*model.ArtPiece, error) {
	result, err := a.conn.ExecContext(ctx,
		`UPDATE art_pieces SET votes = votes + 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: voting on art piece %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperror.NotFound("art piece", id)
	}

	return a.GetByID(ctx, id)
}

func (a *ArtDB) ListByOwner(ctx context.Context, userID string) ([]model.ArtPiece, error) {
	return a.list(ctx,
		`SELECT `+artColumns+` FROM art_pieces
		 WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
}

func (a *ArtDB) ListByOwnerAndMood(ctx context.Context, userID string, mood model.Mood) ([]model.ArtPiece, error) {
	return a.list(ctx,
		`SELECT `+artColumns+` FROM art_pieces
		 WHERE user_id = ? AND mood = ?
		 ORDER BY created_at ASC, rowid ASC`,
		userID, string(mood),
	)
}

func (a *ArtDB) list(ctx context.Context, query string, args ...any) ([]model.ArtPiece, error) {
	rows, err := a.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing art pieces: %w", err)
	}
	defer rows.Close()

	pieces := []model.ArtPiece{}
	for rows.Next() {
		piece, err := scanArt(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning art piece row: %w", err)
		}
		pieces = append(pieces, *piece)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating art pieces: %w", err)
	}

	return pieces, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanArt(s scanner) (*model.ArtPiece, error) {
	var (
		piece         model.ArtPiece
		owner         sql.NullString
		mood          string
		colors        string
		collaborators string
	)

	err := s.Scan(
		&piece.ID,
		&owner,
		&mood,
		&piece.ImageURL,
		&piece.Prompt,
		&piece.Style,
		&colors,
		&piece.Votes,
		&collaborators,
		&piece.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if owner.Valid {
		piece.UserID = &owner.String
	}
	piece.Mood = model.Mood(mood)

	if err := json.Unmarshal([]byte(colors), &piece.Colors); err != nil {
		return nil, fmt.Errorf("decoding colors: %w", err)
	}
	if err := json.Unmarshal([]byte(collaborators), &piece.Collaborators); err != nil {
		return nil, fmt.Errorf("decoding collaborators: %w", err)
	}

	return &piece, nil
}
