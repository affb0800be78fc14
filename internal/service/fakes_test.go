package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sakif/moodart/internal/apperror"
	"github.com/sakif/moodart/internal/model"
)

// =========================================================================
// FAKES
// =========================================================================

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.User
	nextID int
	// set to simulate database failures
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.byID {
		if u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}

	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	if user.Avatar == "" {
		user.Avatar = model.DefaultAvatar
	}
	copied := *user
	f.byID[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

// fakeArtRepo is an in-memory repository.ArtRepository. Pieces keep their
// insertion order in seq for stable sorting.
type fakeArtRepo struct {
	mu        sync.Mutex
	pieces    map[string]*model.ArtPiece
	seq       map[string]int
	nextID    int
	createErr error
}

func newFakeArtRepo() *fakeArtRepo {
	return &fakeArtRepo{
		pieces: make(map[string]*model.ArtPiece),
		seq:    make(map[string]int),
	}
}

func (f *fakeArtRepo) Create(_ context.Context, piece *model.ArtPiece) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	piece.ID = fmt.Sprintf("art-%d", f.nextID)
	piece.CreatedAt = time.Now()
	piece.Votes = 0
	if piece.Colors == nil {
		piece.Colors = []string{}
	}
	if piece.Collaborators == nil {
		piece.Collaborators = []string{}
	}
	copied := *piece
	f.pieces[piece.ID] = &copied
	f.seq[piece.ID] = f.nextID
	return nil
}

func (f *fakeArtRepo) GetByID(_ context.Context, id string) (*model.ArtPiece, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.pieces[id]
	if !ok {
		return nil, apperror.NotFound("art piece", id)
	}
	copied := *p
	return &copied, nil
}

func (f *fakeArtRepo) IncrementVotes(_ context.Context, id string) (*model.ArtPiece, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.pieces[id]
	if !ok {
		return nil, apperror.NotFound("art piece", id)
	}
	p.Votes++
	copied := *p
	return &copied, nil
}

func (f *fakeArtRepo) ListByOwner(_ context.Context, userID string) ([]model.ArtPiece, error) {
	out := f.filter(func(p *model.ArtPiece) bool {
		return p.UserID != nil && *p.UserID == userID
	})
	sort.Slice(out, func(i, j int) bool { return f.seq[out[i].ID] > f.seq[out[j].ID] })
	return out, nil
}

func (f *fakeArtRepo) ListByOwnerAndMood(_ context.Context, userID string, mood model.Mood) ([]model.ArtPiece, error) {
	out := f.filter(func(p *model.ArtPiece) bool {
		return p.UserID != nil && *p.UserID == userID && p.Mood == mood
	})
	sort.Slice(out, func(i, j int) bool { return f.seq[out[i].ID] < f.seq[out[j].ID] })
	return out, nil
}

func (f *fakeArtRepo) filter(keep func(*model.ArtPiece) bool) []model.ArtPiece {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.ArtPiece{}
	for _, p := range f.pieces {
		if keep(p) {
			out = append(out, *p)
		}
	}
	return out
}

// fakeGenerator records prompts and returns a canned URL or error.
type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	url     string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
