package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/moodart/internal/apperror"
	"github.com/sakif/moodart/internal/artgen"
	"github.com/sakif/moodart/internal/auth"
	"github.com/sakif/moodart/internal/handler"
	"github.com/sakif/moodart/internal/model"
	"github.com/sakif/moodart/internal/service"
)

// =========================================================================
// FAKES
// =========================================================================

type fakeAccounts struct {
	signupIn  service.SignupInput
	loginIn   service.LoginInput
	result    *service.AuthResult
	user      *model.User
	err       error
	gotUserID string
}

func (f *fakeAccounts) Signup(_ context.Context, in service.SignupInput) (*service.AuthResult, error) {
	f.signupIn = in
	return f.result, f.err
}

func (f *fakeAccounts) Login(_ context.Context, in service.LoginInput) (*service.AuthResult, error) {
	f.loginIn = in
	return f.result, f.err
}

func (f *fakeAccounts) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.gotUserID = id
	return f.user, f.err
}

type fakeGallery struct {
	identity   auth.Identity
	userID     string
	artID      string
	mood       string
	generateIn service.GenerateInput
	collabIn   service.CollaborateInput
	piece      *model.ArtPiece
	pieces     []model.ArtPiece
	err        error
}

func (f *fakeGallery) Generate(_ context.Context, id auth.Identity, in service.GenerateInput) (*model.ArtPiece, error) {
	f.identity, f.generateIn = id, in
	return f.piece, f.err
}

func (f *fakeGallery) Collaborate(_ context.Context, userID string, in service.CollaborateInput) (*model.ArtPiece, error) {
	f.userID, f.collabIn = userID, in
	return f.piece, f.err
}

func (f *fakeGallery) Vote(_ context.Context, id string) (*model.ArtPiece, error) {
	f.artID = id
	return f.piece, f.err
}

func (f *fakeGallery) GetByID(_ context.Context, id string) (*model.ArtPiece, error) {
	f.artID = id
	return f.piece, f.err
}

func (f *fakeGallery) History(_ context.Context, userID string) ([]model.ArtPiece, error) {
	f.userID = userID
	return f.pieces, f.err
}

func (f *fakeGallery) Timeline(_ context.Context, userID, mood string) ([]model.ArtPiece, error) {
	f.userID, f.mood = userID, mood
	return f.pieces, f.err
}

// =========================================================================
// HELPERS
// =========================================================================

type testEnv struct {
	router   http.Handler
	tokens   *auth.TokenService
	accounts *fakeAccounts
	gallery  *fakeGallery
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("handler-test-secret-0123456789")
	require.NoError(t, err)
	authn := auth.NewAuthenticator(tokens, logger)

	env := &testEnv{
		tokens:   tokens,
		accounts: &fakeAccounts{},
		gallery:  &fakeGallery{},
	}
	ah := handler.NewAuthHandler(env.accounts, logger)
	arth := handler.NewArtHandler(env.gallery, logger)

	r := chi.NewRouter()
	r.Get("/health", handler.HandleHealth)
	r.Post("/api/auth/signup", ah.HandleSignup)
	r.Post("/api/auth/login", ah.HandleLogin)
	r.Get("/api/auth/me", authn.RequireAuth(ah.HandleMe))
	r.Post("/api/art/generate", authn.OptionalAuth(arth.HandleGenerate))
	r.Post("/api/art/collaborate", authn.RequireAuth(arth.HandleCollaborate))
	r.Get("/api/art/history", authn.RequireAuth(arth.HandleHistory))
	r.Get("/api/art/timeline/{mood}", authn.RequireAuth(arth.HandleTimeline))
	r.Get("/api/art/{id}", arth.HandleGetByID)
	r.Post("/api/art/{id}/vote", authn.RequireAuth(arth.HandleVote))
	env.router = r

	return env
}

func (e *testEnv) do(t *testing.T, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := e.tokens.Generate(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var res handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	return res
}

func samplePiece() *model.ArtPiece {
	owner := "user-1"
	return &model.ArtPiece{
		ID:            "art-1",
		UserID:        &owner,
		Mood:          model.MoodHappy,
		ImageURL:      "https://cdn.example.com/a.png",
		Style:         model.DefaultStyle,
		Colors:        []string{"red"},
		Collaborators: []string{},
	}
}

// =========================================================================
// HEALTH / AUTH
// =========================================================================

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestSignup(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		env := newTestEnv(t)
		env.accounts.result = &service.AuthResult{
			Token:  "tok",
			Avatar: "default_avatar",
			User:   &model.User{ID: "u1", Email: "a@b.com", PasswordHash: "hash"},
		}

		rr := env.do(t, http.MethodPost, "/api/auth/signup", `{"email":"a@b.com","password":"secret1"}`, "")

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "a@b.com", env.accounts.signupIn.Email)
		assert.Equal(t, "secret1", env.accounts.signupIn.Password)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "tok", body["token"])
		assert.Equal(t, "default_avatar", body["avatar"])
		assert.NotContains(t, rr.Body.String(), "hash", "password hash must not be serialised")
	})

	t.Run("duplicate email", func(t *testing.T) {
		env := newTestEnv(t)
		env.accounts.err = apperror.BadRequest("User already exists")

		rr := env.do(t, http.MethodPost, "/api/auth/signup", `{"email":"a@b.com","password":"secret1"}`, "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		res := decodeError(t, rr)
		assert.Equal(t, "bad_request", res.Error)
		assert.Contains(t, res.Message, "already exists")
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.do(t, http.MethodPost, "/api/auth/signup", `{"email":`, "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", decodeError(t, rr).Error)
	})

	t.Run("empty body", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.do(t, http.MethodPost, "/api/auth/signup", "", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "request body is required", decodeError(t, rr).Message)
	})
}

func TestLogin(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		env := newTestEnv(t)
		env.accounts.result = &service.AuthResult{Token: "tok", Avatar: "calm_avatar", User: &model.User{ID: "u1"}}

		rr := env.do(t, http.MethodPost, "/api/auth/login", `{"email":"a@b.com","password":"secret1"}`, "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"token":"tok"`)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		env := newTestEnv(t)
		env.accounts.err = apperror.BadRequest("Invalid Credentials")

		rr := env.do(t, http.MethodPost, "/api/auth/login", `{"email":"a@b.com","password":"nope"}`, "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid Credentials", decodeError(t, rr).Message)
		assert.NotContains(t, rr.Body.String(), "token")
	})
}

func TestMe(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		env := newTestEnv(t)
		env.accounts.user = &model.User{ID: "u1", Email: "a@b.com", Avatar: "happy_avatar"}

		rr := env.do(t, http.MethodGet, "/api/auth/me", "", "u1")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "u1", env.accounts.gotUserID)
		assert.Contains(t, rr.Body.String(), `"avatar":"happy_avatar"`)
	})

	t.Run("no token", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.do(t, http.MethodGet, "/api/auth/me", "", "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "No token, authorization denied", decodeError(t, rr).Message)
	})

	t.Run("deleted user", func(t *testing.T) {
		env := newTestEnv(t)
		env.accounts.err = fmt.Errorf("wrapped: %w", apperror.NotFound("user", "u9"))

		rr := env.do(t, http.MethodGet, "/api/auth/me", "", "u9")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

// =========================================================================
// ART
// =========================================================================

func TestGenerate(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		env := newTestEnv(t)
		env.gallery.piece = samplePiece()

		rr := env.do(t, http.MethodPost, "/api/art/generate",
			`{"mood":"Happy","style":"Abstract","colors":["red","blue"]}`, "")

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.False(t, env.gallery.identity.Authenticated())
		assert.Equal(t, "Happy", env.gallery.generateIn.Mood)
		assert.Equal(t, []string{"red", "blue"}, env.gallery.generateIn.Colors)

		var got model.ArtPiece
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "art-1", got.ID)
		assert.Equal(t, "https://cdn.example.com/a.png", got.ImageURL)
	})

	t.Run("authenticated", func(t *testing.T) {
		env := newTestEnv(t)
		env.gallery.piece = samplePiece()

		rr := env.do(t, http.MethodPost, "/api/art/generate", `{"mood":"Sad"}`, "user-1")

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "user-1", env.gallery.identity.UserID)
	})

	t.Run("bad token is treated as anonymous", func(t *testing.T) {
		env := newTestEnv(t)
		env.gallery.piece = samplePiece()

		req := httptest.NewRequest(http.MethodPost, "/api/art/generate", strings.NewReader(`{"mood":"Sad"}`))
		req.Header.Set("Authorization", "Bearer garbage")
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.False(t, env.gallery.identity.Authenticated())
	})
}

func TestGenerate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"invalid prompt", fmt.Errorf("service: %w", artgen.ErrInvalidPrompt), http.StatusBadRequest, "invalid_prompt"},
		{"validation", apperror.ValidationList([]string{"mood must be one of ..."}), http.StatusBadRequest, "validation_error"},
		{"provider auth", &artgen.Error{Kind: artgen.KindAuthFailure, Message: "bad token"}, http.StatusBadGateway, "auth_failure"},
		{"rate limited", &artgen.Error{Kind: artgen.KindRateLimited, Message: "slow"}, http.StatusTooManyRequests, "rate_limited"},
		{"unreachable", &artgen.Error{Kind: artgen.KindConnectivityFailure, Message: "dns"}, http.StatusServiceUnavailable, "connectivity_failure"},
		{"generic", &artgen.Error{Kind: artgen.KindGenerationFailure, Message: "boom"}, http.StatusBadGateway, "generation_failure"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.gallery.err = tc.err

			rr := env.do(t, http.MethodPost, "/api/art/generate", `{"mood":"Happy"}`, "")

			assert.Equal(t, tc.wantStatus, rr.Code)
			res := decodeError(t, rr)
			assert.Equal(t, tc.wantError, res.Error)
			assert.NotContains(t, res.Message, "disk on fire", "internal details must not leak")
		})
	}
}

func TestCollaborate(t *testing.T) {
	env := newTestEnv(t)
	env.gallery.piece = samplePiece()

	rr := env.do(t, http.MethodPost, "/api/art/collaborate",
		`{"mood1":"Happy","mood2":"Sad","partnerEmail":"b@c.com"}`, "user-1")

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "user-1", env.gallery.userID)
	assert.Equal(t, service.CollaborateInput{Mood1: "Happy", Mood2: "Sad", PartnerEmail: "b@c.com"}, env.gallery.collabIn)

	rr = env.do(t, http.MethodPost, "/api/art/collaborate", `{"mood1":"Happy","mood2":"Sad"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHistoryAndTimeline(t *testing.T) {
	env := newTestEnv(t)
	env.gallery.pieces = []model.ArtPiece{*samplePiece()}

	rr := env.do(t, http.MethodGet, "/api/art/history", "", "user-1")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", env.gallery.userID)

	var pieces []model.ArtPiece
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pieces))
	assert.Len(t, pieces, 1)

	rr = env.do(t, http.MethodGet, "/api/art/timeline/Calm", "", "user-1")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Calm", env.gallery.mood)

	rr = env.do(t, http.MethodGet, "/api/art/history", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHistory_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t)
	env.gallery.pieces = []model.ArtPiece{}

	rr := env.do(t, http.MethodGet, "/api/art/history", "", "user-1")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetByID(t *testing.T) {
	env := newTestEnv(t)
	env.gallery.piece = samplePiece()

	rr := env.do(t, http.MethodGet, "/api/art/art-1", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "art-1", env.gallery.artID)

	env.gallery.err = apperror.NotFound("art piece", "nope")
	rr = env.do(t, http.MethodGet, "/api/art/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "art piece not found with id nope", decodeError(t, rr).Message)
}

func TestVote(t *testing.T) {
	env := newTestEnv(t)
	piece := samplePiece()
	piece.Votes = 4
	env.gallery.piece = piece

	rr := env.do(t, http.MethodPost, "/api/art/art-1/vote", "", "user-2")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "art-1", env.gallery.artID)
	assert.Contains(t, rr.Body.String(), `"votes":4`)

	rr = env.do(t, http.MethodPost, "/api/art/art-1/vote", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
