package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// Identity is the caller of a request: either a known user or anonymous.
// It is resolved once per request and handed to the handler as an argument.
type Identity struct {
	UserID string
}

// Anonymous is the identity of a caller without a usable token.
var Anonymous = Identity{}

// Authenticated reports whether the caller presented a valid token.
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// OwnerID returns a pointer to the user ID, or nil for anonymous callers.
// Art pieces use it directly as their owner column.
func (i Identity) OwnerID() *string {
	if !i.Authenticated() {
		return nil
	}
	id := i.UserID
	return &id
}

// IdentityHandler is an http.HandlerFunc that also receives the caller.
type IdentityHandler func(w http.ResponseWriter, r *http.Request, id Identity)

// Authenticator turns bearer tokens into Identity values.
type Authenticator struct {
	tokens *TokenService
	logger *slog.Logger
}

func NewAuthenticator(tokens *TokenService, logger *slog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, logger: logger}
}

// Resolve reads "Authorization: Bearer <token>" from r. It returns
// ErrNoToken when the header is absent or empty, otherwise whatever
// TokenService.Validate reports.
func (a *Authenticator) Resolve(r *http.Request) (Identity, error) {
	raw := bearerToken(r)
	if raw == "" {
		return Anonymous, ErrNoToken
	}

	userID, err := a.tokens.Validate(raw)
	if err != nil {
		return Anonymous, err
	}
	return Identity{UserID: userID}, nil
}

// RequireAuth rejects callers without a valid token with 401 and never
// invokes h for them.
func (a *Authenticator) RequireAuth(h IdentityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := a.Resolve(r)
		if err != nil {
			a.logger.Debug("rejected unauthenticated request",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			writeUnauthorized(w, err)
			return
		}
		h(w, r, id)
	}
}

// OptionalAuth passes Anonymous to h when the token is missing or bad.
func (a *Authenticator) OptionalAuth(h IdentityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := a.Resolve(r)
		if err != nil && !errors.Is(err, ErrNoToken) {
			a.logger.Debug("ignoring invalid token on optional route",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
		}
		h(w, r, id)
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// writeUnauthorized uses the same {"error","message"} shape as the handler
// package so clients see one error format.
func writeUnauthorized(w http.ResponseWriter, err error) {
	message := ErrTokenInvalid.Error()
	switch {
	case errors.Is(err, ErrNoToken):
		message = ErrNoToken.Error()
	case errors.Is(err, ErrTokenExpired):
		message = ErrTokenExpired.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}
