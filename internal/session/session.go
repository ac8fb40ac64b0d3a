// Package session keeps track of the signed-in user. The identity token is
// issued elsewhere; this package only reads the profile out of it, stores
// it, and hands it to whoever needs it through a context.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oneminnews/oneminnews/internal/models"
)

// ErrMalformedToken is returned when a token has no readable payload.
var ErrMalformedToken = errors.New("malformed identity token")

// Session is a signed-in user together with the token they signed in with.
type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"-"`
}

// profileClaims are the claims of an identity token that make up a profile.
type profileClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// ParseToken reads the profile claims out of a JWT. The signature and the
// expiry are not checked: the token is only used to show who is signed in.
func ParseToken(token string) (models.User, error) {
	var claims profileClaims
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(token), &claims); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return models.User{
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
		Subject: claims.Subject,
	}, nil
}

// Store persists the credentials between runs.
type Store interface {
	Credentials(ctx context.Context) (token, userID string, err error)
	SetCredentials(ctx context.Context, token, userID string) error
	ClearCredentials(ctx context.Context) error
}

// Registrar tells the news service about a user who signed in.
type Registrar interface {
	SaveUser(ctx context.Context, user models.User) error
}

// Manager signs users in and out.
type Manager struct {
	store     Store
	registrar Registrar
}

// NewManager creates a Manager. registrar may be nil when there is no
// service to register with.
func NewManager(store Store, registrar Registrar) *Manager {
	return &Manager{store: store, registrar: registrar}
}

// Login parses token, stores it and registers the user with the service.
// userID defaults to the token's subject. A failed registration is logged;
// the user is signed in regardless.
func (m *Manager) Login(ctx context.Context, token, userID string) (*Session, error) {
	user, err := ParseToken(token)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		userID = user.Subject
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: no user id and no subject claim", ErrMalformedToken)
	}
	user.ID = userID

	if err := m.store.SetCredentials(ctx, token, userID); err != nil {
		return nil, fmt.Errorf("storing credentials: %w", err)
	}

	if m.registrar != nil {
		if err := m.registrar.SaveUser(ctx, user); err != nil {
			slog.Warn("registering user with news service failed", "user_id", userID, "error", err)
		}
	}

	slog.Info("signed in", "user_id", userID, "email", user.Email)
	return &Session{User: user, Token: token}, nil
}

// Load restores the stored session. It returns nil and no error when nobody
// is signed in. A stored token that no longer parses is removed.
func (m *Manager) Load(ctx context.Context) (*Session, error) {
	token, userID, err := m.store.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	if token == "" || userID == "" {
		return nil, nil
	}

	user, err := ParseToken(token)
	if err != nil {
		slog.Warn("discarding unreadable identity token", "error", err)
		if cerr := m.store.ClearCredentials(ctx); cerr != nil {
			return nil, fmt.Errorf("clearing credentials: %w", cerr)
		}
		return nil, nil
	}
	user.ID = userID
	return &Session{User: user, Token: token}, nil
}

// Logout forgets the stored credentials.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.ClearCredentials(ctx); err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}
	slog.Info("signed out")
	return nil
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
