// Package session holds the authenticated identity of the console: bearer
// token, user and the institution chosen at login. Every other package reads
// the session through this type and never touches the store directly.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/storage"
)

// Persisted keys.
const (
	KeyToken               = "token"
	KeyUser                = "user"
	KeySelectedInstitution = "selectedInstitution"
)

// Scope is the institution filter a session imposes on lists and forms.
// Locked scopes come from the user record and cannot be changed.
type Scope struct {
	InstitutionID string
	Locked        bool
}

// Session is safe for concurrent use.
type Session struct {
	store  storage.Store
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	token    string
	user     *models.User
	selected string
}

// New wraps store. Call Load before use.
func New(store storage.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{store: store, logger: logger, now: time.Now}
}

// Load reads the persisted keys. Missing keys leave the session
// unauthenticated; a corrupt user record is dropped with a warning.
func (s *Session) Load(ctx context.Context) error {
	token, _, err := s.store.Get(ctx, KeyToken)
	if err != nil {
		return fmt.Errorf("load session token: %w", err)
	}
	rawUser, _, err := s.store.Get(ctx, KeyUser)
	if err != nil {
		return fmt.Errorf("load session user: %w", err)
	}
	selected, _, err := s.store.Get(ctx, KeySelectedInstitution)
	if err != nil {
		return fmt.Errorf("load selected institution: %w", err)
	}

	user, err := decodeUser(rawUser)
	if err != nil {
		s.logger.Warn("discarding unreadable session user", zap.Error(err))
		user = nil
	}

	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.user = user
	s.selected = selected
	s.mu.Unlock()
	return nil
}

// Token implements client.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated is false without a token or when a JWT token has expired.
func (s *Session) IsAuthenticated() bool {
	token := s.Token()
	if token == "" {
		return false
	}
	if exp, ok := TokenExpiry(token); ok && !exp.After(s.now()) {
		return false
	}
	return true
}

// Expiry returns the token expiry when the token is a JWT carrying exp.
func (s *Session) Expiry() (time.Time, bool) {
	return TokenExpiry(s.Token())
}

// User returns the signed-in user.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Role returns the user's role, empty when signed out.
func (s *Session) Role() models.Role {
	u, ok := s.User()
	if !ok {
		return ""
	}
	return u.Role
}

// IsSuperAdmin gates institution switching and cross-tenant visibility.
func (s *Session) IsSuperAdmin() bool {
	return s.Role() == models.RoleSuperAdmin
}

// CurrentInstitutionID resolves the selected institution, falling back to
// the user's own institution.
func (s *Session) CurrentInstitutionID() string {
	s.mu.RLock()
	selected := s.selected
	user := s.user
	s.mu.RUnlock()

	if id := parseInstitution(selected); id != "" {
		return id
	}
	if user != nil {
		return user.Institution.ID()
	}
	return ""
}

// HasSelectedInstitution reports whether the selectedInstitution key is set.
func (s *Session) HasSelectedInstitution() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strings.TrimSpace(s.selected) != ""
}

// InstitutionScope returns the scope lists and forms must apply. Non super
// admins are locked to their session institution.
func (s *Session) InstitutionScope() Scope {
	id := s.CurrentInstitutionID()
	return Scope{InstitutionID: id, Locked: !s.IsSuperAdmin()}
}

// ResolveInstitution applies the scope to a requested institution id. A
// locked scope rejects any other institution; an empty request falls back
// to the scope.
func (s *Session) ResolveInstitution(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	scope := s.InstitutionScope()
	if scope.Locked {
		if requested != "" && requested != scope.InstitutionID {
			return "", appErrors.ErrInstitutionScopeLocked
		}
		return scope.InstitutionID, nil
	}
	if requested != "" {
		return requested, nil
	}
	return scope.InstitutionID, nil
}

// SetLogin persists a fresh login. rawUser is stored as received so both the
// populated and the bare-id institution shapes survive a reload.
func (s *Session) SetLogin(ctx context.Context, token string, rawUser json.RawMessage) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("login response carried no token")
	}
	user, err := decodeUser(string(rawUser))
	if err != nil {
		return fmt.Errorf("decode login user: %w", err)
	}
	if err := s.store.Set(ctx, KeyToken, token); err != nil {
		return err
	}
	if err := s.store.Set(ctx, KeyUser, string(rawUser)); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, KeySelectedInstitution); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.selected = ""
	s.mu.Unlock()
	return nil
}

// SelectInstitution persists the institution chosen at login. value may be
// a bare id or a serialised institution document.
func (s *Session) SelectInstitution(ctx context.Context, value string) error {
	if parseInstitution(value) == "" {
		return appErrors.Local("institution selection is empty", nil)
	}
	if err := s.store.Set(ctx, KeySelectedInstitution, value); err != nil {
		return err
	}
	s.mu.Lock()
	s.selected = value
	s.mu.Unlock()
	return nil
}

// Clear logs out by removing all three keys.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.selected = ""
	s.mu.Unlock()
	return s.store.Delete(ctx, KeyToken, KeyUser, KeySelectedInstitution)
}

// ForceReauthentication is wired as the API client's 401 hook.
func (s *Session) ForceReauthentication(ctx context.Context) {
	if err := s.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear session after 401", zap.Error(err))
	}
}

// TokenExpiry reads exp from a JWT without verifying it; verification is
// the backend's job. Opaque tokens report ok=false.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func decodeUser(raw string) (*models.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// parseInstitution accepts a JSON string, a JSON document with _id, or a
// raw id and returns the id.
func parseInstitution(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || value == "null" || value == "undefined" {
		return ""
	}
	var ref models.Ref
	if err := json.Unmarshal([]byte(value), &ref); err == nil {
		return ref.ID()
	}
	return value
}
