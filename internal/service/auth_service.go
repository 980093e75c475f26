package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/client"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/resource"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/session"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
)

// RouteDashboard is where a completed login lands.
const RouteDashboard = "dashboard"

type requester interface {
	Do(ctx context.Context, req client.Request) (*client.Response, error)
}

type authSession interface {
	SetLogin(ctx context.Context, token string, rawUser json.RawMessage) error
	SelectInstitution(ctx context.Context, value string) error
	Clear(ctx context.Context) error
	User() (models.User, bool)
	IsAuthenticated() bool
	Expiry() (time.Time, bool)
	InstitutionScope() session.Scope
}

// LoginResult tells the caller what to show next. When NeedsInstitution is
// set the operator must pick one of Institutions before continuing.
type LoginResult struct {
	User             models.User
	Institutions     []models.Institution
	NeedsInstitution bool
	Redirect         string
}

// Identity is the whoami view of the session.
type Identity struct {
	Authenticated bool       `json:"authenticated"`
	Name          string     `json:"name,omitempty"`
	Email         string     `json:"email,omitempty"`
	Role          string     `json:"role,omitempty"`
	Institution   string     `json:"institution,omitempty"`
	Locked        bool       `json:"locked"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// AuthService runs login, institution selection and logout.
type AuthService struct {
	client    requester
	session   authSession
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(c requester, s authSession, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{client: c, session: s, validator: validate, logger: logger}
}

type loginData struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Login authenticates and persists the session. Users bound to an
// institution get it selected automatically. Super admins are offered the
// institution list, unless it is empty, in which case they go straight to
// the dashboard with nothing selected.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Local("email and password are required", err)
	}

	resp, err := s.client.Do(ctx, client.Request{Method: http.MethodPost, Path: resource.PathLogin, Body: req, Anonymous: true})
	if err != nil {
		return nil, err
	}
	var data loginData
	if err := resp.Decode(&data); err != nil {
		return nil, err
	}
	if err := s.session.SetLogin(ctx, data.Token, data.User); err != nil {
		return nil, appErrors.Wrap(err, appErrors.KindServerError, 0, "failed to store session")
	}
	user, _ := s.session.User()
	result := &LoginResult{User: user, Redirect: RouteDashboard}

	if user.Role != models.RoleSuperAdmin {
		if raw := rawInstitution(data.User); raw != "" {
			if err := s.session.SelectInstitution(ctx, raw); err != nil {
				return nil, s.abandon(ctx, err)
			}
		}
		s.logger.Info("login", zap.String("user", user.Email), zap.String("role", string(user.Role)))
		return result, nil
	}

	resp, err = s.client.Do(ctx, client.Request{Method: http.MethodGet, Path: resource.Institutions.Path})
	if err != nil {
		return nil, s.abandon(ctx, err)
	}
	var institutions []models.Institution
	if err := resp.Decode(&institutions); err != nil {
		return nil, s.abandon(ctx, err)
	}
	result.Institutions = institutions
	result.NeedsInstitution = len(institutions) > 0
	s.logger.Info("login", zap.String("user", user.Email), zap.String("role", string(user.Role)), zap.Int("institutions", len(institutions)))
	return result, nil
}

// abandon undoes a half-finished login so a failed Login never leaves a
// session behind.
func (s *AuthService) abandon(ctx context.Context, cause error) error {
	if err := s.session.Clear(ctx); err != nil {
		s.logger.Warn("clear session after failed login", zap.Error(err))
	}
	return cause
}

// SelectInstitution stores the institution a super admin chose. It is kept
// as a serialised {_id, name} document.
func (s *AuthService) SelectInstitution(ctx context.Context, inst models.Institution) error {
	if inst.ID == "" {
		return appErrors.Local("institution selection is empty", nil)
	}
	raw, err := json.Marshal(map[string]string{"_id": inst.ID, "name": inst.Name})
	if err != nil {
		return err
	}
	return s.session.SelectInstitution(ctx, string(raw))
}

// Logout clears token, user and selectedInstitution.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}

// WhoAmI describes the current session.
func (s *AuthService) WhoAmI() Identity {
	id := Identity{Authenticated: s.session.IsAuthenticated()}
	if user, ok := s.session.User(); ok {
		id.Name = user.Name
		id.Email = user.Email
		id.Role = string(user.Role)
	}
	scope := s.session.InstitutionScope()
	id.Institution = scope.InstitutionID
	id.Locked = scope.Locked && id.Role != ""
	if exp, ok := s.session.Expiry(); ok {
		id.ExpiresAt = &exp
	}
	return id
}

// rawInstitution returns the user's institution as received, populated or
// bare, so the session keeps the same shape.
func rawInstitution(rawUser json.RawMessage) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rawUser, &fields); err != nil {
		return ""
	}
	raw := fields["institution"]
	var ref models.Ref
	if len(raw) == 0 || json.Unmarshal(raw, &ref) != nil || ref.IsZero() {
		return ""
	}
	return string(raw)
}
