package fakeapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/middleware"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/response"
)

var errBadCredentials = appErrors.Clone(appErrors.ErrUnauthorized, "Invalid credentials")

// hashPassword replaces a plain password on a user document with its bcrypt
// hash. Documents that already carry a hash are left alone.
func hashPassword(doc Doc) error {
	plain, _ := doc["password"].(string)
	if plain == "" || strings.HasPrefix(plain, "$2") {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.KindServerError, http.StatusInternalServerError, "failed to hash password")
	}
	doc["password"] = string(hash)
	return nil
}

// Issue signs a token for the stored user id.
func (s *Server) Issue(userID string) (string, error) {
	s.mu.Lock()
	user, ok := s.collection(Users).get(userID)
	var claims models.Claims
	if ok {
		claims = s.claimsFor(user)
	}
	s.mu.Unlock()
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "User not found")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// claimsFor must be called with mu held.
func (s *Server) claimsFor(user Doc) models.Claims {
	id, _ := user["_id"].(string)
	role, _ := user["role"].(string)
	institution, _ := user["institution"].(string)
	now := s.now()
	return models.Claims{
		UserID:      id,
		Role:        models.Role(role),
		Institution: institution,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
}

// Verify implements middleware.TokenVerifier.
func (s *Server) Verify(token string) (*models.Claims, error) {
	claims := &models.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Not authorized, token failed")
	}

	s.mu.Lock()
	user, ok := s.collection(Users).get(claims.UserID)
	s.mu.Unlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Not authorized, user not found")
	}
	if active, set := user["isActive"].(bool); set && !active {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Account is deactivated")
	}
	return claims, nil
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		badRequest(c, "Please provide email and password")
		return
	}

	s.mu.Lock()
	user, found := s.collection(Users).find("email", req.Email)
	var (
		claims models.Claims
		out    Doc
	)
	if found {
		claims = s.claimsFor(user)
		out = s.populate(user)
	}
	password, _ := user["password"].(string)
	active, set := user["isActive"].(bool)
	s.mu.Unlock()

	if !found || bcrypt.CompareHashAndPassword([]byte(password), []byte(req.Password)) != nil {
		response.Error(c, errBadCredentials)
		return
	}
	if set && !active {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "Account is deactivated"))
		return
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error("sign token", zap.Error(err))
		response.Error(c, appErrors.Wrap(err, appErrors.KindServerError, http.StatusInternalServerError, "failed to sign token"))
		return
	}
	respond(c, gin.H{"token": token, "user": out}, "Login successful")
}

func (s *Server) me(c *gin.Context) {
	claims, _ := middleware.ClaimsFrom(c)
	s.mu.Lock()
	user, found := s.collection(Users).get(claims.UserID)
	var out Doc
	if found {
		out = s.populate(user)
	}
	s.mu.Unlock()
	if !found {
		notFound(c, "User")
		return
	}
	respond(c, out)
}
