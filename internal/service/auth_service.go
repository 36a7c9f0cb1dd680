package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/serverutils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminNotConfigured = errors.New("admin login is not configured")
)

const adminTokenTTL = 24 * time.Hour

type IAuthService interface {
	LoginAdmin(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	adminEmail        string
	adminPasswordHash string
	jwtSecret         string
	now               func() time.Time
}

// NewAuthService checks logins against a single admin whose password is
// stored as a bcrypt hash.
func NewAuthService(adminEmail, adminPasswordHash, jwtSecret string) IAuthService {
	return &authService{
		adminEmail:        strings.ToLower(strings.TrimSpace(adminEmail)),
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         jwtSecret,
		now:               time.Now,
	}
}

func (s *authService) LoginAdmin(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if s.adminPasswordHash == "" || s.jwtSecret == "" {
		return nil, ErrAdminNotConfigured
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
	// Always run bcrypt so a wrong email costs as much as a wrong password.
	passErr := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(req.Password))
	if !emailOK || passErr != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(adminTokenTTL)
	claims := jwt.MapClaims{
		"user_id": s.adminEmail,
		"role":    serverutils.RoleAdmin,
		"exp":     expiresAt.Unix(),
		"iat":     s.now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}
