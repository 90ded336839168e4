package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/caredash-api/internal/config"
	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/pkg/auth"
	"github.com/jwalitptl/caredash-api/pkg/security"
)

var ErrLocked = errors.New("operator is locked, please try again later")

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	tokenType        = "Bearer"
)

type AuthService interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
}

// Service authenticates the single configured operator account.
type Service struct {
	username     string
	passwordHash string
	hasher       security.PasswordHasher
	jwtSvc       auth.JWTService
	now          func() time.Time

	mu          sync.Mutex
	attempts    int
	lockedUntil time.Time
}

func NewService(cfg config.AuthConfig, hasher security.PasswordHasher, jwtSvc auth.JWTService) *Service {
	return &Service{
		username:     cfg.OperatorUser,
		passwordHash: cfg.OperatorPasswordHash,
		hasher:       hasher,
		jwtSvc:       jwtSvc,
		now:          time.Now,
	}
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Before(s.lockedUntil) {
		return nil, ErrLocked
	}

	if !s.verify(req.Username, req.Password) {
		s.attempts++
		if s.attempts >= maxLoginAttempts {
			s.lockedUntil = now.Add(lockoutDuration)
			s.attempts = 0
			log.Warn().Str("username", req.Username).Msg("operator locked after repeated failed logins")
		}
		return nil, model.ErrInvalidCredentials
	}
	s.attempts = 0

	token, err := s.jwtSvc.GenerateAccessToken(s.username, model.RoleOperator)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresIn:   int64(s.jwtSvc.TTL().Seconds()),
	}, nil
}

func (s *Service) verify(username, password string) bool {
	if s.username == "" || s.passwordHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := s.hasher.Compare(s.passwordHash, password) == nil
	return userOK && passOK
}
