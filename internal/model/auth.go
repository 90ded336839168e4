package model

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenClaims represents JWT claims for an operator session
type TokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

const RoleOperator = "operator"
