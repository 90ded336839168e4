package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/caredash-api/internal/config"
	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/service/auth"
	jwtauth "github.com/jwalitptl/caredash-api/pkg/auth"
	"github.com/jwalitptl/caredash-api/pkg/httputil"
	"github.com/jwalitptl/caredash-api/pkg/security"
	"github.com/jwalitptl/caredash-api/pkg/validator"
)

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	svc := auth.NewService(
		config.AuthConfig{OperatorUser: "operator", OperatorPasswordHash: hash},
		hasher,
		jwtauth.NewJWTService("secret", "caredash", time.Hour),
	)
	r := gin.New()
	NewHandler(svc, validator.New()).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func login(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	r := setup(t)

	w := login(r, `{"username":"operator","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                `json:"success"`
		Data    model.TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.AccessToken)
	assert.Equal(t, "Bearer", resp.Data.TokenType)
}

func TestLogin_Failures(t *testing.T) {
	r := setup(t)

	cases := []struct {
		body   string
		status int
	}{
		{`{"username":"operator","password":"nope-nope"}`, http.StatusUnauthorized},
		{`{"username":"operator"}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := login(r, tc.body)
		assert.Equal(t, tc.status, w.Code, tc.body)

		var resp httputil.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
	}
}
