package controller

import (
	"net/http"
	"testing"
	"time"

	"skilltree_backend/internal/config"
	"skilltree_backend/internal/service"
	"skilltree_backend/internal/service/servicetest"
	"skilltree_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "0123456789abcdef0123456789abcdef"
	auth := service.NewAuthService(servicetest.NewUsers(), config.JWTConfig{Secret: secret, ExpireTime: time.Hour})
	ac := NewAuthController(auth)

	r := gin.New()
	r.POST("/api/register", ac.Register)
	r.POST("/api/login", ac.Login)
	ts := &testServer{router: r}

	code, resp := ts.request(t, http.MethodPost, "/api/register", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret123", "role": "teacher",
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)

	code, _ = ts.request(t, http.MethodPost, "/api/register", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = ts.request(t, http.MethodPost, "/api/login", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp = ts.request(t, http.MethodPost, "/api/login", map[string]string{
		"email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code)
	var login service.LoginResponse
	decode(t, resp, &login)
	claims, err := util.ParseJWT(login.Token, secret)
	require.NoError(t, err)
	assert.Equal(t, "teacher", string(claims.Role))
}
