package util

import (
	"testing"
	"time"

	"skilltree_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	user := &model.User{Email: "t@example.com", Role: model.Teacher}
	user.ID = 7

	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.Teacher, claims.Role)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestParseJWTExpired(t *testing.T) {
	user := &model.User{Email: "t@example.com"}
	token, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestIconExtension(t *testing.T) {
	ext, err := IconExtension("Logo.PNG")
	require.NoError(t, err)
	assert.Equal(t, ".png", ext)

	_, err = IconExtension("payload.exe")
	assert.ErrorIs(t, err, ErrInvalidFileType)
}
