package services

import (
	"context"
	"testing"

	"foodshare-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewUserService(newMemUserStore(), "test-secret")
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "alice", "hunter22", nil)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "alice", user.Name)
	assert.NotEqual(t, "hunter22", user.PasswordHash, "password must be hashed")

	// Token round trip.
	userID, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// Login with the right and wrong passwords.
	_, loginToken, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, loginToken)

	_, _, err = svc.Login(ctx, "alice", "wrong")
	assert.Error(t, err)

	_, _, err = svc.Login(ctx, "nobody", "hunter22")
	assert.Error(t, err)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(newMemUserStore(), "test-secret")
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "", "hunter22", nil)
	assert.True(t, apperr.IsValidation(err))

	_, _, err = svc.Register(ctx, "alice", "short", nil)
	assert.True(t, apperr.IsValidation(err))

	_, _, err = svc.Register(ctx, "alice", "hunter22", nil)
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "alice", "hunter22", nil)
	assert.True(t, apperr.IsValidation(err), "duplicate name rejected")
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	svc := NewUserService(newMemUserStore(), "test-secret")

	_, err := svc.ValidateJWT("not-a-token")
	assert.Error(t, err)

	// Token signed with a different secret.
	other := NewUserService(newMemUserStore(), "other-secret")
	token, err := other.GenerateJWT("some-user")
	require.NoError(t, err)
	_, err = svc.ValidateJWT(token)
	assert.Error(t, err)
}
