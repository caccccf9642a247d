package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"healthconnect-api/internal/models"
	"healthconnect-api/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	s, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(s, "test-secret-0123456789", time.Hour).WithBcryptCost(bcrypt.MinCost), s
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Ada <ada@example.com>", "correct horse", "Ada")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, models.TierFree, sess.User.Tier)
	assert.Equal(t, "ada@example.com", sess.User.Email)

	login, err := svc.Login(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, login.User.ID)

	_, err = svc.Login(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "longenough", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Register(ctx, "a@example.com", "short", "")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Register(ctx, "a@example.com", "longenough", "")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "a@example.com", "longenough", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestDeletedAccountCannotLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "gone@example.com", "longenough", "")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteAccount(ctx, sess.User.ID))

	_, err = svc.Login(ctx, "gone@example.com", "longenough")
	assert.ErrorIs(t, err, ErrAccountDeleted)

	_, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateTier(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "a@example.com", "longenough", "")
	require.NoError(t, err)

	u, err := svc.UpdateTier(ctx, sess.User.ID, models.TierPro)
	require.NoError(t, err)
	assert.Equal(t, models.TierPro, u.Tier)

	_, err = svc.UpdateTier(ctx, sess.User.ID, models.Tier("platinum"))
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestTokens(t *testing.T) {
	svc, _ := newTestService(t)

	token, exp, err := svc.IssueToken("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	id, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	_, err = svc.ParseToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewService(nil, "another-secret-0123456789", time.Hour)
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")
}
