package service

import (
	"context"
	"testing"

	"medistore/internal/common"
	"medistore/internal/common/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerUser(t *testing.T, repo *fakeUserRepo, email, password string) string {
	t.Helper()
	resp, err := NewAuthService(repo).Signup(context.Background(), SignupRequest{
		Username: "alice", Email: email, Password: password,
	})
	require.NoError(t, err)
	return resp.User.ID
}

func TestUpdateWithEmptyPasswordPreservesStoredCredential(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo)
	id := registerUser(t, userRepo, "a@x.com", "p1")

	before, err := userRepo.FindByID(context.Background(), id)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), id, UpdateUserRequest{
		Username: "alice2", Email: "a@x.com", Password: "",
	})
	require.NoError(t, err)

	after, err := userRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, before.HashedPassword, after.HashedPassword, "stored credential is untouched")
	assert.Equal(t, "alice2", after.Username)
}

func TestUpdateWithNewPasswordReplacesStoredCredential(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo)
	id := registerUser(t, userRepo, "a@x.com", "p1")

	_, err := svc.Update(context.Background(), id, UpdateUserRequest{
		Username: "alice", Email: "a@x.com", Password: "p2",
	})
	require.NoError(t, err)

	after, err := userRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, security.CheckPasswordHash("p2", after.HashedPassword))
	assert.False(t, security.CheckPasswordHash("p1", after.HashedPassword))
}

func TestUpdateUnknownUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	_, err := svc.Update(context.Background(), "ghost", UpdateUserRequest{Username: "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteUserLeavesOthersAlone(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo)
	idA := registerUser(t, userRepo, "a@x.com", "p1")
	idB := registerUser(t, userRepo, "b@x.com", "p2")

	require.NoError(t, svc.Delete(context.Background(), idA))

	_, err := svc.FindByID(context.Background(), idA)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.FindByID(context.Background(), idB)
	assert.NoError(t, err)
}

func TestFindNeverExposesCredentials(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo)
	id := registerUser(t, userRepo, "a@x.com", "p1")

	user, err := svc.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, user.HashedPassword)

	users, err := svc.FindAll(context.Background())
	require.NoError(t, err)
	for _, u := range users {
		assert.Empty(t, u.HashedPassword)
	}
}
