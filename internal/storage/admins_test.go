package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedAdmin_CreatesCredentialOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedAdmin(ctx, "organizer", "correct horse"))

	admin, err := store.GetAdminByUsername(ctx, "organizer")
	require.NoError(t, err)

	assert.NotEmpty(t, admin.ID)
	assert.Equal(t, "organizer", admin.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("correct horse")))
	assert.False(t, admin.CreatedAt.IsZero())

	// A second seed must not replace the live credential
	require.NoError(t, store.SeedAdmin(ctx, "intruder", "other"))
	_, err = store.GetAdminByUsername(ctx, "intruder")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeedAdmin_NoopWithoutCredentials(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedAdmin(ctx, "", ""))
	require.NoError(t, store.SeedAdmin(ctx, "organizer", ""))

	_, err := store.GetAdminByUsername(ctx, "organizer")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAdminByUsername_ExactMatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedAdmin(ctx, "organizer", "pw"))

	// Username lookup is exact, unlike the RSVP duplicate guard
	_, err := store.GetAdminByUsername(ctx, "Organizer")
	assert.ErrorIs(t, err, ErrNotFound)
}
