package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khidmaBack/internal/models"
)

func TestCreateUserProviderProfile(t *testing.T) {
	db := setupTestDB(t)
	repo := UserRepository{DB: db}
	ctx := context.Background()

	providerID := createTestUser(t, db, "fatma", models.RoleProvider)
	clientID := createTestUser(t, db, "amine", models.RoleClient)

	provider, err := repo.GetUserByID(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleProvider, provider.Role)
	require.NotNil(t, provider.Provider)
	assert.Equal(t, 0, provider.Provider.YearsOfExp)

	client, err := repo.GetUserByID(ctx, clientID)
	require.NoError(t, err)
	assert.Nil(t, client.Provider)

	_, err = repo.GetUserByID(ctx, clientID+100)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	byEmail, err := repo.GetUserByEmail(ctx, "amine@example.tn")
	require.NoError(t, err)
	assert.Equal(t, clientID, byEmail.ID)

	byPhone, err := repo.GetUserByPhone(ctx, "+216fatma")
	require.NoError(t, err)
	assert.Equal(t, providerID, byPhone.ID)
}

func TestSessions(t *testing.T) {
	db := setupTestDB(t)
	repo := UserRepository{DB: db}
	ctx := context.Background()

	userID := createTestUser(t, db, "amine", models.RoleClient)
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	require.NoError(t, repo.CreateSession(ctx, models.Session{
		UserID: userID, Role: models.RoleClient, RefreshToken: "tok-1", ExpiresAt: expires,
	}))

	s, err := repo.GetSessionByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, userID, s.UserID)
	assert.Equal(t, models.RoleClient, s.Role)

	// unknown token returns an empty session without error
	s, err = repo.GetSessionByToken(ctx, "tok-missing")
	require.NoError(t, err)
	assert.Equal(t, models.Session{}, s)

	require.NoError(t, repo.DeleteSession(ctx, "tok-1"))
	s, err = repo.GetSessionByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, models.Session{}, s)
}

func TestNotifyTokens(t *testing.T) {
	db := setupTestDB(t)
	repo := UserRepository{DB: db}
	ctx := context.Background()

	userID := createTestUser(t, db, "amine", models.RoleClient)

	require.NoError(t, repo.InsertNotifyToken(ctx, userID, "device-a"))
	require.NoError(t, repo.InsertNotifyToken(ctx, userID, "device-b"))

	tokens, err := repo.GetNotifyTokens(ctx, userID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"device-a", "device-b"}, tokens)

	require.NoError(t, repo.DeleteNotifyToken(ctx, "device-a"))
	tokens, err = repo.GetNotifyTokens(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"device-b"}, tokens)
}
