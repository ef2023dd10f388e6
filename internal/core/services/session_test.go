package services_test

import (
	"net/http"
	"testing"
	"time"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *domain.User {
	return &domain.User{
		ID:         domain.UserID(uuid.NewString()),
		TelegramID: "987654321",
		FirstName:  "Alice",
		IsAdmin:    true,
		IsAllowed:  true,
	}
}

func TestSessionService_IssueValidateRoundTrip(t *testing.T) {
	svc := services.NewSessionService("test-secret", time.Hour, false)
	user := testUser()

	token, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.TelegramID, claims.TelegramID)
	assert.Equal(t, user.FirstName, claims.FirstName)
	assert.True(t, claims.IsAdmin)
}

func TestSessionService_ExpiredToken(t *testing.T) {
	svc := services.NewSessionService("test-secret", -time.Minute, false)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, services.ErrExpiredSession)
}

func TestSessionService_WrongSecret(t *testing.T) {
	issuer := services.NewSessionService("secret-a", time.Hour, false)
	validator := services.NewSessionService("secret-b", time.Hour, false)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = validator.Validate(token)
	assert.ErrorIs(t, err, services.ErrInvalidSession)
}

func TestSessionService_GarbageToken(t *testing.T) {
	svc := services.NewSessionService("test-secret", time.Hour, false)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.Validate(token)
		assert.ErrorIs(t, err, services.ErrInvalidSession)
	}
}

func TestSessionService_CookieAttributes(t *testing.T) {
	svc := services.NewSessionService("test-secret", 7*24*time.Hour, true)

	cookie := svc.Cookie("token-value")
	assert.Equal(t, services.SessionCookieName, cookie.Name)
	assert.Equal(t, "token-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(7*24*time.Hour/time.Second), cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestSessionService_ClearCookie(t *testing.T) {
	svc := services.NewSessionService("test-secret", time.Hour, false)

	cookie := svc.ClearCookie()
	assert.Equal(t, services.SessionCookieName, cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
}
