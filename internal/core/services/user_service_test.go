package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/services"
	"streamgate/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const bootstrapAdminID = "1535815443"

func TestUserService_Authenticate_FirstSightCreatesUnapproved(t *testing.T) {
	repo := memory.NewMemoryUserRepository()
	policy := domain.NewBootstrapPolicy(bootstrapAdminID)
	svc := services.NewUserService(repo, policy, testBotToken, zap.NewNop().Sugar())

	assertion := signedAssertion(t, widgetFields())

	_, err := svc.Authenticate(context.Background(), assertion)
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	// The account was still created, pending approval
	user, err := repo.GetByTelegramID(context.Background(), "987654321")
	require.NoError(t, err)
	assert.False(t, user.IsAllowed)
	assert.False(t, user.IsAdmin)
	assert.Equal(t, "Alice", user.FirstName)
}

func TestUserService_Authenticate_BootstrapAdminFirstSight(t *testing.T) {
	repo := memory.NewMemoryUserRepository()
	policy := domain.NewBootstrapPolicy(bootstrapAdminID)
	svc := services.NewUserService(repo, policy, testBotToken, zap.NewNop().Sugar())

	fields := widgetFields()
	fields["id"] = bootstrapAdminID
	assertion := signedAssertion(t, fields)

	user, err := svc.Authenticate(context.Background(), assertion)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.True(t, user.IsAllowed)
}

func TestUserService_Authenticate_ApprovedUserSucceeds(t *testing.T) {
	repo := memory.NewMemoryUserRepository()
	policy := domain.NewBootstrapPolicy(bootstrapAdminID)
	svc := services.NewUserService(repo, policy, testBotToken, zap.NewNop().Sugar())

	require.NoError(t, repo.Create(context.Background(), &domain.User{
		ID:         "u-1",
		TelegramID: "987654321",
		FirstName:  "Alice",
		IsAllowed:  true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}))

	user, err := svc.Authenticate(context.Background(), signedAssertion(t, widgetFields()))
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u-1"), user.ID)
}

func TestUserService_Authenticate_InvalidSignature(t *testing.T) {
	repo := memory.NewMemoryUserRepository()
	policy := domain.NewBootstrapPolicy(bootstrapAdminID)
	svc := services.NewUserService(repo, policy, testBotToken, zap.NewNop().Sugar())

	assertion := signedAssertion(t, widgetFields())
	assertion["first_name"] = "Mallory"

	_, err := svc.Authenticate(context.Background(), assertion)
	assert.ErrorIs(t, err, domain.ErrInvalidAssertion)

	// Failed verification never creates an account
	_, err = repo.GetByTelegramID(context.Background(), "987654321")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_Authenticate_ConcurrentFirstSight(t *testing.T) {
	repo := memory.NewMemoryUserRepository()
	policy := domain.NewBootstrapPolicy(bootstrapAdminID)
	svc := services.NewUserService(repo, policy, testBotToken, zap.NewNop().Sugar())

	fields := widgetFields()
	fields["id"] = bootstrapAdminID
	assertion := signedAssertion(t, fields)

	const workers = 16
	results := make([]*domain.User, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Authenticate(context.Background(), assertion)
		}(i)
	}
	wg.Wait()

	// Every hand-off succeeds and resolves to the same single record
	stored, err := repo.GetByTelegramID(context.Background(), bootstrapAdminID)
	require.NoError(t, err)
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, stored.ID, results[i].ID)
	}

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserService_Create_AdminRegistration(t *testing.T) {
	repo := memory.NewMemoryUserRepository()
	policy := domain.NewBootstrapPolicy(bootstrapAdminID)
	svc := services.NewUserService(repo, policy, testBotToken, zap.NewNop().Sugar())

	user, err := svc.Create(context.Background(), domain.CandidateUser{
		TelegramID: "555000111",
		FirstName:  "Bob",
		IsAllowed:  true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.True(t, user.IsAllowed)

	// A duplicate is a caller error on this path, not an absorbed race
	_, err = svc.Create(context.Background(), domain.CandidateUser{
		TelegramID: "555000111",
		FirstName:  "Bob",
	})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUserService_Update_DemoteGuard(t *testing.T) {
	repo := memory.NewMemoryUserRepository()
	policy := domain.NewBootstrapPolicy(bootstrapAdminID)
	svc := services.NewUserService(repo, policy, testBotToken, zap.NewNop().Sugar())

	require.NoError(t, repo.Create(context.Background(), &domain.User{
		ID:         "u-admin",
		TelegramID: bootstrapAdminID,
		FirstName:  "Root",
		IsAdmin:    true,
		IsAllowed:  true,
	}))

	falseVal := false
	_, err := svc.Update(context.Background(), bootstrapAdminID, domain.UserUpdate{IsAdmin: &falseVal})
	assert.ErrorIs(t, err, domain.ErrBootstrapAdmin)

	_, err = svc.Update(context.Background(), bootstrapAdminID, domain.UserUpdate{IsAllowed: &falseVal})
	assert.ErrorIs(t, err, domain.ErrBootstrapAdmin)

	// Non-demoting updates still go through
	name := "Renamed"
	updated, err := svc.Update(context.Background(), bootstrapAdminID, domain.UserUpdate{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FirstName)
	assert.True(t, updated.IsAdmin)
}

func TestUserService_Update_RegularUserFlags(t *testing.T) {
	repo := memory.NewMemoryUserRepository()
	policy := domain.NewBootstrapPolicy(bootstrapAdminID)
	svc := services.NewUserService(repo, policy, testBotToken, zap.NewNop().Sugar())

	require.NoError(t, repo.Create(context.Background(), &domain.User{
		ID:         "u-1",
		TelegramID: "987654321",
		FirstName:  "Alice",
	}))

	trueVal := true
	updated, err := svc.Update(context.Background(), "987654321", domain.UserUpdate{IsAllowed: &trueVal})
	require.NoError(t, err)
	assert.True(t, updated.IsAllowed)
	assert.False(t, updated.IsAdmin)
}

func TestUserService_Delete_BootstrapGuard(t *testing.T) {
	repo := memory.NewMemoryUserRepository()
	policy := domain.NewBootstrapPolicy(bootstrapAdminID)
	svc := services.NewUserService(repo, policy, testBotToken, zap.NewNop().Sugar())

	require.NoError(t, repo.Create(context.Background(), &domain.User{
		ID:         "u-admin",
		TelegramID: bootstrapAdminID,
		IsAdmin:    true,
		IsAllowed:  true,
	}))
	require.NoError(t, repo.Create(context.Background(), &domain.User{
		ID:         "u-1",
		TelegramID: "987654321",
	}))

	err := svc.Delete(context.Background(), bootstrapAdminID)
	assert.ErrorIs(t, err, domain.ErrBootstrapAdmin)

	require.NoError(t, svc.Delete(context.Background(), "987654321"))
	_, err = repo.GetByTelegramID(context.Background(), "987654321")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_Delete_MissingUser(t *testing.T) {
	repo := memory.NewMemoryUserRepository()
	policy := domain.NewBootstrapPolicy(bootstrapAdminID)
	svc := services.NewUserService(repo, policy, testBotToken, zap.NewNop().Sugar())

	err := svc.Delete(context.Background(), "404404404")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
