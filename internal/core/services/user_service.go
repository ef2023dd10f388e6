package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type userService struct {
	users    ports.UserRepository
	policy   domain.BootstrapPolicy
	botToken string
	logger   *zap.SugaredLogger
}

func NewUserService(users ports.UserRepository, policy domain.BootstrapPolicy, botToken string, logger *zap.SugaredLogger) ports.UserService {
	return &userService{
		users:    users,
		policy:   policy,
		botToken: botToken,
		logger:   logger,
	}
}

// Authenticate runs the hand-off flow: verify the assertion signature,
// resolve the account (creating it on first sight), then enforce approval.
// A losing side of a concurrent first-time creation re-fetches and proceeds.
func (s *userService) Authenticate(ctx context.Context, assertion map[string]any) (*domain.User, error) {
	if !VerifyAssertion(Assertion(assertion), s.botToken) {
		return nil, domain.ErrInvalidAssertion
	}

	candidate := NormalizeAssertion(Assertion(assertion), s.policy)
	if candidate.TelegramID == "" {
		return nil, domain.ErrInvalidAssertion
	}

	user, err := s.users.GetByTelegramID(ctx, candidate.TelegramID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if user == nil {
		user, err = s.createFromCandidate(ctx, candidate)
		if err != nil {
			return nil, err
		}
	}

	if !user.IsAllowed {
		return nil, domain.ErrUserNotAllowed
	}
	return user, nil
}

func (s *userService) createFromCandidate(ctx context.Context, candidate domain.CandidateUser) (*domain.User, error) {
	now := time.Now()
	user := &domain.User{
		ID:         domain.UserID(uuid.New().String()),
		TelegramID: candidate.TelegramID,
		FirstName:  candidate.FirstName,
		LastName:   candidate.LastName,
		Username:   candidate.Username,
		PhotoURL:   candidate.PhotoURL,
		AuthDate:   candidate.AuthDate,
		IsAdmin:    candidate.IsAdmin,
		IsAllowed:  candidate.IsAllowed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.users.Create(ctx, user)
	if err == nil {
		s.logger.Infow("user created",
			"telegram_id", user.TelegramID,
			"is_allowed", user.IsAllowed,
		)
		return user, nil
	}

	// Lost a concurrent first-time creation race: the record exists now.
	if errors.Is(err, domain.ErrUserExists) {
		existing, getErr := s.users.GetByTelegramID(ctx, candidate.TelegramID)
		if getErr != nil {
			return nil, fmt.Errorf("duplicate creation re-fetch failed (%v): %w", getErr, domain.ErrUserExists)
		}
		return existing, nil
	}

	return nil, fmt.Errorf("failed to create user: %w", err)
}

// Create registers an account on an administrator's behalf. Unlike the
// hand-off path, a duplicate telegram id is a caller error here, not a race
// to absorb.
func (s *userService) Create(ctx context.Context, candidate domain.CandidateUser) (*domain.User, error) {
	now := time.Now()
	user := &domain.User{
		ID:         domain.UserID(uuid.New().String()),
		TelegramID: candidate.TelegramID,
		FirstName:  candidate.FirstName,
		LastName:   candidate.LastName,
		Username:   candidate.Username,
		PhotoURL:   candidate.PhotoURL,
		AuthDate:   candidate.AuthDate,
		IsAdmin:    candidate.IsAdmin,
		IsAllowed:  candidate.IsAllowed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Infow("user created by admin",
		"telegram_id", user.TelegramID,
		"is_admin", user.IsAdmin,
		"is_allowed", user.IsAllowed,
	)
	return user, nil
}

func (s *userService) GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	return s.users.GetByTelegramID(ctx, telegramID)
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// Update applies an administrative update. The bootstrap administrator can
// never lose its admin or approval flag.
func (s *userService) Update(ctx context.Context, telegramID string, update domain.UserUpdate) (*domain.User, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	demoting := (update.IsAdmin != nil && !*update.IsAdmin) ||
		(update.IsAllowed != nil && !*update.IsAllowed)
	if demoting && !s.policy.CanDemote(user) {
		return nil, domain.ErrBootstrapAdmin
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.PhotoURL != nil {
		user.PhotoURL = *update.PhotoURL
	}
	if update.IsAdmin != nil {
		user.IsAdmin = *update.IsAdmin
	}
	if update.IsAllowed != nil {
		user.IsAllowed = *update.IsAllowed
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Infow("user updated",
		"telegram_id", user.TelegramID,
		"is_admin", user.IsAdmin,
		"is_allowed", user.IsAllowed,
	)
	return user, nil
}

// Delete removes an account. The bootstrap administrator is exempt.
func (s *userService) Delete(ctx context.Context, telegramID string) error {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}
	if !s.policy.CanDelete(user) {
		return domain.ErrBootstrapAdmin
	}
	return s.users.Delete(ctx, telegramID)
}
