package ports

import (
	"context"

	"streamgate/internal/core/domain"
)

type UserService interface {
	// Authenticate verifies an identity assertion, resolves (or creates) the
	// account and enforces the approval flag. Returns the persisted user on
	// success.
	Authenticate(ctx context.Context, assertion map[string]any) (*domain.User, error)
	// Create registers an account administratively, without a hand-off.
	// Duplicate telegram ids surface domain.ErrUserExists.
	Create(ctx context.Context, candidate domain.CandidateUser) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, telegramID string, update domain.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, telegramID string) error
}

type VideoService interface {
	List(ctx context.Context) ([]*domain.Video, error)
	Get(ctx context.Context, videoID string) (*domain.Video, error)
	Create(ctx context.Context, video *domain.Video) (*domain.Video, error)
	Update(ctx context.Context, videoID string, video *domain.Video) (*domain.Video, error)
	Delete(ctx context.Context, videoID string) error
}

// PlayerTokenService issues short-lived playback credentials from the hosting
// platform.
type PlayerTokenService interface {
	IssueOTP(ctx context.Context, videoID string) (*domain.PlaybackToken, error)
}
