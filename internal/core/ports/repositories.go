package ports

import (
	"context"

	"streamgate/internal/core/domain"
)

type UserRepository interface {
	// Create persists a new user keyed by telegram id. Returns
	// domain.ErrUserExists when the id is already taken; callers treat that
	// as "already created" and re-fetch.
	Create(ctx context.Context, user *domain.User) error
	GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, telegramID string) error
	List(ctx context.Context) ([]*domain.User, error)
}

type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByVideoID(ctx context.Context, videoID string) (*domain.Video, error)
	Update(ctx context.Context, video *domain.Video) error
	Delete(ctx context.Context, videoID string) error
	List(ctx context.Context) ([]*domain.Video, error)
}
