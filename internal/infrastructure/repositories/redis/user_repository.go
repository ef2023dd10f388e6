package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisUserRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisUserRepository(client *redis.Client) ports.UserRepository {
	return &RedisUserRepository{
		client: client,
		prefix: "streamgate:user:",
	}
}

func (r *RedisUserRepository) userKey(telegramID string) string {
	return r.prefix + telegramID
}

func (r *RedisUserRepository) indexKey() string {
	return r.prefix + "index"
}

// Create persists a new user. SetNX gives insert-if-absent semantics: a
// concurrent first-time creation for the same telegram id loses the race and
// gets domain.ErrUserExists, which callers treat as "already created".
func (r *RedisUserRepository) Create(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.userKey(user.TelegramID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set user in Redis: %w", err)
	}
	if !ok {
		return domain.ErrUserExists
	}

	if err := r.client.SAdd(ctx, r.indexKey(), user.TelegramID).Err(); err != nil {
		return fmt.Errorf("failed to add user to index: %w", err)
	}
	return nil
}

func (r *RedisUserRepository) GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	data, err := r.client.Get(ctx, r.userKey(telegramID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Redis: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

func (r *RedisUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, err := r.GetByTelegramID(ctx, user.TelegramID); err != nil {
		return err
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := r.client.Set(ctx, r.userKey(user.TelegramID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update user in Redis: %w", err)
	}
	return nil
}

func (r *RedisUserRepository) Delete(ctx context.Context, telegramID string) error {
	if _, err := r.GetByTelegramID(ctx, telegramID); err != nil {
		return err
	}

	if err := r.client.SRem(ctx, r.indexKey(), telegramID).Err(); err != nil {
		return fmt.Errorf("failed to remove user from index: %w", err)
	}
	if err := r.client.Del(ctx, r.userKey(telegramID)).Err(); err != nil {
		return fmt.Errorf("failed to delete user from Redis: %w", err)
	}
	return nil
}

func (r *RedisUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user index from Redis: %w", err)
	}

	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		user, err := r.GetByTelegramID(ctx, id)
		if err != nil {
			// Skip index entries whose record is gone
			continue
		}
		users = append(users, user)
	}
	return users, nil
}
