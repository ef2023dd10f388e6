package memory

import (
	"context"
	"sort"
	"sync"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/ports"
)

type MemoryUserRepository struct {
	users map[string]*domain.User
	mu    sync.RWMutex
}

func NewMemoryUserRepository() ports.UserRepository {
	return &MemoryUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.TelegramID]; exists {
		return domain.ErrUserExists
	}

	copied := *user
	r.users[user.TelegramID] = &copied
	return nil
}

func (r *MemoryUserRepository) GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[telegramID]
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.TelegramID]; !exists {
		return domain.ErrUserNotFound
	}

	copied := *user
	r.users[user.TelegramID] = &copied
	return nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, telegramID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[telegramID]; !exists {
		return domain.ErrUserNotFound
	}

	delete(r.users, telegramID)
	return nil
}

func (r *MemoryUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		users = append(users, &copied)
	}

	// Newest first, matching the admin screen ordering
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	return users, nil
}
