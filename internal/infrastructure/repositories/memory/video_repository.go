package memory

import (
	"context"
	"sort"
	"sync"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/ports"
)

type MemoryVideoRepository struct {
	videos map[string]*domain.Video
	mu     sync.RWMutex
}

func NewMemoryVideoRepository() ports.VideoRepository {
	return &MemoryVideoRepository{
		videos: make(map[string]*domain.Video),
	}
}

func (r *MemoryVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[video.VideoID]; exists {
		return domain.ErrVideoExists
	}

	copied := *video
	r.videos[video.VideoID] = &copied
	return nil
}

func (r *MemoryVideoRepository) GetByVideoID(ctx context.Context, videoID string) (*domain.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	video, exists := r.videos[videoID]
	if !exists {
		return nil, domain.ErrVideoNotFound
	}

	copied := *video
	return &copied, nil
}

func (r *MemoryVideoRepository) Update(ctx context.Context, video *domain.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[video.VideoID]; !exists {
		return domain.ErrVideoNotFound
	}

	copied := *video
	r.videos[video.VideoID] = &copied
	return nil
}

func (r *MemoryVideoRepository) Delete(ctx context.Context, videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[videoID]; !exists {
		return domain.ErrVideoNotFound
	}

	delete(r.videos, videoID)
	return nil
}

func (r *MemoryVideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	videos := make([]*domain.Video, 0, len(r.videos))
	for _, video := range r.videos {
		copied := *video
		videos = append(videos, &copied)
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})

	return videos, nil
}
