package services

import (
	"context"
	"time"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/ports"
	"streamgate/pkg/cache"

	"go.uber.org/zap"
)

const videoListCacheKey = "videos:list"

type videoService struct {
	videos    ports.VideoRepository
	listCache *cache.Cache
	logger    *zap.SugaredLogger
}

// NewVideoService builds the catalog service. Listing is served through a
// short TTL cache since the dashboard polls it; every write invalidates.
func NewVideoService(videos ports.VideoRepository, cacheTTL time.Duration, logger *zap.SugaredLogger) ports.VideoService {
	return &videoService{
		videos:    videos,
		listCache: cache.NewCache(cacheTTL),
		logger:    logger,
	}
}

func (s *videoService) List(ctx context.Context) ([]*domain.Video, error) {
	if cached, ok := s.listCache.Get(videoListCacheKey); ok {
		if videos, ok := cached.([]*domain.Video); ok {
			return videos, nil
		}
	}

	videos, err := s.videos.List(ctx)
	if err != nil {
		return nil, err
	}
	s.listCache.Set(videoListCacheKey, videos)
	return videos, nil
}

func (s *videoService) Get(ctx context.Context, videoID string) (*domain.Video, error) {
	return s.videos.GetByVideoID(ctx, videoID)
}

func (s *videoService) Create(ctx context.Context, video *domain.Video) (*domain.Video, error) {
	now := time.Now()
	video.CreatedAt = now
	video.UpdatedAt = now

	if err := s.videos.Create(ctx, video); err != nil {
		return nil, err
	}
	s.listCache.Delete(videoListCacheKey)

	s.logger.Infow("video created",
		"video_id", video.VideoID,
		"platform", video.Platform,
	)
	return video, nil
}

func (s *videoService) Update(ctx context.Context, videoID string, update *domain.Video) (*domain.Video, error) {
	video, err := s.videos.GetByVideoID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if update.Title != "" {
		video.Title = update.Title
	}
	if update.Description != "" {
		video.Description = update.Description
	}
	if update.URL != "" {
		video.URL = update.URL
	}
	if update.Platform != "" {
		video.Platform = update.Platform
	}
	if update.ThumbnailURL != "" {
		video.ThumbnailURL = update.ThumbnailURL
	}
	video.UpdatedAt = time.Now()

	if err := s.videos.Update(ctx, video); err != nil {
		return nil, err
	}
	s.listCache.Delete(videoListCacheKey)
	return video, nil
}

func (s *videoService) Delete(ctx context.Context, videoID string) error {
	if err := s.videos.Delete(ctx, videoID); err != nil {
		return err
	}
	s.listCache.Delete(videoListCacheKey)
	return nil
}
