package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisVideoRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisVideoRepository(client *redis.Client) ports.VideoRepository {
	return &RedisVideoRepository{
		client: client,
		prefix: "streamgate:video:",
	}
}

func (r *RedisVideoRepository) videoKey(videoID string) string {
	return r.prefix + videoID
}

func (r *RedisVideoRepository) indexKey() string {
	return r.prefix + "index"
}

func (r *RedisVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	data, err := json.Marshal(video)
	if err != nil {
		return fmt.Errorf("failed to marshal video: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.videoKey(video.VideoID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set video in Redis: %w", err)
	}
	if !ok {
		return domain.ErrVideoExists
	}

	if err := r.client.SAdd(ctx, r.indexKey(), video.VideoID).Err(); err != nil {
		return fmt.Errorf("failed to add video to index: %w", err)
	}
	return nil
}

func (r *RedisVideoRepository) GetByVideoID(ctx context.Context, videoID string) (*domain.Video, error) {
	data, err := r.client.Get(ctx, r.videoKey(videoID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video from Redis: %w", err)
	}

	var video domain.Video
	if err := json.Unmarshal([]byte(data), &video); err != nil {
		return nil, fmt.Errorf("failed to unmarshal video: %w", err)
	}
	return &video, nil
}

func (r *RedisVideoRepository) Update(ctx context.Context, video *domain.Video) error {
	if _, err := r.GetByVideoID(ctx, video.VideoID); err != nil {
		return err
	}

	data, err := json.Marshal(video)
	if err != nil {
		return fmt.Errorf("failed to marshal video: %w", err)
	}

	if err := r.client.Set(ctx, r.videoKey(video.VideoID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update video in Redis: %w", err)
	}
	return nil
}

func (r *RedisVideoRepository) Delete(ctx context.Context, videoID string) error {
	if _, err := r.GetByVideoID(ctx, videoID); err != nil {
		return err
	}

	if err := r.client.SRem(ctx, r.indexKey(), videoID).Err(); err != nil {
		return fmt.Errorf("failed to remove video from index: %w", err)
	}
	if err := r.client.Del(ctx, r.videoKey(videoID)).Err(); err != nil {
		return fmt.Errorf("failed to delete video from Redis: %w", err)
	}
	return nil
}

func (r *RedisVideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get video index from Redis: %w", err)
	}

	videos := make([]*domain.Video, 0, len(ids))
	for _, id := range ids {
		video, err := r.GetByVideoID(ctx, id)
		if err != nil {
			continue
		}
		videos = append(videos, video)
	}
	return videos, nil
}
