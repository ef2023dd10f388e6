package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/ports"
	"streamgate/internal/core/services"
	handlers "streamgate/internal/handlers/http"
	"streamgate/internal/infrastructure/middleware"
	"streamgate/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPlayer struct {
	token *domain.PlaybackToken
	err   error
}

func (s *stubPlayer) IssueOTP(ctx context.Context, videoID string) (*domain.PlaybackToken, error) {
	return s.token, s.err
}

type videoFixture struct {
	router *gin.Engine
	videos ports.VideoRepository
	player *stubPlayer
}

// newVideoFixture wires the catalog routes with the caller's role injected
// ahead of the admin guard.
func newVideoFixture(t *testing.T, caller *domain.User) *videoFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	videos := memory.NewMemoryVideoRepository()
	videoService := services.NewVideoService(videos, time.Minute, zap.NewNop().Sugar())
	player := &stubPlayer{token: &domain.PlaybackToken{OTP: "otp-1", PlaybackInfo: "info-1"}}

	handler := handlers.NewVideoHandler(videoService, player, testMetrics)

	router := gin.New()
	router.Use(middleware.ErrorHandlerMiddleware(zap.NewNop().Sugar()))
	if caller != nil {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserKey, caller)
		})
	}
	handler.SetupRoutes(router)

	return &videoFixture{router: router, videos: videos, player: player}
}

func adminCaller() *domain.User {
	return &domain.User{ID: "u-admin", TelegramID: bootstrapAdminID, IsAdmin: true, IsAllowed: true}
}

func viewerCaller() *domain.User {
	return &domain.User{ID: "u-1", TelegramID: "987654321", IsAllowed: true}
}

func seedVideo(t *testing.T, videos ports.VideoRepository, platform domain.VideoPlatform) *domain.Video {
	t.Helper()
	video := &domain.Video{
		VideoID:   "abc123",
		Title:     "Lesson 1",
		URL:       "https://player.example.com/abc123",
		Platform:  platform,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, videos.Create(context.Background(), video))
	return video
}

func TestVideoHandler_List(t *testing.T) {
	f := newVideoFixture(t, viewerCaller())
	seedVideo(t, f.videos, domain.PlatformVdoCipher)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Videos []*domain.Video `json:"videos"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Videos, 1)
	assert.Equal(t, "abc123", body.Videos[0].VideoID)
}

func TestVideoHandler_GetMissing(t *testing.T) {
	f := newVideoFixture(t, viewerCaller())

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/videos/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVideoHandler_CreateRequiresAdmin(t *testing.T) {
	f := newVideoFixture(t, viewerCaller())

	body, _ := json.Marshal(map[string]string{
		"video_id": "abc123",
		"title":    "Lesson 1",
		"url":      "https://player.example.com/abc123",
		"platform": "vdocipher",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestVideoHandler_CreateAsAdmin(t *testing.T) {
	f := newVideoFixture(t, adminCaller())

	body, _ := json.Marshal(map[string]string{
		"video_id": "abc123",
		"title":    "Lesson 1",
		"url":      "https://player.example.com/abc123",
		"platform": "vdocipher",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	stored, err := f.videos.GetByVideoID(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformVdoCipher, stored.Platform)
}

func TestVideoHandler_CreateRejectsBadPlatform(t *testing.T) {
	f := newVideoFixture(t, adminCaller())

	body, _ := json.Marshal(map[string]string{
		"video_id": "abc123",
		"title":    "Lesson 1",
		"url":      "https://player.example.com/abc123",
		"platform": "youtube",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVideoHandler_UpdateAsAdmin(t *testing.T) {
	f := newVideoFixture(t, adminCaller())
	seedVideo(t, f.videos, domain.PlatformVdoCipher)

	body, _ := json.Marshal(map[string]string{"title": "Lesson 1 (updated)"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/videos/abc123", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := f.videos.GetByVideoID(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Lesson 1 (updated)", stored.Title)
}

func TestVideoHandler_DeleteAsAdmin(t *testing.T) {
	f := newVideoFixture(t, adminCaller())
	seedVideo(t, f.videos, domain.PlatformVdoCipher)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/videos/abc123", nil))

	require.Equal(t, http.StatusOK, w.Code)

	_, err := f.videos.GetByVideoID(context.Background(), "abc123")
	assert.ErrorIs(t, err, domain.ErrVideoNotFound)
}

func TestVideoHandler_PlaybackOTP(t *testing.T) {
	f := newVideoFixture(t, viewerCaller())
	seedVideo(t, f.videos, domain.PlatformVdoCipher)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/videos/abc123/otp", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token domain.PlaybackToken
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	assert.Equal(t, "otp-1", token.OTP)
	assert.Equal(t, "info-1", token.PlaybackInfo)
}

func TestVideoHandler_PlaybackOTP_WrongPlatform(t *testing.T) {
	f := newVideoFixture(t, viewerCaller())
	seedVideo(t, f.videos, domain.PlatformKinescope)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/videos/abc123/otp", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVideoHandler_PlaybackOTP_UpstreamFailure(t *testing.T) {
	f := newVideoFixture(t, viewerCaller())
	seedVideo(t, f.videos, domain.PlatformVdoCipher)
	f.player.err = errors.New("upstream unavailable")
	f.player.token = nil

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/videos/abc123/otp", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
