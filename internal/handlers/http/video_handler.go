package http

import (
	"errors"
	"net/http"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/ports"
	"streamgate/internal/infrastructure/middleware"
	"streamgate/internal/infrastructure/monitoring"
	apperrors "streamgate/pkg/errors"
	"streamgate/pkg/validation"

	"github.com/gin-gonic/gin"
)

// VideoHandler serves the catalog: reads for any approved user, writes for
// administrators, and the playback-OTP proxy that keeps the player API
// secret server-side.
type VideoHandler struct {
	videos  ports.VideoService
	player  ports.PlayerTokenService
	metrics *monitoring.PrometheusCollector
}

func NewVideoHandler(videos ports.VideoService, player ports.PlayerTokenService, metrics *monitoring.PrometheusCollector) *VideoHandler {
	return &VideoHandler{
		videos:  videos,
		player:  player,
		metrics: metrics,
	}
}

func (h *VideoHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/videos")
	{
		api.GET("", h.List)
		api.GET("/:id", h.Get)
		api.GET("/:id/otp", h.PlaybackOTP)

		admin := api.Group("")
		admin.Use(middleware.AdminRequired())
		{
			admin.POST("", h.Create)
			admin.PUT("/:id", h.Update)
			admin.DELETE("/:id", h.Delete)
		}
	}
}

type videoRequest struct {
	VideoID      string `json:"video_id" binding:"required,max=64"`
	Title        string `json:"title" binding:"required,max=200"`
	Description  string `json:"description" binding:"max=2000"`
	URL          string `json:"url" binding:"required,max=2048"`
	Platform     string `json:"platform" binding:"required"`
	ThumbnailURL string `json:"thumbnail_url" binding:"max=2048"`
}

func (r *videoRequest) validate() error {
	if err := validation.ValidateVideoID(r.VideoID); err != nil {
		return err
	}
	if err := validation.ValidateTitle(r.Title); err != nil {
		return err
	}
	if err := validation.ValidateHTTPURL(r.URL); err != nil {
		return err
	}
	return validation.ValidatePlatform(r.Platform)
}

func (h *VideoHandler) List(c *gin.Context) {
	videos, err := h.videos.List(c.Request.Context())
	if err != nil {
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to list videos", http.StatusInternalServerError))
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

func (h *VideoHandler) Get(c *gin.Context) {
	video, err := h.videos.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			c.Error(apperrors.NewNotFoundError("video"))
			return
		}
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to get video", http.StatusInternalServerError))
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": video})
}

func (h *VideoHandler) Create(c *gin.Context) {
	var req videoRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}
	if err := req.validate(); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	video, err := h.videos.Create(c.Request.Context(), &domain.Video{
		VideoID:      req.VideoID,
		Title:        req.Title,
		Description:  req.Description,
		URL:          req.URL,
		Platform:     domain.VideoPlatform(req.Platform),
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		if errors.Is(err, domain.ErrVideoExists) {
			c.Error(apperrors.NewConflictError("video already exists"))
			return
		}
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to create video", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"video": video})
}

func (h *VideoHandler) Update(c *gin.Context) {
	var req struct {
		Title        string `json:"title" binding:"max=200"`
		Description  string `json:"description" binding:"max=2000"`
		URL          string `json:"url" binding:"max=2048"`
		Platform     string `json:"platform"`
		ThumbnailURL string `json:"thumbnail_url" binding:"max=2048"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}
	if req.Platform != "" {
		if err := validation.ValidatePlatform(req.Platform); err != nil {
			c.Error(apperrors.NewInvalidInputError(err.Error()))
			return
		}
	}

	video, err := h.videos.Update(c.Request.Context(), c.Param("id"), &domain.Video{
		Title:        req.Title,
		Description:  req.Description,
		URL:          req.URL,
		Platform:     domain.VideoPlatform(req.Platform),
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			c.Error(apperrors.NewNotFoundError("video"))
			return
		}
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to update video", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": video})
}

func (h *VideoHandler) Delete(c *gin.Context) {
	if err := h.videos.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			c.Error(apperrors.NewNotFoundError("video"))
			return
		}
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to delete video", http.StatusInternalServerError))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PlaybackOTP exchanges a catalog entry for a short-lived player credential.
// Only entries hosted on a platform with OTP support are eligible.
func (h *VideoHandler) PlaybackOTP(c *gin.Context) {
	videoID := c.Param("id")
	if err := validation.ValidateVideoID(videoID); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	video, err := h.videos.Get(c.Request.Context(), videoID)
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			c.Error(apperrors.NewNotFoundError("video"))
			return
		}
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to get video", http.StatusInternalServerError))
		return
	}

	if video.Platform != domain.PlatformVdoCipher {
		c.Error(apperrors.NewInvalidInputError("playback otp is only available for vdocipher videos"))
		return
	}

	token, err := h.player.IssueOTP(c.Request.Context(), video.VideoID)
	if err != nil {
		h.metrics.RecordOTPIssued("error")
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to issue playback otp", http.StatusInternalServerError))
		return
	}

	h.metrics.RecordOTPIssued("success")
	c.JSON(http.StatusOK, token)
}
