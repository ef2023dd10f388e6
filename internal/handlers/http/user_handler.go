package http

import (
	"errors"
	"net/http"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/ports"
	"streamgate/internal/infrastructure/middleware"
	apperrors "streamgate/pkg/errors"
	"streamgate/pkg/validation"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the administrative account screens: listing, approval
// and role toggles, and deletion. All routes sit behind the access gate plus
// the admin guard.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/users")
	api.Use(middleware.AdminRequired())
	{
		api.GET("", h.List)
		api.POST("", h.Create)
		api.PUT("/:id", h.Update)
		api.DELETE("/:id", h.Delete)
	}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req struct {
		TelegramID string `json:"telegram_id" binding:"required,max=20"`
		FirstName  string `json:"first_name" binding:"required,max=200"`
		LastName   string `json:"last_name" binding:"max=200"`
		Username   string `json:"username" binding:"max=200"`
		PhotoURL   string `json:"photo_url" binding:"max=2048"`
		IsAdmin    bool   `json:"is_admin"`
		IsAllowed  bool   `json:"is_allowed"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}
	if err := validation.ValidateTelegramID(req.TelegramID); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	user, err := h.users.Create(c.Request.Context(), domain.CandidateUser{
		TelegramID: req.TelegramID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Username:   req.Username,
		PhotoURL:   req.PhotoURL,
		IsAdmin:    req.IsAdmin,
		IsAllowed:  req.IsAllowed,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			c.Error(apperrors.NewConflictError("user already exists"))
			return
		}
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to create user", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to list users", http.StatusInternalServerError))
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":          u.ID,
			"telegram_id": u.TelegramID,
			"first_name":  u.FirstName,
			"last_name":   u.LastName,
			"username":    u.Username,
			"photo_url":   u.PhotoURL,
			"is_admin":    u.IsAdmin,
			"is_allowed":  u.IsAllowed,
			"created_at":  u.CreatedAt,
			"updated_at":  u.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (h *UserHandler) Update(c *gin.Context) {
	telegramID := c.Param("id")
	if err := validation.ValidateTelegramID(telegramID); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	var update domain.UserUpdate
	if err := c.BindJSON(&update); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}

	user, err := h.users.Update(c.Request.Context(), telegramID, update)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.Error(apperrors.NewNotFoundError("user"))
		case errors.Is(err, domain.ErrBootstrapAdmin):
			c.Error(apperrors.NewForbiddenError("bootstrap admin cannot be demoted"))
		default:
			c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to update user", http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) Delete(c *gin.Context) {
	telegramID := c.Param("id")
	if err := validation.ValidateTelegramID(telegramID); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	if err := h.users.Delete(c.Request.Context(), telegramID); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.Error(apperrors.NewNotFoundError("user"))
		case errors.Is(err, domain.ErrBootstrapAdmin):
			c.Error(apperrors.NewForbiddenError("bootstrap admin cannot be deleted"))
		default:
			c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to delete user", http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
