package http

import (
	"errors"
	"net/http"
	"strings"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/ports"
	"streamgate/internal/core/services"
	"streamgate/internal/infrastructure/monitoring"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves the identity hand-off and session introspection
// endpoints. The hand-off accepts the widget's POSTed JSON payload as well as
// the redirect flow's query parameters; callers that prefer JSON get status
// codes, everyone else gets browser redirects.
type AuthHandler struct {
	users     ports.UserService
	sessions  services.SessionService
	metrics   *monitoring.PrometheusCollector
	loginPath string
	homePath  string
	logger    *zap.SugaredLogger
}

func NewAuthHandler(users ports.UserService, sessions services.SessionService, metrics *monitoring.PrometheusCollector, loginPath, homePath string, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		sessions:  sessions,
		metrics:   metrics,
		loginPath: loginPath,
		homePath:  homePath,
		logger:    logger,
	}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/auth")
	{
		api.POST("/telegram", h.HandoffPost)
		api.GET("/telegram", h.HandoffGet)
		api.GET("/session", h.Session)
		api.DELETE("/session", h.Logout)
	}
}

func prefersJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// HandoffPost handles the login widget's JSON callback.
func (h *AuthHandler) HandoffPost(c *gin.Context) {
	assertion, err := services.DecodeAssertionJSON(c.Request.Body)
	if err != nil {
		h.fail(c, domain.ErrInvalidAssertion)
		return
	}
	h.handoff(c, assertion)
}

// HandoffGet handles the redirect flow, where the assertion arrives as query
// parameters.
func (h *AuthHandler) HandoffGet(c *gin.Context) {
	assertion := services.AssertionFromQuery(c.Request.URL.Query())
	h.handoff(c, assertion)
}

func (h *AuthHandler) handoff(c *gin.Context, assertion services.Assertion) {
	user, err := h.users.Authenticate(c.Request.Context(), assertion)
	if err != nil {
		h.fail(c, err)
		return
	}

	token, err := h.sessions.Issue(user)
	if err != nil {
		h.logger.Errorw("failed to issue session", "error", err)
		h.fail(c, err)
		return
	}

	http.SetCookie(c.Writer, h.sessions.Cookie(token))
	h.metrics.RecordAuthAttempt("success")
	h.metrics.RecordSessionIssued()

	if prefersJSON(c) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    user.Sanitize(),
		})
		return
	}
	c.Redirect(http.StatusFound, h.homePath)
}

// fail maps the error taxonomy onto responses: 401 for a bad signature, 403
// for an unapproved account, 409 for an unresolved duplicate-creation race,
// 500 for everything else. Browsers get the login page with an error marker
// instead of a status code.
func (h *AuthHandler) fail(c *gin.Context, err error) {
	var status int
	var message, marker string

	switch {
	case errors.Is(err, domain.ErrInvalidAssertion):
		status, message, marker = http.StatusUnauthorized, "Invalid authentication data", "invalid_auth"
		h.metrics.RecordAuthAttempt("invalid_signature")
	case errors.Is(err, domain.ErrUserNotAllowed):
		status, message, marker = http.StatusForbidden, "User not allowed", "not_allowed"
		h.metrics.RecordAuthAttempt("not_allowed")
	case errors.Is(err, domain.ErrUserExists):
		status, message, marker = http.StatusConflict, "User already exists", "user_exists"
		h.metrics.RecordAuthAttempt("conflict")
	default:
		status, message, marker = http.StatusInternalServerError, "Authentication failed", "auth_failed"
		h.metrics.RecordAuthAttempt("error")
		h.logger.Errorw("authentication failed", "error", err)
	}

	if prefersJSON(c) {
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.Redirect(http.StatusFound, h.loginPath+"?error="+marker)
}

// Session is the introspection endpoint: it reports whether the caller holds
// a live session resolving to an approved account. Always reachable through
// the gate so clients can decide whether to show the login screen.
func (h *AuthHandler) Session(c *gin.Context) {
	cookie, err := c.Request.Cookie(services.SessionCookieName)
	if err != nil || cookie.Value == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}

	claims, err := h.sessions.Validate(cookie.Value)
	if err != nil {
		http.SetCookie(c.Writer, h.sessions.ClearCookie())
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}

	user, err := h.users.GetByTelegramID(c.Request.Context(), claims.TelegramID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		h.logger.Errorw("session lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"authenticated": false})
		return
	}

	if user == nil || !user.IsAllowed {
		http.SetCookie(c.Writer, h.sessions.ClearCookie())
		h.metrics.RecordSessionCleared()
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          user.Sanitize(),
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, h.sessions.ClearCookie())
	h.metrics.RecordSessionCleared()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
