package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/ports"
	"streamgate/internal/core/services"
	"streamgate/internal/infrastructure/monitoring"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context key under which the gate stores the resolved user for handlers.
const ContextUserKey = "user"

type DecisionKind int

const (
	// DecisionAllow grants access with a resolved, approved user.
	DecisionAllow DecisionKind = iota
	// DecisionAllowAnonymous lets an unauthenticated request through to a
	// public resource.
	DecisionAllowAnonymous
	// DecisionRedirect sends the browser elsewhere (login or home).
	DecisionRedirect
	// DecisionUnauthorized rejects with 401; the stale cookie is cleared.
	DecisionUnauthorized
)

// Decision is the per-request outcome of the access gate.
type Decision struct {
	Kind           DecisionKind
	User           *domain.User
	RedirectTarget string
	ClearCookie    bool
}

// AccessGate decides, per request, whether a caller may proceed. A session
// token is never trusted on its own: the gate re-resolves the user record on
// every request so a revoked approval takes effect immediately, not when the
// token expires.
type AccessGate struct {
	sessions    services.SessionService
	users       ports.UserRepository
	loginPath   string
	homePath    string
	handoffPath string
	sessionPath string
	metrics     *monitoring.PrometheusCollector
	logger      *zap.SugaredLogger
}

func NewAccessGate(sessions services.SessionService, users ports.UserRepository, loginPath, homePath string, metrics *monitoring.PrometheusCollector, logger *zap.SugaredLogger) *AccessGate {
	return &AccessGate{
		sessions:    sessions,
		users:       users,
		loginPath:   loginPath,
		homePath:    homePath,
		handoffPath: "/api/v1/auth/telegram",
		sessionPath: "/api/v1/auth/session",
		metrics:     metrics,
		logger:      logger,
	}
}

func (k DecisionKind) String() string {
	switch k {
	case DecisionAllow:
		return "allow"
	case DecisionAllowAnonymous:
		return "allow_anonymous"
	case DecisionRedirect:
		return "redirect"
	case DecisionUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Matches reports whether the gate covers a path at all: the login page, the
// authenticated pages and the API surface. Operational endpoints (health,
// readiness, metrics) stay outside the gate.
func (g *AccessGate) Matches(path string) bool {
	return path == g.loginPath ||
		path == g.homePath ||
		strings.HasPrefix(path, g.homePath+"/") ||
		strings.HasPrefix(path, "/api/")
}

// isPublic reports whether a path is reachable without a session: the login
// page, the identity hand-off endpoint (exact or prefix) and the session
// introspection endpoint.
func (g *AccessGate) isPublic(path string) bool {
	return path == g.loginPath ||
		path == g.handoffPath ||
		strings.HasPrefix(path, g.handoffPath) ||
		path == g.sessionPath
}

func (g *AccessGate) isHandoff(path string) bool {
	return path == g.handoffPath || strings.HasPrefix(path, g.handoffPath)
}

// Authorize implements the gate's decision table. A non-nil error means the
// user store was unreachable; callers convert that to a 500, never a denial.
func (g *AccessGate) Authorize(ctx context.Context, path, rawToken string) (Decision, error) {
	// The introspection endpoint is always reachable so clients can find out
	// whether to redirect to login.
	if path == g.sessionPath {
		return Decision{Kind: DecisionAllowAnonymous}, nil
	}

	public := g.isPublic(path)

	claims, err := g.sessions.Validate(rawToken)
	if rawToken == "" || err != nil {
		// Absent, malformed or expired tokens are all treated as absent.
		if public {
			return Decision{Kind: DecisionAllowAnonymous}, nil
		}
		return Decision{Kind: DecisionRedirect, RedirectTarget: g.loginPath}, nil
	}

	user, err := g.users.GetByTelegramID(ctx, claims.TelegramID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return Decision{}, fmt.Errorf("failed to resolve session user: %w", err)
	}

	if user == nil || !user.IsAllowed {
		// Stale session: the account disappeared or approval was revoked
		// after issuance.
		if public {
			return Decision{Kind: DecisionAllowAnonymous, ClearCookie: true}, nil
		}
		return Decision{Kind: DecisionUnauthorized, ClearCookie: true}, nil
	}

	// A logged-in user has no business on the login screen.
	if public && !g.isHandoff(path) {
		return Decision{Kind: DecisionRedirect, RedirectTarget: g.homePath, User: user}, nil
	}

	return Decision{Kind: DecisionAllow, User: user}, nil
}

// Middleware applies the gate's decision to a gin request: allow proceeds
// (with the resolved user in context), redirects abort with a 302, and
// unauthorized aborts with 401 plus an atomic cookie clear.
func (g *AccessGate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.Matches(c.Request.URL.Path) {
			c.Next()
			return
		}

		rawToken := ""
		if cookie, err := c.Request.Cookie(services.SessionCookieName); err == nil {
			rawToken = cookie.Value
		}

		decision, err := g.Authorize(c.Request.Context(), c.Request.URL.Path, rawToken)
		if err != nil {
			g.logger.Errorw("access gate store lookup failed",
				"path", c.Request.URL.Path,
				"error", err,
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if g.metrics != nil {
			g.metrics.RecordGateDecision(decision.Kind.String())
		}

		if decision.ClearCookie {
			http.SetCookie(c.Writer, g.sessions.ClearCookie())
		}

		switch decision.Kind {
		case DecisionAllow:
			c.Set(ContextUserKey, decision.User)
			c.Next()
		case DecisionAllowAnonymous:
			c.Next()
		case DecisionRedirect:
			c.Redirect(http.StatusFound, decision.RedirectTarget)
			c.Abort()
		case DecisionUnauthorized:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		}
	}
}

// UserFromContext returns the user the gate resolved for this request.
func UserFromContext(c *gin.Context) (*domain.User, bool) {
	val, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}

// AdminRequired guards administrative routes. It relies on the gate having
// re-resolved the user; the session's embedded admin claim is never enough.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
