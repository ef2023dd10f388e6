package services

import (
	"errors"
	"net/http"
	"time"

	"streamgate/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSession = errors.New("invalid session token")
	ErrExpiredSession = errors.New("session expired")
)

// SessionCookieName is the fixed cookie carrying the session token.
const SessionCookieName = "user_session"

// SessionClaims is what the session token encodes. The claims identify the
// session; they are never authoritative for authorization. The access gate
// re-resolves the user record on every request so that a revoked approval
// takes effect before the token expires.
type SessionClaims struct {
	UserID     domain.UserID `json:"user_id"`
	TelegramID string        `json:"telegram_id"`
	FirstName  string        `json:"first_name"`
	IsAdmin    bool          `json:"is_admin"`
	jwt.RegisteredClaims
}

type SessionService interface {
	Issue(user *domain.User) (string, error)
	Validate(token string) (*SessionClaims, error)
	Cookie(token string) *http.Cookie
	ClearCookie() *http.Cookie
}

type sessionService struct {
	secret       []byte
	ttl          time.Duration
	secureCookie bool
}

func NewSessionService(secret string, ttl time.Duration, secureCookie bool) SessionService {
	return &sessionService{
		secret:       []byte(secret),
		ttl:          ttl,
		secureCookie: secureCookie,
	}
}

// Issue mints a signed session token for an already-verified, approved user.
// Callers enforce the approval flag before minting; Issue itself only signs.
func (s *sessionService) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID:     user.ID,
		TelegramID: user.TelegramID,
		FirstName:  user.FirstName,
		IsAdmin:    user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and checks a session token. Expired tokens are reported as
// ErrExpiredSession so the gate can treat them as absent.
func (s *sessionService) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredSession
		}
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.TelegramID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Cookie wraps a token in the fixed session cookie: http-only, root path,
// secure when the deployment terminates TLS, bounded max-age.
func (s *sessionService) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns an expired cookie that removes the session.
func (s *sessionService) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
