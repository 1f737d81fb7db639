package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/views"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// SessionCookie is the name of the cookie carrying the signed session.
const SessionCookie = "yatube_session"

// LoginURL is where anonymous users are sent by LoginRequired.
const LoginURL = "/auth/login/"

// Sessions issues and checks the signed session cookie.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	users  repositories.UserRepository
}

func NewSessions(secret string, ttl time.Duration, users repositories.UserRepository) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, users: users}
}

// Issue logs user in on the response.
func (s *Sessions) Issue(c echo.Context, user *models.User) error {
	now := time.Now()
	claims := &models.SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(s.ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(views.ViewerKey, user)
	return nil
}

// Clear logs the current user out.
func (s *Sessions) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(views.ViewerKey, nil)
}

// Middleware loads the user named by a valid session cookie into the
// context. Requests without one continue anonymously.
func (s *Sessions) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			claims, err := s.parse(cookie.Value)
			if err != nil {
				s.Clear(c)
				return next(c)
			}

			user, err := s.users.GetUserByID(c.Request().Context(), claims.UserID)
			switch {
			case errors.Is(err, repositories.ErrNotFound):
				s.Clear(c)
			case err != nil:
				log.Printf("load session user %d: %v", claims.UserID, err)
			default:
				c.Set(views.ViewerKey, user)
			}
			return next(c)
		}
	}
}

func (s *Sessions) parse(raw string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

// CurrentUser returns the logged-in user or nil.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(views.ViewerKey).(*models.User)
	return user
}

// UserID returns the logged-in user's id, 0 when anonymous.
func UserID(c echo.Context) uint {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// LoginRequired redirects anonymous requests to the login page, remembering
// where they were going.
func LoginRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				return c.Redirect(http.StatusFound, LoginRedirect(c.Request().URL.RequestURI()))
			}
			return next(c)
		}
	}
}

// LoginRedirect builds the login URL for a return path. Slashes stay
// readable in the query.
func LoginRedirect(next string) string {
	return LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// SafeNext returns next when it is a path on this site, "/" otherwise.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
