package middleware

import (
	"strings"

	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/views"
	"github.com/anonto42/yatube/pkg/firebase"
	"github.com/labstack/echo/v4"
)

// FirebaseBearer lets API clients authenticate with a Firebase ID token in
// the Authorization header instead of the session cookie. Only users that
// already signed in through Firebase once are recognised; anything else
// continues anonymously.
func FirebaseBearer(verifier firebase.TokenVerifier, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) != nil {
				return next(c)
			}
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
				return next(c)
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, tokenParts[1])
			if err != nil {
				return next(c)
			}
			if user, err := users.GetUserByFirebaseUID(ctx, token.UID); err == nil {
				c.Set(views.ViewerKey, user)
			}
			return next(c)
		}
	}
}
