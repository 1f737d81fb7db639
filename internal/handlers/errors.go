package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/services"
	"github.com/labstack/echo/v4"
)

// fragmentRenderer renders a cacheable piece of a page.
type fragmentRenderer interface {
	Fragment(name string, data interface{}) ([]byte, error)
}

// httpError maps service failures onto HTTP errors.
func httpError(err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Page not found").SetInternal(err)
	case errors.Is(err, services.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized).SetInternal(err)
	}
	return err
}

// pathID reads a numeric path parameter. Anything else is a missing page.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Page not found")
	}
	return uint(id), nil
}

// ErrorHandler renders the error page for every failed request.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong on our side."
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch {
		case code == http.StatusNotFound:
			message = "Page not found"
		case code < http.StatusInternalServerError:
			if m, ok := he.Message.(string); ok {
				message = m
			}
		}
	}
	if code >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if errors.Is(err, services.ErrUnauthorized) {
		_ = c.Redirect(http.StatusFound, middleware.LoginRedirect(c.Request().URL.RequestURI()))
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if rerr := c.Render(code, "error.html", echo.Map{"Code": code, "Message": message}); rerr != nil {
		log.Printf("render error page: %v", rerr)
		_ = c.String(code, message)
	}
}
