package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/validators"
	"github.com/anonto42/yatube/pkg/firebase"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const invalidLogin = "Please enter a correct username and password."

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	sessions       *middleware.Sessions
	firebaseAuth   firebase.TokenVerifier
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, in
// which case Firebase sign-in is not offered.
func NewAuthHandler(userRepo repositories.UserRepository, sessions *middleware.Sessions, firebaseAuth firebase.TokenVerifier) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		sessions:       sessions,
		firebaseAuth:   firebaseAuth,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.GET("/login/", h.LoginForm)
	g.POST("/login/", h.Login)
	g.GET("/signup/", h.SignupForm)
	g.POST("/signup/", h.Signup)
	g.GET("/logout/", h.Logout)
	if h.firebaseAuth != nil {
		g.POST("/firebase-login/", h.FirebaseLogin)
	}
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
	return renderLogin(c, c.QueryParam("next"), "", "")
}

// Login checks the credentials and continues to next
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	next := c.FormValue("next")
	if err := c.Validate(&req); err != nil {
		return renderLogin(c, next, req.Username, invalidLogin)
	}

	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), req.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		return renderLogin(c, next, req.Username, invalidLogin)
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return renderLogin(c, next, req.Username, invalidLogin)
	}

	if err := h.sessions.Issue(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, middleware.SafeNext(next))
}

func (h *AuthHandler) SignupForm(c echo.Context) error {
	return renderSignup(c, models.SignupRequest{}, nil)
}

// Signup creates a local account and logs it in
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	if err := c.Validate(&req); err != nil {
		return renderSignup(c, req, validators.FieldErrors(err))
	}

	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return renderSignup(c, req, map[string]string{"username": "A user with that username already exists."})
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	if err := h.sessions.Issue(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Clear(c)
	return c.Redirect(http.StatusFound, "/")
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" form:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and opens a local session,
// creating the account on first sign-in.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "idToken is required")
	}

	ctx := c.Request().Context()
	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, token.UID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		user, err = h.createFirebaseUser(c, token)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		// keep the email in sync with the Firebase account
		if email, _ := token.Claims["email"].(string); email != "" && email != user.Email {
			user.Email = email
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return fmt.Errorf("update user email: %w", err)
			}
		}
	}

	if err := h.sessions.Issue(c, user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"username": user.Username})
}

func (h *AuthHandler) createFirebaseUser(c echo.Context, token *auth.Token) (*models.User, error) {
	ctx := c.Request().Context()
	email, _ := token.Claims["email"].(string)

	username := firebaseUsername(email, token.UID)
	if _, err := h.userRepository.GetUserByUsername(ctx, username); err == nil {
		username = fmt.Sprintf("%s%s", username, token.UID[:min(6, len(token.UID))])
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	uid := token.UID
	user := &models.User{Username: username, Email: email, FirebaseUID: &uid}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create firebase user: %w", err)
	}
	return user, nil
}

// firebaseUsername derives a username from the local part of the email,
// falling back to the Firebase UID.
func firebaseUsername(email, uid string) string {
	local, _, _ := strings.Cut(email, "@")
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, local)
	if len([]rune(name)) < 2 {
		name = "user" + uid
	}
	if r := []rune(name); len(r) > 140 {
		name = string(r[:140])
	}
	return name
}

func renderLogin(c echo.Context, next, username, msg string) error {
	return c.Render(http.StatusOK, "login.html", echo.Map{
		"Next":     next,
		"Username": username,
		"Error":    msg,
	})
}

func renderSignup(c echo.Context, form models.SignupRequest, errs map[string]string) error {
	return c.Render(http.StatusOK, "signup.html", echo.Map{
		"Form":   form,
		"Errors": errs,
	})
}
