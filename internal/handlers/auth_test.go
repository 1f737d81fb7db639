package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupLogsIn(t *testing.T) {
	app := newTestApp(t, nil)
	cl := app.client(t)

	rec := cl.postForm("/auth/signup/", url.Values{
		"username": {"newbie"},
		"email":    {"newbie@example.com"},
		"password": {"correct-horse"},
	})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Contains(t, cl.get("/").Body.String(), `href="/profile/newbie/"`)

	rec = app.client(t).postForm("/auth/signup/", url.Values{
		"username": {"newbie"},
		"password": {"another-password"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "A user with that username already exists.")

	rec = app.client(t).postForm("/auth/signup/", url.Values{"username": {"x"}, "password": {"short"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least 8 characters")
}

func TestLoginHonoursNext(t *testing.T) {
	app := newTestApp(t, nil)
	testutil.CreateUser(t, app.db, "leo")
	cl := app.client(t)

	form := cl.get("/auth/login/?next=/create/")
	assert.Contains(t, form.Body.String(), `name="next" value="/create/"`)

	rec := cl.postForm("/auth/login/", url.Values{"username": {"leo"}, "password": {"wrong"}, "next": {"/create/"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a correct username and password.")

	rec = cl.postForm("/auth/login/", url.Values{"username": {"leo"}, "password": {testutil.Password}, "next": {"/create/"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/create/", rec.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, cl.get("/create/").Code)

	rec = cl.postForm("/auth/login/", url.Values{"username": {"leo"}, "password": {testutil.Password}, "next": {"https://evil.test/"}})
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	app := newTestApp(t, nil)
	testutil.CreateUser(t, app.db, "leo")
	cl := app.client(t)
	cl.login("leo")

	rec := cl.get("/auth/logout/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.NotContains(t, cl.cookies, "yatube_session")
	assert.Equal(t, http.StatusFound, cl.get("/create/").Code)
}

type fakeVerifier map[string]*auth.Token

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := f[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("invalid token")
}

func TestFirebaseLogin(t *testing.T) {
	verifier := fakeVerifier{
		"good": {UID: "uid-123456789", Claims: map[string]interface{}{"email": "leo.cat@example.com"}},
	}
	app := newTestApp(t, verifier)
	cl := app.client(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/firebase-login/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-CSRF-Token", cl.csrfToken())
		return cl.do(req)
	}

	assert.Equal(t, http.StatusUnauthorized, post(`{"idToken":"bad"}`).Code)

	rec := post(`{"idToken":"good"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"username":"leocat"}`, rec.Body.String())
	assert.Contains(t, cl.cookies, "yatube_session")

	// second sign-in reuses the account and picks up the new email
	verifier["good"].Claims["email"] = "leo@cats.example"
	require.Equal(t, http.StatusOK, post(`{"idToken":"good"}`).Code)
	var users []models.User
	require.NoError(t, app.db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "leocat", users[0].Username)
	assert.Equal(t, "leo@cats.example", users[0].Email)
}

func TestFirebaseLoginAbsentWithoutCredentials(t *testing.T) {
	app := newTestApp(t, nil)
	cl := app.client(t)
	req := httptest.NewRequest(http.MethodPost, "/auth/firebase-login/", strings.NewReader(`{"idToken":"good"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-CSRF-Token", cl.csrfToken())
	assert.Equal(t, http.StatusNotFound, cl.do(req).Code)
}
