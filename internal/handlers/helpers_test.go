package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/router"
	"github.com/anonto42/yatube/internal/testutil"
	"github.com/anonto42/yatube/pkg/firebase"
	"github.com/anonto42/yatube/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testApp struct {
	e         *echo.Echo
	db        *gorm.DB
	store     *cache.MemoryStore
	mediaRoot string
}

func newTestApp(t *testing.T, verifier firebase.TokenVerifier) *testApp {
	t.Helper()
	app := &testApp{
		e:         echo.New(),
		db:        testutil.NewDB(t),
		store:     cache.NewMemoryStore(),
		mediaRoot: t.TempDir(),
	}
	router.SetupMiddleware(app.e)
	require.NoError(t, router.SetupRoutes(app.e, router.Dependencies{
		Postgres:      app.db,
		Cache:         app.store,
		CacheTTL:      20 * time.Second,
		Blobs:         storage.NewLocalStore(app.mediaRoot, "/media/"),
		MediaRoot:     app.mediaRoot,
		Firebase:      verifier,
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
	}))
	return app
}

// client is a browser stand-in that keeps cookies between requests.
type client struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) client(t *testing.T) *client {
	return &client{t: t, app: a, cookies: make(map[string]*http.Cookie)}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	cl.app.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(cl.cookies, ck.Name)
			continue
		}
		cl.cookies[ck.Name] = ck
	}
	return rec
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// csrfToken returns the token a page would have embedded in its forms.
func (cl *client) csrfToken() string {
	if _, ok := cl.cookies["_csrf"]; !ok {
		cl.get("/health/")
	}
	ck, ok := cl.cookies["_csrf"]
	require.True(cl.t, ok, "no CSRF cookie issued")
	return ck.Value
}

func (cl *client) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	if values == nil {
		values = url.Values{}
	}
	values.Set("_csrf", cl.csrfToken())
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return cl.do(req)
}

func (cl *client) postMultipart(path string, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(cl.t, w.WriteField("_csrf", cl.csrfToken()))
	for k, v := range fields {
		require.NoError(cl.t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "small.gif")
		require.NoError(cl.t, err)
		_, err = part.Write(image)
		require.NoError(cl.t, err)
	}
	require.NoError(cl.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return cl.do(req)
}

func (cl *client) login(username string) {
	cl.t.Helper()
	rec := cl.postForm("/auth/login/", url.Values{"username": {username}, "password": {testutil.Password}})
	require.Equal(cl.t, http.StatusFound, rec.Code, rec.Body.String())
	require.Contains(cl.t, cl.cookies, "yatube_session")
}

// gif is a 1x1 transparent GIF.
var gif = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

func newFormRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}
