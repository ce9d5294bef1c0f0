package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"drivenpass/internal/config"
	"drivenpass/internal/logging"
)

func newTestApp(t *testing.T, tweak ...func(*config.Config)) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		Port:           0,
		JWTSecret:      "jwt-secret",
		CipherSecret:   "cryptr-secret",
		BcryptCost:     bcrypt.MinCost,
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(t.Name())),
	}
	for _, f := range tweak {
		f(&cfg)
	}
	app, err := NewApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

type client struct {
	t     *testing.T
	h     http.Handler
	token string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signedIn registers email and returns a client carrying its token.
func signedIn(t *testing.T, h http.Handler, email string) (*client, int64) {
	t.Helper()
	anon := &client{t: t, h: h}
	w := anon.do(http.MethodPost, "/users/signup", map[string]string{"email": email, "password": "Secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)

	w = anon.do(http.MethodPost, "/users/signin", map[string]string{"email": email, "password": "Secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[map[string]any](t, w)
	return &client{t: t, h: h, token: res["token"].(string)}, int64(created["id"].(float64))
}

func TestSignUpAndSignIn(t *testing.T) {
	app := newTestApp(t)
	anon := &client{t: t, h: app.Router}

	w := anon.do(http.MethodPost, "/users/signup", map[string]string{"email": "a@x.com", "password": "Secret123"})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, body["id"])
	assert.Equal(t, "a@x.com", body["email"])
	assert.NotContains(t, w.Body.String(), "Secret123")
	assert.NotContains(t, w.Body.String(), "password")

	w = anon.do(http.MethodPost, "/users/signup", map[string]string{"email": "a@x.com", "password": "other"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DuplicateEmailError", decode[map[string]any](t, w)["name"])

	w = anon.do(http.MethodPost, "/users/signin", map[string]string{"email": "a@x.com", "password": "Secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[map[string]any](t, w)
	assert.NotEmpty(t, res["token"])
	assert.Equal(t, map[string]any{"id": 1.0, "email": "a@x.com"}, res["user"])

	w = anon.do(http.MethodPost, "/users/signin", map[string]string{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	wrong := w.Body.String()

	w = anon.do(http.MethodPost, "/users/signin", map[string]string{"email": "b@x.com", "password": "Secret123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, wrong, w.Body.String())
}

func TestSignUp_Validation(t *testing.T) {
	app := newTestApp(t)
	anon := &client{t: t, h: app.Router}

	for _, body := range []any{
		map[string]string{"email": "a@x.com"},
		map[string]string{"password": "x"},
		map[string]string{"email": "not-an-email", "password": "x"},
		nil,
	} {
		w := anon.do(http.MethodPost, "/users/signup", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", body)
		assert.Equal(t, "ValidationError", decode[map[string]any](t, w)["name"])
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)
	anon := &client{t: t, h: app.Router}

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/credentials"},
		{http.MethodGet, "/credentials/1"},
		{http.MethodPost, "/credentials"},
		{http.MethodDelete, "/credentials/1"},
		{http.MethodGet, "/networks"},
		{http.MethodPost, "/networks"},
		{http.MethodPost, "/users/signout"},
	} {
		w := anon.do(route.method, route.path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}

	forged := &client{t: t, h: app.Router, token: "abc.def.ghi"}
	assert.Equal(t, http.StatusUnauthorized, forged.do(http.MethodGet, "/credentials", nil).Code)
}

func TestCredentialLifecycle(t *testing.T) {
	app := newTestApp(t)
	ana, anaID := signedIn(t, app.Router, "ana@x.com")
	bob, _ := signedIn(t, app.Router, "bob@x.com")

	w := ana.do(http.MethodPost, "/credentials", map[string]string{"title": "bank", "url": "https://b.com", "username": "u", "password": "pw1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	id := int64(created["id"].(float64))
	assert.Equal(t, "pw1", created["password"])
	assert.EqualValues(t, anaID, created["userId"])

	path := fmt.Sprintf("/credentials/%d", id)

	w = ana.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Equal(t, "pw1", got["password"])
	assert.Equal(t, "https://b.com", got["url"])
	assert.Equal(t, "u", got["username"])
	assert.Equal(t, "bank", got["title"])

	assert.Equal(t, http.StatusNotFound, bob.do(http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, bob.do(http.MethodDelete, path, nil).Code)

	w = bob.do(http.MethodGet, "/credentials", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = ana.do(http.MethodGet, "/credentials", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "pw1", list[0]["password"])

	w = ana.do(http.MethodPost, "/credentials", map[string]string{"title": "bank", "url": "https://c.com", "username": "v", "password": "pw2"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DuplicateTitleError", decode[map[string]any](t, w)["name"])

	w = bob.do(http.MethodPost, "/credentials", map[string]string{"title": "bank", "url": "https://c.com", "username": "v", "password": "pw2"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = ana.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["success"])

	assert.Equal(t, http.StatusNotFound, ana.do(http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, ana.do(http.MethodDelete, path, nil).Code)
}

func TestCredentialValidation(t *testing.T) {
	app := newTestApp(t)
	ana, _ := signedIn(t, app.Router, "ana@x.com")

	w := ana.do(http.MethodPost, "/credentials", map[string]string{"title": "bank", "url": "https://b.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusUnprocessableEntity, ana.do(http.MethodGet, "/credentials/abc", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ana.do(http.MethodDelete, "/credentials/abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, ana.do(http.MethodGet, "/credentials/999", nil).Code)
}

func TestNetworksShareTitleSpaceWithCredentials(t *testing.T) {
	app := newTestApp(t)
	ana, _ := signedIn(t, app.Router, "ana@x.com")

	w := ana.do(http.MethodPost, "/networks", map[string]string{"title": "home", "network": "wifi-5g", "password": "np"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, "wifi-5g", created["network"])
	assert.Equal(t, "np", created["password"])
	id := int64(created["id"].(float64))

	w = ana.do(http.MethodPost, "/credentials", map[string]string{"title": "home", "url": "u", "username": "n", "password": "p"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// A network id is not reachable through /credentials.
	assert.Equal(t, http.StatusNotFound, ana.do(http.MethodGet, fmt.Sprintf("/credentials/%d", id), nil).Code)

	w = ana.do(http.MethodGet, fmt.Sprintf("/networks/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "np", decode[map[string]any](t, w)["password"])

	w = ana.do(http.MethodGet, "/networks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	assert.Equal(t, http.StatusBadRequest, ana.do(http.MethodPost, "/networks", map[string]string{"title": "x", "password": "p"}).Code)
	assert.Equal(t, http.StatusOK, ana.do(http.MethodDelete, fmt.Sprintf("/networks/%d", id), nil).Code)
}

func TestPasswordsAreEncryptedAtRest(t *testing.T) {
	app := newTestApp(t)
	ana, _ := signedIn(t, app.Router, "ana@x.com")

	w := ana.do(http.MethodPost, "/credentials", map[string]string{"title": "bank", "url": "u", "username": "n", "password": "plain-pw"})
	require.Equal(t, http.StatusCreated, w.Code)

	var stored string
	require.NoError(t, app.DB.NewSelect().Table("secrets").Column("password").Limit(1).Scan(context.Background(), &stored))
	assert.NotEmpty(t, stored)
	assert.NotContains(t, stored, "plain-pw")

	var hash string
	require.NoError(t, app.DB.NewSelect().Table("users").Column("password").Limit(1).Scan(context.Background(), &hash))
	assert.NotEqual(t, "Secret123", hash)
}

func TestSignOutRevokesToken(t *testing.T) {
	app := newTestApp(t)
	ana, _ := signedIn(t, app.Router, "ana@x.com")

	require.Equal(t, http.StatusOK, ana.do(http.MethodGet, "/credentials", nil).Code)
	require.Equal(t, http.StatusOK, ana.do(http.MethodPost, "/users/signout", nil).Code)

	w := ana.do(http.MethodGet, "/credentials", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "no session for given token")
}

func TestAuthRateLimit(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.AuthRateLimit = 2 })
	anon := &client{t: t, h: app.Router}

	body := map[string]string{"email": "a@x.com", "password": "nope"}
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodPost, "/users/signin", body).Code)
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodPost, "/users/signin", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, anon.do(http.MethodPost, "/users/signin", body).Code)

	// Sign-up has its own window.
	w := anon.do(http.MethodPost, "/users/signup", map[string]string{"email": "a@x.com", "password": "pw"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)
	anon := &client{t: t, h: app.Router}

	w := anon.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"ok": true, "database": "up"}, decode[map[string]any](t, w))

	w = anon.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "drivenpass_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/health"`)

	require.NoError(t, app.DB.Close())
	w = anon.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestEventsFeed(t *testing.T) {
	app := newTestApp(t)
	ana, _ := signedIn(t, app.Router, "ana@x.com")
	bob, _ := signedIn(t, app.Router, "bob@x.com")

	srv := httptest.NewServer(app.Router)
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+ana.token)
	anaConn, _, err := websocket.DefaultDialer.Dial(base, header)
	require.NoError(t, err)
	defer anaConn.Close()

	bobConn, _, err := websocket.DefaultDialer.Dial(base+"?token="+url.QueryEscape(bob.token), nil)
	require.NoError(t, err)
	defer bobConn.Close()

	require.NoError(t, anaConn.WriteJSON(map[string]string{"type": "ping"}))
	var pong map[string]any
	require.NoError(t, anaConn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong["type"])

	w := ana.do(http.MethodPost, "/credentials", map[string]string{"title": "bank", "url": "u", "username": "n", "password": "pw1"})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, anaConn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := anaConn.ReadMessage()
	require.NoError(t, err)
	var ev map[string]any
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, "secret.created", ev["type"])
	assert.Equal(t, "credential", ev["kind"])
	assert.Equal(t, "bank", ev["title"])
	assert.NotContains(t, string(raw), "pw1")

	// Bob sees nothing of Ana's vault.
	require.NoError(t, bobConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = bobConn.ReadMessage()
	assert.Error(t, err)
}
