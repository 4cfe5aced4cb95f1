package app

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positions-console/internal/config"
	"positions-console/internal/fakeapi"
	"positions-console/internal/model"
)

type console struct {
	api  *fakeapi.Server
	core *Core
	srv  *httptest.Server
	http *http.Client
}

func newConsole(t *testing.T) *console {
	t.Helper()

	api := fakeapi.New(t)
	api.AddUser("alice", "pw", "Admin")
	api.Seed(
		model.Position{PositionID: 5, PositionCode: "A1", PositionName: "Analyst"},
		model.Position{PositionID: 6, PositionCode: "M1", PositionName: "Manager"},
	)

	cfg := &config.Config{
		APIBaseURL:     api.URL,
		HTTPTimeout:    5 * time.Second,
		TokenStore:     config.TokenStoreMemory,
		ServerHost:     "127.0.0.1",
		ServerPort:     "0",
		RequestTimeout: 5 * time.Second,
		RateLimitRPM:   0,
	}
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	core, err := NewCore(ctx, cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })

	a, err := New(core)
	require.NoError(t, err)
	a.Start(ctx)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &console{
		api:  api,
		core: core,
		srv:  srv,
		http: &http.Client{
			Jar:           jar,
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}
}

var csrfField = regexp.MustCompile(`name="gorilla.csrf.Token" value="([^"]+)"`)

// formToken reads the token the console renders into its own forms.
func (c *console) formToken(t *testing.T) string {
	t.Helper()
	_, body := c.get(t, "/login")
	m := csrfField.FindStringSubmatch(body)
	require.Len(t, m, 2, "login page carries a form token")
	return m[1]
}

func (c *console) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.http.Get(c.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (c *console) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	return c.send(t, path, form, http.Header{"X-CSRF-Token": {c.formToken(t)}})
}

func (c *console) send(t *testing.T, path string, form url.Values, header http.Header) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	if header != nil {
		req.Header = header.Clone()
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (c *console) login(t *testing.T) {
	t.Helper()
	resp, _ := c.post(t, "/login", url.Values{"username": {"alice"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func (c *console) storedToken(t *testing.T) (string, bool) {
	t.Helper()
	token, ok, err := c.core.Store.Get(context.Background())
	require.NoError(t, err)
	return token, ok
}

func TestProtectedViewsRedirectToLogin(t *testing.T) {
	c := newConsole(t)

	for _, path := range []string{"/dashboard", "/dashboard/positions", "/dashboard/positions/5/delete"} {
		resp, body := c.get(t, path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
		assert.NotContains(t, body, "Analyst", path)
	}
	assert.Empty(t, c.api.RequestsTo(http.MethodGet, "/positions"))
}

func TestLoginStoresTokenAndOpensDashboard(t *testing.T) {
	c := newConsole(t)
	c.login(t)

	token, ok := c.storedToken(t)
	require.True(t, ok)

	resp, body := c.get(t, "/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome back, alice!")
	assert.Contains(t, body, "Admin")
	assert.NotContains(t, body, token)

	_, body = c.get(t, "/dashboard?token=show")
	assert.Contains(t, body, token)

	resp, _ = c.get(t, "/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestLoginFailureShowsMessage(t *testing.T) {
	c := newConsole(t)

	resp, body := c.post(t, "/login", url.Values{"username": {"alice"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Invalid credentials")

	_, ok := c.storedToken(t)
	assert.False(t, ok)

	resp, body = c.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Positions Console")
}

func TestRegister(t *testing.T) {
	c := newConsole(t)

	resp, body := c.post(t, "/register", url.Values{"username": {"bob"}, "password": {"secret"}})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, "Registration Successful!")

	resp, body = c.post(t, "/register", url.Values{"username": {"bob"}, "password": {"secret"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Username already exists")
}

func TestPositionsCRUD(t *testing.T) {
	c := newConsole(t)
	c.login(t)

	resp, body := c.get(t, "/dashboard/positions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Analyst")
	assert.Contains(t, body, "Create Position")

	resp, _ = c.post(t, "/dashboard/positions", url.Values{"position_code": {"C1"}, "position_name": {"Clerk"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = c.get(t, "/dashboard/positions")
	assert.Contains(t, body, "Clerk")

	resp, _ = c.post(t, "/dashboard/positions/6/edit", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = c.get(t, "/dashboard/positions")
	assert.Contains(t, body, "Edit Position")
	assert.Contains(t, body, `value="M1"`)

	resp, _ = c.post(t, "/dashboard/positions", url.Values{"position_code": {"M1"}, "position_name": {"Director"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Len(t, c.api.RequestsTo(http.MethodPut, "/positions/6"), 1)

	_, body = c.get(t, "/dashboard/positions/5/delete")
	assert.Contains(t, body, "Delete this position?")

	resp, _ = c.post(t, "/dashboard/positions/5/delete", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, c.api.RequestsTo(http.MethodDelete, "/positions/5"), "unconfirmed delete makes no call")

	resp, _ = c.post(t, "/dashboard/positions/5/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = c.get(t, "/dashboard/positions")
	assert.NotContains(t, body, "Analyst")
	assert.Contains(t, body, "Director")
}

func TestDeleteFailureRendersError(t *testing.T) {
	c := newConsole(t)
	c.login(t)
	c.get(t, "/dashboard/positions")

	c.api.FailNext(http.MethodDelete, "/positions/5", http.StatusNotFound, "")
	resp, body := c.post(t, "/dashboard/positions/5/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Delete failed: 404")
	assert.Contains(t, body, "Analyst")
}

func TestExpiredSessionReturnsToLogin(t *testing.T) {
	c := newConsole(t)
	c.login(t)
	c.api.Expire()

	resp, _ := c.get(t, "/dashboard/positions")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, ok := c.storedToken(t)
	assert.False(t, ok)
}

func TestLogout(t *testing.T) {
	c := newConsole(t)
	c.login(t)

	resp, _ := c.post(t, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, ok := c.storedToken(t)
	assert.False(t, ok)
}

func TestHealthAndMetrics(t *testing.T) {
	c := newConsole(t)
	c.login(t)

	resp, body := c.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"data":{"status":"ok"}}`, body)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, body = c.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(body, `positions_console_remote_calls_total{op="login",result="ok"} 1`))
}

func TestCrossSiteFormsAreRejected(t *testing.T) {
	c := newConsole(t)
	c.login(t)
	c.get(t, "/dashboard/positions")

	foreign := http.Header{
		"Origin":         {"https://evil.example"},
		"Sec-Fetch-Site": {"cross-site"},
	}
	for _, path := range []string{"/dashboard/positions/5/delete", "/dashboard/positions", "/logout"} {
		resp, _ := c.send(t, path, url.Values{"confirm": {"yes"}, "position_code": {"X"}}, foreign)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}

	resp, _ := c.send(t, "/dashboard/positions/5/delete", url.Values{"confirm": {"yes"}}, http.Header{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "a form without the token is refused too")

	assert.Empty(t, c.api.RequestsTo(http.MethodDelete, "/positions/5"))
	assert.Empty(t, c.api.RequestsTo(http.MethodPost, "/positions"))
	_, ok := c.storedToken(t)
	assert.True(t, ok, "session survives the foreign logout")
}
