package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positions-console/internal/fakeapi"
	"positions-console/internal/model"
)

type result struct {
	out  string
	err  string
	code int
}

type harness struct {
	api       *fakeapi.Server
	tokenFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	api := fakeapi.New(t)
	api.AddUser("alice", "pw", "Admin")
	api.Seed(
		model.Position{PositionID: 5, PositionCode: "A1", PositionName: "Analyst"},
		model.Position{PositionID: 6, PositionCode: "M1", PositionName: "Manager"},
	)

	h := &harness{api: api, tokenFile: filepath.Join(t.TempDir(), "token")}
	t.Setenv("API_BASE_URL", api.URL)
	t.Setenv("POSITIONS_API_BASE_URL", "")
	t.Setenv("TOKEN_STORE", "file")
	t.Setenv("TOKEN_FILE", h.tokenFile)
	t.Setenv("TOKEN_ENCRYPTION_KEY", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("NO_COLOR", "1")
	return h
}

func (h *harness) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())

	r := result{out: out.String(), err: errOut.String(), code: exitCode(err)}
	if err != nil {
		r.err += userMessage(err)
	}
	return r
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	r := h.run(t, "", "login", "-u", "alice", "-p", "pw")
	require.Equal(t, exitOK, r.code, r.err)
}

func TestLoginStoresToken(t *testing.T) {
	h := newHarness(t)

	r := h.run(t, "pw\n", "login", "--username", "alice")
	require.Equal(t, exitOK, r.code, r.err)
	assert.Contains(t, r.out, "Welcome back, alice!")

	raw, err := os.ReadFile(h.tokenFile)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(string(raw)))

	r = h.run(t, "", "whoami", "--show-token")
	require.Equal(t, exitOK, r.code, r.err)
	assert.Contains(t, r.out, "Welcome back, alice!")
	assert.Contains(t, r.out, "Role: Admin")
	assert.Contains(t, r.out, "Token: "+strings.TrimSpace(string(raw)))
}

func TestLoginWithBadCredentials(t *testing.T) {
	h := newHarness(t)

	r := h.run(t, "", "login", "-u", "alice", "-p", "wrong")
	assert.Equal(t, exitValidation, r.code)
	assert.Contains(t, r.err, "Invalid credentials")

	_, err := os.Stat(h.tokenFile)
	assert.True(t, os.IsNotExist(err))
}

func TestCommandsWithoutSession(t *testing.T) {
	h := newHarness(t)

	r := h.run(t, "", "positions", "list")
	assert.Equal(t, exitUnauthorized, r.code)
	assert.Contains(t, r.err, "positions-console login")
	assert.Empty(t, h.api.RequestsTo(http.MethodGet, "/positions"))

	r = h.run(t, "", "whoami")
	assert.Equal(t, exitUnauthorized, r.code)
}

func TestPositionsLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	r := h.run(t, "", "positions", "list")
	require.Equal(t, exitOK, r.code, r.err)
	assert.Contains(t, r.out, "Analyst")
	assert.Contains(t, r.out, "Manager")

	r = h.run(t, "", "positions", "create", "--code", "C1", "--name", "Clerk")
	require.Equal(t, exitOK, r.code, r.err)
	assert.Contains(t, r.out, "Position created.")
	assert.Contains(t, r.out, "Clerk")

	r = h.run(t, "", "positions", "update", "6", "--name", "Director")
	require.Equal(t, exitOK, r.code, r.err)
	reqs := h.api.RequestsTo(http.MethodPut, "/positions/6")
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"position_name":"Director"}`, string(reqs[0].Body))

	r = h.run(t, "n\n", "positions", "delete", "5")
	assert.Equal(t, exitGeneric, r.code)
	assert.Contains(t, r.err, "Delete this position? [y/N]")
	assert.Empty(t, h.api.RequestsTo(http.MethodDelete, "/positions/5"))

	r = h.run(t, "y\n", "positions", "delete", "5")
	require.Equal(t, exitOK, r.code, r.err)
	assert.Contains(t, r.out, "Position deleted.")

	r = h.run(t, "", "positions", "delete", "6", "--yes")
	require.Equal(t, exitOK, r.code, r.err)

	r = h.run(t, "", "positions", "list")
	require.Equal(t, exitOK, r.code, r.err)
	assert.NotContains(t, r.out, "Analyst")
	assert.Contains(t, r.out, "Clerk")
}

func TestDeleteMissingPosition(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	r := h.run(t, "", "positions", "delete", "42", "--yes")
	assert.Equal(t, exitValidation, r.code)
	assert.Contains(t, r.err, "Delete failed: 404")
}

func TestExpiredTokenIsCleared(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.api.Expire()

	r := h.run(t, "", "positions", "list")
	assert.Equal(t, exitUnauthorized, r.code)
	assert.Contains(t, r.err, "positions-console login")

	_, err := os.Stat(h.tokenFile)
	assert.True(t, os.IsNotExist(err))
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	r := h.run(t, "", "logout")
	require.Equal(t, exitOK, r.code, r.err)
	assert.Contains(t, r.out, "Signed out.")

	_, err := os.Stat(h.tokenFile)
	assert.True(t, os.IsNotExist(err))
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	r := h.run(t, "", "register", "-u", "bob", "-p", "secret")
	require.Equal(t, exitOK, r.code, r.err)
	assert.Contains(t, r.out, "Registration Successful!")

	r = h.run(t, "", "register", "-u", "bob", "-p", "secret")
	assert.Equal(t, exitValidation, r.code)
	assert.Contains(t, r.err, "Username already exists")
}

func TestUsageAndNetworkErrors(t *testing.T) {
	h := newHarness(t)

	r := h.run(t, "", "positions", "delete", "abc")
	assert.Equal(t, exitUsage, r.code)

	r = h.run(t, "", "login", "-p", "pw")
	assert.Equal(t, exitUsage, r.code)

	t.Setenv("API_BASE_URL", "")
	r = h.run(t, "", "whoami")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.err, "API_BASE_URL is required")

	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	r = h.run(t, "", "--api-base-url", dead.URL, "login", "-u", "alice", "-p", "pw")
	assert.Equal(t, exitNetwork, r.code)
	assert.Contains(t, r.err, "Unable to reach the server")
}
