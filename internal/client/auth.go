package client

import (
	"context"
	"net/http"
	"strings"

	"positions-console/internal/model"
	"positions-console/pkg/apierror"
)

// Login exchanges credentials for a bearer token. A 401 here means bad
// credentials and is reported as a validation failure.
func (c *Client) Login(ctx context.Context, username string, password string) (string, error) {
	var out model.LoginResponse
	err := c.do(ctx, call{
		op:          "login",
		base:        c.authBase,
		method:      http.MethodPost,
		path:        "/login",
		body:        model.Credentials{Username: username, Password: password},
		out:         &out,
		bodyMessage: true,
		fallback:    fixed("Login failed"),
	})
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(out.AccessToken)
	if token == "" {
		return "", apierror.Validation(http.StatusOK, "Login failed")
	}

	return token, nil
}

func (c *Client) Register(ctx context.Context, username string, password string) error {
	return c.do(ctx, call{
		op:          "register",
		base:        c.authBase,
		method:      http.MethodPost,
		path:        "/register",
		body:        model.Credentials{Username: username, Password: password},
		bodyMessage: true,
		fallback:    fixed("Registration failed"),
	})
}
