package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"positions-console/internal/model"
	"positions-console/internal/observability"
	"positions-console/pkg/apierror"
)

const (
	RequestIDHeader = "X-Request-ID"

	maxBodyBytes = 1 << 20
)

// TokenSource yields the bearer token for the next call. model.ErrNoToken
// means the call goes out with an empty Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Options struct {
	AuthBaseURL      string
	PositionsBaseURL string
	Timeout          time.Duration
	HTTPClient       *http.Client
	Metrics          *observability.Metrics
	Logger           *slog.Logger
}

// Client talks to the remote auth and positions API. Every failure it
// returns is an *apierror.Error; it never retries.
type Client struct {
	authBase      *url.URL
	positionsBase *url.URL
	httpClient    *http.Client
	tokens        TokenSource
	metrics       *observability.Metrics
	log           *slog.Logger
}

func New(opts Options, tokens TokenSource) (*Client, error) {
	authBase, err := parseBaseURL(opts.AuthBaseURL)
	if err != nil {
		return nil, fmt.Errorf("auth base url: %w", err)
	}

	positionsRaw := opts.PositionsBaseURL
	if strings.TrimSpace(positionsRaw) == "" {
		positionsRaw = opts.AuthBaseURL
	}
	positionsBase, err := parseBaseURL(positionsRaw)
	if err != nil {
		return nil, fmt.Errorf("positions base url: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		authBase:      authBase,
		positionsBase: positionsBase,
		httpClient:    httpClient,
		tokens:        tokens,
		metrics:       opts.Metrics,
		log:           log.With("component", "client"),
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", raw)
	}
	return u, nil
}

// call describes one remote request. fallback builds the message used when
// the server gives none, or when bodyMessage is false.
type call struct {
	op          string
	base        *url.URL
	method      string
	path        string
	bearer      bool
	body        any
	out         any
	optionalOut bool
	bodyMessage bool
	fallback    func(status int) string
}

func (c *Client) do(ctx context.Context, rc call) (err error) {
	started := time.Now()
	status := 0
	defer func() {
		result := "ok"
		if kind, ok := apierror.KindOf(err); ok {
			result = string(kind)
		}
		elapsed := time.Since(started)
		c.metrics.ObserveRemoteCall(rc.op, result, elapsed)
		c.log.Debug("remote call",
			"op", rc.op,
			"method", rc.method,
			"path", rc.path,
			"status", status,
			"result", result,
			"duration", elapsed.String(),
		)
	}()

	u := *rc.base
	u.Path = strings.TrimRight(u.Path, "/") + rc.path

	var body io.Reader
	if rc.body != nil {
		b, err := json.Marshal(rc.body)
		if err != nil {
			return apierror.Network(fmt.Errorf("encode %s request: %w", rc.op, err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, u.String(), body)
	if err != nil {
		return apierror.Network(fmt.Errorf("build %s request: %w", rc.op, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if rc.bearer {
		req.Header.Set("Authorization", c.authorization(ctx))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierror.Network(fmt.Errorf("%s: %w", rc.op, err))
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return apierror.Network(fmt.Errorf("read %s response: %w", rc.op, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized && rc.bearer {
			return apierror.Unauthorized("")
		}

		message := rc.fallback(resp.StatusCode)
		if rc.bodyMessage {
			var mb model.MessageBody
			if err := json.Unmarshal(respBody, &mb); err == nil && strings.TrimSpace(mb.Message) != "" {
				message = mb.Message
			}
		}
		return apierror.Validation(resp.StatusCode, message)
	}

	if rc.out == nil {
		return nil
	}
	if rc.optionalOut && len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, rc.out); err != nil {
		return apierror.Network(fmt.Errorf("decode %s response: %w", rc.op, err))
	}

	return nil
}

func (c *Client) authorization(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrNoToken) {
			c.log.Warn("failed to read bearer token", "error", err)
		}
		return ""
	}

	return "Bearer " + token
}

func fixed(message string) func(int) string {
	return func(int) string { return message }
}

func withStatus(prefix string) func(int) string {
	return func(status int) string { return fmt.Sprintf("%s: %d", prefix, status) }
}
