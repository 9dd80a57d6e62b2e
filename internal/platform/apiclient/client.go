// Package apiclient talks to the hrmgo REST API. It attaches the caller's
// bearer token, encodes JSON bodies, enforces a per-request timeout and
// unwraps the {success, data, message} response envelope.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultTimeout = 10 * time.Second

var ErrTimeout = errors.New("request timed out")

// TokenSource supplies the bearer token for each request. An empty token
// sends no Authorization header.
type TokenSource interface {
	Token() (string, error)
}

type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

// HTTPError is returned for non-2xx responses and for 2xx responses whose
// envelope reports success=false.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Body    []byte
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

type Options struct {
	Method  string
	Body    any
	Headers map[string]string
	Query   map[string]string
	// Timeout overrides the client default. Zero keeps the default.
	Timeout time.Duration
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Meta    json.RawMessage `json:"meta"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Logger matches the resty logger and zap's SugaredLogger.
type Logger interface {
	Errorf(format string, v ...any)
	Warnf(format string, v ...any)
	Debugf(format string, v ...any)
}

type Client struct {
	http    *resty.Client
	tokens  TokenSource
	timeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).SetBaseURL(c.http.BaseURL)
	}
}

func WithLogger(l Logger) Option {
	return func(c *Client) {
		c.http.SetLogger(l)
	}
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		http:    resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")),
		tokens:  tokens,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetHeader("Accept", "application/json")
	return c
}

// Request performs one API call and decodes the envelope's data into out,
// which may be nil. It returns the envelope's meta block when present.
func (c *Client) Request(ctx context.Context, endpoint string, opts Options, out any) (json.RawMessage, error) {
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}
	timeout := c.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := c.http.R().SetContext(ctx)
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("load token: %w", err)
		}
		if token != "" {
			req.SetAuthToken(token)
		}
	}
	if len(opts.Query) > 0 {
		req.SetQueryParams(opts.Query)
	}
	if method != http.MethodGet && opts.Body != nil {
		raw, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		req.SetHeader("Content-Type", "application/json").SetBody(raw)
	}
	req.SetHeaders(opts.Headers)

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s %s: %w", method, endpoint, ErrTimeout)
		}
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	return decode(resp.StatusCode(), resp.Body(), out)
}

func decode(status int, body []byte, out any) (json.RawMessage, error) {
	var env envelope
	parseErr := json.Unmarshal(body, &env)

	if status < 200 || status >= 300 {
		herr := &HTTPError{Status: status, Body: body}
		if parseErr == nil {
			herr.Message = env.Message
			if env.Error != nil {
				herr.Code = env.Error.Code
				if env.Error.Message != "" {
					herr.Message = env.Error.Message
				}
			}
		}
		return nil, herr
	}
	if len(body) == 0 {
		return nil, nil
	}
	if parseErr != nil {
		return nil, fmt.Errorf("decode response: %w", parseErr)
	}
	if !env.Success {
		herr := &HTTPError{Status: status, Message: env.Message, Body: body}
		if env.Error != nil {
			herr.Code = env.Error.Code
			herr.Message = env.Error.Message
		}
		return nil, herr
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Meta, nil
}

func (c *Client) Get(ctx context.Context, endpoint string, query map[string]string, out any) (json.RawMessage, error) {
	return c.Request(ctx, endpoint, Options{Method: http.MethodGet, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out any) error {
	_, err := c.Request(ctx, endpoint, Options{Method: http.MethodPost, Body: body}, out)
	return err
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out any) error {
	_, err := c.Request(ctx, endpoint, Options{Method: http.MethodPut, Body: body}, out)
	return err
}

func (c *Client) Delete(ctx context.Context, endpoint string) error {
	_, err := c.Request(ctx, endpoint, Options{Method: http.MethodDelete}, nil)
	return err
}

// Download fetches a non-JSON resource such as a PDF export.
func (c *Client) Download(ctx context.Context, endpoint string, query map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req := c.http.R().SetContext(ctx).SetQueryParams(query)
	if c.tokens != nil {
		if token, err := c.tokens.Token(); err == nil && token != "" {
			req.SetAuthToken(token)
		}
	}
	resp, err := req.Get(endpoint)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("GET %s: %w", endpoint, ErrTimeout)
		}
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	if resp.IsError() {
		_, derr := decode(resp.StatusCode(), resp.Body(), nil)
		return nil, derr
	}
	return resp.Body(), nil
}

type LoginResult struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		TenantID string `json:"tenantId"`
		RoleName string `json:"role"`
	} `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	err := c.Post(ctx, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, &res)
	return res, err
}
