package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cipherpuzzles/ccxc-website/pkg/errors"
	"github.com/cipherpuzzles/ccxc-website/pkg/navigation"
	"github.com/cipherpuzzles/ccxc-website/pkg/notification"
	"github.com/cipherpuzzles/ccxc-website/pkg/session"
	"github.com/cipherpuzzles/ccxc-website/pkg/signature"
)

// DefaultTimeout bounds every call; it is the only bound, there is no
// cancellation beyond the caller's context.
const DefaultTimeout = 15 * time.Second

// Request describes one outbound call
type Request struct {
	Path   string
	Method string // defaults to POST
	Body   any    // defaults to {}
}

// Client sends signed requests to the backend and interprets the status
// envelope of every response.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	store      *session.Store
	notifier   notification.Notifier
	navigator  navigation.Navigator
	now        func() time.Time
	userAgent  string
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client. The client is copied; its timeout
// is kept when set, otherwise the pipeline timeout applies. A nil client is
// ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client == nil {
			return
		}
		hc := *client
		c.httpClient = &hc
	}
}

// WithTimeout sets the per-call timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithNotifier sets where user-facing messages go
func WithNotifier(n notification.Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithNavigator sets what handles forced redirects
func WithNavigator(n navigation.Navigator) Option {
	return func(c *Client) {
		c.navigator = n
	}
}

// WithClock sets the time source for request timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the backend at baseURL. store may be nil,
// in which case every request is sent unauthenticated.
func NewClient(baseURL string, store *session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   DefaultTimeout,
		store:     store,
		notifier:  notification.Discard,
		navigator: navigation.Discard,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = c.timeout
	}
	return c
}

// BaseURL returns the backend root the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the underlying HTTP client, for unsigned calls that
// bypass the envelope (e.g. binary downloads).
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Session returns the session store the client signs with
func (c *Client) Session() *session.Store {
	return c.store
}

// Post sends body to path with the default method
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Path: path, Body: body})
}

// Do sends the request. It resolves only for status 0 and 1; every other
// outcome is an *errors.Error describing the branch taken.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	start := c.now()

	httpReq, signed, err := c.build(ctx, req)
	if err != nil {
		c.logger.Error("Failed to build request", "path", req.Path, "error", err)
		c.notifier.Notify(notification.Error, msgRequestConfig, notification.DefaultDuration)
		return nil, errors.Wrap(err, errors.ErrCodeRequestConfig, msgRequestConfig)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("No response from server", "path", req.Path, "error", err)
		c.notifier.Notify(notification.Error, msgNoResponse, notification.DefaultDuration)
		return nil, errors.Wrap(err, errors.ErrCodeNoResponse, msgNoResponse)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.logger.Warn("Response body interrupted", "path", req.Path, "error", err)
		c.notifier.Notify(notification.Error, msgNoResponse, notification.DefaultDuration)
		return nil, errors.Wrap(err, errors.ErrCodeNoResponse, msgNoResponse)
	}

	c.logger.Debug("Request completed",
		"method", httpReq.Method,
		"path", req.Path,
		"http_status", httpResp.StatusCode,
		"signed", signed,
		"duration", c.now().Sub(start))

	resp, ok := parseEnvelope(data)
	if !ok {
		if httpResp.StatusCode >= http.StatusBadRequest {
			msg := fmt.Sprintf(msgServerError, httpResp.StatusCode)
			c.notifier.Notify(notification.Error, msg, notification.DefaultDuration)
			return nil, errors.New(errors.ErrCodeServerError, msg).
				WithDetail(errors.DetailHTTPStatus, httpResp.StatusCode)
		}
		resp = &Response{Body: data}
	}

	return c.handle(resp)
}

// build creates the HTTP request and signs it when the session is live.
// The signature covers exactly the bytes placed in the request body.
func (c *Client) build(ctx context.Context, req Request) (*http.Request, bool, error) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	target, err := c.resolve(req.Path)
	if err != nil {
		return nil, false, err
	}

	body, err := signature.CanonicalJSON(req.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	if c.store == nil {
		return httpReq, false, nil
	}
	record := c.store.Snapshot()
	if !record.IsLive() {
		return httpReq, false, nil
	}

	ts := c.now().UnixMilli()
	sig := signature.Generate(record.Token, record.Sk, ts, body)
	httpReq.Header.Set(signature.TokenHeader, record.Token)
	httpReq.Header.Set(signature.AuthHeaderName, signature.AuthHeader(ts, sig))
	return httpReq, true, nil
}

// resolve joins path onto the base URL. Absolute URLs are used as given.
func (c *Client) resolve(path string) (string, error) {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path, nil
	}

	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid request url %q: %w", target, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid request url %q: backend root must be an absolute URL", target)
	}
	return target, nil
}

// handle applies the status transition to a parsed envelope
func (c *Client) handle(resp *Response) (*Response, error) {
	t := transitionForResponse(resp)
	msg := resp.Message

	switch t.Action {
	case ActionResolve:
		return resp, nil

	case ActionFail:
		c.notifier.Notify(t.Notify, msg, notification.DefaultDuration)
		return nil, c.reject(t, resp, msg)

	case ActionRedirect:
		c.notifier.Notify(t.Notify, msg, notification.DefaultDuration)
		if resp.Location != "" {
			c.navigator.Navigate(navigation.Location{Path: resp.Location})
		}
		return nil, c.reject(t, resp, msg).WithDetail(errors.DetailLocation, resp.Location)

	case ActionEndSession:
		if c.store != nil {
			if err := c.store.Clear(); err != nil {
				c.logger.Error("Failed to persist cleared session", "error", err)
			}
		}
		content := msg
		if content == "" {
			content = msgAccountChangedMsg
		}
		c.logger.Info("Session ended by server", "status", resp.Status, "message", msg)
		c.navigator.Navigate(navigation.Location{
			Path: navigation.MessageRoute,
			Query: map[string]string{
				"type":    "info",
				"title":   msgAccountChanged,
				"content": content,
			},
		})
		return nil, c.reject(t, resp, msg)

	case ActionNotActivated:
		if msg == "" {
			msg = msgNotActivated
		}
		return nil, c.reject(t, resp, msg).WithDetail(errors.DetailResponse, resp)

	default:
		if msg == "" {
			msg = msgUnknown
		}
		c.notifier.Notify(t.Notify, msg, notification.DefaultDuration)
		return nil, c.reject(t, resp, msg)
	}
}

func (c *Client) reject(t Transition, resp *Response, msg string) *errors.Error {
	err := errors.New(t.Code, msg)
	if resp.HasStatus {
		err.WithDetail(errors.DetailStatus, resp.Status)
	}
	return err
}
