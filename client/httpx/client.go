package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// 419 is the non-standard "session expired" status some backends return
// instead of 401.
const statusSessionExpired = 419

type Config struct {
	BaseURL string        `envconfig:"API_BASE_URL" default:"http://localhost:8000"`
	Timeout time.Duration `envconfig:"API_TIMEOUT" default:"1m"`
}

// Client issues requests against the backend REST API with uniform error
// normalization and unauthorized-session detection.
type Client struct {
	base         *url.URL
	client       *http.Client
	tokens       TokenSource
	hub          *Hub
	interactions *Interactions
	log          *zap.Logger
}

func NewClient(cfg Config, tokens TokenSource, hub *Hub, interactions *Interactions, log *zap.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if hub == nil {
		hub = NewHub()
	}
	if interactions == nil {
		interactions = NewInteractions()
	}
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = time.Minute
	}
	// cookie jar so browser-managed session credentials ride along with
	// any bearer token
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		base:         base,
		client:       &http.Client{Timeout: timeout, Jar: jar},
		tokens:       tokens,
		hub:          hub,
		interactions: interactions,
		log:          log.Named("httpx"),
	}, nil
}

func (c *Client) Hub() *Hub { return c.hub }

func (c *Client) Interactions() *Interactions { return c.interactions }

type options struct {
	query                url.Values
	headers              http.Header
	total                *int
	suppressUnauthorized bool
}

type Option func(*options)

func WithQuery(q url.Values) Option {
	return func(o *options) { o.query = q }
}

func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

// WithTotalHeader writes the x-total-count (or x-total) response header
// into total when the backend sends one; total is left untouched otherwise.
func WithTotalHeader(total *int) Option {
	return func(o *options) { o.total = total }
}

// SuppressUnauthorized keeps a 401/419 on this request from broadcasting
// the unauthorized signal. Used by sign-in and session bootstrap, where a
// 401 is an answer rather than a session death.
func SuppressUnauthorized() Option {
	return func(o *options) { o.suppressUnauthorized = true }
}

func (c *Client) Get(ctx context.Context, path string, out any, opts ...Option) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts...)
}

func (c *Client) Post(ctx context.Context, path string, in, out any, opts ...Option) error {
	return c.do(ctx, http.MethodPost, path, in, out, opts...)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any, opts ...Option) error {
	return c.do(ctx, http.MethodPatch, path, in, out, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...Option) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, opts...)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	u := c.base.JoinPath(path)
	if o.query != nil {
		u.RawQuery = o.query.Encode()
	}

	var body io.Reader = http.NoBody
	if in != nil {
		b := bytes.NewBuffer(nil)
		if err := json.NewEncoder(b).Encode(in); err != nil {
			return errors.Wrap(err, "encode request body")
		}
		body = b
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range o.headers {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}
	if req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", uuid.NewString())
	}
	if c.tokens != nil {
		if token, ok := c.tokens.AccessToken(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if o.total != nil {
		if raw := totalHeader(resp.Header); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				*o.total = parsed
			}
		}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == statusSessionExpired {
		data := parseBody(resp)
		if !o.suppressUnauthorized {
			now := time.Now()
			c.hub.broadcast(Unauthorized{
				Status:          resp.StatusCode,
				Path:            path,
				FromInteraction: c.interactions.withinWindow(now),
				At:              now,
			})
		}
		return &Error{Status: resp.StatusCode, Message: "Unauthorized", Data: data}
	}

	if resp.StatusCode >= 400 {
		data := parseBody(resp)
		return &Error{
			Status:  resp.StatusCode,
			Message: extractMessage(data, http.StatusText(resp.StatusCode)),
			Data:    data,
		}
	}

	return decodeInto(resp, out)
}

func totalHeader(h http.Header) string {
	if raw := h.Get("x-total-count"); raw != "" {
		return raw
	}
	return h.Get("x-total")
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// parseBody reads the whole body into the most useful shape it can: a
// decoded JSON value, a non-empty string, or nil.
func parseBody(resp *http.Response) any {
	raw, err := io.ReadAll(resp.Body)
	if err != nil || len(raw) == 0 {
		return nil
	}
	if isJSON(resp.Header.Get("Content-Type")) {
		var data any
		if err := json.Unmarshal(raw, &data); err == nil {
			return data
		}
	}
	return string(raw)
}

// extractMessage pulls the human-readable message out of an error body:
// a bare string, or the first of message/detail/error.
func extractMessage(data any, fallback string) string {
	switch v := data.(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return v
		}
	case map[string]any:
		for _, key := range []string{"message", "detail", "error"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
	}
	if fallback == "" {
		return "request failed"
	}
	return fallback
}

func decodeInto(resp *http.Response, out any) error {
	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusResetContent {
		return nil
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if isJSON(resp.Header.Get("Content-Type")) {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, "decode response body")
		}
		return nil
	}
	if s, ok := out.(*string); ok {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		*s = string(raw)
	}
	return nil
}
