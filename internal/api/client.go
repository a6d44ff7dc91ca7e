// Package api is the typed client for the school platform's REST API. It
// wraps every endpoint the toolkit consumes, adds request IDs and a
// client-side rate limit to all outbound calls, and performs the one-shot
// credential refresh on unauthorized responses.
//
// The API's ordering contracts (notably: fee structures listed most recent
// first per class and term) are assumed, not verified here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"feeadmin/internal/log"
	"feeadmin/internal/session"
)

const basePath = "/api/v1"

// Options tunes the client. Zero values fall back to sane defaults.
type Options struct {
	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         *log.Logger
	// Transport overrides the underlying RoundTripper; tests use this.
	Transport http.RoundTripper
}

// Client talks to the platform API on behalf of one session.
type Client struct {
	baseURL  string
	http     *http.Client // authenticated, refresh-on-401
	auth     *http.Client // bare client for login/refresh endpoints
	limiter  *rate.Limiter
	session  *session.Store
	validate *validator.Validate
	log      *log.Logger
}

// New creates a client rooted at baseURL using the given session store.
func New(baseURL string, store *session.Store, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 10
	}
	if opts.RateLimitBurst < 1 {
		opts.RateLimitBurst = 5
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.ParseLevel("info"), log.ComponentAPI)
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	baseURL = strings.TrimRight(baseURL, "/")
	transport := &refreshTransport{
		base:       base,
		session:    store,
		refreshURL: baseURL + basePath + "/auth/refresh",
		log:        logger,
	}
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: opts.Timeout, Transport: transport},
		auth:     &http.Client{Timeout: opts.Timeout, Transport: base},
		limiter:  rate.NewLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst),
		session:  store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      logger,
	}
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a token pair. The caller decides whether
// to store the pair in the session.
func (c *Client) Login(ctx context.Context, email, password string) (session.Tokens, error) {
	input := loginInput{Email: email, Password: password}
	if err := c.validate.Struct(input); err != nil {
		return session.Tokens{}, fmt.Errorf("validate login input: %w", err)
	}
	var tokens session.Tokens
	if err := c.do(ctx, c.auth, http.MethodPost, "/auth/login", input, &tokens); err != nil {
		return session.Tokens{}, err
	}
	return tokens, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, c.http, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, c.http, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, c.http, http.MethodPut, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, c.http, http.MethodPatch, path, body, out)
}

// do performs one API call: it waits for the rate limiter, stamps the
// request with an ID, and decodes the JSON response into out (which may be
// nil for calls whose body is irrelevant).
func (c *Client) do(ctx context.Context, client *http.Client, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+basePath+path, reader)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api call",
		log.FieldOperation, method+" "+path,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %w", method, path, decodeError(resp))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
