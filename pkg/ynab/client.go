package ynab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/eshaffer321/ynabsync/internal/auth"
	"github.com/eshaffer321/ynabsync/internal/transport"
	internalTypes "github.com/eshaffer321/ynabsync/internal/types"
	"github.com/getsentry/sentry-go"
)

const (
	// DefaultBaseURL is the default YNAB API base URL
	DefaultBaseURL = internalTypes.DefaultBaseURL

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = internalTypes.DefaultTimeout
)

// Client is the YNAB API client
type Client struct {
	// Service interfaces
	Budgets      BudgetService
	Categories   CategoryService
	Transactions TransactionService
	Accounts     AccountService
	Payees       PayeeService
	Auth         AuthService

	// Internal fields
	baseURL    string
	httpClient *http.Client
	transport  Transport
	options    *ClientOptions

	mu      sync.RWMutex
	session *Session
}

// ClientOptions configures the client
type ClientOptions struct {
	// BaseURL overrides the default API base URL
	BaseURL string

	// HTTPClient allows using a custom HTTP client
	HTTPClient *http.Client

	// Timeout sets the HTTP client timeout
	Timeout time.Duration

	// Token is a personal access token
	Token string

	// SessionFile path for token persistence
	SessionFile string

	// Logger for debug logging
	Logger Logger

	// RetryConfig configures retry behavior for reads
	RetryConfig *internalTypes.RetryConfig

	// RateLimiter for rate limiting
	RateLimiter RateLimiter

	// Hooks for observability
	Hooks *internalTypes.Hooks

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions

	// StrictSchema reports response members the client does not know about
	StrictSchema bool
}

// Logger interface for logging
type Logger = internalTypes.Logger

// RateLimiter interface for rate limiting
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Transport handles HTTP communication
type Transport interface {
	Execute(ctx context.Context, req *transport.Request, result interface{}) error
	SetAuth(token string)
	SetSession(session *internalTypes.Session)
}

// NewClient creates a new YNAB client
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	// Initialize Sentry if DSN is provided
	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}
		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}
		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}
		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}
		if err := sentry.Init(sentryOpts); err != nil {
			// Log error but don't fail client creation
			if opts.Logger != nil {
				opts.Logger.Error("Failed to initialize Sentry", "error", err)
			}
		}
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: DefaultTimeout,
		}
	}

	if opts.Timeout > 0 {
		opts.HTTPClient.Timeout = opts.Timeout
	}

	trans := transport.NewRESTTransport(&transport.Options{
		BaseURL:     opts.BaseURL,
		HTTPClient:  opts.HTTPClient,
		RetryConfig: opts.RetryConfig,
		Logger:      opts.Logger,
		Hooks:       opts.Hooks,
	})

	c := &Client{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		transport:  trans,
		options:    opts,
	}

	c.initServices()

	if opts.SessionFile != "" && opts.Token == "" {
		if err := c.Auth.LoadSession(opts.SessionFile); err != nil && opts.Logger != nil {
			opts.Logger.Warn("Failed to load session", "error", err)
		}
	}

	if opts.Token != "" {
		c.SetToken(opts.Token)
	}

	return c, nil
}

// NewClientWithToken creates a client with an access token. An empty
// token falls back to the YNAB_TOKEN environment variable.
func NewClientWithToken(token string) (*Client, error) {
	resolved, err := auth.ResolveToken(token, nil)
	if err != nil {
		return nil, err
	}
	return NewClient(&ClientOptions{
		Token: resolved,
	})
}

// initServices initializes all service implementations
func (c *Client) initServices() {
	c.Budgets = &budgetService{client: c}
	c.Categories = &categoryService{client: c}
	c.Transactions = &transactionService{client: c}
	c.Accounts = &accountService{client: c}
	c.Payees = &payeeService{client: c}
	c.Auth = newAuthService(c)
}

// SetToken sets the access token
func (c *Client) SetToken(token string) {
	if a, ok := c.Auth.(*authService); ok {
		a.service.SetToken(token)
		session, _ := a.service.GetSession()
		c.setSession(session)
		return
	}
	c.setSession(&Session{Token: token})
}

// GetSession returns the current session
func (c *Client) GetSession() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) setSession(session *Session) {
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	c.transport.SetSession(session)
}

// executeRequest runs a request through rate limiting and error capture
func (c *Client) executeRequest(ctx context.Context, req *transport.Request, result interface{}) error {
	if c.options.RateLimiter != nil {
		if err := c.options.RateLimiter.Wait(ctx); err != nil {
			if hub := sentry.GetHubFromContext(ctx); hub != nil {
				hub.CaptureException(err)
			} else {
				sentry.CaptureException(err)
			}
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	err := c.transport.Execute(ctx, req, result)
	duration := time.Since(start)

	if err != nil {
		report := func(scope *sentry.Scope, capture func(error) *sentry.EventID) {
			scope.SetTag("ynab.operation", operationName(req.Method, req.Path))
			scope.SetContext("ynab", map[string]interface{}{
				"method":   req.Method,
				"path":     req.Path,
				"query":    req.Query.Encode(),
				"duration": duration.String(),
			})
			capture(err)
		}
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) { report(scope, hub.CaptureException) })
		} else {
			sentry.WithScope(func(scope *sentry.Scope) { report(scope, sentry.CaptureException) })
		}
	}

	return err
}

// get fetches path and decodes the response data into v after checking
// it against v's schema
func (c *Client) get(ctx context.Context, path string, query url.Values, v interface{}) error {
	var raw json.RawMessage
	req := &transport.Request{Method: http.MethodGet, Path: path, Query: query}
	if err := c.executeRequest(ctx, req, &raw); err != nil {
		return err
	}
	return decodeStrict(raw, v, c.options.StrictSchema)
}

// post sends body to path, requiring the given status
func (c *Client) post(ctx context.Context, path string, body interface{}, expect int, v interface{}) error {
	var raw json.RawMessage
	req := &transport.Request{Method: http.MethodPost, Path: path, Body: body, Expect: expect}
	if err := c.executeRequest(ctx, req, &raw); err != nil {
		return err
	}
	return decodeStrict(raw, v, c.options.StrictSchema)
}

// Close flushes any pending Sentry events and performs cleanup
func (c *Client) Close() {
	sentry.Flush(2 * time.Second)
}

var collections = map[string]bool{
	"budgets":      true,
	"accounts":     true,
	"categories":   true,
	"transactions": true,
	"payees":       true,
	"months":       true,
}

// operationName replaces identifiers in a path so events group by endpoint,
// e.g. "GET /budgets/{id}/transactions"
func operationName(method, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := 1; i < len(segments); i++ {
		if collections[segments[i-1]] && !collections[segments[i]] {
			segments[i] = "{id}"
		}
	}
	return method + " /" + strings.Join(segments, "/")
}
