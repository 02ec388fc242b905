package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eshaffer321/ynabsync/internal/types"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const (
	authHeaderKey   = "Authorization"
	requestIDHeader = "X-Request-Id"
	contentType     = "application/json"
)

// Request describes a single REST call relative to the base URL
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	// Expect, when set, is the only success status accepted
	Expect int
}

// RESTTransport handles JSON communication with the YNAB API
type RESTTransport struct {
	baseURL     string
	httpClient  *http.Client
	retryClient *retryablehttp.Client
	headers     map[string]string
	session     *types.Session
	logger      types.Logger
	hooks       *types.Hooks
}

// envelope is the success wrapper every YNAB response uses
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// errorEnvelope is the failure wrapper every YNAB response uses
type errorEnvelope struct {
	Error *types.ErrorDetail `json:"error"`
}

// NewRESTTransport creates a new REST transport
func NewRESTTransport(opts *Options) *RESTTransport {
	if opts == nil {
		opts = &Options{}
	}

	if opts.BaseURL == "" {
		opts.BaseURL = types.DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: types.DefaultTimeout,
		}
	}

	// Create retry client if configured
	var retryClient *retryablehttp.Client
	if opts.RetryConfig != nil {
		retryClient = retryablehttp.NewClient()
		retryClient.HTTPClient = opts.HTTPClient
		retryClient.RetryMax = opts.RetryConfig.MaxRetries
		retryClient.RetryWaitMin = opts.RetryConfig.RetryWait
		retryClient.RetryWaitMax = opts.RetryConfig.MaxWait
		// hand the last response back so handleHTTPError can classify it
		retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

		if opts.Logger != nil {
			retryClient.Logger = &retryLogger{logger: opts.Logger}
		} else {
			retryClient.Logger = nil
		}
	}

	headers := map[string]string{
		"Accept":       contentType,
		"Content-Type": contentType,
		"User-Agent":   types.UserAgent,
	}

	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &RESTTransport{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		httpClient:  opts.HTTPClient,
		retryClient: retryClient,
		headers:     headers,
		logger:      opts.Logger,
		hooks:       opts.Hooks,
	}
}

// Execute performs the request and decodes the "data" member of the
// response into result
func (t *RESTTransport) Execute(ctx context.Context, req *Request, result interface{}) error {
	if t.session == nil || t.session.Token == "" {
		return types.ErrNotAuthenticated
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request")
		}
		body = bytes.NewReader(payload)
	}

	endpoint := t.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set(authHeaderKey, fmt.Sprintf("Bearer %s", t.session.Token))

	requestID := uuid.NewString()
	httpReq.Header.Set(requestIDHeader, requestID)

	if t.hooks != nil && t.hooks.OnRequest != nil {
		t.hooks.OnRequest(ctx, httpReq)
	}

	if t.logger != nil {
		t.logger.Debug("YNAB request", "method", req.Method, "path", req.Path, "request_id", requestID)
	}

	start := time.Now()
	resp, err := t.doRequest(httpReq)
	duration := time.Since(start)

	if err != nil {
		if t.hooks != nil && t.hooks.OnError != nil {
			t.hooks.OnError(ctx, err)
		}
		return errors.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	defer resp.Body.Close()

	if t.hooks != nil && t.hooks.OnResponse != nil {
		t.hooks.OnResponse(ctx, resp, duration)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if t.logger != nil {
		t.logger.Debug("YNAB response", "status", resp.StatusCode, "duration", duration, "size", len(respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := t.handleHTTPError(resp.StatusCode, respBody)
		if e, ok := apiErr.(*types.Error); ok {
			e.RequestID = requestID
		}
		return apiErr
	}

	if req.Expect != 0 && resp.StatusCode != req.Expect {
		return &types.Error{
			Code:       "UNEXPECTED_STATUS",
			Message:    fmt.Sprintf("%s %s: expected status %d, got %d", req.Method, req.Path, req.Expect, resp.StatusCode),
			StatusCode: resp.StatusCode,
			RequestID:  requestID,
			Err:        types.ErrUnexpectedStatus,
		}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return errors.Wrap(err, "failed to unmarshal result")
		}
	}

	return nil
}

// SetAuth sets the authentication token
func (t *RESTTransport) SetAuth(token string) {
	if t.session == nil {
		t.session = &types.Session{}
	}
	t.session.Token = token
}

// SetSession sets the session
func (t *RESTTransport) SetSession(session *types.Session) {
	t.session = session
}

// doRequest executes the HTTP request. Only idempotent reads go through the
// retry client; a retried POST could create the same entry twice.
func (t *RESTTransport) doRequest(req *http.Request) (*http.Response, error) {
	if t.retryClient != nil && req.Method == http.MethodGet {
		retryReq, err := retryablehttp.FromRequest(req)
		if err != nil {
			return nil, err
		}
		resp, err := t.retryClient.Do(retryReq)
		if resp != nil && err != nil {
			// retries exhausted; classify the last response instead
			return resp, nil
		}
		return resp, err
	}
	return t.httpClient.Do(req)
}

// handleHTTPError handles HTTP errors
func (t *RESTTransport) handleHTTPError(statusCode int, body []byte) error {
	var errResp errorEnvelope
	_ = json.Unmarshal(body, &errResp)

	detail := ""
	name := ""
	if errResp.Error != nil {
		detail = errResp.Error.Detail
		name = errResp.Error.Name
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return &types.Error{Code: "UNAUTHORIZED", Message: describe("unauthorized", detail), StatusCode: statusCode, Err: types.ErrNotAuthenticated}
	case http.StatusForbidden:
		return &types.Error{Code: "FORBIDDEN", Message: describe("forbidden", detail), StatusCode: statusCode, Err: types.ErrForbidden}
	case http.StatusNotFound:
		return &types.Error{Code: "NOT_FOUND", Message: describe("not found", detail), StatusCode: statusCode, Err: types.ErrNotFound}
	case http.StatusConflict:
		return &types.Error{Code: "CONFLICT", Message: describe("conflict", detail), StatusCode: statusCode, Err: types.ErrConflict}
	case http.StatusTooManyRequests:
		return &types.Error{Code: "RATE_LIMITED", Message: describe("rate limited", detail), StatusCode: statusCode, Err: types.ErrRateLimited}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &types.Error{Code: "TIMEOUT", Message: describe("request timeout", detail), StatusCode: statusCode, Err: types.ErrTimeout}
	case http.StatusBadRequest:
		code := "BAD_REQUEST"
		if name != "" {
			code = strings.ToUpper(name)
		}
		return &types.Error{
			Code:       code,
			Message:    describe("bad request", detail),
			StatusCode: statusCode,
		}
	default:
		if statusCode >= 500 {
			baseMsg := fmt.Sprintf("server error: %d", statusCode)
			if desc := httpStatusDescription(statusCode); desc != "" {
				baseMsg = fmt.Sprintf("server error: %d (%s)", statusCode, desc)
			}

			if detail != "" {
				baseMsg = fmt.Sprintf("%s: %s", baseMsg, detail)
			}

			return &types.Error{
				Code:       "SERVER_ERROR",
				Message:    baseMsg,
				StatusCode: statusCode,
				Err:        types.ErrServerError,
			}
		}
		return &types.Error{
			Code:       "HTTP_ERROR",
			Message:    describe(fmt.Sprintf("HTTP error: %d", statusCode), detail),
			StatusCode: statusCode,
		}
	}
}

func describe(prefix, detail string) string {
	if detail == "" {
		return prefix
	}
	return prefix + ": " + detail
}

// httpStatusDescription returns a human-readable description for common HTTP status codes.
// Cloudflare fronts the API, so its 52x codes show up too.
func httpStatusDescription(statusCode int) string {
	descriptions := map[int]string{
		500: "Internal Server Error",
		501: "Not Implemented",
		502: "Bad Gateway",
		503: "Service Unavailable",
		504: "Gateway Timeout",
		520: "Web Server Error",
		521: "Web Server Is Down",
		522: "Connection Timed Out",
		523: "Origin Is Unreachable",
		524: "A Timeout Occurred",
		525: "SSL Handshake Failed",
		526: "Invalid SSL Certificate",
		530: "Origin DNS Error",
	}
	return descriptions[statusCode]
}

// Options for the REST transport
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Headers     map[string]string
	RetryConfig *types.RetryConfig
	Logger      types.Logger
	Hooks       *types.Hooks
}

// retryLogger adapts our logger to retryablehttp
type retryLogger struct {
	logger types.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
