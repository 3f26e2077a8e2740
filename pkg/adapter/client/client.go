package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"sync"

	"github.com/diwise/integration-sdk/pkg/adapter/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultMaxConnections int = 10

	TraceAttributeEndpoint string = "suite-api-endpoint"
	TraceAttributeMethod   string = "http-method"

	unsupportedAPIHeader string = "X-vRealizeOps-API-use-unsupported"
)

var tracer = otel.Tracer("suite-api-client")

// Response is the raw outcome of a Suite API request
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// JSON decodes the response body as a json object
func (r *Response) JSON() (map[string]any, error) {
	result := map[string]any{}

	if len(bytes.TrimSpace(r.Body)) == 0 {
		return result, nil
	}

	if err := json.Unmarshal(r.Body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %s (%w)", err.Error(), errors.ErrBadResponse)
	}

	return result, nil
}

// SuiteAPIClient makes authenticated calls to the Suite API. At most
// MaxConnections requests are in flight at any time, and a single token is
// shared between all requests until it is about to expire or the client is
// closed.
type SuiteAPIClient struct {
	info       ConnectionInfo
	httpClient *http.Client
	tokens     *tokenManager
	debug      bool

	mu             sync.RWMutex
	maxConnections int
	throttle       *semaphore.Weighted
}

type ClientOption func(*SuiteAPIClient)

func MaxConnections(n int) ClientOption {
	return func(c *SuiteAPIClient) {
		if n > 0 {
			c.maxConnections = n
		}
	}
}

// WithHTTPClient replaces the http client used for all requests. The client
// is used as is, so the TLS verification setting of the connection info is
// not applied to it.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *SuiteAPIClient) {
		c.httpClient = httpClient
	}
}

func Debug(enabled bool) ClientOption {
	return func(c *SuiteAPIClient) {
		c.debug = enabled
	}
}

func New(info ConnectionInfo, options ...ClientOption) *SuiteAPIClient {
	c := &SuiteAPIClient{
		info:           info,
		maxConnections: DefaultMaxConnections,
	}

	for _, option := range options {
		option(c)
	}

	if c.httpClient == nil {
		c.httpClient = newHTTPClient(info.Verify())
	}

	c.tokens = newTokenManager(info, c.httpClient)
	c.throttle = semaphore.NewWeighted(int64(c.maxConnections))

	return c
}

func newHTTPClient(verify bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !verify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &http.Client{
		Transport: otelhttp.NewTransport(transport),
	}
}

func (c *SuiteAPIClient) ConnectionInfo() ConnectionInfo {
	return c.info
}

func (c *SuiteAPIClient) MaxConnections() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxConnections
}

// SetMaxConnections changes the number of concurrent requests allowed.
// Requests already waiting for or holding a slot are not bound by the new limit.
func (c *SuiteAPIClient) SetMaxConnections(n int) {
	if n <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxConnections != n {
		c.maxConnections = n
		c.throttle = semaphore.NewWeighted(int64(n))
	}
}

func (c *SuiteAPIClient) currentThrottle() *semaphore.Weighted {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.throttle
}

func (c *SuiteAPIClient) GetRaw(ctx context.Context, endpoint string) (*Response, error) {
	return c.callSuiteAPI(ctx, http.MethodGet, endpoint, nil)
}

func (c *SuiteAPIClient) PostRaw(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.callSuiteAPI(ctx, http.MethodPost, endpoint, body)
}

func (c *SuiteAPIClient) DeleteRaw(ctx context.Context, endpoint string) (*Response, error) {
	return c.callSuiteAPI(ctx, http.MethodDelete, endpoint, nil)
}

func (c *SuiteAPIClient) Get(ctx context.Context, endpoint string) (map[string]any, error) {
	resp, err := c.GetRaw(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return resp.JSON()
}

// Post sends body, encoded as json, to the endpoint and decodes the response
func (c *SuiteAPIClient) Post(ctx context.Context, endpoint string, body any) (map[string]any, error) {
	resp, err := c.PostRaw(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}
	return resp.JSON()
}

func (c *SuiteAPIClient) Delete(ctx context.Context, endpoint string) error {
	_, err := c.DeleteRaw(ctx, endpoint)
	return err
}

func (c *SuiteAPIClient) GetAsync(ctx context.Context, endpoint string) *Future[map[string]any] {
	return async(ctx, func(ctx context.Context) (map[string]any, error) {
		return c.Get(ctx, endpoint)
	})
}

func (c *SuiteAPIClient) PostAsync(ctx context.Context, endpoint string, body any) *Future[map[string]any] {
	return async(ctx, func(ctx context.Context) (map[string]any, error) {
		return c.Post(ctx, endpoint, body)
	})
}

func (c *SuiteAPIClient) DeleteAsync(ctx context.Context, endpoint string) *Future[struct{}] {
	return async(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.Delete(ctx, endpoint)
	})
}

// Close releases the authentication token. Failing to release the token is
// logged but otherwise ignored.
func (c *SuiteAPIClient) Close(ctx context.Context) {
	err := c.tokens.Release(ctx)
	if err != nil {
		logging.GetFromContext(ctx).Warn("could not release token, it has likely been invalidated already", "err", err.Error())
	}

	c.httpClient.CloseIdleConnections()
}

func (c *SuiteAPIClient) callSuiteAPI(ctx context.Context, method, endpoint string, body any) (*Response, error) {
	var err error

	ctx, span := tracer.Start(ctx, strings.ToLower(method),
		trace.WithAttributes(attribute.String(TraceAttributeMethod, method)),
		trace.WithAttributes(attribute.String(TraceAttributeEndpoint, endpoint)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	var reqBody io.Reader
	if body != nil {
		var b []byte
		b, err = json.Marshal(body)
		if err != nil {
			err = fmt.Errorf("failed to marshal request body: %s (%w)", err.Error(), errors.ErrInternal)
			return nil, err
		}
		reqBody = bytes.NewReader(b)
	}

	throttle := c.currentThrottle()
	if err = throttle.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer throttle.Release(1)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	url := c.info.URL(endpoint)

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		err = fmt.Errorf("failed to create request: %s (%w)", err.Error(), errors.ErrInternal)
		return nil, err
	}

	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", authorizationHeaderValue(token))

	if reqBody != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	if hasPathSegment(endpoint, "internal") {
		logging.GetFromContext(ctx).Debug("using unsupported api", "endpoint", endpoint)
		req.Header.Add(unsupportedAPIHeader, "true")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to send request: %s (%w)", err.Error(), errors.ErrRequest)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed to read response body: %s (%w)", err.Error(), errors.ErrBadResponse)
		return nil, err
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Header:     resp.Header,
		Body:       respBody,
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		if c.debug {
			reqbytes, _ := httputil.DumpRequest(req, false)
			respbytes, _ := httputil.DumpResponse(resp, false)
			logging.GetFromContext(ctx).Error("request failed", "request", string(reqbytes), "response", string(respbytes))
		}

		err = errors.NewSuiteAPIError(method, url, response.Status, resp.StatusCode)
		return response, err
	}

	return response, nil
}
