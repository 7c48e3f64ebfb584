package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/woodcraft/backend/internal/domain/integration"
	"github.com/woodcraft/backend/internal/infrastructure/logger"
)

// maxResponseSize is the maximum allowed response size from the ShopRenter API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const instrumentationName = "github.com/woodcraft/backend/internal/infrastructure/ecommerce"

// ShoprenterClient implements integration.RemoteCatalog for one connection.
// Every call runs through the connection's RateLimiter.
type ShoprenterClient struct {
	config     *ShoprenterConfig
	auth       *ResolvedAuth
	limiter    *RateLimiter
	httpClient *http.Client
	logger     *zap.Logger
	tracer     trace.Tracer
	calls      metric.Int64Counter

	languages   map[string]integration.RemoteLanguage
	languagesMu sync.Mutex
}

var _ integration.RemoteCatalog = (*ShoprenterClient)(nil)

// NewShoprenterClient creates a client bound to resolved auth and a limiter
func NewShoprenterClient(config *ShoprenterConfig, auth *ResolvedAuth, limiter *RateLimiter, httpClient *http.Client, logger *zap.Logger) *ShoprenterClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	calls, _ := otel.Meter(instrumentationName).Int64Counter(
		"shoprenter.remote.calls",
		metric.WithDescription("Remote ShopRenter API calls by method and status class"),
	)
	return &ShoprenterClient{
		config:     config,
		auth:       auth,
		limiter:    limiter,
		httpClient: httpClient,
		logger: logger.Named("shoprenter").With(
			zap.String("shop", auth.ShopName),
			zap.Bool("used_token_auth", auth.UsedTokenAuth),
		),
		tracer: otel.Tracer(instrumentationName),
		calls:  calls,
	}
}

// ShopName returns the shop identifier derived from the API URL
func (c *ShoprenterClient) ShopName() string {
	return c.auth.ShopName
}

// UsedTokenAuth reports whether the token exchange was used
func (c *ShoprenterClient) UsedTokenAuth() bool {
	return c.auth.UsedTokenAuth
}

// ---------------------------------------------------------------------------
// Request plumbing
// ---------------------------------------------------------------------------

// apiResponse is a successful (2xx) answer
type apiResponse struct {
	status int
	body   []byte
}

// empty reports whether a 2xx answer carried no document
func (r *apiResponse) empty() bool {
	b := bytes.TrimSpace(r.body)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

// doRequest performs an HTTP request to the ShopRenter API through the limiter
func (c *ShoprenterClient) doRequest(ctx context.Context, method, resource string, query url.Values, payload any) (*apiResponse, error) {
	timeout := c.config.WriteTimeout
	if method == http.MethodGet {
		timeout = c.config.LookupTimeout
	}

	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("shoprenter: failed to encode %s payload: %w", resource, err)
		}
	}

	target := c.auth.APIBaseURL + "/" + strings.TrimLeft(resource, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	ctx, span := c.tracer.Start(ctx, "shoprenter "+method+" "+resourceName(resource),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("shoprenter.shop", c.auth.ShopName),
		),
	)
	defer span.End()

	var resp *apiResponse
	start := time.Now()
	err := c.limiter.Execute(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(callCtx, method, target, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("shoprenter: failed to create request: %w", err)
		}
		req.Header.Set("Authorization", c.auth.AuthHeader)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.config.UserAgent != "" {
			req.Header.Set("User-Agent", c.config.UserAgent)
		}

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			return transportError(method, resource, err)
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
		if err != nil {
			return transportError(method, resource, err)
		}
		if err := classifyStatus(method, resource, httpResp, respBody); err != nil {
			return err
		}
		resp = &apiResponse{status: httpResp.StatusCode, body: respBody}
		return nil
	})

	status := 0
	if resp != nil {
		status = resp.status
	} else if re, ok := integration.AsRemoteError(err); ok {
		status = re.StatusCode
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	c.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status_class", statusClass(status)),
	))

	fields := []zap.Field{
		zap.String("method", method),
		zap.String("resource", resource),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WithLogger(ctx, c.logger).Debug("ShopRenter call failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	if resp.status == http.StatusOK && resp.empty() {
		// Some credential failures are answered with an empty 200.
		logger.WithLogger(ctx, c.logger).Warn("ShopRenter returned an empty body", fields...)
	} else {
		logger.WithLogger(ctx, c.logger).Debug("ShopRenter call", fields...)
	}
	return resp, nil
}

// classifyStatus maps a non-2xx answer to the sync error taxonomy
func classifyStatus(method, resource string, resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	re := &integration.RemoteError{
		Method:     method,
		Resource:   resource,
		StatusCode: resp.StatusCode,
		Body:       integration.BodyExcerpt(body),
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		re.Kind = integration.ErrAuth
	case resp.StatusCode == http.StatusNotFound:
		re.Kind = integration.ErrRemoteNotFound
	case resp.StatusCode == http.StatusConflict:
		re.Kind = integration.ErrRemoteConflict
		re.ConflictingID = conflictingID(body)
	case resp.StatusCode == http.StatusTooManyRequests:
		re.Kind = integration.ErrRateLimited
		re.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	default:
		re.Kind = integration.ErrRemoteValidation
	}
	return re
}

// transportError maps timeouts and connection failures to ErrNetwork
func transportError(method, resource string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &integration.RemoteError{Kind: integration.ErrNetwork, Method: method, Resource: resource, Body: "timeout", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &integration.RemoteError{Kind: integration.ErrNetwork, Method: method, Resource: resource, Cause: err}
}

// conflictingID extracts the id of the conflicting alias from a 409 body.
// It may sit at the top level or inside a "response"/"error" object.
func conflictingID(body []byte) string {
	var doc shoprenterErrorBody
	if err := json.Unmarshal(body, &doc); err == nil && doc.ID != "" {
		return doc.ID.String()
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(body, &nested); err != nil {
		return ""
	}
	for _, key := range []string{"response", "error", "data"} {
		raw, ok := nested[key]
		if !ok {
			continue
		}
		var inner struct {
			ID flexString `json:"id"`
		}
		if err := json.Unmarshal(raw, &inner); err == nil && inner.ID != "" {
			return inner.ID.String()
		}
	}
	return ""
}

func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func statusClass(status int) string {
	if status == 0 {
		return "transport"
	}
	return strconv.Itoa(status/100) + "xx"
}

// resourceName strips ids from a resource path for span names
func resourceName(resource string) string {
	name, _, _ := strings.Cut(resource, "/")
	return name
}

// decodeValue decodes a successful answer, resolving the envelope once
func decodeValue[T any](resp *apiResponse, method, resource string) (T, error) {
	env, err := DecodeEnvelope[T](resp.body)
	if err != nil {
		var zero T
		return zero, &integration.RemoteError{
			Kind:       integration.ErrRemoteValidation,
			Method:     method,
			Resource:   resource,
			StatusCode: resp.status,
			Body:       integration.BodyExcerpt(resp.body),
			Cause:      err,
		}
	}
	return env.Value, nil
}

// emptyBodyError is returned when a read that must carry a document did not
func emptyBodyError(method, resource string, status int) error {
	return &integration.RemoteError{
		Kind:       integration.ErrRemoteValidation,
		Method:     method,
		Resource:   resource,
		StatusCode: status,
		Body:       "empty response body",
	}
}
