// Package venueapi is an HTTP client for the remote Holidaze venue booking service.
package venueapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"holidaze/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	apiKeyHeader    = "X-Noroff-API-Key"
	requestIDHeader = "X-Request-ID"
	cachePrefix     = "venueapi:"
	maxBodyBytes    = 4 << 20
)

// APIError is a non-2xx answer of the remote service.
type APIError struct {
	Status  int
	Message string
}

// Error returns the service-provided message verbatim.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "request failed"
}

// StatusCode returns the HTTP status of err if it is an *APIError, else 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// PageMeta is the pagination block returned by list endpoints.
type PageMeta struct {
	IsFirstPage  bool `json:"isFirstPage"`
	IsLastPage   bool `json:"isLastPage"`
	CurrentPage  int  `json:"currentPage"`
	PreviousPage *int `json:"previousPage"`
	NextPage     *int `json:"nextPage"`
	PageCount    int  `json:"pageCount"`
	TotalCount   int  `json:"totalCount"`
}

// Client calls the remote API. Anonymous GETs can be cached in Redis and all
// calls can be throttled with a token bucket.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	limiter *rate.Limiter

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client with baseURL (e.g. https://v2.api.noroff.dev) and API key.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// UseRedisCache configures optional Redis caching for anonymous GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// UseRateLimit throttles outgoing requests to perSecond with the given burst.
func (c *Client) UseRateLimit(perSecond float64, burst int) {
	if perSecond <= 0 {
		c.limiter = nil
		return
	}
	if burst <= 0 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Meta   *PageMeta       `json:"meta,omitempty"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
	Message string `json:"message,omitempty"`
}

// call describes one request to the service.
type call struct {
	label     string // metrics endpoint label
	method    string
	path      string
	query     url.Values
	token     string
	body      any
	out       any
	meta      *PageMeta
	cacheable bool
}

func (c *Client) send(ctx context.Context, cl *call) error {
	cacheKey := ""
	if cl.cacheable && cl.method == http.MethodGet && cl.token == "" {
		cacheKey = c.cacheKey(cl.path, cl.query)
		if raw, ok := c.readCache(ctx, cacheKey); ok {
			if err := decodeEnvelope(raw, cl); err == nil {
				metrics.IncCacheHit(cl.label)
				return nil
			}
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: rate limit: %w", cl.label, err)
		}
	}

	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return fmt.Errorf("%s: %w", cl.label, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveAPIRequest(cl.label, 0)
		return fmt.Errorf("%s: %w", cl.label, err)
	}
	defer resp.Body.Close()
	metrics.ObserveAPIRequest(cl.label, resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s: read body: %w", cl.label, err)
	}

	if resp.StatusCode >= 300 {
		return parseError(resp.StatusCode, raw)
	}

	if err := decodeEnvelope(raw, cl); err != nil {
		return fmt.Errorf("%s: decode: %w", cl.label, err)
	}
	if cacheKey != "" {
		c.writeCache(ctx, cacheKey, raw)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, cl *call) (*http.Request, error) {
	endpoint := c.baseURL + cl.path
	if len(cl.query) > 0 {
		endpoint += "?" + cl.query.Encode()
	}

	var body io.Reader = http.NoBody
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	return req, nil
}

func decodeEnvelope(raw []byte, cl *call) error {
	if cl.out == nil && cl.meta == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("empty response body")
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	if cl.meta != nil && env.Meta != nil {
		*cl.meta = *env.Meta
	}
	if cl.out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return errors.New("response has no data")
	}
	return json.Unmarshal(env.Data, cl.out)
}

// parseError prefers the top-level message over the first entry of errors.
func parseError(status int, raw []byte) error {
	apiErr := &APIError{Status: status}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		switch {
		case env.Message != "":
			apiErr.Message = env.Message
		case len(env.Errors) > 0:
			apiErr.Message = env.Errors[0].Message
		}
	}
	return apiErr
}

func (c *Client) cacheKey(path string, query url.Values) string {
	key := cachePrefix + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	return key
}

func (c *Client) readCache(ctx context.Context, key string) ([]byte, bool) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return nil, false
	}
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *Client) writeCache(ctx context.Context, key string, raw []byte) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	_ = c.redis.Set(ctx, key, raw, c.cacheTTL).Err()
}

// invalidate drops cached entries whose key starts with the given path.
func (c *Client) invalidate(ctx context.Context, pathPrefix string) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	match := cachePrefix + strings.TrimPrefix(pathPrefix, "/") + "*"
	iter := c.redis.Scan(ctx, 0, match, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		_ = c.redis.Del(ctx, keys...).Err()
	}
}

// HealthCheck checks if the remote API answers.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("health check failed: %d", resp.StatusCode)
	}
	return nil
}
