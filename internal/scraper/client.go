// internal/scraper/client.go
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// Client provides a rate-limited HTTP client with retry logic shared by
// every fetcher in the harvester.
type Client struct {
	httpClient    *http.Client
	userAgents    []string
	currentUA     int
	uaMutex       sync.Mutex
	rateLimiter   *rate.Limiter
	retryAttempts int
	retryDelay    time.Duration
}

// ClientConfig defines configuration options for the HTTP client
type ClientConfig struct {
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	UserAgents    []string
	RateLimit     float64 // requests per second
	RateBurst     int
}

// NewClient creates a new HTTP client with the specified configuration
func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryAttempts == 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 4.0
	}
	if config.RateBurst == 0 {
		config.RateBurst = 8
	}
	if len(config.UserAgents) == 0 {
		config.UserAgents = defaultUserAgents()
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Client{
		httpClient:    httpClient,
		userAgents:    config.UserAgents,
		rateLimiter:   rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
		retryAttempts: config.RetryAttempts,
		retryDelay:    config.RetryDelay,
	}
}

// Get performs an HTTP GET request with rate limiting and retry logic.
// The response body is fully read and the connection released before
// returning. Non-2xx responses produce an *HTTPError; retryable status
// codes are retried up to the configured attempt count.
func (c *Client) Get(ctx context.Context, targetURL string) ([]byte, error) {
	if _, err := url.Parse(targetURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	var lastErr error

	for attempt := 0; attempt <= c.retryAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		c.setRequestHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w",
				attempt+1, c.retryAttempts+1, err)
			if ctx.Err() != nil {
				return nil, lastErr
			}
			if attempt < c.retryAttempts {
				c.waitForRetry(ctx, attempt)
				continue
			}
			break
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				lastErr = fmt.Errorf("failed to read response body: %w", readErr)
				if attempt < c.retryAttempts {
					c.waitForRetry(ctx, attempt)
					continue
				}
				break
			}
			return body, nil
		}

		lastErr = &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        targetURL,
			Attempt:    attempt + 1,
		}

		if !shouldRetryStatusCode(resp.StatusCode) {
			break
		}
		if attempt < c.retryAttempts {
			c.waitForRetry(ctx, attempt)
		}
	}

	return nil, lastErr
}

// GetDocument fetches targetURL and parses the response as an HTML document.
func (c *Client) GetDocument(ctx context.Context, targetURL string) (*goquery.Document, error) {
	body, err := c.Get(ctx, targetURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", targetURL, err)
	}
	return doc, nil
}

// GetJSON fetches targetURL and unmarshals the response body into v.
func (c *Client) GetJSON(ctx context.Context, targetURL string, v interface{}) error {
	body, err := c.Get(ctx, targetURL)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode JSON from %s: %w", targetURL, err)
	}
	return nil
}

// setRequestHeaders configures request headers including user agent rotation
func (c *Client) setRequestHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.nextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
}

// nextUserAgent returns the next user agent in rotation
func (c *Client) nextUserAgent() string {
	c.uaMutex.Lock()
	defer c.uaMutex.Unlock()

	if len(c.userAgents) == 0 {
		return "showharvest/1.0"
	}

	userAgent := c.userAgents[c.currentUA]
	c.currentUA = (c.currentUA + 1) % len(c.userAgents)

	return userAgent
}

// waitForRetry implements exponential backoff with jitter
func (c *Client) waitForRetry(ctx context.Context, attempt int) {
	backoffDelay := c.retryDelay * time.Duration(1<<uint(attempt))
	jitter := time.Duration(rand.Int63n(int64(backoffDelay/2) + 1))
	totalDelay := backoffDelay + jitter

	if totalDelay > 30*time.Second {
		totalDelay = 30 * time.Second
	}

	select {
	case <-time.After(totalDelay):
	case <-ctx.Done():
	}
}

// shouldRetryStatusCode determines if a status code warrants a retry
func shouldRetryStatusCode(statusCode int) bool {
	switch statusCode {
	case 429, 500, 502, 503, 504, 520, 521, 522, 523, 524:
		return true
	}
	return false
}

// defaultUserAgents returns a set of realistic user agent strings
func defaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/119.0",
	}
}

// HTTPError represents an HTTP-level error with additional context
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Attempt    int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (URL: %s, Attempt: %d)",
		e.StatusCode, e.Status, e.URL, e.Attempt)
}

// IsNotFound reports whether err is an HTTP 404 response.
func IsNotFound(err error) bool {
	if httpErr, ok := err.(*HTTPError); ok {
		return httpErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRetryableError checks if an error indicates the request should be retried
func IsRetryableError(err error) bool {
	if httpErr, ok := err.(*HTTPError); ok {
		return httpErr.StatusCode >= 500 || httpErr.StatusCode == 429
	}
	return false
}
