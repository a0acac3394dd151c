package moescape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errs "moescrape/pkg/errors"
	"moescrape/pkg/logger"
	"moescrape/pkg/ratelimit"
	"moescrape/pkg/retry"
)

// Client is a challenge-aware HTTP client for the Moescape API.
// Every request passes through the shared rate controller; transient
// failures are retried with exponential backoff up to a fixed attempt
// budget, while challenge responses fail fast.
type Client struct {
	httpClient  *http.Client
	headers     map[string]string
	baseURL     string
	rate         ratelimit.Controller
	backoff      retry.BackoffStrategy
	maxAttempts  int
	postPageSize int
	commentLimit int
	logger       logger.Logger
}

// ClientOptions configures a Client beyond its defaults
type ClientOptions struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	Backoff     retry.BackoffStrategy
	MaxAttempts int
	// PostPageSize is the batch size used when paginating posts
	PostPageSize int
	// CommentLimit is the page size used when fetching a post's comments
	CommentLimit int
}

// NewClient creates a new Moescape API client
func NewClient(rate ratelimit.Controller, opts ClientOptions, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Backoff == nil {
		opts.Backoff = retry.DefaultExponentialBackoff()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	opts.PostPageSize = ClampPageSize(opts.PostPageSize)
	opts.CommentLimit = ClampPageSize(opts.CommentLimit)

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
		},
		baseURL:      opts.BaseURL,
		rate:         rate,
		backoff:      opts.Backoff,
		maxAttempts:  opts.MaxAttempts,
		postPageSize: opts.PostPageSize,
		commentLimit: opts.CommentLimit,
		logger:       log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// BaseURL returns the API base URL the client is configured for
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchJSON performs a rate-controlled GET against the URL and decodes
// the JSON response into target. Retries transient failures up to the
// attempt budget; challenge responses and malformed payloads are
// returned immediately.
func (c *Client) FetchJSON(url string, target interface{}) error {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.backoff.NextDelay(attempt - 1)
			c.logger.WarnWithFields("retrying fetch", map[string]interface{}{
				"url":      url,
				"attempt":  attempt,
				"delay_ms": delay.Milliseconds(),
				"error":    lastErr.Error(),
			})
			if err := retry.Wait(context.Background(), delay); err != nil {
				return err
			}
		}

		c.rate.Wait()

		body, apiErr := c.doGet(url)
		if apiErr != nil {
			if apiErr.Type == errs.ErrorTypeRateLimit {
				c.rate.OnRateLimited()
			}
			if !errs.IsRetryable(apiErr.Type) {
				// Challenges, missing resources and malformed
				// payloads will not improve with another attempt
				return apiErr
			}
			lastErr = apiErr
			continue
		}

		if err := json.Unmarshal(body, target); err != nil {
			preview := string(body)
			if len(preview) > 200 {
				preview = preview[:200] + "..."
			}
			c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
				"url":          url,
				"error":        err.Error(),
				"body_preview": preview,
			})
			return &errs.Error{
				Type:    errs.ErrorTypeMalformed,
				Message: fmt.Sprintf("unexpected response shape: %v", err),
				Code:    http.StatusOK,
			}
		}

		c.rate.OnSuccess()
		return nil
	}

	return fmt.Errorf("max fetch attempts (%d) exceeded: %w", c.maxAttempts, lastErr)
}

// doGet performs a single GET attempt and classifies the outcome
func (c *Client) doGet(url string) ([]byte, *errs.Error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    url,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if isChallengeResponse(resp, body) {
		c.logger.WarnWithFields("anti-bot challenge detected", map[string]interface{}{
			"url":    url,
			"status": resp.StatusCode,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeChallenge,
			Message: "anti-bot challenge detected, unable to bypass",
			Code:    resp.StatusCode,
		}
	}

	if apiErr := classifyStatus(resp.StatusCode); apiErr != nil {
		c.logger.WarnWithFields("API request rejected", map[string]interface{}{
			"url":    url,
			"status": resp.StatusCode,
			"type":   string(apiErr.Type),
		})
		return nil, apiErr
	}

	return body, nil
}

// classifyStatus maps an HTTP status to a typed error, nil for 2xx
func classifyStatus(statusCode int) *errs.Error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusTooManyRequests:
		return &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    statusCode,
		}
	case statusCode == http.StatusNotFound:
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    statusCode,
		}
	case statusCode >= 500:
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: fmt.Sprintf("server returned status %d", statusCode),
			Code:    statusCode,
		}
	default:
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", statusCode),
			Code:    statusCode,
		}
	}
}

// isChallengeResponse detects an anti-bot interstitial. Cloudflare
// marks mitigated requests with a header; older challenge pages are
// HTML served with a 403 or 503.
func isChallengeResponse(resp *http.Response, body []byte) bool {
	if strings.Contains(resp.Header.Get("cf-mitigated"), "challenge") {
		return true
	}

	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusServiceUnavailable {
		return false
	}

	text := strings.ToLower(string(body))
	return strings.Contains(text, "just a moment") ||
		strings.Contains(text, "checking your browser") ||
		strings.Contains(text, "cf-challenge")
}

// FetchPosts fetches one page of a user's posts
func (c *Client) FetchPosts(userID string, offset, limit int) ([]Post, error) {
	url := GetPostsURL(c.baseURL, userID, offset, limit)

	c.logger.DebugWithFields("fetching posts page", map[string]interface{}{
		"user_id": userID,
		"offset":  offset,
		"limit":   limit,
	})

	var posts []Post
	if err := c.FetchJSON(url, &posts); err != nil {
		return nil, fmt.Errorf("failed to fetch posts for user %s: %w", userID, err)
	}

	return posts, nil
}

// FetchComments fetches a post's comments with a single high-limit page
func (c *Client) FetchComments(postUUID string) ([]Comment, error) {
	url := GetCommentsURL(c.baseURL, postUUID, 0, c.commentLimit)

	c.logger.DebugWithFields("fetching comments", map[string]interface{}{
		"post_uuid": postUUID,
		"limit":     c.commentLimit,
	})

	var response CommentsResponse
	if err := c.FetchJSON(url, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch comments for post %s: %w", postUUID, err)
	}

	return response.Comments, nil
}
