// Package apifootball provides the HTTP client and payload mapping for the
// API-Football (api-sports.io) REST API.
//
// API-Football uses static header auth (x-apisports-key), page-based
// pagination, and wraps every collection in a "response" envelope.
// Rate limiting is handled via a token bucket limiter.
package apifootball

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const apiHost = "v3.football.api-sports.io"

// Client is the HTTP client for API-Football endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	season     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an API-Football HTTP client with rate limiting.
func NewClient(baseURL, apiKey, season string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		season:     season,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// envelope is the common API-Football response wrapper.
type envelope struct {
	Response json.RawMessage `json:"response"`
	Errors   json.RawMessage `json:"errors"`
	Paging   struct {
		Current int `json:"current"`
		Total   int `json:"total"`
	} `json:"paging"`
}

// get performs a rate-limited GET request to an API-Football endpoint.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*envelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-apisports-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API-Football %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	var result envelope
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

// getPaginated fetches all pages of a collection endpoint.
func (c *Client) getPaginated(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}

	var all []json.RawMessage
	page := 1

	for {
		if page > 1 {
			params.Set("page", strconv.Itoa(page))
		}
		resp, err := c.get(ctx, path, params)
		if err != nil {
			return nil, err
		}

		var items []json.RawMessage
		if err := json.Unmarshal(resp.Response, &items); err != nil {
			return nil, fmt.Errorf("decode response items: %w", err)
		}
		all = append(all, items...)

		if resp.Paging.Total == 0 || resp.Paging.Current >= resp.Paging.Total {
			break
		}
		page++
	}

	return all, nil
}

// Ping verifies reachability and key validity against the /timezone
// endpoint, the cheapest call the API offers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/timezone", nil)
	return err
}

// truncate returns a truncated string for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
