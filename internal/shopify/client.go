package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hassanhitleap1/bagisto-karaz/internal/logger"
)

const (
	// fetchRetries bounds how often a transient page-fetch failure is retried
	// before it surfaces to the driver.
	fetchRetries = 3

	defaultRetryDelay = 2 * time.Second
	defaultPerPage    = 250
)

// StatusError is returned when the feed answers with a non-OK HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed request failed with status %d", e.Code)
}

type Client struct {
	baseURL    string
	perPage    int
	retryDelay time.Duration
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL string, perPage int, logger *logger.Logger) *Client {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		perPage:    perPage,
		retryDelay: defaultRetryDelay,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) PerPage() int {
	return c.perPage
}

// FetchPage fetches one page of the public product feed. Transient failures
// (network errors, 429, 5xx) are retried a bounded number of times with a
// fixed delay; other HTTP statuses fail immediately. An empty product slice
// is a valid result meaning the feed has no more pages.
func (c *Client) FetchPage(ctx context.Context, page int) ([]Product, error) {
	url := fmt.Sprintf("%s/products.json?limit=%d&page=%d", c.baseURL, c.perPage, page)

	var products []Product
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("page %d fetch failed: %v", page, err)
			return fmt.Errorf("failed to make request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			io.Copy(io.Discard, resp.Body)
			c.logger.Warn("page %d fetch returned status %d, retrying", page, resp.StatusCode)
			return &StatusError{Code: resp.StatusCode}
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(&StatusError{Code: resp.StatusCode})
		}

		var feed ProductsResponse
		if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}

		products = feed.Products
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), fetchRetries),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return products, nil
}
