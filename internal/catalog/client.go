// Package catalog provides the HTTP client for the external product catalog
// service.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fairyhunter13/storefront-order-system/internal/model"
)

// ErrNotFound is returned when the catalog has no entry for the product id.
var ErrNotFound = errors.New("product not found in catalog")

// Client queries the catalog service for authoritative product data.
// Transient failures are retried with backoff by the underlying
// retryablehttp client; every request is bounded by the configured timeout.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, maxRetries int) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = maxRetries
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil // request logging is handled by zerolog at the call sites

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    rc,
	}
}

// GetProduct fetches a single product by id.
// Returns ErrNotFound when the catalog answers 404.
func (c *Client) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	url := fmt.Sprintf("%s/api/products/%s", c.baseURL, productID)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request for %s: %w", productID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d for %s", resp.StatusCode, productID)
	}

	var p model.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	return &p, nil
}
