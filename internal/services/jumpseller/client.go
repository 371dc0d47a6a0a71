package jumpseller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/madeinportugal/storefront/internal/logger"
)

// pageSize is the upstream pagination window.
const pageSize = 50

type Client struct {
	baseURL    string
	login      string
	authToken  string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL, login, authToken string, logger *logger.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		login:     login,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// FetchAllProducts pages through the catalog until an empty page or a failed
// request. A failure stops pagination and whatever was collected so far is
// returned; it is not retried.
func (c *Client) FetchAllProducts(ctx context.Context) []Product {
	var all []Product
	for page := 1; ; page++ {
		batch, err := c.fetchProductPage(ctx, page)
		if err != nil {
			c.logger.Warn("product pagination stopped at page %d: %v", page, err)
			break
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}
	return all
}

func (c *Client) fetchProductPage(ctx context.Context, page int) ([]Product, error) {
	url := fmt.Sprintf("%s/products.json?limit=%d&page=%d", c.baseURL, pageSize, page)

	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var envelopes []productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelopes); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	products := make([]Product, len(envelopes))
	for i, e := range envelopes {
		products[i] = e.Product
	}
	return products, nil
}

// FetchProduct fetches a single live product. A 404 yields (nil, nil): not
// having the product is a normal result, not an error.
func (c *Client) FetchProduct(ctx context.Context, productID int64) (*Product, error) {
	url := fmt.Sprintf("%s/products/%d.json", c.baseURL, productID)

	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var envelope productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &envelope.Product, nil
}

// FetchProductReviews returns the reviews for one product, filtered to
// records with a parseable rating in 1-5. Every failure mode, including a
// 404, degrades to an empty list.
func (c *Client) FetchProductReviews(ctx context.Context, productID int64) []Review {
	url := fmt.Sprintf("%s/products/%d/reviews.json", c.baseURL, productID)

	req, err := c.newRequest(ctx, url)
	if err != nil {
		c.logger.Error("failed to build reviews request for product %d: %v", productID, err)
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to fetch reviews for product %d: %v", productID, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("reviews request for product %d failed: %d - %s", productID, resp.StatusCode, string(body))
		return nil
	}

	var envelopes []reviewEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelopes); err != nil {
		c.logger.Error("failed to decode reviews for product %d: %v", productID, err)
		return nil
	}

	var reviews []Review
	for _, e := range envelopes {
		if _, ok := e.Review.ScoreValue(); ok {
			reviews = append(reviews, e.Review)
		}
	}
	return reviews
}

func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	// Fixed credentials attached to every request
	q := req.URL.Query()
	q.Set("login", c.login)
	q.Set("authtoken", c.authToken)
	req.URL.RawQuery = q.Encode()

	return req, nil
}
