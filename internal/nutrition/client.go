// internal/nutrition/client.go
package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"calorie-counter/internal/config"
	"calorie-counter/internal/models"
)

// Resolver turns a free-text food query into food records.
type Resolver interface {
	Resolve(ctx context.Context, query string) ([]models.FoodRecord, error)
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	appID      string
	appKey     string
	observer   Observer
}

var _ Resolver = (*Client)(nil)

func NewClient(cfg config.NutritionConfig, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultEndpoint
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond,
		},
		endpoint: endpoint,
		appID:    cfg.AppID,
		appKey:   cfg.AppKey,
		observer: observer,
	}
}

type nutrientsRequest struct {
	Query string `json:"query"`
}

type nutrientsResponse struct {
	Foods []models.FoodRecord `json:"foods"`
}

// Resolve posts query to the nutrients endpoint. A blank query fails with
// ErrEmptyQuery without touching the network. A body that cannot be decoded
// yields an empty result rather than an error.
func (c *Client) Resolve(ctx context.Context, query string) ([]models.FoodRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	start := time.Now()
	event := LookupEvent{
		RequestID: uuid.New().String(),
		QueryLen:  len(query),
	}

	foods, status, err := c.doRequest(ctx, query)
	event.StatusCode = status
	event.LatencyMs = time.Since(start).Milliseconds()
	event.Success = err == nil
	event.Records = len(foods)
	c.observer.OnLookupComplete(event)

	if err != nil {
		return nil, err
	}
	return foods, nil
}

func (c *Client) doRequest(ctx context.Context, query string) ([]models.FoodRecord, int, error) {
	jsonData, err := json.Marshal(nutrientsRequest{Query: query})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-app-id", c.appID)
	req.Header.Set("x-app-key", c.appKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, &FetchError{StatusCode: resp.StatusCode}
	}

	var body nutrientsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return []models.FoodRecord{}, resp.StatusCode, nil
	}
	if body.Foods == nil {
		return []models.FoodRecord{}, resp.StatusCode, nil
	}

	return body.Foods, resp.StatusCode, nil
}
