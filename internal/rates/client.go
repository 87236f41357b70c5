package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// IndexRate is one observation from the live rate feed.
type IndexRate struct {
	Code    string    `json:"code"`
	RatePct float64   `json:"rate_pct"`
	AsOf    time.Time `json:"as_of"`
	Source  string    `json:"source"`
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rate feed error (%d): %s", e.Status, e.Body)
}

// Client is the REST binding for the index-rate feed.
type Client struct {
	host       string
	httpClient *http.Client
}

func NewClient(httpClient *http.Client, host string) *Client {
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
	}
}

type latestRatesResponse struct {
	Rates []IndexRate `json:"rates"`
}

// GetLatestIndexRates fetches the feed's current observation per index code.
func (c *Client) GetLatestIndexRates(ctx context.Context) (map[string]IndexRate, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("rates client not configured")
	}
	body, err := c.doRequest(ctx, "/v1/rates/latest")
	if err != nil {
		return nil, err
	}
	var parsed latestRatesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse rate feed response: %w", err)
	}
	out := make(map[string]IndexRate, len(parsed.Rates))
	for _, r := range parsed.Rates {
		if strings.TrimSpace(r.Code) == "" {
			continue
		}
		out[r.Code] = r
	}
	return out, nil
}

func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
