package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultUserAgent = "flatmatch/0.1"
	requestTimeout   = 5 * time.Second
)

// Client performs JSON GET requests against a listings API rooted at a
// base URL.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// NewClient builds a client for the API rooted at base, e.g.
// "https://example.com/api". A bare host:port is treated as http.
func NewClient(base string) (*Client, error) {
	u, err := parseBaseURL(base)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}, nil
}

// Resolve joins path elements onto the base URL.
func (c *Client) Resolve(elem ...string) *url.URL {
	return c.baseURL.JoinPath(elem...)
}

// GetJSON fetches <base>/<elem...> and decodes the body into dest.
func (c *Client) GetJSON(ctx context.Context, dest any, elem ...string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.getURL(ctx, c.Resolve(elem...), dest)
}

func (c *Client) getURL(ctx context.Context, u *url.URL, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", u.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// HTTPSource fetches the catalog from GET <base>/listings.
type HTTPSource struct {
	client *Client
}

var _ Source = (*HTTPSource)(nil)

// NewHTTPSource builds a source for the API rooted at base.
func NewHTTPSource(base string) (*HTTPSource, error) {
	c, err := NewClient(base)
	if err != nil {
		return nil, err
	}
	return &HTTPSource{client: c}, nil
}

// FetchAll retrieves both partitions. A response missing either one is an
// error rather than an empty partition.
func (s *HTTPSource) FetchAll(ctx context.Context) (Payload, error) {
	if s == nil {
		return Payload{}, fmt.Errorf("source is nil")
	}
	var payload struct {
		Popular *json.RawMessage `json:"popular"`
		Nearby  *json.RawMessage `json:"nearby"`
	}
	if err := s.client.GetJSON(ctx, &payload, "listings"); err != nil {
		return Payload{}, err
	}
	if payload.Popular == nil || payload.Nearby == nil {
		return Payload{}, fmt.Errorf("decode response: missing partitions")
	}
	var out Payload
	if err := json.Unmarshal(*payload.Popular, &out.Popular); err != nil {
		return Payload{}, fmt.Errorf("decode popular: %w", err)
	}
	if err := json.Unmarshal(*payload.Nearby, &out.Nearby); err != nil {
		return Payload{}, fmt.Errorf("decode nearby: %w", err)
	}
	return out, nil
}

func parseBaseURL(base string) (*url.URL, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", base, err)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
