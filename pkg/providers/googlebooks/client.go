// Package googlebooks searches the Google Books volumes API.
package googlebooks

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/paparr/paparr/pkg/models"
	"github.com/paparr/paparr/pkg/providers"
	"github.com/pkg/errors"
)

const DefaultBaseURL = "https://www.googleapis.com"

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title   string   `json:"title"`
		Authors []string `json:"authors"`
	} `json:"volumeInfo"`
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ providers.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAPIKey sends the key with every request. Anonymous requests work but
// share a small quota.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: providers.NewHTTPClient(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Source() string {
	return models.DataSourceGoogleBooks
}

// Lookup runs a free-text volumes query of "title author". A response
// without items means no matches.
func (c *Client) Lookup(ctx context.Context, title, author string) ([]providers.Hit, error) {
	params := url.Values{}
	params.Set("q", strings.TrimSpace(title+" "+author))
	params.Set("maxResults", strconv.Itoa(providers.MaxHits))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var resp volumesResponse
	err := providers.GetJSON(ctx, c.httpClient, models.DataSourceGoogleBooks, c.baseURL+"/books/v1/volumes?"+params.Encode(), &resp)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	hits := make([]providers.Hit, 0, len(resp.Items))
	for _, item := range resp.Items {
		hit := providers.Hit{
			Title:      strings.TrimSpace(item.VolumeInfo.Title),
			ExternalID: item.ID,
		}
		if len(item.VolumeInfo.Authors) > 0 {
			hit.Author = strings.TrimSpace(item.VolumeInfo.Authors[0])
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
