// Package openlibrary searches the Open Library catalogue.
package openlibrary

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

const DefaultBaseURL = "https://openlibrary.org"

type searchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []doc `json:"docs"`
}

type doc struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	AuthorName []string `json:"author_name"`
}

type Client struct {
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
	return models.DataSourceOpenLibrary
}

// Lookup queries /search.json by title and author. The hit's external id is
// the work key without its "/works/" prefix.
func (c *Client) Lookup(ctx context.Context, title, author string) ([]providers.Hit, error) {
	params := url.Values{}
	params.Set("title", title)
	if strings.TrimSpace(author) != "" {
		params.Set("author", author)
	}
	params.Set("limit", strconv.Itoa(providers.MaxHits))
	params.Set("fields", "key,title,author_name")

	var resp searchResponse
	err := providers.GetJSON(ctx, c.httpClient, models.DataSourceOpenLibrary, c.baseURL+"/search.json?"+params.Encode(), &resp)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	hits := make([]providers.Hit, 0, len(resp.Docs))
	for _, d := range resp.Docs {
		hit := providers.Hit{
			Title:      strings.TrimSpace(d.Title),
			ExternalID: strings.TrimPrefix(d.Key, "/works/"),
		}
		if len(d.AuthorName) > 0 {
			hit.Author = strings.TrimSpace(d.AuthorName[0])
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
