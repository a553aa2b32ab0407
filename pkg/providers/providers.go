// Package providers defines the contract for external bibliographic lookups
// and the HTTP plumbing shared by the concrete clients.
package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paparr/paparr/pkg/version"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// MaxHits caps how many results are requested from, and considered for, each
// provider.
const MaxHits = 5

// DefaultTimeout applies when a client is built without an explicit timeout.
const DefaultTimeout = 10 * time.Second

// Hit is one search result. Fields the provider did not supply are empty.
type Hit struct {
	Title      string
	Author     string
	ExternalID string
}

// Provider looks up books by title and author.
type Provider interface {
	// Source is the models.DataSource* tag recorded on candidates built from
	// this provider's hits.
	Source() string
	Lookup(ctx context.Context, title, author string) ([]Hit, error)
}

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

// NewHTTPClient returns a client with the given timeout, or DefaultTimeout
// when timeout is zero.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// GetJSON issues a GET to endpoint and decodes a 2xx JSON response into out.
func GetJSON(ctx context.Context, client *http.Client, provider, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s request failed after %s", provider, time.Since(start))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.WithStack(&StatusError{Provider: provider, StatusCode: resp.StatusCode, Body: string(body)})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode %s response", provider)
	}
	return nil
}
