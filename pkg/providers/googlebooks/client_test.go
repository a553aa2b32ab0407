package googlebooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/paparr/paparr/pkg/models"
	"github.com/paparr/paparr/pkg/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/v1/volumes", r.URL.Path)
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{
			"totalItems": 2,
			"items": [
				{"id": "B1gvAAAAQBAJ", "volumeInfo": {"title": "Dune", "authors": ["Frank Herbert"]}},
				{"id": "x2", "volumeInfo": {"title": "Dune: The Graphic Novel"}}
			]
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithAPIKey("secret"))
	hits, err := c.Lookup(context.Background(), "Dune", "Frank Herbert")
	require.NoError(t, err)

	assert.Equal(t, "Dune Frank Herbert", query.Get("q"))
	assert.Equal(t, "5", query.Get("maxResults"))
	assert.Equal(t, "secret", query.Get("key"))

	require.Len(t, hits, 2)
	assert.Equal(t, providers.Hit{Title: "Dune", Author: "Frank Herbert", ExternalID: "B1gvAAAAQBAJ"}, hits[0])
	assert.Equal(t, "", hits[1].Author)
	assert.Equal(t, models.DataSourceGoogleBooks, c.Source())
}

func TestLookup_NoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["key"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"kind": "books#volumes", "totalItems": 0}`))
	}))
	defer srv.Close()

	hits, err := New(srv.URL).Lookup(context.Background(), "Nothing", "Nobody")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestLookup_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Lookup(context.Background(), "Dune", "Frank Herbert")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
