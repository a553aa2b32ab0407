package enricher

import (
	"context"
	"testing"

	"github.com/paparr/paparr/pkg/models"
	"github.com/paparr/paparr/pkg/providers"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	source string
	hits   []providers.Hit
	err    error
	panics bool
	calls  int
}

func (s *stubProvider) Source() string { return s.source }

func (s *stubProvider) Lookup(_ context.Context, _, _ string) ([]providers.Hit, error) {
	s.calls++
	if s.panics {
		panic("boom")
	}
	return s.hits, s.err
}

func TestEnrich_ScoresHitsInProviderOrder(t *testing.T) {
	ol := &stubProvider{source: models.DataSourceOpenLibrary, hits: []providers.Hit{
		{Title: "Dune", Author: "Frank Herbert", ExternalID: "OL1W"},
	}}
	gb := &stubProvider{source: models.DataSourceGoogleBooks, hits: []providers.Hit{
		{Title: "Dune Messiah", Author: "Frank Herbert", ExternalID: "g1"},
	}}

	candidates, failures := New(ol, gb).Enrich(context.Background(), "Dune", "Frank Herbert")
	assert.Empty(t, failures)
	require.Len(t, candidates, 2)

	assert.Equal(t, models.DataSourceOpenLibrary, candidates[0].Source)
	assert.Equal(t, "OL1W", candidates[0].ExternalID)
	assert.InDelta(t, 100.0, candidates[0].Score, 1e-9)

	assert.Equal(t, models.DataSourceGoogleBooks, candidates[1].Source)
	assert.Less(t, candidates[1].Score, 100.0)
}

func TestEnrich_SkipsIncompleteHits(t *testing.T) {
	p := &stubProvider{source: models.DataSourceOpenLibrary, hits: []providers.Hit{
		{Title: "", Author: "A", ExternalID: "1"},
		{Title: "T", Author: "", ExternalID: "2"},
		{Title: "T", Author: "A", ExternalID: ""},
		{Title: "T", Author: "A", ExternalID: "4"},
	}}

	candidates, _ := New(p).Enrich(context.Background(), "T", "A")
	require.Len(t, candidates, 1)
	assert.Equal(t, "4", candidates[0].ExternalID)
}

func TestEnrich_CapsHitsPerProvider(t *testing.T) {
	hits := []providers.Hit{}
	for i := 0; i < 8; i++ {
		hits = append(hits, providers.Hit{Title: "T", Author: "A", ExternalID: string(rune('a' + i))})
	}
	p := &stubProvider{source: models.DataSourceGoogleBooks, hits: hits}

	candidates, _ := New(p).Enrich(context.Background(), "T", "A")
	assert.Len(t, candidates, providers.MaxHits)
}

func TestEnrich_AbsorbsProviderFailures(t *testing.T) {
	failing := &stubProvider{source: models.DataSourceOpenLibrary, err: errors.New("503")}
	panicking := &stubProvider{source: models.DataSourceGoogleBooks, panics: true}
	working := &stubProvider{source: "third", hits: []providers.Hit{{Title: "T", Author: "A", ExternalID: "x"}}}

	candidates, failures := New(failing, panicking, working).Enrich(context.Background(), "T", "A")
	require.Len(t, candidates, 1)
	assert.Equal(t, "third", candidates[0].Source)

	require.Len(t, failures, 2)
	assert.Equal(t, models.DataSourceOpenLibrary, failures[0].Source)
	assert.Equal(t, models.DataSourceGoogleBooks, failures[1].Source)
	assert.Contains(t, failures[1].Error(), "panicked")
	assert.Equal(t, 1, working.calls)
}

func TestEnrich_NoProviders(t *testing.T) {
	candidates, failures := New().Enrich(context.Background(), "T", "A")
	assert.Empty(t, candidates)
	assert.Empty(t, failures)
}
