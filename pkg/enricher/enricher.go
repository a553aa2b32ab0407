// Package enricher turns external provider hits into scored metadata
// candidates.
package enricher

import (
	"context"
	"fmt"

	"github.com/paparr/paparr/pkg/providers"
	"github.com/paparr/paparr/pkg/scoring"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// Candidate is a scored provider hit that has not been persisted yet.
type Candidate struct {
	Title      string
	Author     string
	Source     string
	ExternalID string
	Score      float64
}

// ProviderError records a provider that was skipped because its lookup
// failed.
type ProviderError struct {
	Source string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s lookup failed: %v", e.Source, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

type Enricher struct {
	providers []providers.Provider
}

// New returns an Enricher that queries the providers in the given order.
func New(p ...providers.Provider) *Enricher {
	return &Enricher{providers: p}
}

// Enrich asks every provider for matches and scores each usable hit against
// the reference title and author. A failing provider contributes no
// candidates and is reported in the returned failures; it never stops the
// remaining providers. Hits missing a title, author, or id are dropped.
func (e *Enricher) Enrich(ctx context.Context, title, author string) ([]Candidate, []*ProviderError) {
	log := logger.FromContext(ctx)

	candidates := []Candidate{}
	failures := []*ProviderError{}
	for _, p := range e.providers {
		hits, err := lookup(ctx, p, title, author)
		if err != nil {
			log.Err(err).Warn("provider lookup failed", logger.Data{"source": p.Source()})
			failures = append(failures, &ProviderError{Source: p.Source(), Err: err})
			continue
		}

		if len(hits) > providers.MaxHits {
			hits = hits[:providers.MaxHits]
		}
		kept := 0
		for _, hit := range hits {
			if hit.Title == "" || hit.Author == "" || hit.ExternalID == "" {
				continue
			}
			candidates = append(candidates, Candidate{
				Title:      hit.Title,
				Author:     hit.Author,
				Source:     p.Source(),
				ExternalID: hit.ExternalID,
				Score:      scoring.Score(title, author, hit.Title, hit.Author),
			})
			kept++
		}
		log.Debug("provider lookup finished", logger.Data{"source": p.Source(), "hits": len(hits), "kept": kept})
	}
	return candidates, failures
}

func lookup(ctx context.Context, p providers.Provider, title, author string) (hits []providers.Hit, err error) {
	defer func() {
		if r := recover(); r != nil {
			hits, err = nil, errors.Errorf("provider panicked: %v", r)
		}
	}()
	return p.Lookup(ctx, title, author)
}
