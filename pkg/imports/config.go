package imports

import (
	"github.com/paparr/paparr/pkg/config"
	"github.com/paparr/paparr/pkg/enricher"
	"github.com/paparr/paparr/pkg/metadata"
	"github.com/paparr/paparr/pkg/providers"
	"github.com/paparr/paparr/pkg/providers/googlebooks"
	"github.com/paparr/paparr/pkg/providers/openlibrary"
	"github.com/uptrace/bun"
)

// NewPipelineFromConfig builds the production pipeline: the file metadata
// extractor, then Open Library and Google Books in that order.
func NewPipelineFromConfig(db *bun.DB, cfg *config.Config) *Pipeline {
	client := providers.NewHTTPClient(cfg.ProviderTimeout)

	gbOpts := []googlebooks.Option{googlebooks.WithHTTPClient(client)}
	if cfg.GoogleBooksAPIKey != "" {
		gbOpts = append(gbOpts, googlebooks.WithAPIKey(cfg.GoogleBooksAPIKey))
	}

	return NewPipeline(db, PipelineOptions{
		Extractor: metadata.NewExtractor(),
		Enricher: enricher.New(
			openlibrary.New(cfg.OpenLibraryBaseURL, openlibrary.WithHTTPClient(client)),
			googlebooks.New(cfg.GoogleBooksBaseURL, gbOpts...),
		),
		LibraryPath: cfg.LibraryPath,
		Threshold:   cfg.AutoAcceptThreshold,
	})
}
