package imports

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/paparr/paparr/internal/testgen"
	"github.com/paparr/paparr/pkg/enricher"
	"github.com/paparr/paparr/pkg/fingerprint"
	"github.com/paparr/paparr/pkg/metadata"
	"github.com/paparr/paparr/pkg/models"
	"github.com/paparr/paparr/pkg/testutils"
	"github.com/robinjoseph08/golib/logger"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type stubEnricher struct {
	candidates []enricher.Candidate
	failures   []*enricher.ProviderError
	calls      int
}

func (s *stubEnricher) Enrich(_ context.Context, _, _ string) ([]enricher.Candidate, []*enricher.ProviderError) {
	s.calls++
	return s.candidates, s.failures
}

type testContext struct {
	t          *testing.T
	ctx        context.Context
	db         *bun.DB
	pipeline   *Pipeline
	enricher   *stubEnricher
	ingestDir  string
	libraryDir string
}

func newTestContext(t *testing.T) *testContext {
	t.Helper()

	db := testutils.NewDB(t)
	root := t.TempDir()
	tc := &testContext{
		t:          t,
		ctx:        logger.NewWithLevel("error").WithContext(context.Background()),
		db:         db,
		enricher:   &stubEnricher{},
		ingestDir:  filepath.Join(root, "ingest"),
		libraryDir: filepath.Join(root, "library"),
	}
	tc.pipeline = NewPipeline(db, PipelineOptions{
		Extractor:   metadata.NewExtractor(),
		Enricher:    tc.enricher,
		LibraryPath: tc.libraryDir,
	})
	return tc
}

// createJob writes an EPUB into the ingest directory and creates a pending job
// for it. Fixtures without a body get the filename as body so their hashes
// differ.
func (tc *testContext) createJob(filename string, opts testgen.EPUBOptions) *models.ImportJob {
	tc.t.Helper()

	if opts.Body == "" {
		opts.Body = filename
	}
	path := testgen.GenerateEPUB(tc.t, tc.ingestDir, filename, opts)
	hash, err := fingerprint.File(path)
	require.NoError(tc.t, err)

	job := &models.ImportJob{FilePath: path, FileHash: hash}
	require.NoError(tc.t, tc.pipeline.Service().CreateImportJob(tc.ctx, job))
	return job
}

func (tc *testContext) retrieve(id int) *models.ImportJob {
	tc.t.Helper()
	job, err := tc.pipeline.RetrieveJob(tc.ctx, id)
	require.NoError(tc.t, err)
	return job
}

func (tc *testContext) countBooks() int {
	tc.t.Helper()
	n, err := tc.db.NewSelect().Model((*models.Book)(nil)).Count(tc.ctx)
	require.NoError(tc.t, err)
	return n
}
