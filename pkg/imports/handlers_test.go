package imports

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/paparr/paparr/internal/testgen"
	"github.com/paparr/paparr/pkg/binder"
	"github.com/paparr/paparr/pkg/errcodes"
	"github.com/paparr/paparr/pkg/models"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho(t *testing.T, p *Pipeline) *echo.Echo {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	RegisterRoutes(e.Group("/imports"), p)
	return e
}

func doRequest(t *testing.T, e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

type errorBody struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		StatusCode int    `json:"status_code"`
	} `json:"error"`
}

func TestHandlers_ListAndRetrieve(t *testing.T) {
	tc := newTestContext(t)
	e := newTestEcho(t, tc.pipeline)

	job := tc.createJob("Dune - Frank Herbert.epub", testgen.EPUBOptions{})
	require.NoError(t, tc.pipeline.Process(tc.ctx, job))
	tc.createJob("Emma - Jane Austen.epub", testgen.EPUBOptions{})

	rr := doRequest(t, e, http.MethodGet, "/imports?status=awaiting_approval")
	require.Equal(t, http.StatusOK, rr.Code)

	var list struct {
		Jobs  []*models.ImportJob `json:"jobs"`
		Total int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, job.ID, list.Jobs[0].ID)
	require.Len(t, list.Jobs[0].Candidates, 1)

	rr = doRequest(t, e, http.MethodGet, fmt.Sprintf("/imports/%d", job.ID))
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.ImportJob
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.ImportJobStatusAwaitingApproval, got.Status)
}

func TestHandlers_InvalidStatusFilter(t *testing.T) {
	tc := newTestContext(t)
	e := newTestEcho(t, tc.pipeline)

	rr := doRequest(t, e, http.MethodGet, "/imports?status=bogus")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandlers_RetrieveNotFound(t *testing.T) {
	tc := newTestContext(t)
	e := newTestEcho(t, tc.pipeline)

	for _, target := range []string{"/imports/999", "/imports/abc"} {
		rr := doRequest(t, e, http.MethodGet, target)
		assert.Equal(t, http.StatusNotFound, rr.Code, target)

		var body errorBody
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "not_found", body.Error.Code)
	}
}

func TestHandlers_Accept(t *testing.T) {
	tc := newTestContext(t)
	e := newTestEcho(t, tc.pipeline)

	job := tc.createJob("Dune - Frank Herbert.epub", testgen.EPUBOptions{})
	require.NoError(t, tc.pipeline.Process(tc.ctx, job))
	candidate := tc.retrieve(job.ID).Candidates[0]

	rr := doRequest(t, e, http.MethodPost, fmt.Sprintf("/imports/%d/accept/%d", job.ID, candidate.ID+100))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "candidate not found for this job", body.Error.Message)

	rr = doRequest(t, e, http.MethodPost, fmt.Sprintf("/imports/%d/accept/%d", job.ID, candidate.ID))
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.ImportJob
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.ImportJobStatusCompleted, got.Status)
	require.NotNil(t, got.Book)
	assert.Equal(t, "Dune", got.Book.Title)
}

func TestHandlers_Retry(t *testing.T) {
	tc := newTestContext(t)
	e := newTestEcho(t, tc.pipeline)

	job := tc.createJob("NoSeparator.epub", testgen.EPUBOptions{})
	rr := doRequest(t, e, http.MethodPost, fmt.Sprintf("/imports/%d/retry", job.ID))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	require.NoError(t, tc.pipeline.Process(tc.ctx, job))

	rr = doRequest(t, e, http.MethodPost, fmt.Sprintf("/imports/%d/retry", job.ID))
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.ImportJob
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.ImportJobStatusPending, got.Status)
	assert.Empty(t, got.Candidates)
}
