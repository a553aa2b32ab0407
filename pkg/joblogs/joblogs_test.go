package joblogs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/paparr/paparr/pkg/binder"
	"github.com/paparr/paparr/pkg/errcodes"
	"github.com/paparr/paparr/pkg/models"
	"github.com/paparr/paparr/pkg/testutils"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func createJob(t *testing.T, db *bun.DB) *models.ImportJob {
	t.Helper()
	job := &models.ImportJob{FilePath: "/ingest/a.epub", FileHash: "abc", Status: models.ImportJobStatusPending}
	_, err := db.NewInsert().Model(job).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return job
}

func TestJobLogger_PersistsEachLevel(t *testing.T) {
	ctx := context.Background()
	db := testutils.NewDB(t)
	job := createJob(t, db)
	svc := NewService(db)

	jl := svc.NewJobLogger(ctx, job.ID, logger.NewWithLevel("error"))
	jl.Info("started", logger.Data{"path": job.FilePath})
	jl.Warn("provider down", nil)
	jl.Error("failed", errors.New("boom"), nil)

	logs, err := svc.ListJobLogs(ctx, ListJobLogsOptions{ImportJobID: job.ID})
	require.NoError(t, err)
	require.Len(t, logs, 3)

	assert.Equal(t, models.JobLogLevelInfo, logs[0].Level)
	require.NotNil(t, logs[0].Data)
	assert.Contains(t, *logs[0].Data, `"path":"/ingest/a.epub"`)
	assert.Nil(t, logs[0].StackTrace)

	assert.Equal(t, models.JobLogLevelWarn, logs[1].Level)
	assert.Nil(t, logs[1].Data)

	assert.Equal(t, models.JobLogLevelError, logs[2].Level)
	require.NotNil(t, logs[2].Data)
	assert.Contains(t, *logs[2].Data, "boom")
	require.NotNil(t, logs[2].StackTrace)
}

func TestJobLogger_PersistsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	db := testutils.NewDB(t)
	job := createJob(t, db)
	svc := NewService(db)

	jl := svc.NewJobLogger(ctx, job.ID, logger.NewWithLevel("error"))
	cancel()
	jl.Info("still recorded", nil)

	logs, err := svc.ListJobLogs(context.Background(), ListJobLogsOptions{ImportJobID: job.ID})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestListJobLogs_Filters(t *testing.T) {
	ctx := context.Background()
	db := testutils.NewDB(t)
	job := createJob(t, db)
	svc := NewService(db)

	jl := svc.NewJobLogger(ctx, job.ID, logger.NewWithLevel("error"))
	jl.Info("one", nil)
	jl.Warn("two", nil)
	jl.Info("three", nil)

	all, err := svc.ListJobLogs(ctx, ListJobLogsOptions{ImportJobID: job.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)

	after, err := svc.ListJobLogs(ctx, ListJobLogsOptions{ImportJobID: job.ID, AfterID: &all[0].ID})
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, "two", after[0].Message)

	warns, err := svc.ListJobLogs(ctx, ListJobLogsOptions{ImportJobID: job.ID, Levels: []string{models.JobLogLevelWarn}})
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "two", warns[0].Message)
}

func TestTruncateMiddle(t *testing.T) {
	assert.Equal(t, "short", truncateMiddle("short", 10))

	long := strings.Repeat("a", 50) + strings.Repeat("b", 50)
	got := truncateMiddle(long, 25)
	assert.Equal(t, strings.Repeat("a", 10)+" ... "+strings.Repeat("b", 10), got)
}

func TestListHandler(t *testing.T) {
	ctx := context.Background()
	db := testutils.NewDB(t)
	job := createJob(t, db)
	svc := NewService(db)
	svc.NewJobLogger(ctx, job.ID, logger.NewWithLevel("error")).Warn("provider down", nil)

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	RegisterRoutes(e.Group("/imports"), db)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/imports/%d/logs?level=warn", job.ID), nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Logs []*models.JobLog `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Logs, 1)
	assert.Equal(t, "provider down", resp.Logs[0].Message)

	req = httptest.NewRequest(http.MethodGet, "/imports/999/logs", nil)
	rr = httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/imports/%d/logs?level=fatal", job.ID), nil)
	rr = httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
