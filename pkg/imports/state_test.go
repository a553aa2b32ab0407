package imports

import (
	"net/http"
	"testing"

	"github.com/paparr/paparr/pkg/errcodes"
	"github.com/paparr/paparr/pkg/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_Legal(t *testing.T) {
	tests := []struct {
		from  string
		event Event
		to    string
	}{
		{models.ImportJobStatusPending, EventStart, models.ImportJobStatusProcessing},
		{models.ImportJobStatusProcessing, EventFail, models.ImportJobStatusFailed},
		{models.ImportJobStatusAwaitingApproval, EventFail, models.ImportJobStatusFailed},
		{models.ImportJobStatusProcessing, EventAwait, models.ImportJobStatusAwaitingApproval},
		{models.ImportJobStatusProcessing, EventComplete, models.ImportJobStatusCompleted},
		{models.ImportJobStatusAwaitingApproval, EventComplete, models.ImportJobStatusCompleted},
		{models.ImportJobStatusFailed, EventRetry, models.ImportJobStatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.event)+" from "+tt.from, func(t *testing.T) {
			to, err := Transition(tt.from, tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.to, to)
		})
	}
}

func TestTransition_Illegal(t *testing.T) {
	legal := map[string]map[Event]bool{}
	for event, tr := range transitions {
		for _, from := range tr.from {
			if legal[from] == nil {
				legal[from] = map[Event]bool{}
			}
			legal[from][event] = true
		}
	}

	events := []Event{EventStart, EventFail, EventAwait, EventComplete, EventRetry}
	for _, from := range models.ImportJobStatuses {
		for _, event := range events {
			if legal[from][event] {
				continue
			}
			_, err := Transition(from, event)
			require.Error(t, err, "%s from %s", event, from)

			var e *errcodes.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, http.StatusConflict, e.HTTPCode)
		}
	}
}

func TestTransition_CompletedIsTerminal(t *testing.T) {
	for _, event := range []Event{EventStart, EventFail, EventAwait, EventComplete, EventRetry} {
		_, err := Transition(models.ImportJobStatusCompleted, event)
		assert.Error(t, err)
	}
}

func TestTransition_UnknownEvent(t *testing.T) {
	_, err := Transition(models.ImportJobStatusPending, Event("explode"))
	require.Error(t, err)
}
