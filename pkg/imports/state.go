package imports

import (
	"fmt"

	"github.com/paparr/paparr/pkg/errcodes"
	"github.com/paparr/paparr/pkg/models"
)

// Event is something that moves an import job between statuses.
type Event string

const (
	EventStart    Event = "start"
	EventFail     Event = "fail"
	EventAwait    Event = "await"
	EventComplete Event = "complete"
	EventRetry    Event = "retry"
)

// transitions maps each event to the statuses it may fire from and the status
// it leads to.
var transitions = map[Event]struct {
	from []string
	to   string
}{
	EventStart: {
		from: []string{models.ImportJobStatusPending},
		to:   models.ImportJobStatusProcessing,
	},
	EventFail: {
		from: []string{models.ImportJobStatusProcessing, models.ImportJobStatusAwaitingApproval},
		to:   models.ImportJobStatusFailed,
	},
	EventAwait: {
		from: []string{models.ImportJobStatusProcessing},
		to:   models.ImportJobStatusAwaitingApproval,
	},
	EventComplete: {
		from: []string{models.ImportJobStatusProcessing, models.ImportJobStatusAwaitingApproval},
		to:   models.ImportJobStatusCompleted,
	},
	EventRetry: {
		from: []string{models.ImportJobStatusFailed},
		to:   models.ImportJobStatusPending,
	},
}

// Transition returns the status a job in status from moves to when event
// fires. Illegal combinations return a conflict error.
func Transition(from string, event Event) (string, error) {
	t, ok := transitions[event]
	if !ok {
		return "", errcodes.BadRequest(fmt.Sprintf("unknown import event %q", event))
	}
	for _, f := range t.from {
		if f == from {
			return t.to, nil
		}
	}
	return "", errcodes.Conflict(fmt.Sprintf("cannot %s an import job that is %s", event, from))
}
