// Package reporter turns timer completions into persisted study
// sessions. Writes are best effort: a failed insert is logged and the
// timer is never blocked or rolled back.
package reporter

import (
	"context"
	"log"

	"github.com/google/uuid"

	"studytimer/backend/internal/model"
	"studytimer/backend/internal/timer"
)

// IdentityProvider resolves the identity owning the current timer
// session. An empty id means anonymous usage, which is an expected
// state, not an error.
type IdentityProvider interface {
	CurrentUserID(ctx context.Context) string
}

// SessionSink receives completed session records.
type SessionSink interface {
	InsertSession(ctx context.Context, session *model.StudySession) error
}

type Reporter struct {
	identity IdentityProvider
	sink     SessionSink
}

func New(identity IdentityProvider, sink SessionSink) *Reporter {
	return &Reporter{identity: identity, sink: sink}
}

// Report builds a session record for a completion and hands it to the
// sink. Anonymous sessions are skipped; sink failures are swallowed
// after logging.
func (r *Reporter) Report(ctx context.Context, completion timer.Completion, taskLabel string) {
	ownerID := r.identity.CurrentUserID(ctx)
	if ownerID == "" {
		return
	}

	session := model.StudySession{
		ID:              uuid.NewString(),
		UserID:          ownerID,
		Mode:            completion.Mode,
		DurationMinutes: completion.DurationSeconds / 60,
		DayOfWeek:       int(completion.CompletedAt.Local().Weekday()),
		CompletedAt:     completion.CompletedAt,
	}
	if taskLabel != "" {
		session.TaskLabel = &taskLabel
	}

	if err := r.sink.InsertSession(ctx, &session); err != nil {
		log.Printf("record study session for %s: %v", ownerID, err)
	}
}
