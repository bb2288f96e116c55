package reporter

import (
	"context"
	"errors"
	"testing"
	"time"

	"studytimer/backend/internal/model"
	"studytimer/backend/internal/timer"
)

type fixedIdentity string

func (f fixedIdentity) CurrentUserID(context.Context) string {
	return string(f)
}

type captureSink struct {
	sessions []*model.StudySession
	err      error
}

func (s *captureSink) InsertSession(_ context.Context, session *model.StudySession) error {
	if s.err != nil {
		return s.err
	}
	s.sessions = append(s.sessions, session)
	return nil
}

func TestReportBuildsSessionRecord(t *testing.T) {
	sink := &captureSink{}
	r := New(fixedIdentity("user-1"), sink)

	// A Wednesday, local time.
	completedAt := time.Date(2026, 3, 4, 14, 30, 0, 0, time.Local)
	r.Report(context.Background(), timer.Completion{
		Mode:            model.ModeFocus,
		DurationSeconds: 1500,
		CompletedAt:     completedAt,
	}, "algebra homework")

	if len(sink.sessions) != 1 {
		t.Fatalf("expected 1 session written, got %d", len(sink.sessions))
	}
	got := sink.sessions[0]
	if got.UserID != "user-1" {
		t.Fatalf("unexpected owner %q", got.UserID)
	}
	if got.Mode != model.ModeFocus {
		t.Fatalf("unexpected mode %q", got.Mode)
	}
	if got.DurationMinutes != 25 {
		t.Fatalf("expected 25 minutes, got %d", got.DurationMinutes)
	}
	if got.DayOfWeek != int(time.Wednesday) {
		t.Fatalf("expected day %d, got %d", int(time.Wednesday), got.DayOfWeek)
	}
	if got.TaskLabel == nil || *got.TaskLabel != "algebra homework" {
		t.Fatalf("unexpected task label %v", got.TaskLabel)
	}
	if got.ID == "" {
		t.Fatal("expected a generated id")
	}
}

func TestReportSkipsAnonymousSessions(t *testing.T) {
	sink := &captureSink{}
	r := New(fixedIdentity(""), sink)

	r.Report(context.Background(), timer.Completion{
		Mode:            model.ModeFocus,
		DurationSeconds: 1500,
		CompletedAt:     time.Now(),
	}, "")

	if len(sink.sessions) != 0 {
		t.Fatalf("expected no write for anonymous session, got %d", len(sink.sessions))
	}
}

func TestReportSwallowsSinkErrors(t *testing.T) {
	sink := &captureSink{err: errors.New("disk full")}
	r := New(fixedIdentity("user-1"), sink)

	// Must not panic or propagate; the timer state is the source of
	// truth and a lost record is acceptable.
	r.Report(context.Background(), timer.Completion{
		Mode:            model.ModeFocus,
		DurationSeconds: 1500,
		CompletedAt:     time.Now(),
	}, "")
}

func TestReportOmitsEmptyTaskLabel(t *testing.T) {
	sink := &captureSink{}
	r := New(fixedIdentity("user-1"), sink)

	r.Report(context.Background(), timer.Completion{
		Mode:            model.ModeFocus,
		DurationSeconds: 1500,
		CompletedAt:     time.Now(),
	}, "")

	if len(sink.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sink.sessions))
	}
	if sink.sessions[0].TaskLabel != nil {
		t.Fatal("expected nil task label when none was set")
	}
}
