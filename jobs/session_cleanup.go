package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/vedaro/shopdesk/internal/shared"
)

// SessionCleanupJob prunes session index entries whose Redis keys expired.
type SessionCleanupJob struct {
	Sessions *shared.SessionManager
	Logger   *slog.Logger
}

// NewSessionCleanupJob wires dependencies for the cleanup handler.
func NewSessionCleanupJob(sessions *shared.SessionManager, logger *slog.Logger) *SessionCleanupJob {
	return &SessionCleanupJob{Sessions: sessions, Logger: logger}
}

// Handle processes session cleanup tasks.
func (j *SessionCleanupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Sessions == nil {
		return errors.New("session cleanup: handler not configured")
	}
	removed, err := j.Sessions.CleanupIndex(ctx)
	if err != nil {
		j.logger().Error("cleanup session index", slog.Any("error", err))
		return err
	}
	j.logger().Info("completed session cleanup", slog.Int("removed", removed))
	return nil
}

func (j *SessionCleanupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskSessionCleanup))
	}
	return slog.Default().With(slog.String("job", TaskSessionCleanup))
}
