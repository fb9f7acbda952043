package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vedaro/shopdesk/internal/history"
	"github.com/vedaro/shopdesk/internal/shared"
)

// HistoryWarmupJob refreshes the invoice-items cache for every staff member
// holding a live session, so the counter UI never waits on the backend.
type HistoryWarmupJob struct {
	History  *history.Service
	Sessions *shared.SessionManager
	Logger   *slog.Logger
}

// NewHistoryWarmupJob wires dependencies for the warmup handler.
func NewHistoryWarmupJob(historySvc *history.Service, sessions *shared.SessionManager, logger *slog.Logger) *HistoryWarmupJob {
	return &HistoryWarmupJob{History: historySvc, Sessions: sessions, Logger: logger}
}

// Handle processes history warmup tasks.
func (j *HistoryWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.History == nil || j.Sessions == nil {
		return errors.New("history warmup: handler not configured")
	}
	var payload HistoryWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	logger := j.logger()
	logger.Info("starting history warmup")

	active, err := j.Sessions.ListActive(ctx)
	if err != nil {
		logger.Error("list active sessions", slog.Any("error", err))
		return err
	}

	warmed := 0
	var lastErr error
	for _, sess := range active {
		if payload.StaffID != "" && payload.StaffID != sess.StaffID {
			continue
		}
		// Each warmup runs with the owning session's backend token.
		sessCtx, cancel := context.WithTimeout(shared.ContextWithToken(ctx, sess.Token), 20*time.Second)
		_, err := j.History.Warm(sessCtx, sess.StaffID)
		cancel()
		if err != nil {
			lastErr = err
			logger.Warn("warm staff history", slog.String("staff_id", sess.StaffID), slog.Any("error", err))
			continue
		}
		warmed++
	}

	logger.Info("completed history warmup", slog.Int("sessions", len(active)), slog.Int("warmed", warmed))
	return lastErr
}

func (j *HistoryWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskHistoryWarmup))
	}
	return slog.Default().With(slog.String("job", TaskHistoryWarmup))
}
