package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// InterviewersJobArgs carries the interviewer set matched for a new
// verification request. The job is inserted in the same transaction as
// the request and its charge, so a rolled-back charge never notifies
// anyone.
type InterviewersJobArgs struct {
	RequestID      uuid.UUID   `json:"request_id"`
	InterviewerIDs []uuid.UUID `json:"interviewer_ids"`
	Skills         []string    `json:"skills"`
}

func (InterviewersJobArgs) Kind() string { return "notify_interviewers" }

// Notifier delivers a single interviewer notification. Delivery is best
// effort and asynchronous; the ledger core does not await it.
type Notifier interface {
	NotifyInterviewer(ctx context.Context, interviewerID, requestID uuid.UUID, skills []string) error
}

// LogNotifier is the default Notifier: it records the notification and
// does nothing else. A mail-backed implementation can replace it without
// touching the worker.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) NotifyInterviewer(_ context.Context, interviewerID, requestID uuid.UUID, skills []string) error {
	n.Logger.Info("interviewer notified", "interviewer_id", interviewerID, "request_id", requestID, "skills", skills)
	return nil
}

// InterviewersWorker fans one job out to per-interviewer notifications.
// Individual failures are collected so river retries the job; already
// delivered notifications may repeat, which the Notifier must tolerate.
type InterviewersWorker struct {
	river.WorkerDefaults[InterviewersJobArgs]
	notifier Notifier
	logger   *slog.Logger
}

func NewInterviewersWorker(notifier Notifier, logger *slog.Logger) *InterviewersWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &InterviewersWorker{notifier: notifier, logger: logger}
}

func (w *InterviewersWorker) Work(ctx context.Context, job *river.Job[InterviewersJobArgs]) error {
	args := job.Args
	var errs []error
	for _, id := range args.InterviewerIDs {
		if err := w.notifier.NotifyInterviewer(ctx, id, args.RequestID, args.Skills); err != nil {
			w.logger.Error("notify interviewer failed", "interviewer_id", id, "request_id", args.RequestID, "error", err)
			errs = append(errs, fmt.Errorf("interviewer %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
