package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/models"
	"github.com/skillbridge-dev/skillbridge/internal/session"
	"github.com/skillbridge-dev/skillbridge/internal/tasks"
)

// refreshBatchPageSize bounds how many batches one refresh fans out to
const refreshBatchPageSize = 100

// Reporter pulls admin reports from the backend as the service account and
// stores them as snapshots
type Reporter struct {
	db       *gorm.DB
	client   *api.Client
	resolver *session.Resolver
	email    string
	password string
	topLimit int
	logger   zerolog.Logger
}

// NewReporter wires a reporter. The client must use the same credential
// store the resolver's remote writes to.
func NewReporter(db *gorm.DB, client *api.Client, resolver *session.Resolver, email, password string, topLimit int, logger zerolog.Logger) *Reporter {
	if topLimit <= 0 {
		topLimit = 5
	}
	return &Reporter{
		db:       db,
		client:   client,
		resolver: resolver,
		email:    email,
		password: password,
		topLimit: topLimit,
		logger:   logger.With().Str("component", "reports").Logger(),
	}
}

// ensureAdmin makes sure the service account holds an ADMIN session,
// logging in when the cached one is gone
func (r *Reporter) ensureAdmin(ctx context.Context) error {
	res := r.resolver.EnsureSession(ctx)
	if !res.Authenticated {
		login := r.resolver.Login(ctx, r.email, r.password)
		if !login.Success {
			return fmt.Errorf("service account login failed: %s", login.Message)
		}
		res = session.Result{Authenticated: true, User: login.User}
	}

	if session.Decide(res, models.RoleAdmin) != session.Authorized {
		r.resolver.Invalidate(ctx)
		return fmt.Errorf("service account %s is not an admin (role %s)", r.email, res.User.Role)
	}
	return nil
}

// HandleRefresh enqueues one task per report
func (r *Reporter) HandleRefresh(ctx context.Context, t *asynq.Task, client tasks.Enqueuer) error {
	payload, err := tasks.ParseTaskPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}
	if err := r.ensureAdmin(ctx); err != nil {
		return err
	}

	batches, err := r.client.ListBatches(ctx, 0, refreshBatchPageSize)
	if err != nil {
		return fmt.Errorf("failed to list batches: %w", err)
	}

	topTask, err := tasks.NewTopTrainersTask(r.topLimit)
	if err != nil {
		return err
	}
	if _, err := client.EnqueueContext(ctx, topTask, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("failed to enqueue top trainers task: %w", err)
	}

	enqueued := 1
	for _, b := range batches {
		if b.ID == "" {
			continue
		}
		task, err := tasks.NewBatchFeedbackTask(b.ID)
		if err != nil {
			return err
		}
		if _, err := client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
			r.logger.Error().Err(err).Str("batch_id", b.ID).Msg("Failed to enqueue batch feedback task")
			continue
		}
		enqueued++
	}

	r.logger.Info().
		Int("tasks", enqueued).
		Str("requested_by", payload.RequestedBy).
		Msg("Report refresh enqueued")
	return nil
}

// HandleTopTrainers snapshots the top trainer ranking
func (r *Reporter) HandleTopTrainers(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseTaskPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}
	limit := payload.Limit
	if limit <= 0 {
		limit = r.topLimit
	}
	if err := r.ensureAdmin(ctx); err != nil {
		return err
	}

	top, err := r.client.TopTrainers(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch top trainers: %w", err)
	}
	return r.saveSnapshot(ctx, models.ReportTopTrainers, "", top)
}

// HandleBatchFeedback snapshots one batch's feedback summary
func (r *Reporter) HandleBatchFeedback(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseTaskPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}
	if payload.BatchID == "" {
		return fmt.Errorf("batch ID is required: %w", asynq.SkipRetry)
	}
	if err := r.ensureAdmin(ctx); err != nil {
		return err
	}

	summary, err := r.client.FeedbackSummaryForBatch(ctx, payload.BatchID)
	if err != nil {
		if api.IsStatus(err, 404) {
			r.logger.Warn().Str("batch_id", payload.BatchID).Msg("Batch no longer exists, skipping report")
			return nil
		}
		return fmt.Errorf("failed to fetch feedback summary: %w", err)
	}
	return r.saveSnapshot(ctx, models.ReportBatchFeedback, payload.BatchID, summary)
}

func (r *Reporter) saveSnapshot(ctx context.Context, kind, subjectID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	snapshot := models.ReportSnapshot{
		Kind:        kind,
		SubjectID:   subjectID,
		Payload:     string(data),
		GeneratedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&snapshot).Error; err != nil {
		return fmt.Errorf("failed to save report snapshot: %w", err)
	}

	r.logger.Info().
		Str("kind", kind).
		Str("subject_id", subjectID).
		Str("snapshot_id", snapshot.ID).
		Msg("Report snapshot saved")
	return nil
}

// Register installs the report handlers on mux
func (r *Reporter) Register(mux *asynq.ServeMux, client tasks.Enqueuer) {
	mux.HandleFunc(tasks.TypeReportsRefresh, func(ctx context.Context, t *asynq.Task) error {
		return r.HandleRefresh(ctx, t, client)
	})
	mux.HandleFunc(tasks.TypeReportTopTrainers, r.HandleTopTrainers)
	mux.HandleFunc(tasks.TypeReportBatchFeedback, r.HandleBatchFeedback)
}
