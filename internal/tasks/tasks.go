package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Fans out into one task per report
	TypeReportsRefresh = "reports:refresh"

	TypeReportTopTrainers   = "reports:top_trainers"
	TypeReportBatchFeedback = "reports:batch_feedback"
)

// Enqueuer is the part of *asynq.Client the portal and workers use
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskPayload is the common payload for all tasks
type TaskPayload struct {
	BatchID     string `json:"batch_id,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
}

func newTask(typename string, payload TaskPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(typename, data), nil
}

// NewReportsRefreshTask creates a task that regenerates every report.
// requestedBy is the user ID for manual refreshes, empty for scheduled ones.
func NewReportsRefreshTask(requestedBy string) (*asynq.Task, error) {
	return newTask(TypeReportsRefresh, TaskPayload{RequestedBy: requestedBy})
}

// NewTopTrainersTask creates a task that snapshots the top trainer ranking
func NewTopTrainersTask(limit int) (*asynq.Task, error) {
	return newTask(TypeReportTopTrainers, TaskPayload{Limit: limit})
}

// NewBatchFeedbackTask creates a task that snapshots one batch's feedback summary
func NewBatchFeedbackTask(batchID string) (*asynq.Task, error) {
	if batchID == "" {
		return nil, fmt.Errorf("batch ID is required")
	}
	return newTask(TypeReportBatchFeedback, TaskPayload{BatchID: batchID})
}

// ParseTaskPayload parses task payload from Asynq task
func ParseTaskPayload(task *asynq.Task) (TaskPayload, error) {
	var payload TaskPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
