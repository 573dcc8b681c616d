package api

import (
	"context"
	"fmt"
)

// Progress statuses accepted by the backend
const (
	ProgressNotStarted = "NOT_STARTED"
	ProgressInProgress = "IN_PROGRESS"
	ProgressCompleted  = "COMPLETED"
)

// ProgressUpdate records a student's status on one syllabus topic
type ProgressUpdate struct {
	StudentID string `json:"studentId" validate:"required"`
	BatchID   string `json:"batchId" validate:"required"`
	TopicID   string `json:"topicId" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=NOT_STARTED IN_PROGRESS COMPLETED"`
	Feedback  string `json:"feedback,omitempty"`
}

// TrainingProgress is the stored progress of one topic
type TrainingProgress struct {
	ID        string         `json:"id"`
	Topic     *SyllabusTopic `json:"topic,omitempty"`
	Status    string         `json:"status"`
	Feedback  string         `json:"feedback,omitempty"`
	UpdatedAt string         `json:"updatedAt,omitempty"`
}

// UpdateProgress records progress on behalf of a trainer
func (c *Client) UpdateProgress(ctx context.Context, trainerID string, update ProgressUpdate) (*TrainingProgress, error) {
	if trainerID == "" {
		return nil, fmt.Errorf("trainer ID is required")
	}
	if err := c.validateInput(update); err != nil {
		return nil, err
	}
	var p TrainingProgress
	if err := c.post(ctx, pathf("/progress/trainer/%s", trainerID), update, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// StudentProgress lists a student's topic progress within a batch
func (c *Client) StudentProgress(ctx context.Context, studentID, batchID string) ([]TrainingProgress, error) {
	return listOf[TrainingProgress](ctx, c, pathf("/progress/student/%s/batch/%s", studentID, batchID), nil)
}
