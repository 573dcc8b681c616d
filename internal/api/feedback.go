package api

import (
	"context"
	"fmt"
	"net/url"
)

// TrainerFeedbackRequest is feedback a trainer leaves about a student
type TrainerFeedbackRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	BatchID   string `json:"batchId" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
}

// StudentFeedbackRequest is feedback a student leaves about a trainer
type StudentFeedbackRequest struct {
	TrainerID string `json:"trainerId" validate:"required"`
	BatchID   string `json:"batchId" validate:"required"`
	Comment   string `json:"comment" validate:"required"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
}

// Feedback is a stored feedback entry of either direction. Content holds the
// trainer's text and Comment the student's.
type Feedback struct {
	ID        string   `json:"id"`
	Trainer   *Trainer `json:"trainer,omitempty"`
	Student   *Student `json:"student,omitempty"`
	Batch     *Batch   `json:"batch,omitempty"`
	Content   string   `json:"content,omitempty"`
	Comment   string   `json:"comment,omitempty"`
	Rating    int      `json:"rating"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// Text returns whichever of Content or Comment is set
func (f Feedback) Text() string {
	if f.Content != "" {
		return f.Content
	}
	return f.Comment
}

// TopTrainer is one entry of the top-rated trainers ranking
type TopTrainer struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization,omitempty"`
	AverageRating  float64 `json:"averageRating"`
	FeedbackCount  int     `json:"feedbackCount"`
}

// FeedbackSummary aggregates feedback for one batch
type FeedbackSummary struct {
	BatchID              string  `json:"batchId"`
	AverageTrainerRating float64 `json:"averageTrainerRating"`
	AverageStudentRating float64 `json:"averageStudentRating"`
	StudentFeedbackCount int     `json:"studentFeedbackCount"`
	TrainerFeedbackCount int     `json:"trainerFeedbackCount"`
}

// AddTrainerFeedback records a trainer's feedback about a student
func (c *Client) AddTrainerFeedback(ctx context.Context, trainerID string, req TrainerFeedbackRequest) (*Feedback, error) {
	if trainerID == "" {
		return nil, fmt.Errorf("trainer ID is required")
	}
	if err := c.validateInput(req); err != nil {
		return nil, err
	}
	var fb Feedback
	if err := c.post(ctx, pathf("/feedback/trainer/%s", trainerID), req, &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

func (c *Client) TrainerFeedbackForStudent(ctx context.Context, studentID string) ([]Feedback, error) {
	return listOf[Feedback](ctx, c, pathf("/feedback/trainer/for-student/%s", studentID), nil)
}

func (c *Client) TrainerFeedbackByBatch(ctx context.Context, batchID string) ([]Feedback, error) {
	return listOf[Feedback](ctx, c, pathf("/feedback/trainer/by-batch/%s", batchID), nil)
}

// AverageStudentRating is the mean rating trainers gave a student
func (c *Client) AverageStudentRating(ctx context.Context, studentID string) (float64, error) {
	return c.rating(ctx, pathf("/feedback/student/average-rating/%s", studentID))
}

// AddStudentFeedback records a student's feedback about a trainer
func (c *Client) AddStudentFeedback(ctx context.Context, studentID string, req StudentFeedbackRequest) (*Feedback, error) {
	if studentID == "" {
		return nil, fmt.Errorf("student ID is required")
	}
	if err := c.validateInput(req); err != nil {
		return nil, err
	}
	var fb Feedback
	if err := c.post(ctx, pathf("/feedback/student/%s", studentID), req, &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

func (c *Client) StudentFeedbackForTrainer(ctx context.Context, trainerID string) ([]Feedback, error) {
	return listOf[Feedback](ctx, c, pathf("/feedback/student/for-trainer/%s", trainerID), nil)
}

func (c *Client) StudentFeedbackByBatch(ctx context.Context, batchID string) ([]Feedback, error) {
	return listOf[Feedback](ctx, c, pathf("/feedback/student/by-batch/%s", batchID), nil)
}

// AverageTrainerRating is the mean rating students gave a trainer
func (c *Client) AverageTrainerRating(ctx context.Context, trainerID string) (float64, error) {
	return c.rating(ctx, pathf("/feedback/trainer/average-rating/%s", trainerID))
}

// TopTrainers returns the best rated trainers, highest first. limit <= 0
// uses the backend default of 5.
func (c *Client) TopTrainers(ctx context.Context, limit int) ([]TopTrainer, error) {
	if limit <= 0 {
		limit = 5
	}
	return listOf[TopTrainer](ctx, c, "/feedback/top-trainers", url.Values{"limit": []string{fmt.Sprint(limit)}})
}

func (c *Client) FeedbackSummaryForBatch(ctx context.Context, batchID string) (*FeedbackSummary, error) {
	var s FeedbackSummary
	if err := c.get(ctx, pathf("/feedback/summary/batch/%s", batchID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// rating decodes a bare number; an empty or null body means no ratings yet
func (c *Client) rating(ctx context.Context, path string) (float64, error) {
	var v *float64
	if err := c.get(ctx, path, nil, &v); err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	return *v, nil
}
