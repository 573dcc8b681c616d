package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ListBatches returns one page of batches
func (c *Client) ListBatches(ctx context.Context, page, size int) ([]Batch, error) {
	return listOf[Batch](ctx, c, "/batches", pageQuery(page, size))
}

// GetBatch returns a batch by ID
func (c *Client) GetBatch(ctx context.Context, id string) (*Batch, error) {
	var batch Batch
	if err := c.get(ctx, pathf("/batches/%s", id), nil, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// CreateBatch creates a batch
func (c *Client) CreateBatch(ctx context.Context, batch Batch) (*Batch, error) {
	if err := c.validateInput(batch); err != nil {
		return nil, err
	}
	var created Batch
	if err := c.post(ctx, "/batches", batch, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateBatch replaces a batch
func (c *Client) UpdateBatch(ctx context.Context, id string, batch Batch) (*Batch, error) {
	if err := c.validateInput(batch); err != nil {
		return nil, err
	}
	var updated Batch
	if err := c.put(ctx, pathf("/batches/%s", id), batch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteBatch deletes a batch
func (c *Client) DeleteBatch(ctx context.Context, id string) error {
	return c.delete(ctx, pathf("/batches/%s", id))
}

// AddStudentToBatch enrols a student
func (c *Client) AddStudentToBatch(ctx context.Context, batchID, studentID string) error {
	return c.post(ctx, pathf("/batches/%s/students/%s", batchID, studentID), nil, nil)
}

// RemoveStudentFromBatch drops a student from a batch
func (c *Client) RemoveStudentFromBatch(ctx context.Context, batchID, studentID string) error {
	return c.delete(ctx, pathf("/batches/%s/students/%s", batchID, studentID))
}

// UpdateBatchSyllabus replaces a batch syllabus
func (c *Client) UpdateBatchSyllabus(ctx context.Context, batchID string, syllabus Syllabus) (*Batch, error) {
	if err := c.validateInput(syllabus); err != nil {
		return nil, err
	}
	var updated Batch
	if err := c.put(ctx, pathf("/batches/%s/syllabus", batchID), syllabus, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListBatchesByStatus filters batches by status
func (c *Client) ListBatchesByStatus(ctx context.Context, status string) ([]Batch, error) {
	if status == "" {
		return nil, fmt.Errorf("status is required")
	}
	return listOf[Batch](ctx, c, "/batches/by-status", url.Values{"status": []string{status}})
}

// AssignTrainer assigns a trainer to a batch
func (c *Client) AssignTrainer(ctx context.Context, trainerID, batchID string) error {
	if trainerID == "" || batchID == "" {
		return fmt.Errorf("trainer and batch IDs are required")
	}
	q := url.Values{"trainerId": []string{trainerID}, "batchId": []string{batchID}}
	return c.do(ctx, request{method: http.MethodPost, path: "/batches/assign-trainer", query: q}, nil)
}

// BatchTrainers lists the trainers of a batch
func (c *Client) BatchTrainers(ctx context.Context, batchID string) ([]Trainer, error) {
	return listOf[Trainer](ctx, c, pathf("/batches/%s/trainers", batchID), nil)
}

// BatchCompanies lists the companies mapped to a batch
func (c *Client) BatchCompanies(ctx context.Context, batchID string) ([]Company, error) {
	return listOf[Company](ctx, c, pathf("/batches/%s/companies", batchID), nil)
}

// listOf fetches a list endpoint that may answer with an array or a page
func listOf[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := c.get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}
