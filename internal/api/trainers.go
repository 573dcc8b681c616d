package api

import "context"

func (c *Client) ListTrainers(ctx context.Context, page, size int) ([]Trainer, error) {
	return listOf[Trainer](ctx, c, "/trainers", pageQuery(page, size))
}

func (c *Client) GetTrainer(ctx context.Context, id string) (*Trainer, error) {
	var t Trainer
	if err := c.get(ctx, pathf("/trainers/%s", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) CreateTrainer(ctx context.Context, t Trainer) (*Trainer, error) {
	if err := c.validateInput(t); err != nil {
		return nil, err
	}
	var created Trainer
	if err := c.post(ctx, "/trainers", t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateTrainer(ctx context.Context, id string, t Trainer) (*Trainer, error) {
	if err := c.validateInput(t); err != nil {
		return nil, err
	}
	var updated Trainer
	if err := c.put(ctx, pathf("/trainers/%s", id), t, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteTrainer(ctx context.Context, id string) error {
	return c.delete(ctx, pathf("/trainers/%s", id))
}

// TrainerBatches lists the batches a trainer teaches
func (c *Client) TrainerBatches(ctx context.Context, trainerID string) ([]Batch, error) {
	return listOf[Batch](ctx, c, pathf("/trainers/%s/batches", trainerID), nil)
}

// TrainerStudents lists the students across a trainer's batches
func (c *Client) TrainerStudents(ctx context.Context, trainerID string) ([]Student, error) {
	return listOf[Student](ctx, c, pathf("/trainers/%s/students", trainerID), nil)
}
