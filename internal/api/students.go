package api

import (
	"context"
	"fmt"
	"net/url"
)

func (c *Client) ListStudents(ctx context.Context, page, size int) ([]Student, error) {
	return listOf[Student](ctx, c, "/students", pageQuery(page, size))
}

func (c *Client) GetStudent(ctx context.Context, id string) (*Student, error) {
	var s Student
	if err := c.get(ctx, pathf("/students/%s", id), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateStudent creates a student account. Password is required here.
func (c *Client) CreateStudent(ctx context.Context, s Student) (*Student, error) {
	if err := c.validateInput(s); err != nil {
		return nil, err
	}
	if s.Password == "" {
		return nil, fmt.Errorf("invalid request: password is required")
	}
	var created Student
	if err := c.post(ctx, "/students", s, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CurrentStudentProfile returns the profile of the logged-in student
func (c *Client) CurrentStudentProfile(ctx context.Context) (*Student, error) {
	var s Student
	if err := c.get(ctx, "/students/profile", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateStudentProfile(ctx context.Context, s Student) (*Student, error) {
	if err := c.validateInput(s); err != nil {
		return nil, err
	}
	var updated Student
	if err := c.put(ctx, "/students/profile", s, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) AddSkill(ctx context.Context, skill Skill) (*Skill, error) {
	if err := c.validateInput(skill); err != nil {
		return nil, err
	}
	var created Skill
	if err := c.post(ctx, "/students/skills", skill, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) RemoveSkill(ctx context.Context, skillID string) error {
	return c.delete(ctx, pathf("/students/skills/%s", skillID))
}

func (c *Client) AddProject(ctx context.Context, p Project) (*Project, error) {
	if err := c.validateInput(p); err != nil {
		return nil, err
	}
	var created Project
	if err := c.post(ctx, "/students/projects", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateProject(ctx context.Context, projectID string, p Project) (*Project, error) {
	if err := c.validateInput(p); err != nil {
		return nil, err
	}
	var updated Project
	if err := c.put(ctx, pathf("/students/projects/%s", projectID), p, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) RemoveProject(ctx context.Context, projectID string) error {
	return c.delete(ctx, pathf("/students/projects/%s", projectID))
}

// StudentsBySkill finds students that list the given skill
func (c *Client) StudentsBySkill(ctx context.Context, skill string) ([]Student, error) {
	if skill == "" {
		return nil, fmt.Errorf("skill is required")
	}
	return listOf[Student](ctx, c, "/students/by-skill", url.Values{"skill": []string{skill}})
}

// AssignStudentBatch lets the backend place a student in the best-fit batch
// and returns that batch
func (c *Client) AssignStudentBatch(ctx context.Context, studentID string) (*Batch, error) {
	var b Batch
	if err := c.post(ctx, pathf("/students/assign-batch/%s", studentID), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) BatchHistory(ctx context.Context, studentID string) ([]BatchHistory, error) {
	return listOf[BatchHistory](ctx, c, pathf("/students/%s/batch-history", studentID), nil)
}

func (c *Client) RecommendBatches(ctx context.Context, studentID string) ([]BatchRecommendation, error) {
	return listOf[BatchRecommendation](ctx, c, pathf("/students/%s/recommend-batches", studentID), nil)
}
