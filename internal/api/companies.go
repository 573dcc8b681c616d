package api

import (
	"context"
	"fmt"
	"net/url"
)

func (c *Client) ListCompanies(ctx context.Context, page, size int) ([]Company, error) {
	return listOf[Company](ctx, c, "/companies", pageQuery(page, size))
}

func (c *Client) GetCompany(ctx context.Context, id string) (*Company, error) {
	var co Company
	if err := c.get(ctx, pathf("/companies/%s", id), nil, &co); err != nil {
		return nil, err
	}
	return &co, nil
}

func (c *Client) CreateCompany(ctx context.Context, co Company) (*Company, error) {
	if err := c.validateInput(co); err != nil {
		return nil, err
	}
	var created Company
	if err := c.post(ctx, "/companies", co, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateCompany(ctx context.Context, id string, co Company) (*Company, error) {
	if err := c.validateInput(co); err != nil {
		return nil, err
	}
	var updated Company
	if err := c.put(ctx, pathf("/companies/%s", id), co, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteCompany(ctx context.Context, id string) error {
	return c.delete(ctx, pathf("/companies/%s", id))
}

func (c *Client) CompaniesByDomain(ctx context.Context, domain string) ([]Company, error) {
	if domain == "" {
		return nil, fmt.Errorf("domain is required")
	}
	return listOf[Company](ctx, c, "/companies/by-domain", url.Values{"domain": []string{domain}})
}

// HiringProcess returns a company's hiring rounds
func (c *Client) HiringProcess(ctx context.Context, companyID string) ([]HiringRound, error) {
	return listOf[HiringRound](ctx, c, pathf("/companies/%s/hiring-process", companyID), nil)
}

// ListColleges returns all registered colleges
func (c *Client) ListColleges(ctx context.Context) ([]College, error) {
	return listOf[College](ctx, c, "/colleges", nil)
}
