package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillbridge-dev/skillbridge/internal/models"
	"github.com/skillbridge-dev/skillbridge/internal/session"
)

var _ session.Remote = (*Client)(nil)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a plain account with an explicit role
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty"`
}

// AdminRegistrationRequest registers a college together with its first admin
type AdminRegistrationRequest struct {
	AdminName           string `json:"adminName" validate:"required"`
	AdminEmail          string `json:"adminEmail" validate:"required,email"`
	Password            string `json:"password" validate:"required,min=6"`
	PhoneNumber         string `json:"phoneNumber,omitempty"`
	RoleTitle           string `json:"roleTitle,omitempty"`
	CollegeName         string `json:"collegeName" validate:"required"`
	CollegeDomain       string `json:"collegeDomain" validate:"required"`
	CollegeWebsite      string `json:"collegeWebsite,omitempty" validate:"omitempty,url"`
	CollegeContactEmail string `json:"collegeContactEmail,omitempty" validate:"omitempty,email"`
	CollegeContactPhone string `json:"collegeContactPhone,omitempty"`
	CollegeAddress      string `json:"collegeAddress,omitempty"`
}

// StudentRegistrationRequest registers a student under an existing college
type StudentRegistrationRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	CollegeID      string `json:"collegeId" validate:"required"`
	RegisterNumber string `json:"registerNumber" validate:"required"`
	Year           int    `json:"year,omitempty" validate:"omitempty,min=1,max=6"`
	Department     string `json:"department,omitempty"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
}

// TrainerRegistrationRequest registers a trainer under an existing college
type TrainerRegistrationRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	CollegeID      string `json:"collegeId" validate:"required"`
	TeacherID      string `json:"teacherId" validate:"required"`
	Department     string `json:"department,omitempty"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Bio            string `json:"bio,omitempty"`
}

// authResponse mirrors the backend AuthResponse body
type authResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	CollegeID    string `json:"collegeId"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (r authResponse) profile() (*models.Profile, error) {
	role, err := models.ParseRole(r.Role)
	if err != nil {
		return nil, err
	}
	p := &models.Profile{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Role:      role,
		CollegeID: r.CollegeID,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// authCall performs an auth endpoint and turns the body into a profile.
// Tokens echoed in the body are kept alongside any Set-Cookie values.
func (c *Client) authCall(ctx context.Context, path string, body any) (*models.Profile, error) {
	var resp authResponse
	if err := c.post(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.Token != "" || resp.RefreshToken != "" {
		tokens, _ := c.credentials.LoadTokens(ctx)
		if resp.Token != "" {
			tokens.Access = resp.Token
		}
		if resp.RefreshToken != "" {
			tokens.Refresh = resp.RefreshToken
		}
		if err := c.credentials.SaveTokens(ctx, tokens); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to save session credentials")
		}
	}
	p, err := resp.profile()
	if err != nil {
		return nil, fmt.Errorf("invalid auth response: %w", err)
	}
	return p, nil
}

// Login authenticates with email and password
func (c *Client) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	req := LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := c.validateInput(req); err != nil {
		return nil, err
	}
	return c.authCall(ctx, "/auth/login", req)
}

// registerPath maps a registration kind to its endpoint
func registerPath(kind string) (string, error) {
	switch kind {
	case "":
		return "/auth/register", nil
	case "admin", "student", "trainer":
		return "/auth/" + kind + "/register", nil
	default:
		return "", fmt.Errorf("unknown registration kind %q", kind)
	}
}

// Register creates an account. kind selects the endpoint: "" for the generic
// one, or admin, student, trainer.
func (c *Client) Register(ctx context.Context, kind string, payload any) (*models.Profile, error) {
	path, err := registerPath(kind)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("registration payload is required")
	}
	if err := c.validateInput(payload); err != nil {
		return nil, err
	}
	return c.authCall(ctx, path, payload)
}

// Me returns the profile of the current session
func (c *Client) Me(ctx context.Context) (*models.Profile, error) {
	var resp authResponse
	if err := c.get(ctx, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	p, err := resp.profile()
	if err != nil {
		return nil, fmt.Errorf("invalid profile response: %w", err)
	}
	return p, nil
}

// Refresh rotates the session cookies
func (c *Client) Refresh(ctx context.Context) (*models.Profile, error) {
	return c.authCall(ctx, "/auth/refresh", nil)
}

// Logout ends the server session. Local credentials are dropped even when
// the request fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.post(ctx, "/auth/logout", nil, nil)
	if delErr := c.credentials.DeleteTokens(ctx); delErr != nil {
		c.logger.Warn().Err(delErr).Msg("Failed to delete session credentials")
	}
	return err
}
