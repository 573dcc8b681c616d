package models

import (
	"fmt"
	"strings"
)

// Role is the SkillBridge role of an authenticated user
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
	RoleTrainer Role = "TRAINER"
)

// Roles lists every known role
var Roles = []Role{RoleAdmin, RoleStudent, RoleTrainer}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleTrainer:
		return true
	}
	return false
}

// ParseRole accepts role names case-insensitively, with or without the ROLE_ prefix
func ParseRole(raw string) (Role, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "ROLE_")
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role: %q", raw)
	}
	return r, nil
}

// Profile is the cached representation of the authenticated user
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	CollegeID string `json:"collegeId,omitempty"`
}

// Validate checks the fields every profile must carry
func (p *Profile) Validate() error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	if p.ID == "" {
		return fmt.Errorf("profile id is empty")
	}
	if !p.Role.Valid() {
		return fmt.Errorf("profile has invalid role %q", p.Role)
	}
	return nil
}
