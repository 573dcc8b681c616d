package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/skillbridge-dev/skillbridge/internal/assert"
)

// IDLength is the length of a ULID in its canonical text form
const IDLength = 26

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}

// NewID returns a fresh ULID string
func NewID() string {
	id := ulid.Make().String()
	assert.Length(id, IDLength)
	return id
}

// PortalSession is one browser session of the web portal. It holds the cached
// profile of the SkillBridge user and the sealed backend credentials.
type PortalSession struct {
	BaseModel
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role" gorm:"type:varchar(16)"`
	CollegeID string `json:"college_id"`

	// Sealed with auth.Sealer, never serialized
	AccessToken  string `json:"-" gorm:"type:text"`
	RefreshToken string `json:"-" gorm:"type:text"`

	LastSeenAt time.Time `json:"last_seen_at"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// HasProfile reports whether the session carries a cached profile
func (s *PortalSession) HasProfile() bool {
	return s.UserID != "" && s.Role.Valid()
}

// Profile returns the cached profile, or nil when none is stored
func (s *PortalSession) Profile() *Profile {
	if !s.HasProfile() {
		return nil
	}
	return &Profile{
		ID:        s.UserID,
		Email:     s.Email,
		Name:      s.Name,
		Role:      s.Role,
		CollegeID: s.CollegeID,
	}
}

// SetProfile overwrites the cached profile fields; nil clears them
func (s *PortalSession) SetProfile(p *Profile) {
	if p == nil {
		s.UserID, s.Email, s.Name, s.Role, s.CollegeID = "", "", "", "", ""
		return
	}
	s.UserID = p.ID
	s.Email = p.Email
	s.Name = p.Name
	s.Role = p.Role
	s.CollegeID = p.CollegeID
}

// Report kinds produced by the report worker
const (
	ReportTopTrainers   = "top_trainers"
	ReportBatchFeedback = "batch_feedback"
)

// ReportSnapshot is a point-in-time copy of an admin report pulled from the backend
type ReportSnapshot struct {
	BaseModel
	Kind        string    `json:"kind" gorm:"not null;index:idx_report_kind_subject"`
	SubjectID   string    `json:"subject_id" gorm:"index:idx_report_kind_subject"` // batch ID for batch reports, empty otherwise
	Payload     string    `json:"payload" gorm:"type:text;not null"`               // raw JSON as returned by the backend
	GeneratedAt time.Time `json:"generated_at" gorm:"not null"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&PortalSession{}, &ReportSnapshot{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// LatestSnapshots returns the most recent snapshot per (kind, subject)
func LatestSnapshots(db *gorm.DB) ([]ReportSnapshot, error) {
	var snapshots []ReportSnapshot
	err := db.Raw(`
		SELECT s.* FROM report_snapshots s
		JOIN (
			SELECT kind, subject_id, MAX(generated_at) AS generated_at
			FROM report_snapshots
			GROUP BY kind, subject_id
		) latest
		ON s.kind = latest.kind AND s.subject_id = latest.subject_id AND s.generated_at = latest.generated_at
		ORDER BY s.kind, s.subject_id`).Scan(&snapshots).Error
	return snapshots, err
}
