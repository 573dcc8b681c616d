package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Batch is a training batch
type Batch struct {
	ID            string    `json:"id,omitempty"`
	Name          string    `json:"name" validate:"required"`
	Description   string    `json:"description,omitempty"`
	DurationWeeks int       `json:"durationWeeks,omitempty" validate:"omitempty,min=1"`
	Status        string    `json:"status,omitempty"`
	Syllabus      *Syllabus `json:"syllabus,omitempty"`
}

// Syllabus is the topic plan attached to a batch
type Syllabus struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description,omitempty"`
	Topics      []SyllabusTopic `json:"topics,omitempty" validate:"dive"`
}

type SyllabusTopic struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description,omitempty"`
	Technologies string `json:"technologies,omitempty"`
}

// Student is a student record
type Student struct {
	ID                 string  `json:"id,omitempty"`
	Name               string  `json:"name" validate:"required"`
	Email              string  `json:"email" validate:"required,email"`
	Password           string  `json:"password,omitempty"`
	Year               int     `json:"year,omitempty" validate:"omitempty,min=1,max=6"`
	Department         string  `json:"department,omitempty"`
	CGPA               float64 `json:"cgpa,omitempty" validate:"omitempty,min=0,max=10"`
	ProblemSolvedCount int     `json:"problemSolvedCount,omitempty" validate:"omitempty,min=0"`
	GithubLink         string  `json:"githubLink,omitempty" validate:"omitempty,url"`
	PortfolioLink      string  `json:"portfolioLink,omitempty" validate:"omitempty,url"`
	ResumeLink         string  `json:"resumeLink,omitempty" validate:"omitempty,url"`
}

// Skill is a skill on the current student's profile
type Skill struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name" validate:"required"`
	Level string `json:"level,omitempty"`
}

// Project is a project on the current student's profile
type Project struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty" validate:"omitempty,url"`
}

// BatchHistory is one entry of a student's batch enrolment history
type BatchHistory struct {
	ID        string `json:"id"`
	Batch     *Batch `json:"batch,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Status    string `json:"status,omitempty"`
}

// BatchRecommendation scores how well a batch fits a student
type BatchRecommendation struct {
	BatchID               string   `json:"batchId"`
	BatchName             string   `json:"batchName"`
	Description           string   `json:"description,omitempty"`
	TotalScore            float64  `json:"totalScore"`
	MatchReasons          []string `json:"matchReasons,omitempty"`
	SkillMatchScore       int      `json:"skillMatchScore"`
	SyllabusOverlapScore  int      `json:"syllabusOverlapScore"`
	CompanyRelevanceScore int      `json:"companyRelevanceScore"`
	DurationWeeks         int      `json:"durationWeeks,omitempty"`
	TrainerName           string   `json:"trainerName,omitempty"`
	StartDate             string   `json:"startDate,omitempty"`
}

// Trainer is a trainer record
type Trainer struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Specialization string `json:"specialization,omitempty"`
	Department     string `json:"department,omitempty"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	TeacherID      string `json:"teacherId,omitempty"`
	Bio            string `json:"bio,omitempty"`
}

// Company is a hiring company
type Company struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name" validate:"required"`
	Domain     string `json:"domain,omitempty"`
	HiringType string `json:"hiringType,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// HiringRound is one round of a company's hiring process
type HiringRound struct {
	ID            string `json:"id"`
	RoundNumber   int    `json:"roundNumber"`
	RoundName     string `json:"roundName"`
	TopicsFocused string `json:"topicsFocused,omitempty"`
	Difficulty    string `json:"difficulty,omitempty"`
}

// College is a registered college
type College struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Domain       string `json:"domain,omitempty"`
	WebsiteURL   string `json:"websiteUrl,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
	Address      string `json:"address,omitempty"`
}

// decodeList accepts either a bare JSON array or a page object with a
// content array.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return items, nil
	}

	var page struct {
		Content []T `json:"content"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	if page.Content == nil {
		return []T{}, nil
	}
	return page.Content, nil
}
