package storage

import (
	"encoding/json"
	"time"
)

// Application statuses accepted by the applications table.
const (
	StatusPending   = "pending"
	StatusInterview = "interview"
	StatusOffered   = "offered"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
)

// ValidApplicationStatus reports whether s is a stored application status.
func ValidApplicationStatus(s string) bool {
	switch s {
	case StatusPending, StatusInterview, StatusOffered, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Candidate is a person keyed by unique email.
// List fields hold raw JSON exactly as extracted; nil means unknown.
type Candidate struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	DateOfBirth       string          `json:"date_of_birth"`
	Occupation        string          `json:"occupation"`
	Summary           string          `json:"summary"`
	Experience        json.RawMessage `json:"experience,omitempty" swaggertype:"object"`
	Skills            json.RawMessage `json:"skills,omitempty" swaggertype:"array,string"`
	Languages         json.RawMessage `json:"languages,omitempty" swaggertype:"array,string"`
	Education         json.RawMessage `json:"education,omitempty" swaggertype:"object"`
	GeneralExperience int             `json:"general_experience"`
	Notes             string          `json:"notes"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Application links one candidate to one vacancy.
type Application struct {
	ID          int64     `json:"id"`
	CandidateID int64     `json:"candidate_id"`
	VacancyID   int64     `json:"vacancy_id"`
	Status      string    `json:"status"`
	AIReason    string    `json:"ai_reason"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Vacancy is owned by the vacancy management side of the product; ingestion only reads it.
type Vacancy struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ApplicationFilter narrows ListApplications.
type ApplicationFilter struct {
	VacancyID int64
	Status    string
	Limit     uint64
	Offset    uint64
}

// ApplicationView is an application joined with its candidate.
type ApplicationView struct {
	Application Application `json:"application"`
	Candidate   Candidate   `json:"candidate"`
}

// Criteria used to search for candidates.
type Criteria struct {
	Name       string   `json:"name"`
	Occupation string   `json:"occupation"`
	Skills     []string `json:"skills"`
	Limit      uint64   `json:"limit"`
}
