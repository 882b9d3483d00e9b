// Package agents manages the people contact records are distributed to.
//
// The Service validates and normalizes input, hashes passwords with bcrypt
// and delegates persistence to a Store. The distribution roster itself is
// read by the store package, which implements core.RosterSelector.
package agents

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no agent has the given ID.
	ErrNotFound = errors.New("agent not found")

	// ErrDuplicateEmail is returned when another agent already uses the email.
	ErrDuplicateEmail = errors.New("agent with this email already exists")
)

// DefaultCountryCode is applied when a new agent omits one.
const DefaultCountryCode = "+91"

// Agent is a distribution target. The password hash never leaves the store.
type Agent struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CountryCode string    `json:"countryCode"`
	Mobile      string    `json:"mobile"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput is the payload for a new agent.
type CreateInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	CountryCode string `json:"countryCode"`
	Mobile      string `json:"mobile"`
	Password    string `json:"password"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// UpdateInput is a partial update; nil fields are left unchanged.
// An empty Password is treated as absent.
type UpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	CountryCode *string `json:"countryCode,omitempty"`
	Mobile      *string `json:"mobile,omitempty"`
	Password    *string `json:"password,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// NewAgent is a validated, normalized agent ready to insert.
type NewAgent struct {
	ID           string
	Name         string
	Email        string
	CountryCode  string
	Mobile       string
	PasswordHash string
	IsActive     bool
}

// Changes is a validated partial update ready to apply.
type Changes struct {
	Name         *string
	Email        *string
	CountryCode  *string
	Mobile       *string
	PasswordHash *string
	IsActive     *bool
}

// Store persists agents. Implementations return ErrNotFound and
// ErrDuplicateEmail (possibly wrapped) for the matching conditions.
type Store interface {
	ListAgents(ctx context.Context) ([]Agent, error)
	GetAgent(ctx context.Context, id string) (Agent, error)
	CreateAgent(ctx context.Context, a NewAgent) (Agent, error)
	UpdateAgent(ctx context.Context, id string, c Changes) (Agent, error)
	DeleteAgent(ctx context.Context, id string) error
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rule an input failed.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
