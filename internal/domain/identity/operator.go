package identity

import (
	"strings"
	"time"

	"github.com/library/backend/internal/domain/shared"
)

// OperatorStatus represents the status of an operator account
type OperatorStatus string

const (
	OperatorStatusActive      OperatorStatus = "active"
	OperatorStatusDeactivated OperatorStatus = "deactivated"
)

// Operator represents a staff member allowed to record fine payments and
// waivers. Authentication happens outside this service; the HTTP layer hands
// over an already-authenticated operator id.
type Operator struct {
	shared.BaseAggregateRoot
	Username    string
	DisplayName string
	Status      OperatorStatus
}

// NewOperator creates a new active operator
func NewOperator(username, displayName string) (*Operator, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) > 50 {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 50 characters")
	}
	if displayName == "" {
		displayName = username
	}

	return &Operator{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		DisplayName:       displayName,
		Status:            OperatorStatusActive,
	}, nil
}

// IsActive returns true if the operator may process transactions
func (o *Operator) IsActive() bool {
	return o.Status == OperatorStatusActive
}

// Deactivate disables the operator account
func (o *Operator) Deactivate() {
	if o.Status == OperatorStatusDeactivated {
		return
	}
	o.Status = OperatorStatusDeactivated
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Activate re-enables the operator account
func (o *Operator) Activate() {
	if o.Status == OperatorStatusActive {
		return
	}
	o.Status = OperatorStatusActive
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}
