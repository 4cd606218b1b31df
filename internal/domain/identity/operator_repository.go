package identity

import (
	"context"

	"github.com/google/uuid"
)

// OperatorRepository defines the interface for operator persistence
type OperatorRepository interface {
	// Create creates a new operator
	Create(ctx context.Context, operator *Operator) error

	// Update updates an existing operator
	Update(ctx context.Context, operator *Operator) error

	// FindByID finds an operator by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Operator, error)

	// FindByUsername finds an operator by username
	FindByUsername(ctx context.Context, username string) (*Operator, error)
}
