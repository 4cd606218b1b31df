package models

import (
	"github.com/library/backend/internal/domain/identity"
)

// OperatorModel is the persistence model for the Operator aggregate.
type OperatorModel struct {
	AggregateModel
	Username    string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	DisplayName string                  `gorm:"type:varchar(200)"`
	Status      identity.OperatorStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (OperatorModel) TableName() string {
	return "operators"
}

// ToDomain converts the persistence model to a domain Operator aggregate
func (m *OperatorModel) ToDomain() *identity.Operator {
	op := &identity.Operator{
		Username:    m.Username,
		DisplayName: m.DisplayName,
		Status:      m.Status,
	}
	m.PopulateAggregateRoot(&op.BaseAggregateRoot)
	return op
}

// FromDomain populates the persistence model from a domain Operator aggregate
func (m *OperatorModel) FromDomain(op *identity.Operator) {
	m.FromDomainAggregateRoot(op.BaseAggregateRoot)
	m.Username = op.Username
	m.DisplayName = op.DisplayName
	m.Status = op.Status
}

// OperatorModelFromDomain creates a new persistence model from a domain Operator
func OperatorModelFromDomain(op *identity.Operator) *OperatorModel {
	m := &OperatorModel{}
	m.FromDomain(op)
	return m
}
