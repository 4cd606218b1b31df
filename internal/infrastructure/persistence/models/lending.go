package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/lending"
	"github.com/shopspring/decimal"
)

// LoanModel is the persistence model for the Loan aggregate.
type LoanModel struct {
	AggregateModel
	MemberID                uuid.UUID          `gorm:"type:uuid;not null;index"`
	BookID                  uuid.UUID          `gorm:"type:uuid;not null;index"`
	BookTitle               string             `gorm:"type:varchar(500);not null"`
	LoanDate                time.Time          `gorm:"not null"`
	DueDate                 time.Time          `gorm:"not null;index"`
	ReturnDate              *time.Time         ``
	Returned                bool               `gorm:"not null;default:false;index"`
	FinePerDay              decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	DaysOverdue             int                `gorm:"not null;default:0"`
	FineAmount              decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	FineStatus              lending.FineStatus `gorm:"type:varchar(20);not null;default:'NONE';index"`
	FineExempt              bool               `gorm:"not null;default:false"`
	ExemptReason            string             `gorm:"type:varchar(500)"`
	LastFineCalculationDate *time.Time         ``
	FineUpdatedDate         *time.Time         ``
}

// TableName returns the table name for GORM
func (LoanModel) TableName() string {
	return "loans"
}

// ToDomain converts the persistence model to a domain Loan aggregate
func (m *LoanModel) ToDomain() *lending.Loan {
	loan := &lending.Loan{
		MemberID:                m.MemberID,
		BookID:                  m.BookID,
		BookTitle:               m.BookTitle,
		LoanDate:                m.LoanDate,
		DueDate:                 m.DueDate,
		ReturnDate:              m.ReturnDate,
		Returned:                m.Returned,
		FinePerDay:              m.FinePerDay,
		DaysOverdue:             m.DaysOverdue,
		FineAmount:              m.FineAmount,
		FineStatus:              m.FineStatus,
		FineExempt:              m.FineExempt,
		ExemptReason:            m.ExemptReason,
		LastFineCalculationDate: m.LastFineCalculationDate,
		FineUpdatedDate:         m.FineUpdatedDate,
	}
	m.PopulateAggregateRoot(&loan.BaseAggregateRoot)
	return loan
}

// FromDomain populates the persistence model from a domain Loan aggregate
func (m *LoanModel) FromDomain(l *lending.Loan) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.MemberID = l.MemberID
	m.BookID = l.BookID
	m.BookTitle = l.BookTitle
	m.LoanDate = l.LoanDate
	m.DueDate = l.DueDate
	m.ReturnDate = l.ReturnDate
	m.Returned = l.Returned
	m.FinePerDay = l.FinePerDay
	m.DaysOverdue = l.DaysOverdue
	m.FineAmount = l.FineAmount
	m.FineStatus = l.FineStatus
	m.FineExempt = l.FineExempt
	m.ExemptReason = l.ExemptReason
	m.LastFineCalculationDate = l.LastFineCalculationDate
	m.FineUpdatedDate = l.FineUpdatedDate
}

// LoanModelFromDomain creates a new persistence model from a domain Loan aggregate
func LoanModelFromDomain(l *lending.Loan) *LoanModel {
	m := &LoanModel{}
	m.FromDomain(l)
	return m
}

// MemberModel is the persistence model for the Member aggregate.
type MemberModel struct {
	AggregateModel
	MemberNumber      string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name              string          `gorm:"type:varchar(200);not null"`
	Email             string          `gorm:"type:varchar(200)"`
	CurrentFinesDue   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalFinesPaid    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OverdueBooksCount int             `gorm:"not null;default:0"`
	IsBanned          bool            `gorm:"not null;default:false;index"`
	BanReason         string          `gorm:"type:varchar(500)"`
	BanStartDate      *time.Time      ``
	BanEndDate        *time.Time      ``
	TotalBanCount     int             `gorm:"not null;default:0"`
	CreditLimit       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MaxOverdueDays    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (MemberModel) TableName() string {
	return "members"
}

// ToDomain converts the persistence model to a domain Member aggregate
func (m *MemberModel) ToDomain() *lending.Member {
	member := &lending.Member{
		MemberNumber:      m.MemberNumber,
		Name:              m.Name,
		Email:             m.Email,
		CurrentFinesDue:   m.CurrentFinesDue,
		TotalFinesPaid:    m.TotalFinesPaid,
		OverdueBooksCount: m.OverdueBooksCount,
		IsBanned:          m.IsBanned,
		BanReason:         m.BanReason,
		BanStartDate:      m.BanStartDate,
		BanEndDate:        m.BanEndDate,
		TotalBanCount:     m.TotalBanCount,
		CreditLimit:       m.CreditLimit,
		MaxOverdueDays:    m.MaxOverdueDays,
	}
	m.PopulateAggregateRoot(&member.BaseAggregateRoot)
	return member
}

// FromDomain populates the persistence model from a domain Member aggregate
func (m *MemberModel) FromDomain(mem *lending.Member) {
	m.FromDomainAggregateRoot(mem.BaseAggregateRoot)
	m.MemberNumber = mem.MemberNumber
	m.Name = mem.Name
	m.Email = mem.Email
	m.CurrentFinesDue = mem.CurrentFinesDue
	m.TotalFinesPaid = mem.TotalFinesPaid
	m.OverdueBooksCount = mem.OverdueBooksCount
	m.IsBanned = mem.IsBanned
	m.BanReason = mem.BanReason
	m.BanStartDate = mem.BanStartDate
	m.BanEndDate = mem.BanEndDate
	m.TotalBanCount = mem.TotalBanCount
	m.CreditLimit = mem.CreditLimit
	m.MaxOverdueDays = mem.MaxOverdueDays
}

// MemberModelFromDomain creates a new persistence model from a domain Member aggregate
func MemberModelFromDomain(mem *lending.Member) *MemberModel {
	m := &MemberModel{}
	m.FromDomain(mem)
	return m
}

// FineTransactionModel is the persistence model for the FineTransaction ledger entry.
type FineTransactionModel struct {
	AggregateModel
	ReceiptNumber    string                    `gorm:"type:varchar(30);not null;uniqueIndex"`
	MemberID         uuid.UUID                 `gorm:"type:uuid;not null;index"`
	LoanID           *uuid.UUID                `gorm:"type:uuid;index"`
	Amount           decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Method           lending.PaymentMethod     `gorm:"type:varchar(20);not null;index"`
	Status           lending.TransactionStatus `gorm:"type:varchar(20);not null;index"`
	TransactionDate  time.Time                 `gorm:"not null;index"`
	PaymentReference string                    `gorm:"type:varchar(100)"`
	Notes            string                    `gorm:"type:varchar(500)"`
	ProcessedBy      uuid.UUID                 `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (FineTransactionModel) TableName() string {
	return "fine_transactions"
}

// ToDomain converts the persistence model to a domain FineTransaction aggregate
func (m *FineTransactionModel) ToDomain() *lending.FineTransaction {
	txn := &lending.FineTransaction{
		ReceiptNumber:    m.ReceiptNumber,
		MemberID:         m.MemberID,
		LoanID:           m.LoanID,
		Amount:           m.Amount,
		Method:           m.Method,
		Status:           m.Status,
		TransactionDate:  m.TransactionDate,
		PaymentReference: m.PaymentReference,
		Notes:            m.Notes,
		ProcessedBy:      m.ProcessedBy,
	}
	m.PopulateAggregateRoot(&txn.BaseAggregateRoot)
	return txn
}

// FromDomain populates the persistence model from a domain FineTransaction aggregate
func (m *FineTransactionModel) FromDomain(t *lending.FineTransaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.ReceiptNumber = t.ReceiptNumber
	m.MemberID = t.MemberID
	m.LoanID = t.LoanID
	m.Amount = t.Amount
	m.Method = t.Method
	m.Status = t.Status
	m.TransactionDate = t.TransactionDate
	m.PaymentReference = t.PaymentReference
	m.Notes = t.Notes
	m.ProcessedBy = t.ProcessedBy
}

// FineTransactionModelFromDomain creates a new persistence model from a domain FineTransaction
func FineTransactionModelFromDomain(t *lending.FineTransaction) *FineTransactionModel {
	m := &FineTransactionModel{}
	m.FromDomain(t)
	return m
}
