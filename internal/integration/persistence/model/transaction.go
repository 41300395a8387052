// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/importer/internal/domain/entity"
)

// TransactionModel represents the transactions table in the database.
type TransactionModel struct {
	ID                int64           `gorm:"primaryKey;autoIncrement"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_transactions_user_external_ref;index:idx_transactions_user_fingerprint"`
	Date              time.Time       `gorm:"not null;index"`
	Description       string          `gorm:"type:varchar(255);not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Type              string          `gorm:"type:varchar(10);not null;index"`
	Subtype           string          `gorm:"type:varchar(10);not null"`
	Source            string          `gorm:"type:varchar(20);not null"`
	CategoryID        int64           `gorm:"not null;index"`
	SubcategoryID     *int64          `gorm:"index"`
	SourceEntityID    *int64          `gorm:"index"`
	ExternalReference *string         `gorm:"type:varchar(255);uniqueIndex:idx_transactions_user_external_ref"`
	Fingerprint       string          `gorm:"type:varchar(64);not null;index:idx_transactions_user_fingerprint"`
	ImportBatchID     *uuid.UUID      `gorm:"type:uuid;index"`
	Notes             string          `gorm:"type:text"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`

	Responsibilities []TransactionResponsibilityModel `gorm:"foreignKey:TransactionID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for the TransactionModel.
func (TransactionModel) TableName() string {
	return "transactions"
}

// TransactionResponsibilityModel represents the transaction_responsibilities table.
type TransactionResponsibilityModel struct {
	ID               int64           `gorm:"primaryKey;autoIncrement"`
	TransactionID    int64           `gorm:"not null;index"`
	ResponsibleID    int64           `gorm:"not null;index"`
	Percentage       decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	CalculatedAmount decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Notes            string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for the TransactionResponsibilityModel.
func (TransactionResponsibilityModel) TableName() string {
	return "transaction_responsibilities"
}

// ToEntity converts a TransactionModel to a domain Transaction entity.
func (m *TransactionModel) ToEntity() *entity.Transaction {
	responsibilities := make([]entity.TransactionResponsibility, len(m.Responsibilities))
	for i, r := range m.Responsibilities {
		responsibilities[i] = entity.TransactionResponsibility{
			ID:               r.ID,
			TransactionID:    r.TransactionID,
			ResponsibleID:    r.ResponsibleID,
			Percentage:       r.Percentage,
			CalculatedAmount: r.CalculatedAmount,
			Notes:            r.Notes,
		}
	}

	return &entity.Transaction{
		ID:                m.ID,
		UserID:            m.UserID,
		Date:              m.Date,
		Description:       m.Description,
		Amount:            m.Amount,
		Type:              entity.TransactionType(m.Type),
		Subtype:           entity.TransactionSubtype(m.Subtype),
		Source:            entity.TransactionSource(m.Source),
		CategoryID:        m.CategoryID,
		SubcategoryID:     m.SubcategoryID,
		SourceEntityID:    m.SourceEntityID,
		ExternalReference: m.ExternalReference,
		Fingerprint:       m.Fingerprint,
		ImportBatchID:     m.ImportBatchID,
		Notes:             m.Notes,
		Responsibilities:  responsibilities,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// TransactionFromEntity creates a TransactionModel from a domain Transaction entity.
func TransactionFromEntity(transaction *entity.Transaction) *TransactionModel {
	return &TransactionModel{
		ID:                transaction.ID,
		UserID:            transaction.UserID,
		Date:              transaction.Date,
		Description:       transaction.Description,
		Amount:            transaction.Amount,
		Type:              string(transaction.Type),
		Subtype:           string(transaction.Subtype),
		Source:            string(transaction.Source),
		CategoryID:        transaction.CategoryID,
		SubcategoryID:     transaction.SubcategoryID,
		SourceEntityID:    transaction.SourceEntityID,
		ExternalReference: transaction.ExternalReference,
		Fingerprint:       transaction.Fingerprint,
		ImportBatchID:     transaction.ImportBatchID,
		Notes:             transaction.Notes,
		Responsibilities:  ResponsibilitiesFromEntity(transaction.ID, transaction.Responsibilities),
		CreatedAt:         transaction.CreatedAt,
		UpdatedAt:         transaction.UpdatedAt,
	}
}

// ResponsibilitiesFromEntity converts a responsibility set for the given transaction.
func ResponsibilitiesFromEntity(transactionID int64, responsibilities []entity.TransactionResponsibility) []TransactionResponsibilityModel {
	models := make([]TransactionResponsibilityModel, len(responsibilities))
	for i, r := range responsibilities {
		models[i] = TransactionResponsibilityModel{
			ID:               r.ID,
			TransactionID:    transactionID,
			ResponsibleID:    r.ResponsibleID,
			Percentage:       r.Percentage,
			CalculatedAmount: r.CalculatedAmount,
			Notes:            r.Notes,
		}
	}
	return models
}
