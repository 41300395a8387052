package entity

import "github.com/shopspring/decimal"

// ResponsibilityAllocation is one entry of a split template: a party and its percentage share.
type ResponsibilityAllocation struct {
	ResponsibleID int64
	Percentage    decimal.Decimal
	Notes         string
}

// TransactionResponsibility is a party's share of a persisted transaction.
type TransactionResponsibility struct {
	ID               int64
	TransactionID    int64
	ResponsibleID    int64
	Percentage       decimal.Decimal
	CalculatedAmount decimal.Decimal
	Notes            string
}
