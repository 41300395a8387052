// Package ofx reads OFX/QFX statements (SGML v1 and XML v2) into imported entries.
package ofx

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
)

type trnTypeRule struct {
	code      string
	direction entity.TransactionType // empty means the amount sign decides
}

var trnTypeRules = map[uint]trnTypeRule{
	uint(ofxgo.TrnTypeCredit):      {"CREDIT", entity.TransactionTypeIncome},
	uint(ofxgo.TrnTypeInt):         {"INT", entity.TransactionTypeIncome},
	uint(ofxgo.TrnTypeDiv):         {"DIV", entity.TransactionTypeIncome},
	uint(ofxgo.TrnTypeDep):         {"DEP", entity.TransactionTypeIncome},
	uint(ofxgo.TrnTypeDirectDep):   {"DIRECTDEP", entity.TransactionTypeIncome},
	uint(ofxgo.TrnTypeDebit):       {"DEBIT", entity.TransactionTypeExpense},
	uint(ofxgo.TrnTypeFee):         {"FEE", entity.TransactionTypeExpense},
	uint(ofxgo.TrnTypeSrvChg):      {"SRVCHG", entity.TransactionTypeExpense},
	uint(ofxgo.TrnTypeATM):         {"ATM", entity.TransactionTypeExpense},
	uint(ofxgo.TrnTypePOS):         {"POS", entity.TransactionTypeExpense},
	uint(ofxgo.TrnTypeCheck):       {"CHECK", entity.TransactionTypeExpense},
	uint(ofxgo.TrnTypePayment):     {"PAYMENT", entity.TransactionTypeExpense},
	uint(ofxgo.TrnTypeCash):        {"CASH", entity.TransactionTypeExpense},
	uint(ofxgo.TrnTypeDirectDebit): {"DIRECTDEBIT", entity.TransactionTypeExpense},
	uint(ofxgo.TrnTypeRepeatPmt):   {"REPEATPMT", entity.TransactionTypeExpense},
	uint(ofxgo.TrnTypeXfer):        {"XFER", ""},
	uint(ofxgo.TrnTypeHold):        {"HOLD", ""},
	uint(ofxgo.TrnTypeOther):       {"OTHER", ""},
}

// Parser implements adapter.StatementParser for OFX content. It holds no state.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes the envelope and flattens every bank and credit card transaction list.
// Each list is ordered by posted date before line numbers are assigned.
func (p *Parser) Parse(ctx context.Context, content []byte, _ *entity.ImportConfiguration, loc *time.Location) ([]entity.ImportedEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	response, err := ofxgo.ParseResponse(bytes.NewReader(content))
	if err != nil {
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeMalformedOFX,
			"failed to decode OFX statement",
			err,
		)
	}

	if len(response.Bank) == 0 && len(response.CreditCard) == 0 {
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeMalformedOFX,
			"OFX statement has no bank or credit card statement",
			domainerror.ErrMalformedStatement,
		)
	}

	var lists [][]ofxgo.Transaction
	for _, message := range response.Bank {
		if stmt, ok := message.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList.Transactions)
		}
	}
	for _, message := range response.CreditCard {
		if stmt, ok := message.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList.Transactions)
		}
	}

	entries := make([]entity.ImportedEntry, 0)
	lineNumber := 0
	for _, list := range lists {
		for _, txn := range sortedByPostedDate(list) {
			lineNumber++
			entries = append(entries, toEntry(lineNumber, txn, loc))
		}
	}

	return entries, nil
}

// sortedByPostedDate returns a stable ascending copy; undated transactions go last.
func sortedByPostedDate(list []ofxgo.Transaction) []ofxgo.Transaction {
	sorted := make([]ofxgo.Transaction, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].DtPosted.Time, sorted[j].DtPosted.Time
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.Before(b)
	})
	return sorted
}

func toEntry(lineNumber int, txn ofxgo.Transaction, loc *time.Location) entity.ImportedEntry {
	entry := entity.ImportedEntry{
		LineNumber:  lineNumber,
		ExternalID:  strings.TrimSpace(txn.FiTID.String()),
		Description: description(txn),
	}

	if posted := txn.DtPosted.Time; !posted.IsZero() {
		date := posted.In(loc)
		entry.Date = &date
		entry.RawDate = posted.Format(time.RFC3339)
	}

	entry.RawAmount = txn.TrnAmt.FloatString(6)
	if amount, err := decimal.NewFromString(entry.RawAmount); err == nil {
		rounded := amount.Round(2)
		entry.Amount = &rounded
	}

	rule, known := trnTypeRules[uint(txn.TrnType)]
	if known {
		entry.TypeCode = rule.code
	}
	switch {
	case known && rule.direction != "":
		entry.Type = rule.direction
	case entry.Amount != nil:
		entry.Type = entity.TypeFromSign(*entry.Amount)
		entry.TypeInferred = true
	default:
		entry.Type = entity.TransactionTypeIncome
		entry.TypeInferred = true
	}

	return entry
}

// description prefers a non-blank memo and falls back to the trimmed payee name.
func description(txn ofxgo.Transaction) string {
	if memo := strings.TrimSpace(txn.Memo.String()); memo != "" {
		return memo
	}
	return strings.TrimSpace(txn.Name.String())
}
