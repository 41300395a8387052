package error

import "errors"

// Transaction domain errors.
var (
	// ErrTransactionNotFound is returned when a transaction is not found in the system.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrNotAuthorizedToModifyTransaction is returned when user is not authorized to modify a transaction.
	ErrNotAuthorizedToModifyTransaction = errors.New("not authorized to modify transaction")

	// ErrInvalidTransactionType is returned when the transaction type is invalid.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrInvalidTransactionSubtype is returned when the transaction subtype is invalid.
	ErrInvalidTransactionSubtype = errors.New("invalid transaction subtype")

	// ErrInvalidTransactionSource is returned when the transaction source is invalid.
	ErrInvalidTransactionSource = errors.New("invalid transaction source")

	// ErrInvalidTransactionAmount is returned when the transaction amount is invalid.
	ErrInvalidTransactionAmount = errors.New("invalid transaction amount")

	// ErrCategoryNotFoundForTransaction is returned when the specified category is not found.
	ErrCategoryNotFoundForTransaction = errors.New("category not found")

	// ErrDescriptionTooLong is returned when the transaction description exceeds the maximum length.
	ErrDescriptionTooLong = errors.New("description too long")

	// ErrNotesTooLong is returned when the transaction notes exceed the maximum length.
	ErrNotesTooLong = errors.New("notes too long")

	// ErrResponsibilitiesNotWhole is returned when responsibility percentages do not add up to 100.00.
	ErrResponsibilitiesNotWhole = errors.New("responsibility percentages must sum to 100.00")

	// ErrInvalidResponsibilityPercentage is returned when a percentage is out of range or too precise.
	ErrInvalidResponsibilityPercentage = errors.New("invalid responsibility percentage")

	// ErrDuplicateResponsibleParty is returned when a responsible party appears more than once.
	ErrDuplicateResponsibleParty = errors.New("responsible party listed more than once")

	// ErrDuplicateExternalReference is returned when the user already has a transaction with the external reference.
	ErrDuplicateExternalReference = errors.New("external reference already imported")
)

// TransactionErrorCode defines error codes for transaction errors.
// Format: TXN-XXYYYY where XX is category and YYYY is specific error.
type TransactionErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidTransactionType    TransactionErrorCode = "TXN-010001"
	ErrCodeInvalidTransactionDate    TransactionErrorCode = "TXN-010002"
	ErrCodeInvalidTransactionAmount  TransactionErrorCode = "TXN-010003"
	ErrCodeTransactionNotFound       TransactionErrorCode = "TXN-010004"
	ErrCodeNotAuthorizedTransaction  TransactionErrorCode = "TXN-010005"
	ErrCodeTxnCategoryNotFound       TransactionErrorCode = "TXN-010006"
	ErrCodeInvalidTransactionSubtype TransactionErrorCode = "TXN-010007"
	ErrCodeDescriptionTooLong        TransactionErrorCode = "TXN-010008"
	ErrCodeNotesTooLong              TransactionErrorCode = "TXN-010009"
	ErrCodeMissingTransactionFields  TransactionErrorCode = "TXN-010010"
	ErrCodeInvalidTransactionSource  TransactionErrorCode = "TXN-010011"
	ErrCodeTxnSubcategoryNotFound    TransactionErrorCode = "TXN-010012"
	ErrCodeTxnSourceEntityNotFound   TransactionErrorCode = "TXN-010013"

	// Responsibility errors (02XXXX)
	ErrCodeResponsibilitiesNotWhole  TransactionErrorCode = "TXN-020001"
	ErrCodeInvalidResponsibility     TransactionErrorCode = "TXN-020002"
	ErrCodeDuplicateResponsibleParty TransactionErrorCode = "TXN-020003"

	// Conflict errors (03XXXX)
	ErrCodeDuplicateExternalReference TransactionErrorCode = "TXN-030001"
)

// TransactionError represents a transaction error with code and message.
type TransactionError struct {
	Code    TransactionErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *TransactionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// NewTransactionError creates a new TransactionError with the given code and message.
func NewTransactionError(code TransactionErrorCode, message string, err error) *TransactionError {
	return &TransactionError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
