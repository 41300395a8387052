package error

import "errors"

// Catalog domain errors.
var (
	// ErrCategoryNotFound is returned when a category is not found for the user.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrSubcategoryNotFound is returned when a subcategory is not found for the user.
	ErrSubcategoryNotFound = errors.New("subcategory not found")

	// ErrSourceEntityNotFound is returned when a source entity is not found for the user.
	ErrSourceEntityNotFound = errors.New("source entity not found")

	// ErrCatalogNameRequired is returned when a catalog entry has a blank name.
	ErrCatalogNameRequired = errors.New("name is required")

	// ErrCatalogNameTooLong is returned when a catalog entry name exceeds the maximum length.
	ErrCatalogNameTooLong = errors.New("name too long")

	// ErrCatalogNameExists is returned when the user already owns an entry with the same name.
	ErrCatalogNameExists = errors.New("name already exists")
)

// CategoryErrorCode defines error codes for catalog errors.
// Format: CAT-XXYYYY where XX is category and YYYY is specific error.
type CategoryErrorCode string

const (
	ErrCodeCatalogNameTooLong    CategoryErrorCode = "CAT-010001"
	ErrCodeCatalogNameRequired   CategoryErrorCode = "CAT-010002"
	ErrCodeInvalidCategoryType   CategoryErrorCode = "CAT-010003"
	ErrCodeCategoryNotFound      CategoryErrorCode = "CAT-010004"
	ErrCodeCatalogNameExists     CategoryErrorCode = "CAT-010005"
	ErrCodeSubcategoryNotFound   CategoryErrorCode = "CAT-010006"
	ErrCodeSourceEntityNotFound  CategoryErrorCode = "CAT-010007"
	ErrCodeMissingCategoryFields CategoryErrorCode = "CAT-010008"
)

// CategoryError represents a catalog error with code and message.
type CategoryError struct {
	Code    CategoryErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CategoryError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *CategoryError) Unwrap() error {
	return e.Err
}

// NewCategoryError creates a new CategoryError with the given code and message.
func NewCategoryError(code CategoryErrorCode, message string, err error) *CategoryError {
	return &CategoryError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
