package error

import "errors"

// Statement import domain errors.
var (
	// ErrInvalidImportConfiguration is returned when the import configuration fails structural validation.
	ErrInvalidImportConfiguration = errors.New("invalid import configuration")

	// ErrNoCategoryPath is returned when neither a default category nor a category mapping is configured.
	ErrNoCategoryPath = errors.New("no category resolution path")

	// ErrDefaultReferenceNotFound is returned when a configured default id does not exist for the user.
	ErrDefaultReferenceNotFound = errors.New("default reference not found")

	// ErrMissingCSVConfiguration is returned when a delimited-text import has no usable csv block.
	ErrMissingCSVConfiguration = errors.New("missing csv configuration")

	// ErrUnrecognizedFormat is returned when automatic detection cannot classify the file.
	ErrUnrecognizedFormat = errors.New("unrecognized statement format")

	// ErrMalformedStatement is returned when the statement content cannot be decoded.
	ErrMalformedStatement = errors.New("malformed statement")

	// ErrMissingColumn is returned when a required delimited-text column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")

	// ErrDuplicateEntry is returned when a duplicate is found under the FAIL strategy.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrImportCommitFailed is returned when persisting the import fails and is rolled back.
	ErrImportCommitFailed = errors.New("import commit failed")
)

// ImportErrorCode defines error codes for statement import errors.
// Format: IMP-XXYYYY where XX is the stage (01 request, 02 parsing, 03 commit).
type ImportErrorCode string

const (
	// Request rejected before parsing (01XXXX)
	ErrCodeInvalidImportConfig      ImportErrorCode = "IMP-010001"
	ErrCodePercentagesNotWhole      ImportErrorCode = "IMP-010002"
	ErrCodeInvalidPercentage        ImportErrorCode = "IMP-010003"
	ErrCodeDuplicateResponsible     ImportErrorCode = "IMP-010004"
	ErrCodeNoCategoryPath           ImportErrorCode = "IMP-010005"
	ErrCodeDefaultReferenceNotFound ImportErrorCode = "IMP-010006"
	ErrCodeMissingCSVConfiguration  ImportErrorCode = "IMP-010007"
	ErrCodeUserNotResolved          ImportErrorCode = "IMP-010008"
	ErrCodeEmptyResponsibilities    ImportErrorCode = "IMP-010009"

	// Fatal parsing errors (02XXXX)
	ErrCodeUnrecognizedFormat      ImportErrorCode = "IMP-020001"
	ErrCodeMalformedOFX            ImportErrorCode = "IMP-020002"
	ErrCodeDuplicateUnderFail      ImportErrorCode = "IMP-020003"
	ErrCodeMissingColumn           ImportErrorCode = "IMP-020004"
	ErrCodeUnreadableDelimitedText ImportErrorCode = "IMP-020005"
	ErrCodeUnreadableUpload        ImportErrorCode = "IMP-020006"

	// Commit errors (03XXXX)
	ErrCodeCommitFailed   ImportErrorCode = "IMP-030001"
	ErrCodeCommitConflict ImportErrorCode = "IMP-030002"
)

// ImportError represents a statement import failure with code and message.
type ImportError struct {
	Code    ImportErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ImportError) Unwrap() error {
	return e.Err
}

// IsRejection reports whether the import was refused before any entry was parsed.
func (e *ImportError) IsRejection() bool {
	return len(e.Code) >= 6 && e.Code[4:6] == "01"
}

// IsCommitFailure reports whether parsing succeeded but persisting was rolled back.
func (e *ImportError) IsCommitFailure() bool {
	return len(e.Code) >= 6 && e.Code[4:6] == "03"
}

// NewImportError creates a new ImportError with the given code and message.
func NewImportError(code ImportErrorCode, message string, err error) *ImportError {
	return &ImportError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
