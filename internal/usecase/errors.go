package usecase

// Error codes for file-level import failures. Row-level problems never become
// errors; they only move counters.
const (
	CodeInvestorNotFound = "INVESTOR_NOT_FOUND"
	CodeUnsupportedFile  = "UNSUPPORTED_FILE"
	CodeImportFailed     = "IMPORT_FAILED"
	CodeInvalidInput     = "VALIDATION_ERROR"
	CodeInvalidLogin     = "INVALID_CREDENTIALS"
)

// DomainError is a business-rule failure the caller can surface to the user.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError is an infrastructure failure (database, filesystem) that
// should be logged and reported generically.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}
