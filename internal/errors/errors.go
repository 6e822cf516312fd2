package errors

import "fmt"

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on the error code so a wrapped sentinel is still recognized
// by errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	ErrConfigInvalid = &AppError{Code: "CONFIG_001", Message: "invalid configuration"}

	ErrModelUnavailable = &AppError{Code: "LLM_001", Message: "model unavailable"}
	ErrModelEmpty       = &AppError{Code: "LLM_002", Message: "model returned no content"}
	ErrRateLimited      = &AppError{Code: "LLM_003", Message: "rate limit exceeded"}

	ErrParseFailed       = &AppError{Code: "PARSE_001", Message: "assessment response is not valid JSON"}
	ErrInvalidAssessment = &AppError{Code: "PARSE_002", Message: "assessment response failed schema validation"}

	ErrStoreRead  = &AppError{Code: "STORE_001", Message: "failed to read from durable storage"}
	ErrStoreWrite = &AppError{Code: "STORE_002", Message: "failed to write to durable storage"}
	ErrNotFound   = &AppError{Code: "STORE_003", Message: "record not found"}

	ErrUnauthorized = &AppError{Code: "AUTH_001", Message: "unauthorized"}

	ErrBadRequest = &AppError{Code: "GEN_001", Message: "bad request"}
	ErrInternal   = &AppError{Code: "GEN_002", Message: "internal error"}
)

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}
