package oracle

import "fmt"

// ErrorType classifies oracle failures.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeRequest
	ErrorTypeAPI
	ErrorTypeResponse
	ErrorTypeParse
	ErrorTypeValidation
)

// OracleError wraps a failure at the oracle boundary with its type.
type OracleError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *OracleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.TypeString(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.TypeString(), e.Message)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

func (e *OracleError) TypeString() string {
	switch e.Type {
	case ErrorTypeRequest:
		return "RequestError"
	case ErrorTypeAPI:
		return "APIError"
	case ErrorTypeResponse:
		return "ResponseError"
	case ErrorTypeParse:
		return "ParseError"
	case ErrorTypeValidation:
		return "ValidationError"
	default:
		return "UnknownError"
	}
}

// NewOracleError creates a new OracleError.
func NewOracleError(errType ErrorType, message string, err error) *OracleError {
	return &OracleError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}
