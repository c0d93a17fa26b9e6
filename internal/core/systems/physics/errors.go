package physics

import (
	"errors"
	"fmt"
)

// Core physics errors
var (
	// Construction errors

	ErrInvalidShape  = errors.New("invalid shape")
	ErrInvalidBox    = errors.New("invalid box")
	ErrInvalidBody   = errors.New("invalid body")
	ErrInvalidConfig = errors.New("invalid physics configuration")

	// Tree membership errors

	ErrAlreadyTracked = errors.New("collider already tracked")
	ErrNotTracked     = errors.New("collider not tracked")
	ErrTreeCorrupt    = errors.New("tree invariant violated")

	// Solver errors

	ErrSimplexOverflow = errors.New("simplex has more than 3 points")
	ErrNoConvergence   = errors.New("solver did not converge")
)

// ErrorCode is a numeric classification of physics errors.
type ErrorCode int

const (
	ErrorCodeUnknown ErrorCode = 0

	// Precondition violations (1000-1999)

	ErrorCodeInvalidShape   ErrorCode = 1001
	ErrorCodeInvalidBox     ErrorCode = 1002
	ErrorCodeInvalidBody    ErrorCode = 1003
	ErrorCodeInvalidConfig  ErrorCode = 1004
	ErrorCodeAlreadyTracked ErrorCode = 1005
	ErrorCodeNotTracked     ErrorCode = 1006

	// Invariant violations (2000-2999)

	ErrorCodeTreeCorrupt     ErrorCode = 2001
	ErrorCodeSimplexOverflow ErrorCode = 2002

	// Numerical conditions (3000-3999)

	ErrorCodeNoConvergence ErrorCode = 3001
)

var errorCodeMap = map[error]ErrorCode{
	ErrInvalidShape:    ErrorCodeInvalidShape,
	ErrInvalidBox:      ErrorCodeInvalidBox,
	ErrInvalidBody:     ErrorCodeInvalidBody,
	ErrInvalidConfig:   ErrorCodeInvalidConfig,
	ErrAlreadyTracked:  ErrorCodeAlreadyTracked,
	ErrNotTracked:      ErrorCodeNotTracked,
	ErrTreeCorrupt:     ErrorCodeTreeCorrupt,
	ErrSimplexOverflow: ErrorCodeSimplexOverflow,
	ErrNoConvergence:   ErrorCodeNoConvergence,
}

// Error carries the failing operation alongside a classified cause.
type Error struct {
	Code  ErrorCode
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
	return e.Op
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether the error is a programming error the caller must
// not retry. Numerical non-convergence is the only recoverable condition.
func (e *Error) IsFatal() bool {
	return e.Code != ErrorCodeNoConvergence && e.Code != ErrorCodeUnknown
}

// NewError classifies cause and attaches the operation name.
func NewError(op string, cause error) *Error {
	return &Error{Code: GetErrorCode(cause), Op: op, Cause: cause}
}

// GetErrorCode returns the code of err or of the first sentinel it wraps.
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ErrorCodeUnknown
	}
	var physicsErr *Error
	if errors.As(err, &physicsErr) {
		return physicsErr.Code
	}
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ErrorCodeUnknown
}
