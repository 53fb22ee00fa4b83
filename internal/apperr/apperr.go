// Package apperr defines the reason codes returned by the stock-count core.
// Every error is recoverable by the caller: the operation failed without
// mutating state and may be retried with corrected input or after the
// sector changes state.
package apperr

import (
	"errors"
	"strings"
)

type Code string

const (
	CodeMalformedExpression Code = "MALFORMED_EXPRESSION"
	CodeInvalidAssignment   Code = "INVALID_ASSIGNMENT"
	CodeRoundClosed         Code = "ROUND_CLOSED"
	CodeIncompleteCount     Code = "INCOMPLETE_COUNT"
	CodeCycleAlreadyActive  Code = "CYCLE_ALREADY_ACTIVE"
	CodeNoActiveCycle       Code = "NO_ACTIVE_CYCLE"
	CodeNotAssigned         Code = "NOT_ASSIGNED"
	CodeProductNotInScope   Code = "PRODUCT_NOT_IN_SCOPE"
	CodeSectorClosed        Code = "SECTOR_CLOSED"
	CodeWrongRound          Code = "WRONG_ROUND"
	CodeCycleNotComplete    Code = "CYCLE_NOT_COMPLETE"
	CodeNotFound            Code = "NOT_FOUND"
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeBusy                Code = "BUSY"
)

// Error carries a reason code plus optional details, e.g. the product ids
// still missing a count for CodeIncompleteCount.
type Error struct {
	Code    Code
	Details []string
	Err     error
}

func New(code Code, details ...string) *Error {
	return &Error{Code: code, Details: details}
}

func Wrap(code Code, err error, details ...string) *Error {
	return &Error{Code: code, Details: details, Err: err}
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(strings.ReplaceAll(string(e.Code), "_", " ")))
	if len(e.Details) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Details, ", "))
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so callers can compare against
// the sentinels below regardless of details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrMalformedExpression = New(CodeMalformedExpression)
	ErrInvalidAssignment   = New(CodeInvalidAssignment)
	ErrRoundClosed         = New(CodeRoundClosed)
	ErrIncompleteCount     = New(CodeIncompleteCount)
	ErrCycleAlreadyActive  = New(CodeCycleAlreadyActive)
	ErrNoActiveCycle       = New(CodeNoActiveCycle)
	ErrNotAssigned         = New(CodeNotAssigned)
	ErrProductNotInScope   = New(CodeProductNotInScope)
	ErrSectorClosed        = New(CodeSectorClosed)
	ErrWrongRound          = New(CodeWrongRound)
	ErrCycleNotComplete    = New(CodeCycleNotComplete)
	ErrNotFound            = New(CodeNotFound)
	ErrInvalidInput        = New(CodeInvalidInput)
	ErrBusy                = New(CodeBusy)
)

// CodeOf returns the reason code of err, or "" for errors outside the taxonomy
// (persistence failures and the like).
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func DetailsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
