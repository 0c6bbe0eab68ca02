// Package ledger implements the borrowing and payment operations of the
// library. Every mutating operation runs inside one database transaction and
// reports its outcome through the Result contract instead of leaking store
// errors to callers.
package ledger

import "strings"

// ErrCode identifies why an operation failed. Codes are stable; messages are
// display text only.
type ErrCode string

const (
	CodeNotFound           ErrCode = "NOT_FOUND"
	CodeValidation         ErrCode = "VALIDATION_ERROR"
	CodeDuplicateBorrow    ErrCode = "DUPLICATE_BORROW"
	CodeAlreadyReturned    ErrCode = "ALREADY_RETURNED"
	CodeUnavailable        ErrCode = "UNAVAILABLE"
	CodeIntegrityViolation ErrCode = "INTEGRITY_VIOLATION"
	CodeLimitExceeded      ErrCode = "LIMIT_EXCEEDED"
	CodeMembershipInactive ErrCode = "MEMBERSHIP_INACTIVE"
	CodeAlreadyPaid        ErrCode = "ALREADY_PAID"
	CodeConflict           ErrCode = "CONFLICT"
	CodeInternal           ErrCode = "INTERNAL"
)

// Result is the structured outcome returned by every mutating ledger
// operation. Success is the only reliable failure signal; Message is for
// display and its wording is not guaranteed stable.
type Result struct {
	Success bool    `json:"success"`
	Code    ErrCode `json:"code,omitempty"`
	Message string  `json:"message"`
	Data    any     `json:"data,omitempty"`
}

func ok(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

func fail(code ErrCode, message string) Result {
	return Result{Success: false, Code: code, Message: message}
}

// isUniqueViolation reports whether a store error is a sqlite unique
// constraint collision.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
