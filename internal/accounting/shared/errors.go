package shared

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies ledger failures so transports can map them consistently.
type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindNotFound      Kind = "not_found"
	KindConfiguration Kind = "configuration_error"
	KindTransaction   Kind = "transaction_error"
	KindTimeout       Kind = "timeout"
)

// Error is a classified ledger error. Message is safe to show to API clients;
// the wrapped Err is for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("accounting: %s: %v", e.Message, e.Err)
	}
	return "accounting: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a client-caused error.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Validationf formats a client-caused error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a missing-resource error.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Configuration returns an error for ledger setup problems operators must fix.
func Configuration(msg string) error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

// Transaction wraps a storage failure that aborted a unit of work.
func Transaction(err error) error {
	return &Error{Kind: KindTransaction, Message: "transaction failed", Err: err}
}

// Timeout wraps a deadline expiry.
func Timeout(err error) error {
	return &Error{Kind: KindTimeout, Message: "operation timed out", Err: err}
}

// Classify returns err unchanged when it already carries a Kind, otherwise wraps
// it as a timeout (deadline exceeded) or transaction failure.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(err)
	}
	return Transaction(err)
}

// KindOf extracts the error kind, or an empty Kind for unclassified errors.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return ""
}

// MessageOf returns the client-safe message of a classified error.
func MessageOf(err error) string {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Message
	}
	return ""
}

func IsValidation(err error) bool    { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool      { return KindOf(err) == KindNotFound }
func IsConfiguration(err error) bool { return KindOf(err) == KindConfiguration }
func IsTimeout(err error) bool       { return KindOf(err) == KindTimeout }

var (
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = &Error{Kind: KindValidation, Message: "journal lines must balance"}
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = &Error{Kind: KindValidation, Message: "journal entry requires at least two lines"}
	// ErrDebitCreditExclusive indicates a line with both or neither side set.
	ErrDebitCreditExclusive = &Error{Kind: KindValidation, Message: "each line must have exactly one of debit or credit"}
	// ErrDuplicateReference indicates the entry reference already exists.
	ErrDuplicateReference = &Error{Kind: KindValidation, Message: "journal entry reference already exists"}
	// ErrPeriodClosedForPosting indicates the entry date falls inside a closed period.
	ErrPeriodClosedForPosting = &Error{Kind: KindValidation, Message: "entry date falls within a closed accounting period"}
	// ErrJournalNotFound indicates a missing entry.
	ErrJournalNotFound = &Error{Kind: KindNotFound, Message: "journal entry not found"}

	ErrAccountNotFound    = &Error{Kind: KindNotFound, Message: "account not found"}
	ErrAccountInactive    = &Error{Kind: KindValidation, Message: "account is inactive"}
	ErrAccountInUse       = &Error{Kind: KindValidation, Message: "account is referenced by journal entries"}
	ErrDuplicateAccount   = &Error{Kind: KindValidation, Message: "account code already exists"}
	ErrWellKnownProtected = &Error{Kind: KindValidation, Message: "retained earnings and income summary accounts cannot be deactivated or deleted"}
	ErrWellKnownType      = &Error{Kind: KindValidation, Message: "retained earnings and income summary accounts must be EQUITY"}
	ErrWellKnownCode      = &Error{Kind: KindValidation, Message: "codes 3998 and 3999 are reserved and cannot be assigned by renaming"}

	ErrPeriodNotFound      = &Error{Kind: KindNotFound, Message: "accounting period not found"}
	ErrPeriodOverlap       = &Error{Kind: KindValidation, Message: "period overlaps an existing period"}
	ErrPeriodAlreadyClosed = &Error{Kind: KindValidation, Message: "Period is already closed"}
	ErrPeriodNotClosed     = &Error{Kind: KindValidation, Message: "Period is not closed"}
	// ErrClosingAccountsMissing blocks closing until 3998/3999 exist as active equity accounts.
	ErrClosingAccountsMissing = &Error{Kind: KindConfiguration, Message: "retained earnings (3998) and income summary (3999) must exist as active EQUITY accounts"}

	// ErrMappingNotFound indicates an integration account mapping is missing.
	ErrMappingNotFound = &Error{Kind: KindConfiguration, Message: "account mapping not found"}
)

// OperationRecorder counts ledger operations by outcome. err is nil on success.
type OperationRecorder interface {
	LedgerOperation(op string, err error)
}

// Outcome labels err for metrics: "success", its Kind, or "error".
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	if kind := KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
