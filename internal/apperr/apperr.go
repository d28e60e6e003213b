package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the machine-checkable class of a failure.
type Kind string

const (
	KindInput       Kind = "InputError"
	KindUnavailable Kind = "DataUnavailable"
	KindComputation Kind = "ComputationError"
)

// Reason names the specific cause within a Kind.
type Reason string

const (
	InvalidDocumentType     Reason = "InvalidDocumentType"
	DecryptionFailed        Reason = "DecryptionFailed"
	ExtractionFailed        Reason = "ExtractionFailed"
	NoTablesExtracted       Reason = "NoTablesExtracted"
	EmptyDataset            Reason = "EmptyDataset"
	MissingColumn           Reason = "MissingColumn"
	NoCompletedTransactions Reason = "NoCompletedTransactions"
	NoValidDates            Reason = "NoValidDates"
	NoTransactionsRemaining Reason = "NoTransactionsRemaining"
	LedgerNotFound          Reason = "LedgerNotFound"
	EmptyLedger             Reason = "EmptyLedger"
	MissingQueryColumn      Reason = "MissingQueryColumn"
	Coercion                Reason = "Coercion"
	NoMatchingTransactions  Reason = "NoMatchingTransactions"
	UnknownQuery            Reason = "UnknownQuery"
)

// Error is a user-facing failure with a kind, a reason and the stage that raised it.
type Error struct {
	Kind    Kind
	Reason  Reason
	Stage   string
	Message string
	Columns []string // offending columns, if any
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(string(e.Reason))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind and reason, so sentinels like
// ErrNoTablesExtracted work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Reason != "" && t.Reason != e.Reason {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInput                   = &Error{Kind: KindInput}
	ErrUnavailable             = &Error{Kind: KindUnavailable}
	ErrComputation             = &Error{Kind: KindComputation}
	ErrNoTablesExtracted       = &Error{Kind: KindInput, Reason: NoTablesExtracted}
	ErrEmptyDataset            = &Error{Kind: KindInput, Reason: EmptyDataset}
	ErrMissingColumn           = &Error{Kind: KindInput, Reason: MissingColumn}
	ErrNoCompletedTransactions = &Error{Kind: KindInput, Reason: NoCompletedTransactions}
	ErrNoValidDates            = &Error{Kind: KindInput, Reason: NoValidDates}
	ErrNoTransactionsRemaining = &Error{Kind: KindInput, Reason: NoTransactionsRemaining}
	ErrDecryptionFailed        = &Error{Kind: KindInput, Reason: DecryptionFailed}
	ErrInvalidDocumentType     = &Error{Kind: KindInput, Reason: InvalidDocumentType}
	ErrExtractionFailed        = &Error{Kind: KindInput, Reason: ExtractionFailed}
	ErrLedgerNotFound          = &Error{Kind: KindUnavailable, Reason: LedgerNotFound}
	ErrUnknownQuery            = &Error{Kind: KindInput, Reason: UnknownQuery}
)

// Input builds an InputError.
func Input(reason Reason, stage, format string, args ...any) *Error {
	return &Error{Kind: KindInput, Reason: reason, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// Unavailable builds a DataUnavailable error.
func Unavailable(reason Reason, stage, format string, args ...any) *Error {
	return &Error{Kind: KindUnavailable, Reason: reason, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// Computation builds a ComputationError naming the offending column.
func Computation(stage, column string, err error) *Error {
	return &Error{
		Kind:    KindComputation,
		Reason:  Coercion,
		Stage:   stage,
		Message: fmt.Sprintf("column %q", column),
		Columns: []string{column},
		Err:     err,
	}
}

// Missing builds the MissingColumn InputError listing every absent column.
func Missing(stage string, columns ...string) *Error {
	return &Error{
		Kind:    KindInput,
		Reason:  MissingColumn,
		Stage:   stage,
		Message: "missing required columns: " + strings.Join(columns, ", "),
		Columns: columns,
	}
}

// Wrap attaches a cause to a new error of the given kind and reason.
func Wrap(err error, kind Kind, reason Reason, stage, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Stage: stage, Message: message, Err: err}
}

// As extracts the *Error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or ComputationError for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindComputation
}

// HTTPStatus maps an error to a response status code.
func HTTPStatus(err error) int {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch {
	case e.Kind == KindUnavailable:
		return http.StatusNotFound
	case e.Reason == UnknownQuery:
		return http.StatusNotFound
	case e.Reason == DecryptionFailed:
		return http.StatusUnauthorized
	case e.Reason == InvalidDocumentType:
		return http.StatusUnsupportedMediaType
	case e.Kind == KindInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
