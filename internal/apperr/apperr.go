package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by how callers are expected to react to it.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindPersistence     Kind = "persistence"
	KindExtraction      Kind = "extraction"
	KindExternalService Kind = "external_service"
	KindInternal        Kind = "internal"
)

// Error carries a Kind alongside the failed operation and its cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports empty or malformed caller input.
func Validation(op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

// Persistence wraps a storage failure.
func Persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

// Extraction wraps a tag extraction failure.
func Extraction(op string, err error) error {
	return &Error{Kind: KindExtraction, Op: op, Err: err}
}

// External wraps a chat collaborator failure.
func External(op string, err error) error {
	return &Error{Kind: KindExternalService, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
