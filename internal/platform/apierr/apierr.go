package apierr

import (
	"errors"
	"fmt"
)

// Codes used by the catalog core. Callers at the HTTP boundary map
// Status/Code onto their transport; this package stays transport-free.
const (
	CodeNotFound           = "not_found"
	CodeInvalidFilter      = "invalid_filter"
	CodeInvalidFilterCombo = "invalid_filter_combination"
	CodeStoreFailure       = "store_failure"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(what string) *Error {
	return &Error{Status: 404, Code: CodeNotFound, Err: fmt.Errorf("%s not found", what)}
}

func InvalidFilterCombination(err error) *Error {
	return &Error{Status: 400, Code: CodeInvalidFilterCombo, Err: err}
}

// Is reports whether err carries the given apierr code.
func Is(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
