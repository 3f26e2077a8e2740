package errors

import (
	"fmt"
	"strings"
)

var ErrUniquenessConflict = fmt.Errorf("identifier uniqueness conflict")
var ErrDuplicateKey = fmt.Errorf("duplicate key")
var ErrSuiteAPI = fmt.Errorf("suite api error")
var ErrInternal = fmt.Errorf("internal error")
var ErrRequest = fmt.Errorf("request error")
var ErrBadResponse = fmt.Errorf("bad response")
var ErrNoInput = fmt.Errorf("no input")

type myError struct {
	msg    string
	target error
}

func (m myError) Error() string        { return m.msg }
func (m myError) Is(target error) bool { return target == m.target }

// NewUniquenessConflictError is returned when two identifiers share a key but
// disagree on whether they take part in an object's uniqueness.
func NewUniquenessConflictError(identifierKey string) error {
	return &myError{
		msg:    fmt.Sprintf("identifier %s has an inconsistent uniqueness attribute", identifierKey),
		target: ErrUniquenessConflict,
	}
}

func NewNoInputError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrNoInput,
	}
}

// DuplicateKeyError names every key that could not be registered because a
// different object already occupied it.
type DuplicateKeyError struct {
	Keys []string
}

func NewDuplicateKeyError(keys ...string) *DuplicateKeyError {
	return &DuplicateKeyError{Keys: keys}
}

func (d DuplicateKeyError) Error() string {
	if len(d.Keys) == 1 {
		return fmt.Sprintf("a duplicate object with key %s already exists in the collect result", d.Keys[0])
	}

	return fmt.Sprintf("duplicate objects with keys [%s] already exist in the collect result", strings.Join(d.Keys, ", "))
}

func (d DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// SuiteAPIError is returned for every Suite API response with a status code of 300 or above
type SuiteAPIError struct {
	Message    string
	StatusCode int
}

func NewSuiteAPIError(method, url, status string, code int) *SuiteAPIError {
	return &SuiteAPIError{
		Message:    fmt.Sprintf("%s request to %s returned %s (%d)", method, url, status, code),
		StatusCode: code,
	}
}

func (s SuiteAPIError) Error() string        { return s.Message }
func (s SuiteAPIError) Is(target error) bool { return target == ErrSuiteAPI }
