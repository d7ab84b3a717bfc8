package operr

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies operation failures for the message layer.
type Code string

const (
	CodeNotFound        Code = "not_found"
	CodeBadRequest      Code = "bad_request"
	CodeConflict        Code = "conflict"
	CodeUnsupportedType Code = "unsupported_type"
	CodeInvalidInstance Code = "invalid_instance"
	CodeDatabase        Code = "database"
)

// Error is the canonical operation error wrapper. Message is user-readable
// for bad-request codes; it is echoed in the response reason.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with a code, keeping the cause chain.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(code, op, err.Error(), err)
}

// NotFound marks an identity lookup miss.
func NotFound(op string) error {
	return New(CodeNotFound, op, "", nil)
}

// BadRequest marks a client-triggerable validation failure; reason is shown
// to the caller verbatim.
func BadRequest(reason string) error {
	return New(CodeBadRequest, "", reason, nil)
}

func BadRequestf(format string, args ...interface{}) error {
	return BadRequest(fmt.Sprintf(format, args...))
}

// MissingRequiredParent reports an entity whose kind demands a parent link
// but has none in the store. A broken link is data corruption, not a client
// error.
func MissingRequiredParent(op string, id int64, kind string) error {
	return New(CodeDatabase, op, fmt.Sprintf("entity %d of kind %s is missing its required parent", id, kind), nil)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code Code) bool {
	var opErr *Error
	if !errors.As(err, &opErr) {
		return false
	}
	return opErr.Code == code
}

// CodeOf extracts the code when available; database otherwise.
func CodeOf(err error) Code {
	var opErr *Error
	if !errors.As(err, &opErr) {
		return CodeDatabase
	}
	return opErr.Code
}

// Reason extracts the user-readable message when available.
func Reason(err error) string {
	var opErr *Error
	if !errors.As(err, &opErr) {
		if err != nil {
			return err.Error()
		}
		return ""
	}
	if opErr.Message != "" {
		return opErr.Message
	}
	return string(opErr.Code)
}
