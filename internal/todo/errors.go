package todo

import (
	"errors"
	"strings"
)

var (
	ErrNotFound      = errors.New("todo not found")
	ErrConflict      = errors.New("todo with this title and due date already exists")
	ErrMalformedDate = errors.New("due date is not an ISO 8601 date")
)

// Op names the write that rejected a request for missing fields.
type Op string

const (
	OpCreate  Op = "create"
	OpReplace Op = "replace"
)

// MissingFieldsError is returned before any field validation runs when a
// create or replace request lacks one of its required keys.
type MissingFieldsError struct {
	Op     Op
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return string(e.Op) + ": missing required fields: " + strings.Join(e.Fields, ", ")
}

// ValidationError carries every violated field constraint, in check order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, ", ")
}
