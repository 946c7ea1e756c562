package record

import (
	"errors"
	"sort"
	"strings"
)

const (
	FieldName        = "name"
	FieldFatherName  = "father_name"
	FieldDateOfBirth = "date_of_birth"
	FieldEmail       = "email"
	FieldPhoneNumber = "phone_number"

	MsgRequired   = "This field is required."
	MsgEmailTaken = "This email is already used by another active record."
	MsgPhoneTaken = "This phone number is already used by another active record."
	MsgNotDeleted = "Record is not deleted."
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrNotDeleted = errors.New("record is not deleted")
)

// ValidationError maps field names to human readable messages.
type ValidationError struct {
	Fields map[string]string
}

func NewFieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
