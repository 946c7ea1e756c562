package record

import (
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type (
	ID     int64
	Record struct {
		ID          ID
		Name        string
		FatherName  string
		DateOfBirth time.Time
		Email       string
		PhoneNumber string

		IsDeleted bool
		DeletedAt *time.Time

		CreatedAt time.Time
		UpdatedAt time.Time
	}
	Records []*Record

	// Payload carries client-writable fields. A nil field was not supplied.
	Payload struct {
		Name        *string
		FatherName  *string
		DateOfBirth *time.Time
		Email       *string
		PhoneNumber *string
	}

	ListParams struct {
		Page     int
		PageSize int
		Search   string
	}

	Page struct {
		Count    int64
		Page     int
		PageSize int
		Records  Records
	}
)

func (p ListParams) Limit() int { return p.PageSize }

func (p ListParams) Offset() int { return (p.Page - 1) * p.PageSize }

// Normalize fills defaults and clamps the page size.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Require reports every field that is missing from a create or full update.
func (p Payload) Require() error {
	fields := make(map[string]string)
	if p.Name == nil {
		fields[FieldName] = MsgRequired
	}
	if p.FatherName == nil {
		fields[FieldFatherName] = MsgRequired
	}
	if p.DateOfBirth == nil {
		fields[FieldDateOfBirth] = MsgRequired
	}
	if p.Email == nil {
		fields[FieldEmail] = MsgRequired
	}
	if p.PhoneNumber == nil {
		fields[FieldPhoneNumber] = MsgRequired
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Apply copies the supplied fields onto r.
func (p Payload) Apply(r *Record) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.FatherName != nil {
		r.FatherName = *p.FatherName
	}
	if p.DateOfBirth != nil {
		r.DateOfBirth = *p.DateOfBirth
	}
	if p.Email != nil {
		r.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		r.PhoneNumber = *p.PhoneNumber
	}
}
