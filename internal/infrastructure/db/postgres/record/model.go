package record

import (
	"time"
)

type (
	Record struct {
		ID          int64
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
)
