package record

import (
	"time"
)

const DateLayout = "2006-01-02"

type (
	Response struct {
		ID          int64      `json:"id"`
		Name        string     `json:"name"`
		FatherName  string     `json:"father_name"`
		DateOfBirth string     `json:"date_of_birth"`
		Email       string     `json:"email"`
		PhoneNumber string     `json:"phone_number"`
		IsDeleted   bool       `json:"is_deleted"`
		DeletedAt   *time.Time `json:"deleted_at"`
		CreatedAt   time.Time  `json:"created_at"`
		UpdatedAt   time.Time  `json:"updated_at"`
	}
	Responses    []Response
	PageResponse struct {
		Count    int64     `json:"count"`
		Page     int       `json:"page"`
		PageSize int       `json:"page_size"`
		Results  Responses `json:"results"`
	}
)
