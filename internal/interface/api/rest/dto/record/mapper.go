package record

import (
	"fmt"
	"time"

	"usercrud/internal/domain/record"
)

func ToResponse(r record.Record) Response {
	var res = Response{
		ID:          int64(r.ID),
		Name:        r.Name,
		FatherName:  r.FatherName,
		DateOfBirth: r.DateOfBirth.Format(DateLayout),
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		IsDeleted:   r.IsDeleted,
		DeletedAt:   r.DeletedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	return res
}

func ToResponses(rs record.Records) Responses {
	res := make(Responses, len(rs))
	for idx, r := range rs {
		res[idx] = ToResponse(*r)
	}

	return res
}

func ToPageResponse(p record.Page) PageResponse {
	return PageResponse{
		Count:    p.Count,
		Page:     p.Page,
		PageSize: p.PageSize,
		Results:  ToResponses(p.Records),
	}
}

// ToPayload expects a request that already passed validation.
func ToPayload(req Request) (record.Payload, error) {
	p := record.Payload{
		Name:        req.Name,
		FatherName:  req.FatherName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	if req.DateOfBirth != nil {
		d, err := time.Parse(DateLayout, *req.DateOfBirth)
		if err != nil {
			return record.Payload{}, fmt.Errorf("invalid date_of_birth %q: %w", *req.DateOfBirth, err)
		}
		p.DateOfBirth = &d
	}

	return p, nil
}
