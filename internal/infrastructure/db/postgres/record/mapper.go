package record

import (
	domain "usercrud/internal/domain/record"
)

func fromDBModel(model *Record) *domain.Record {
	var r = &domain.Record{
		ID:          domain.ID(model.ID),
		Name:        model.Name,
		FatherName:  model.FatherName,
		DateOfBirth: model.DateOfBirth,
		Email:       model.Email,
		PhoneNumber: model.PhoneNumber,

		IsDeleted: model.IsDeleted,
		DeletedAt: model.DeletedAt,

		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}

	return r
}

func fromDBModels(models Records) domain.Records {
	rs := make(domain.Records, len(models))
	for idx, r := range models {
		rs[idx] = fromDBModel(r)
	}

	return rs
}
