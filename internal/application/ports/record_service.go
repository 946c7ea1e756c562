package ports

import (
	"context"

	"usercrud/internal/domain/record"
)

type RecordService interface {
	Create(ctx context.Context, p record.Payload) (*record.Record, error)
	ListActive(ctx context.Context, params record.ListParams) (*record.Page, error)
	GetActive(ctx context.Context, id record.ID) (*record.Record, error)
	Update(ctx context.Context, id record.ID, p record.Payload, partial bool) (*record.Record, error)
	SoftDelete(ctx context.Context, id record.ID) error
	Restore(ctx context.Context, id record.ID) (*record.Record, error)
	HardDelete(ctx context.Context, id record.ID) error
	ListDeleted(ctx context.Context, params record.ListParams) (*record.Page, error)
}
