package record

import (
	"context"
)

// Repository lookups return (nil, nil) when no row matches.
type Repository interface {
	FetchActive(ctx context.Context, params ListParams) (Records, int64, error)
	FetchDeleted(ctx context.Context, params ListParams) (Records, int64, error)
	FetchActiveByID(ctx context.Context, id ID) (*Record, error)
	FetchByID(ctx context.Context, id ID) (*Record, error)
	FetchActiveConflicts(ctx context.Context, email, phone string, excludeID ID) (Records, error)
	Create(ctx context.Context, r Record) (*Record, error)
	Update(ctx context.Context, r Record) (*Record, error)
	SoftDelete(ctx context.Context, id ID) (*Record, error)
	Restore(ctx context.Context, id ID) (*Record, error)
	Delete(ctx context.Context, id ID) (*Record, error)
}
