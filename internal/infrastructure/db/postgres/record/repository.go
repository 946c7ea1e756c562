package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"usercrud/internal/domain/record"
	"usercrud/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) record.Repository {
	return &Repository{db: db}
}

func scan(row pgx.Row) (*Record, error) {
	r := new(Record)
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.FatherName,
		&r.DateOfBirth,
		&r.Email,
		&r.PhoneNumber,

		&r.IsDeleted,
		&r.DeletedAt,

		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// one runs a single-row query. No row yields (nil, nil).
func (r *Repository) one(ctx context.Context, sql string, args ...any) (*record.Record, error) {
	m, err := scan(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if vErr := uniqueToValidation(err); vErr != nil {
			return nil, vErr
		}
		return nil, err
	}

	return fromDBModel(m), nil
}

func (r *Repository) many(ctx context.Context, sql string, args ...any) (record.Records, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rs Records
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, err
		}
		rs = append(rs, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(rs), nil
}

func (r *Repository) page(ctx context.Context, v view, p record.ListParams) (record.Records, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, v.count(), p.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	rs, err := r.many(ctx, v.selectPage(), p.Search, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("select records: %w", err)
	}

	return rs, total, nil
}

func (r *Repository) FetchActive(ctx context.Context, p record.ListParams) (record.Records, int64, error) {
	return r.page(ctx, activeView(), p)
}

func (r *Repository) FetchDeleted(ctx context.Context, p record.ListParams) (record.Records, int64, error) {
	return r.page(ctx, deletedView(), p)
}

func (r *Repository) FetchActiveByID(ctx context.Context, id record.ID) (*record.Record, error) {
	return r.one(ctx, activeView().selectByID(), int64(id))
}

func (r *Repository) FetchByID(ctx context.Context, id record.ID) (*record.Record, error) {
	return r.one(ctx, allView().selectByID(), int64(id))
}

func (r *Repository) FetchActiveConflicts(ctx context.Context, email, phone string, excludeID record.ID) (record.Records, error) {
	return r.many(ctx, activeView().selectConflicts(), email, phone, int64(excludeID))
}

func (r *Repository) Create(ctx context.Context, req record.Record) (*record.Record, error) {
	return r.one(ctx, InsertRecord,
		req.Name, req.FatherName, req.DateOfBirth, req.Email, req.PhoneNumber,
	)
}

func (r *Repository) Update(ctx context.Context, req record.Record) (*record.Record, error) {
	return r.one(ctx, UpdateActiveRecord,
		req.Name, req.FatherName, req.DateOfBirth, req.Email, req.PhoneNumber, int64(req.ID),
	)
}

func (r *Repository) SoftDelete(ctx context.Context, id record.ID) (*record.Record, error) {
	return r.one(ctx, SoftDeleteRecord, int64(id))
}

func (r *Repository) Restore(ctx context.Context, id record.ID) (*record.Record, error) {
	return r.one(ctx, RestoreRecord, int64(id))
}

func (r *Repository) Delete(ctx context.Context, id record.ID) (*record.Record, error) {
	return r.one(ctx, DeleteRecord, int64(id))
}

// uniqueToValidation turns a partial unique index violation into the same
// field error the read-side check produces.
func uniqueToValidation(err error) error {
	name, ok := postgres.UniqueViolation(err)
	if !ok {
		return nil
	}
	switch name {
	case ConstraintEmailActive:
		return record.NewFieldError(record.FieldEmail, record.MsgEmailTaken)
	case ConstraintPhoneActive:
		return record.NewFieldError(record.FieldPhoneNumber, record.MsgPhoneTaken)
	}
	return nil
}
