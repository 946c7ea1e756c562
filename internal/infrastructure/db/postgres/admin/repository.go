package admin

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"usercrud/internal/domain/admin"
	"usercrud/internal/infrastructure/db/postgres"
)

const (
	SelectAdminByEmail = `
		SELECT id, email, password_hash, is_staff, created_at
		FROM admins
		WHERE lower(email) = lower($1)
	`
	InsertAdmin = `
		INSERT INTO admins (email, password_hash, is_staff)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, is_staff, created_at
	`
)

var ErrEmailAlreadyExists = errors.New("admin email already exists")

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) admin.Repository {
	return &Repository{db: db}
}

func scan(row pgx.Row) (*admin.Admin, error) {
	var (
		id int64
		a  admin.Admin
	)
	if err := row.Scan(
		&id,
		&a.Email,
		&a.PasswordHash,
		&a.IsStaff,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.ID = admin.ID(id)

	return &a, nil
}

func (r *Repository) FetchByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	a, err := scan(r.db.QueryRow(ctx, SelectAdminByEmail, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return a, nil
}

func (r *Repository) Create(ctx context.Context, req admin.Admin) (*admin.Admin, error) {
	a, err := scan(r.db.QueryRow(ctx, InsertAdmin, req.Email, req.PasswordHash, req.IsStaff))
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	return a, nil
}
