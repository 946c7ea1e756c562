package ports

import (
	"context"

	"usercrud/internal/domain/admin"
)

type Auth interface {
	Login(ctx context.Context, email, password string) (string, error)
	CreateAdmin(ctx context.Context, email, password string) (*admin.Admin, error)
}
