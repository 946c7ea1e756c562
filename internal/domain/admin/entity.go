package admin

import (
	"time"
)

const RoleAdmin = "admin"

type (
	ID    int64
	Admin struct {
		ID           ID
		Email        string
		PasswordHash string
		IsStaff      bool

		CreatedAt time.Time
	}
)

// Role is the token role granted to this account.
func (a *Admin) Role() string {
	if a.IsStaff {
		return RoleAdmin
	}
	return ""
}
