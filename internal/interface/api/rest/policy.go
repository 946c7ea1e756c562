package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"usercrud/internal/interface/api/rest/middleware"
)

type Action string

const (
	ActionCreate        Action = "create"
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
	ActionListDeleted   Action = "list_deleted"
	ActionHardDelete    Action = "hard_delete"
	ActionRestore       Action = "restore"
)

// Predicate decides whether the caller may perform an action.
type Predicate func(id middleware.Identity) bool

func AllowAny(middleware.Identity) bool { return true }

func IsAdmin(id middleware.Identity) bool { return id.IsStaff() }

// Policy maps every record action to its permission check.
// Actions missing from the table are denied.
type Policy map[Action]Predicate

var RecordPolicy = Policy{
	ActionCreate:        AllowAny,
	ActionList:          IsAdmin,
	ActionRetrieve:      IsAdmin,
	ActionUpdate:        IsAdmin,
	ActionPartialUpdate: IsAdmin,
	ActionDestroy:       IsAdmin,
	ActionListDeleted:   IsAdmin,
	ActionHardDelete:    IsAdmin,
	ActionRestore:       IsAdmin,
}

func (p Policy) Allows(action Action, id middleware.Identity) bool {
	allow, ok := p[action]
	return ok && allow(id)
}

// Require rejects anonymous callers with 401 and authenticated ones with 403.
func (p Policy) Require(action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.IdentityFrom(c)
		if p.Allows(action, id) {
			c.Next()
			return
		}

		if !id.IsAuthenticated() {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "authentication credentials were not provided"},
			)
			return
		}
		c.AbortWithStatusJSON(
			http.StatusForbidden,
			gin.H{"error": "you do not have permission to perform this action"},
		)
	}
}
