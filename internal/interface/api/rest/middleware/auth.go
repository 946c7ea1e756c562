package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"usercrud/internal/domain/admin"
	"usercrud/internal/infrastructure/jwt"
)

const (
	CtxUserRole = "userRole"
	CtxUserID   = "userID"
	CtxIdentity = "identity"
)

// Identity describes the caller. The zero value is an anonymous caller.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAuthenticated() bool { return i.UserID != "" }

func (i Identity) IsStaff() bool { return i.IsAuthenticated() && i.Role == admin.RoleAdmin }

func IdentityFrom(c *gin.Context) Identity {
	if v, ok := c.Get(CtxIdentity); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}

// Authenticate resolves an optional bearer token. Requests without an
// Authorization header continue anonymously, a bad token is rejected.
func Authenticate(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(CtxIdentity, Identity{})
			c.Next()
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader || tokenStr == "" {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token format"},
			)
			return
		}

		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token"},
			)
			return
		}

		c.Set(CtxUserRole, claims.Role)
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxIdentity, Identity{UserID: claims.UserID, Role: claims.Role})

		c.Next()
	}
}
