// auth_controller_test.go
package rest

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"usercrud/internal/application/ports"
	"usercrud/internal/application/services"
	"usercrud/internal/domain/admin"
	"usercrud/internal/interface/api/rest/dto/auth"
)

type fakeAuthService struct {
	LoginFunc func(ctx context.Context, email, password string) (string, error)
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return f.LoginFunc(ctx, email, password)
}

func (f *fakeAuthService) CreateAdmin(context.Context, string, string) (*admin.Admin, error) {
	return nil, errors.New("not used")
}

func newRouterWithAuthController(t *testing.T, as ports.Auth) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	NewAuthController(r, zap.NewNop(), as)
	return r
}

func validLogin() auth.LoginRequest {
	return auth.LoginRequest{
		Email:    "admin@example.com",
		Password: "VeryStrongPassw0rd!",
	}
}

func TestAuthController_LoginHandler(t *testing.T) {
	type want struct {
		code        int
		jsonEq      map[string]any
		jsonHasKeys []string
	}

	tests := []struct {
		name  string
		body  any
		login func(ctx context.Context, email, password string) (string, error)
		want  want
	}{
		{
			name: "invalid JSON",
			body: "{bad json",
			want: want{
				code:   http.StatusBadRequest,
				jsonEq: map[string]any{"error": "invalid json"},
			},
		},
		{
			name: "validation error",
			body: auth.LoginRequest{Email: "not-an-email", Password: ""},
			want: want{
				code:        http.StatusBadRequest,
				jsonHasKeys: []string{"error", "details"},
			},
		},
		{
			name: "invalid credentials -> 401",
			body: validLogin(),
			login: func(ctx context.Context, email, password string) (string, error) {
				return "", services.ErrInvalidCredentials
			},
			want: want{
				code:   http.StatusUnauthorized,
				jsonEq: map[string]any{"error": services.ErrInvalidCredentials.Error()},
			},
		},
		{
			name: "token failure -> 500",
			body: validLogin(),
			login: func(ctx context.Context, email, password string) (string, error) {
				return "", services.ErrFailedToGenerateToken
			},
			want: want{
				code:   http.StatusInternalServerError,
				jsonEq: map[string]any{"error": "failed to log in"},
			},
		},
		{
			name: "success",
			body: validLogin(),
			login: func(ctx context.Context, email, password string) (string, error) {
				assert.Equal(t, "admin@example.com", email)
				return "tok_123", nil
			},
			want: want{
				code:        http.StatusOK,
				jsonEq:      map[string]any{"access_token": "tok_123", "token_type": "Bearer"},
				jsonHasKeys: []string{"access_token", "token_type"},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			as := &fakeAuthService{LoginFunc: tt.login}
			if as.LoginFunc == nil {
				as.LoginFunc = func(context.Context, string, string) (string, error) {
					return "", errors.New("not used")
				}
			}

			r := newRouterWithAuthController(t, as)
			rr := doReq(t, r, http.MethodPost, RouteLogin, tt.body, nil)
			require.Equal(t, tt.want.code, rr.Code)

			resp := decode(t, rr)
			for k, v := range tt.want.jsonEq {
				assert.Equal(t, v, resp[k], "field %q mismatch", k)
			}
			for _, k := range tt.want.jsonHasKeys {
				assert.Contains(t, resp, k, "expected key %q", k)
			}
		})
	}
}
