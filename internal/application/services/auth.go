package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"usercrud/internal/application/ports"
	"usercrud/internal/domain/admin"
	"usercrud/internal/infrastructure/jwt"
	"usercrud/internal/infrastructure/metrics"
)

const minPasswordLen = 8

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrFailedToGenerateToken = errors.New("failed to generate token")
	ErrWeakPassword          = fmt.Errorf("password must be at least %d characters", minPasswordLen)
)

type AuthService struct {
	adminRepository admin.Repository
	jwtService      *jwt.Service
	mCounter        *prometheus.CounterVec
}

func NewAuthService(
	adminRepository admin.Repository,
	jwtService *jwt.Service,
	mCounter *prometheus.CounterVec,
) ports.Auth {
	return &AuthService{
		adminRepository: adminRepository,
		jwtService:      jwtService,
		mCounter:        mCounter,
	}
}

func (as *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	a, err := as.adminRepository.FetchByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	if a == nil || !a.IsStaff {
		as.mCounter.WithLabelValues(metrics.LoginFailed).Inc()
		return "", ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		as.mCounter.WithLabelValues(metrics.LoginFailed).Inc()
		return "", ErrInvalidCredentials
	}

	token, err := as.jwtService.GenerateJWT(strconv.FormatInt(int64(a.ID), 10), a.Role())
	if err != nil {
		return "", ErrFailedToGenerateToken
	}

	as.mCounter.WithLabelValues(metrics.LoginSucceeded).Inc()

	return token, nil
}

func (as *AuthService) CreateAdmin(ctx context.Context, email, password string) (*admin.Admin, error) {
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return as.adminRepository.Create(ctx, admin.Admin{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		IsStaff:      true,
	})
}
