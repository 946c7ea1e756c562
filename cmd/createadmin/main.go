// Command createadmin seeds a staff account that can log in to the admin API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"usercrud/internal"
	"usercrud/internal/application/services"
	"usercrud/internal/infrastructure/db/postgres"
	adminDB "usercrud/internal/infrastructure/db/postgres/admin"
	"usercrud/internal/infrastructure/jwt"
	"usercrud/internal/infrastructure/logger"
	"usercrud/internal/infrastructure/metrics"
)

func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password, defaults to $ADMIN_PASSWORD")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*email, *password); err != nil {
		fmt.Fprintln(os.Stderr, "createadmin:", err)
		os.Exit(1)
	}
}

func run(email, password string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	defer func() { _ = log.Sync() }()

	dsn, err := cfg.DBDSN()
	if err != nil {
		return err
	}
	if err = postgres.Migrate(dsn, log); err != nil {
		return err
	}
	pool, err := postgres.New(ctx, log, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	authService := services.NewAuthService(
		adminDB.NewRepository(pool),
		jwt.New(cfg.App.JWTSecret, cfg.App.JWTTTL),
		metrics.NewCounter(),
	)

	a, err := authService.CreateAdmin(ctx, email, password)
	if err != nil {
		if errors.Is(err, adminDB.ErrEmailAlreadyExists) {
			return fmt.Errorf("admin %s already exists", email)
		}
		return err
	}

	log.Info("admin created", zap.Int64("admin_id", int64(a.ID)), zap.String("email", a.Email))

	return nil
}
