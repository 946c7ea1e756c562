package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"usercrud/config"
	"usercrud/internal/application/ports"
	"usercrud/internal/application/services"
	"usercrud/internal/infrastructure/db/postgres"
	"usercrud/internal/infrastructure/db/postgres/admin"
	"usercrud/internal/infrastructure/db/postgres/record"
	"usercrud/internal/infrastructure/jwt"
	"usercrud/internal/infrastructure/logger"
	"usercrud/internal/infrastructure/mailer"
	"usercrud/internal/infrastructure/metrics"
	"usercrud/internal/infrastructure/mq"
	"usercrud/internal/interface/api/rest"
	"usercrud/internal/interface/api/rest/middleware"
	"usercrud/pkg/rmqconsumer"
)

type App struct {
	logger     *zap.Logger
	cfg        config.Config
	db         *pgxpool.Pool
	httpSrv    *http.Server
	router     *gin.Engine
	mCounter   *prometheus.CounterVec
	jwtService *jwt.Service
	notifier   ports.Notifier
	mq         ports.RabbitMQ
	mqConsumer ports.EventConsumer
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (config.Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config.Config{}, fmt.Errorf("load .env: %w", err)
	}

	return config.Load(), nil
}

func NewApp(ctx context.Context) (*App, error) {
	// config
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	// logger
	log := logger.New(cfg.App.LogLevel, cfg.App.LogFile)

	if cfg.App.JWTSecret == "" {
		log.Fatal("SERVICE_JWT_SECRET must be set")
	}
	if err = cfg.MailReady(); err != nil {
		log.Fatal("mail config error", zap.Error(err))
	}

	// metrics
	mCounter := metrics.NewCounter()
	jwtService := jwt.New(cfg.App.JWTSecret, cfg.App.JWTTTL)

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = origins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", middleware.HeaderRequestID)
		corsCfg.ExposeHeaders = []string{middleware.HeaderRequestID}
		r.Use(cors.New(corsCfg))
	}
	r.Use(middleware.RequestLogGin(log, mCounter))
	r.Use(middleware.Authenticate(jwtService))

	// httpServer
	httpSrv := &http.Server{
		Addr:              cfg.App.Host + ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// db
	dbDsn, err := cfg.DBDSN()
	if err != nil {
		log.Fatal("DB config error", zap.Error(err))
	}
	if cfg.DB.MigrateOnBoot {
		if err = postgres.Migrate(dbDsn, log); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
	}
	dbPool, err := postgres.New(ctx, log, dbDsn)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// mail
	var notifier ports.Notifier
	if cfg.Mail.SendEnabled {
		notifier = mailer.NewMailgun(cfg.Mail.Domain, cfg.Mail.APIKey, cfg.Mail.APIBase, cfg.Mail.From, log)
	} else {
		notifier = mailer.NewLogNotifier(log)
	}

	// rabbitMQ
	rabbitDsn, err := cfg.AMQPDSN()
	if err != nil {
		log.Fatal("RabbitMQ config error", zap.Error(err))
	}
	rbMQ := mq.New(cfg.MQ, log)
	if err = rbMQ.Connect(ctx, rabbitDsn); err != nil {
		log.Fatal("failed to connect to rabbitMQ", zap.Error(err))
	}
	if err = rbMQ.Init(); err != nil {
		log.Fatal("failed init rabbitMQ", zap.Error(err))
	}
	// rmqConsumer
	rmqConsumer := rmqconsumer.New(cfg.MQ, log, mq.RoutingKeys)
	if err = rmqConsumer.Connect(rabbitDsn); err != nil {
		log.Fatal("failed to connect rabbitMQ consumer", zap.Error(err))
	}
	if err = rmqConsumer.Init(); err != nil {
		log.Fatal("failed to init rabbitMQ consumer", zap.Error(err))
	}

	return &App{
		logger:     log,
		cfg:        cfg,
		db:         dbPool,
		httpSrv:    httpSrv,
		router:     r,
		mCounter:   mCounter,
		jwtService: jwtService,
		notifier:   notifier,
		mq:         rbMQ,
		mqConsumer: rmqConsumer,
	}, nil
}

func (a *App) Close() {
	if a.mqConsumer != nil {
		_ = a.mqConsumer.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.mq != nil && a.mq.GetConn() != nil {
		_ = a.mq.GetConn().Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting "+a.cfg.App.Name, zap.String("addr", a.httpSrv.Addr))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		a.mq.PublisherWorker(ctx)
		return nil
	})

	g.Go(func() error {
		a.mqConsumer.DeliveryWorker(ctx)
		return nil
	})

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if a.httpSrv != nil {
		if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
			return err
		}
	}

	if err := g.Wait(); err != nil {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

func (a *App) InitControllers() {
	// repos
	recordRepo := record.NewRepository(a.db)
	adminRepo := admin.NewRepository(a.db)

	// services
	authService := services.NewAuthService(adminRepo, a.jwtService, a.mCounter)
	recordService := services.NewRecordService(recordRepo, a.mq, a.mCounter, a.logger)
	submissionNotifier := services.NewSubmissionNotifier(a.notifier, a.cfg.Mail.AdminEmail, a.mCounter)

	// controllers
	rest.NewAuthController(a.router, a.logger, authService)
	rest.NewRecordController(
		a.router,
		recordService,
		submissionNotifier,
		a.logger,
		middleware.RateLimitPerIP(a.cfg.HTTP.CreateRatePerMin, a.cfg.HTTP.CreateRateBurst, a.mCounter),
	)

	// ops
	a.router.GET(rest.RouteHealth, func(c *gin.Context) {
		if err := a.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	a.router.GET(rest.RouteMetrics, gin.WrapH(promhttp.Handler()))
}

func (a *App) Logger() *zap.Logger { return a.logger }
