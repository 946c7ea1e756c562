package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type (
	APP struct {
		Name      string
		Host      string
		Port      string
		Env       string
		LogLevel  string
		LogFile   string
		JWTSecret string
		JWTTTL    time.Duration
	}
	HTTP struct {
		CORSAllowedOrigins string
		CreateRatePerMin   int
		CreateRateBurst    int
	}
	DB struct {
		User          string
		Password      string
		Name          string
		Host          string
		Port          string
		SSLMode       string
		MigrateOnBoot bool
	}
	MQ struct {
		User         string
		Password     string
		Vhost        string
		Host         string
		AmqpPort     string
		Exchange     string
		ExchangeType string
		QueueName    string
	}
	Mail struct {
		SendEnabled bool
		Domain      string
		APIKey      string
		APIBase     string
		From        string
		AdminEmail  string
	}

	Config struct {
		App  APP
		HTTP HTTP
		DB   DB
		MQ   MQ
		Mail Mail
	}
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func Load() Config {
	app := APP{
		Name:      getEnv("SERVICE_NAME", "usercrud"),
		Host:      getEnv("SERVICE_HOST", ""),
		Port:      getEnv("SERVICE_PORT", "8080"),
		Env:       getEnv("SERVICE_ENV", ""),
		LogLevel:  getEnv("SERVICE_LOG_LEVEL", "info"),
		LogFile:   getEnv("SERVICE_LOG_FILE", ""),
		JWTSecret: getEnv("SERVICE_JWT_SECRET", ""),
		JWTTTL:    getDuration("SERVICE_JWT_TTL", time.Hour),
	}
	httpCfg := HTTP{
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		CreateRatePerMin:   getInt("CREATE_RATE_PER_MINUTE", 30),
		CreateRateBurst:    getInt("CREATE_RATE_BURST", 10),
	}
	db := DB{
		User:          getEnv("POSTGRES_USER", ""),
		Password:      getEnv("POSTGRES_PASSWORD", ""),
		Name:          getEnv("POSTGRES_DB", ""),
		Host:          getEnv("POSTGRES_HOST", ""),
		Port:          getEnv("POSTGRES_PORT", ""),
		SSLMode:       getEnv("POSTGRES_SSLMODE", "disable"),
		MigrateOnBoot: getBool("POSTGRES_MIGRATE_ON_BOOT", true),
	}
	mq := MQ{
		User:         getEnv("RABBITMQ_USER", ""),
		Password:     getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:        getEnv("RABBITMQ_VHOST", ""),
		Host:         getEnv("RABBITMQ_HOST", ""),
		AmqpPort:     getEnv("RABBITMQ_AMQP_PORT", ""),
		Exchange:     getEnv("RABBITMQ_EXCHANGE", "usercrud.records"),
		ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", "direct"),
		QueueName:    getEnv("RABBITMQ_QUEUE_NAME", "usercrud.records.audit"),
	}
	mail := Mail{
		SendEnabled: getBool("MAIL_SEND_ENABLED", true),
		Domain:      getEnv("MAILGUN_DOMAIN", ""),
		APIKey:      getEnv("MAILGUN_API_KEY", ""),
		APIBase:     getEnv("MAILGUN_API_BASE", ""),
		From:        getEnv("DEFAULT_FROM_EMAIL", ""),
		AdminEmail:  getEnv("ADMIN_EMAIL", ""),
	}

	return Config{
		App:  app,
		HTTP: httpCfg,
		DB:   db,
		MQ:   mq,
		Mail: mail,
	}
}

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s?sslmode=%s",
		url.UserPassword(c.DB.User, c.DB.Password).String(),
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
		c.DB.SSLMode,
	), nil
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}

// MailReady reports whether outbound mail has everything Mailgun needs.
func (c Config) MailReady() error {
	if c.Mail.AdminEmail == "" || c.Mail.From == "" {
		return fmt.Errorf("invalid mail config: DEFAULT_FROM_EMAIL and ADMIN_EMAIL are required")
	}
	if c.Mail.SendEnabled && (c.Mail.Domain == "" || c.Mail.APIKey == "") {
		return fmt.Errorf("invalid mail config: mailgun domain and api key are required")
	}
	return nil
}

// CORSOrigins returns the allowed origins as a slice.
func (c Config) CORSOrigins() []string {
	parts := strings.Split(c.HTTP.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}
