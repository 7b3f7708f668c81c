package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/receipts/internal/render"
	"github.com/Skotchmaster/receipts/internal/shortcode"
	"github.com/Skotchmaster/receipts/pkg/config"
)

type Config struct {
	ServiceName string
	Port        string

	DBDriver       string
	DatabaseURL    string
	MigrateOnStart bool

	JWTSecret      []byte
	AccessTokenTTL time.Duration

	PublicHost string

	LineLength    int
	ReceiptHeader string
	StoreName     string
	Location      *time.Location

	ShortCodeLength      int
	ShortCodeMaxAttempts int

	LogLevel  string
	LogFormat string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	RedisAddr     string
	RedisPassword string
	SlipCacheTTL  time.Duration
}

// LoadDotEnv reads path into the environment when the file exists.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() (Config, error) {
	cfg := Config{
		ServiceName:    config.EnvDefault("SERVICE_NAME", "receipts"),
		Port:           config.EnvDefault("SERVER_PORT", "8080"),
		DBDriver:       config.EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL:    config.EnvDefault("DATABASE_URL", ""),
		MigrateOnStart: config.EnvBoolDefault("MIGRATE_ON_START", true),

		JWTSecret:      []byte(config.EnvDefault("JWT_SECRET", "")),
		AccessTokenTTL: time.Duration(config.EnvIntDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,

		PublicHost: config.EnvDefault("PUBLIC_HOST", ""),

		LineLength:    config.EnvIntDefault("LINE_LENGTH", render.DefaultWidth),
		ReceiptHeader: config.EnvDefault("RECEIPT_HEADER", render.DefaultHeader),
		StoreName:     config.EnvDefault("STORE_NAME", ""),

		ShortCodeLength:      config.EnvIntDefault("SHORT_CODE_LENGTH", shortcode.DefaultLength),
		ShortCodeMaxAttempts: config.EnvIntDefault("SHORT_CODE_MAX_ATTEMPTS", shortcode.DefaultMaxAttempts),

		LogLevel:  config.EnvDefault("LOG_LEVEL", "info"),
		LogFormat: config.EnvDefault("LOG_FORMAT", "json"),

		KafkaBrokers: config.CSV(config.EnvDefault("KAFKA_BROKERS", "")),

		ESURL:      config.EnvDefault("ES_URL", ""),
		ESUser:     config.EnvDefault("ES_USER", ""),
		ESPassword: config.EnvDefault("ES_PASSWORD", ""),
		ESIndex:    config.EnvDefault("ES_INDEX", "receipts"),

		RedisAddr:     config.EnvDefault("REDIS_ADDR", ""),
		RedisPassword: config.EnvDefault("REDIS_PASSWORD", ""),
		SlipCacheTTL:  config.EnvDurationDefault("SLIP_CACHE_TTL", time.Hour),
	}

	if err := config.RequireNonEmpty(cfg.DatabaseURL, "DATABASE_URL"); err != nil {
		return Config{}, err
	}
	if err := config.RequireNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET"); err != nil {
		return Config{}, err
	}

	loc, err := time.LoadLocation(config.EnvDefault("RECEIPT_TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("RECEIPT_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.LineLength <= 0 {
		return Config{}, fmt.Errorf("LINE_LENGTH must be positive, got %d", cfg.LineLength)
	}
	if cfg.ShortCodeLength <= 0 || cfg.ShortCodeMaxAttempts <= 0 {
		return Config{}, fmt.Errorf("SHORT_CODE_LENGTH and SHORT_CODE_MAX_ATTEMPTS must be positive")
	}
	if cfg.AccessTokenTTL <= 0 {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	return cfg, nil
}

func (c Config) SlipOptions() render.Options {
	return render.Options{
		Width:     c.LineLength,
		Header:    c.ReceiptHeader,
		StoreName: c.StoreName,
		Location:  c.Location,
	}
}
