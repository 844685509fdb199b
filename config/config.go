package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

// PeerConfig addresses one peer service.
type PeerConfig struct {
	// BaseURL is the peer's base address, e.g. http://user-service:8081.
	BaseURL string
	// RequestTimeout bounds a single request/response exchange.
	RequestTimeout time.Duration
}

// RedisConfig holds cache backend settings.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// BreakerConfig holds request-path circuit breaker settings.
type BreakerConfig struct {
	FailureThreshold uint32
	ResetTimeout     time.Duration
}

// RetryConfig holds retry executor settings.
type RetryConfig struct {
	Attempts          uint
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	PerAttemptTimeout time.Duration
	Jitter            bool
}

// HealthConfig holds dependency health monitor settings.
type HealthConfig struct {
	Interval     time.Duration
	ProbeTimeout time.Duration
}

// DispatchConfig holds fire-and-forget dispatcher settings.
type DispatchConfig struct {
	Workers   int
	QueueSize int
}

// Config is the full configuration of the resilience layer.
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string

	UserService         PeerConfig
	NotificationService PeerConfig
	AchievementService  PeerConfig

	Redis    RedisConfig
	Breaker  BreakerConfig
	Retry    RetryConfig
	Health   HealthConfig
	Dispatch DispatchConfig
}

// Load reads configuration from the environment. Every value has a default;
// environment variables use upper snake case, e.g. USER_SERVICE_URL,
// BREAKER_FAILURE_THRESHOLD, HEALTH_INTERVAL.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("service.name", "community-service")
	v.SetDefault("environment", "development")
	v.SetDefault("log.level", "info")

	v.SetDefault("user_service.url", "http://user-service:8081")
	v.SetDefault("user_service.timeout", "5s")
	v.SetDefault("notification_service.url", "http://notification-service:8082")
	v.SetDefault("notification_service.timeout", "5s")
	v.SetDefault("achievement_service.url", "http://achievement-service:8083")
	v.SetDefault("achievement_service.timeout", "5s")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.reset_timeout", "60s")

	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.base_delay", "200ms")
	v.SetDefault("retry.max_delay", "5s")
	v.SetDefault("retry.per_attempt_timeout", "2s")
	v.SetDefault("retry.jitter", false)

	v.SetDefault("health.interval", "30s")
	v.SetDefault("health.probe_timeout", "5s")

	v.SetDefault("dispatch.workers", 4)
	v.SetDefault("dispatch.queue_size", 256)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		ServiceName: v.GetString("service.name"),
		Environment: v.GetString("environment"),
		LogLevel:    v.GetString("log.level"),
		UserService: PeerConfig{
			BaseURL:        v.GetString("user_service.url"),
			RequestTimeout: v.GetDuration("user_service.timeout"),
		},
		NotificationService: PeerConfig{
			BaseURL:        v.GetString("notification_service.url"),
			RequestTimeout: v.GetDuration("notification_service.timeout"),
		},
		AchievementService: PeerConfig{
			BaseURL:        v.GetString("achievement_service.url"),
			RequestTimeout: v.GetDuration("achievement_service.timeout"),
		},
		Redis: RedisConfig{
			Addr:         v.GetString("redis.addr"),
			Password:     v.GetString("redis.password"),
			DB:           v.GetInt("redis.db"),
			PoolSize:     v.GetInt("redis.pool_size"),
			DialTimeout:  v.GetDuration("redis.dial_timeout"),
			ReadTimeout:  v.GetDuration("redis.read_timeout"),
			WriteTimeout: v.GetDuration("redis.write_timeout"),
		},
		Breaker: BreakerConfig{
			FailureThreshold: v.GetUint32("breaker.failure_threshold"),
			ResetTimeout:     v.GetDuration("breaker.reset_timeout"),
		},
		Retry: RetryConfig{
			Attempts:          v.GetUint("retry.attempts"),
			BaseDelay:         v.GetDuration("retry.base_delay"),
			MaxDelay:          v.GetDuration("retry.max_delay"),
			PerAttemptTimeout: v.GetDuration("retry.per_attempt_timeout"),
			Jitter:            v.GetBool("retry.jitter"),
		},
		Health: HealthConfig{
			Interval:     v.GetDuration("health.interval"),
			ProbeTimeout: v.GetDuration("health.probe_timeout"),
		},
		Dispatch: DispatchConfig{
			Workers:   v.GetInt("dispatch.workers"),
			QueueSize: v.GetInt("dispatch.queue_size"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values that would misbehave at
// runtime.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.ServiceName, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	); err != nil {
		return err
	}

	for name, peer := range map[string]PeerConfig{
		"user_service":         c.UserService,
		"notification_service": c.NotificationService,
		"achievement_service":  c.AchievementService,
	} {
		if err := peer.validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	// Numeric rules carry Required because ozzo skips other rules on zero
	// values: a zero attempt budget or threshold must be rejected, not
	// silently allowed.
	if err := validation.ValidateStruct(&c.Redis,
		validation.Field(&c.Redis.Addr, validation.Required),
		validation.Field(&c.Redis.PoolSize, validation.Required, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := validation.ValidateStruct(&c.Retry,
		validation.Field(&c.Retry.Attempts, validation.Required, validation.Min(uint(1))),
		validation.Field(&c.Retry.BaseDelay, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Retry.PerAttemptTimeout, validation.Required, validation.Min(time.Millisecond)),
	); err != nil {
		return fmt.Errorf("retry: %w", err)
	}

	if err := validation.ValidateStruct(&c.Breaker,
		validation.Field(&c.Breaker.FailureThreshold, validation.Required, validation.Min(uint32(1))),
		validation.Field(&c.Breaker.ResetTimeout, validation.Required, validation.Min(time.Second)),
	); err != nil {
		return fmt.Errorf("breaker: %w", err)
	}

	if err := validation.ValidateStruct(&c.Health,
		validation.Field(&c.Health.Interval, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Health.ProbeTimeout, validation.Required, validation.Min(time.Millisecond)),
	); err != nil {
		return fmt.Errorf("health: %w", err)
	}

	if err := validation.ValidateStruct(&c.Dispatch,
		validation.Field(&c.Dispatch.Workers, validation.Required, validation.Min(1)),
		validation.Field(&c.Dispatch.QueueSize, validation.Required, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	return nil
}

func (p PeerConfig) validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.BaseURL, validation.Required, is.URL),
		validation.Field(&p.RequestTimeout, validation.Min(time.Millisecond)),
	)
}
