package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full process configuration, read once at startup.
type Config struct {
	Server       Server
	Database     DatabaseConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	Telegram     TelegramConfig
	Push         PushConfig
	Deletion     DeletionConfig
	IPReputation IPReputationConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	LogLevel      string
	JWTSigningKey string
	JWTIssuer     string
	AdminAPIToken string
	AppBaseURL    string

	// RequestTimeout bounds internal and authenticated handlers; WriteTimeout
	// is kept above it so the timeout response can still be written.
	RequestTimeout    time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// DatabaseConfig selects the Postgres stores. Empty URL means in-memory stores.
type DatabaseConfig struct {
	URL string
}

// RedisConfig selects the Redis stores and cache. Empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the Kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// TelegramConfig enables the direct-message channel when BotToken is set.
type TelegramConfig struct {
	BotToken    string
	APIEndpoint string
	SendTimeout time.Duration
}

// PushConfig enables browser push when both VAPID keys are set.
type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
	TTL             int
	Concurrency     int
	SendTimeout     time.Duration
}

// DeletionConfig bounds the confirmation-code workflow.
type DeletionConfig struct {
	CodeTTL     time.Duration
	MaxAttempts int
}

// IPReputationConfig enables registration-time IP lookups when URL is set.
type IPReputationConfig struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Load builds a Config from environment variables so main stays lean.
func Load() (*Config, error) {
	var errs []string
	dur := func(key string, def time.Duration) time.Duration {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid duration %q", key, v))
			return def
		}
		return d
	}
	num := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid positive integer %q", key, v))
			return def
		}
		return n
	}

	cfg := &Config{
		Server: Server{
			Addr:          getenv("PEERHELP_ADDR", ":8080"),
			LogLevel:      getenv("LOG_LEVEL", "info"),
			JWTSigningKey: getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     getenv("JWT_ISSUER", "peerhelp"),
			AdminAPIToken: os.Getenv("ADMIN_API_TOKEN"),
			AppBaseURL:    strings.TrimRight(getenv("APP_BASE_URL", "/"), "/") + "/",

			RequestTimeout:    dur("HTTP_REQUEST_TIMEOUT", 30*time.Second),
			ReadHeaderTimeout: dur("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			WriteTimeout:      dur("HTTP_WRITE_TIMEOUT", 35*time.Second),
			IdleTimeout:       dur("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout:   dur("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     num("REDIS_POOL_SIZE", 10),
			MinIdleConns: num("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  dur("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  dur("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: dur("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: getenv("KAFKA_AUDIT_TOPIC", "peerhelp.audit"),
		},
		Telegram: TelegramConfig{
			BotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
			APIEndpoint: os.Getenv("TELEGRAM_API_ENDPOINT"),
			SendTimeout: dur("TELEGRAM_SEND_TIMEOUT", 5*time.Second),
		},
		Push: PushConfig{
			VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
			Subscriber:      getenv("VAPID_SUBSCRIBER", "mailto:admin@example.com"),
			TTL:             num("PUSH_TTL", 3600),
			Concurrency:     num("PUSH_CONCURRENCY", 4),
			SendTimeout:     dur("PUSH_SEND_TIMEOUT", 5*time.Second),
		},
		Deletion: DeletionConfig{
			CodeTTL:     dur("DELETION_CODE_TTL", 10*time.Minute),
			MaxAttempts: num("DELETION_MAX_ATTEMPTS", 3),
		},
		IPReputation: IPReputationConfig{
			URL:      os.Getenv("IP_REPUTATION_URL"),
			Timeout:  dur("IP_REPUTATION_TIMEOUT", 2*time.Second),
			CacheTTL: dur("IP_REPUTATION_CACHE_TTL", 24*time.Hour),
		},
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// PushEnabled reports whether both VAPID keys are present.
func (c PushConfig) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
