package config

import (
	"os"
	"strconv"
	"time"
)

// Config aggregates the per-concern configuration blocks so main stays lean.
type Config struct {
	Server    Server
	Postgres  Postgres
	Redis     Redis
	Kafka     Kafka
	Authority Authority
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	AdminSecret   string
	JWTSigningKey string
}

// Postgres captures database connection configuration.
type Postgres struct {
	URL          string
	MaxOpenConns int
}

// Redis captures the realtime channel backend configuration.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures the audit trail backend configuration.
type Kafka struct {
	Brokers string
	Topic   string
}

// Authority locates the external issuer/verifier authorities and the SaaS.
type Authority struct {
	IssuerURL   string
	VerifierURL string
	SaasURL     string
	Timeout     time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:          envOr("VERIPORT_ADDR", ":3031"),
			AdminSecret:   os.Getenv("ADMIN_SECRET"),
			JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		},
		Postgres: Postgres{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envIntOr("DATABASE_MAX_OPEN_CONNS", 25),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers: os.Getenv("KAFKA_BROKERS"),
			Topic:   envOr("KAFKA_AUDIT_TOPIC", "veriport.audit"),
		},
		Authority: Authority{
			IssuerURL:   os.Getenv("ISSUER_URL"),
			VerifierURL: os.Getenv("VERIFIER_URL"),
			SaasURL:     os.Getenv("SAAS_URL"),
			Timeout:     envDurationOr("AUTHORITY_TIMEOUT", 20*time.Second),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
