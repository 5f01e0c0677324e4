package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config menampung seluruh parameter startup.
// Tidak ada koneksi global: struct ini dibuat sekali di main lalu
// diteruskan eksplisit ke wiring aplikasi.
type Config struct {
	DB     DBConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	HTTP   HTTPConfig
	Worker WorkerConfig
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Broker string
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// Load membaca konfigurasi dari environment dengan default yang aman
// untuk pengembangan lokal.
func Load() (Config, error) {
	cfg := Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "leavedesk"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Broker: os.Getenv("KAFKA_BROKER"),
		},
		HTTP: HTTPConfig{
			Port:         getEnv("PORT", "3000"),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Worker: WorkerConfig{
			PollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", 3*time.Second),
			BatchSize:    getEnvInt("OUTBOX_BATCH_SIZE", 50),
		},
	}

	if cfg.DB.Name == "" {
		return Config{}, fmt.Errorf("DB_NAME is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
