// Package config загружает конфигурацию сервера из окружения.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config конфигурация сервера синхронизации.
type Config struct {
	// Addr адрес HTTP сервера
	Addr string `env:"STATEKEEPER_ADDR" envDefault:":8080"`
	// DatabasePath путь к файлу SQLite с durable прогрессом
	DatabasePath string `env:"STATEKEEPER_DB_PATH" envDefault:"statekeeper.db"`
	// CachePath путь к файлу горячего кеша
	CachePath string `env:"STATEKEEPER_CACHE_PATH" envDefault:"statekeeper-cache.db"`
	// JWTSecret секрет проверки токенов; должен совпадать с
	// секретом сервиса аккаунтов
	JWTSecret string `env:"STATEKEEPER_JWT_SECRET,required,notEmpty"`
	// SealSecret мастер-секрет запечатывания состояний, минимум
	// 32 байта
	SealSecret string `env:"STATEKEEPER_SEAL_SECRET,required,notEmpty"`
	// LogLevel уровень логирования: debug, info, warn, error
	LogLevel string `env:"STATEKEEPER_LOG_LEVEL" envDefault:"info"`

	// TokenTTL срок действия токенов, выпускаемых admin-утилитами
	TokenTTL time.Duration `env:"STATEKEEPER_TOKEN_TTL" envDefault:"24h"`
	// SaveMinInterval минимальный интервал между durable
	// сохранениями одного пользователя
	SaveMinInterval time.Duration `env:"STATEKEEPER_SAVE_MIN_INTERVAL" envDefault:"500ms"`
	// CacheStateTTL время жизни состояния в горячем кеше
	CacheStateTTL time.Duration `env:"STATEKEEPER_CACHE_STATE_TTL" envDefault:"1h"`
	// CacheClientTTL время жизни информации об устройстве
	CacheClientTTL time.Duration `env:"STATEKEEPER_CACHE_CLIENT_TTL" envDefault:"30m"`
	// WorkerPollInterval период опроса очереди реконсиляции
	WorkerPollInterval time.Duration `env:"STATEKEEPER_WORKER_POLL_INTERVAL" envDefault:"5s"`
	// WorkerCleanupInterval период фоновой уборки
	WorkerCleanupInterval time.Duration `env:"STATEKEEPER_WORKER_CLEANUP_INTERVAL" envDefault:"1h"`
	// ShutdownTimeout лимит graceful shutdown
	ShutdownTimeout time.Duration `env:"STATEKEEPER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// RateLimitWindow окно rate limit'а
	RateLimitWindow time.Duration `env:"STATEKEEPER_RATE_LIMIT_WINDOW" envDefault:"1m"`

	// MaxPayloadBytes потолок размера состояния
	MaxPayloadBytes int `env:"STATEKEEPER_MAX_PAYLOAD_BYTES" envDefault:"5242880"`
	// RateLimitPerWindow запросов с одного IP за окно
	RateLimitPerWindow int `env:"STATEKEEPER_RATE_LIMIT" envDefault:"120"`
	// SaveRateLimitPerWindow запросов save с одного IP за окно
	SaveRateLimitPerWindow int `env:"STATEKEEPER_SAVE_RATE_LIMIT" envDefault:"60"`
	// HistoryKeep хранимых записей истории на пользователя
	HistoryKeep int `env:"STATEKEEPER_HISTORY_KEEP" envDefault:"50"`
}

// Load читает конфигурацию из переменных окружения.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if len(cfg.SealSecret) < 32 {
		return nil, fmt.Errorf("seal secret must be at least 32 bytes, got %d", len(cfg.SealSecret))
	}
	return cfg, nil
}
