// Package api содержит проводные типы HTTP API сервера.
package api

import "encoding/json"

// SaveRequest запрос на сохранение игрового состояния.
type SaveRequest struct {
	// State сериализованное игровое состояние
	State json.RawMessage `json:"state"`
	// Reason причина сохранения: manual, auto, critical, exit
	Reason string `json:"reason,omitempty"`
	// ClientID идентификатор устройства
	ClientID string `json:"client_id,omitempty"`
	// Version версия состояния на клиенте
	Version int64 `json:"version"`
	// Critical сохранение нельзя троттлить или пропускать
	Critical bool `json:"critical,omitempty"`
}

// SaveResponse результат сохранения.
type SaveResponse struct {
	Version       int64 `json:"version"`
	ConflictCount int   `json:"conflict_count,omitempty"`
	Accepted      bool  `json:"accepted"`
	Skipped       bool  `json:"skipped,omitempty"`
}

// LoadResponse последнее известное состояние пользователя.
// Отсутствие поля state вместе с Source "none" означает, что
// прогресса еще нет.
type LoadResponse struct {
	State   json.RawMessage `json:"state,omitempty"`
	Source  string          `json:"source"`
	Version int64           `json:"version"`
}

// VerifyRequest запрос административной проверки состояния.
type VerifyRequest struct {
	UserID     string `json:"user_id"`
	AutoRepair bool   `json:"auto_repair,omitempty"`
}

// VerifyResponse результат административной проверки.
type VerifyResponse struct {
	Errors       []string `json:"errors,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	AppliedFixes []string `json:"applied_fixes,omitempty"`
	Valid        bool     `json:"valid"`
	Repaired     bool     `json:"repaired"`
}

// ErrorResponse унифицированный формат ошибки API.
type ErrorResponse struct {
	// Error человекочитаемое описание
	Error string `json:"error"`
	// Code машинный код из таксономии ошибок
	Code string `json:"code"`
	// Retryable клиенту имеет смысл повторить запрос позже
	Retryable bool `json:"retryable"`
}
