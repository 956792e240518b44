// Package cache определяет контракт горячего кеш-слоя.
//
// Кеш не авторитативен: он хранит восстановимую копию последнего
// запечатанного состояния с TTL. Потеря кеша никогда не теряет
// прогресс — источником истины остается durable хранилище.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/iudanet/statekeeper/internal/models"
)

//go:generate moq -out cache_mock.go . StateCache

// ErrMiss запись отсутствует или истек ее TTL.
var ErrMiss = errors.New("cache miss")

// Entry кешированная копия запечатанного состояния пользователя.
type Entry struct {
	SavedAt time.Time `json:"saved_at"`
	Blob    []byte    `json:"blob"` // запечатанное состояние в проводном формате
	Version int64     `json:"version"`
}

// StateCache горячий кеш-слой. Все операции best-effort: вызывающий
// обязан переживать любую ошибку кеша, не прерывая сохранение.
type StateCache interface {
	// GetState возвращает кешированное состояние или ErrMiss.
	GetState(ctx context.Context, userID string) (*Entry, error)
	// PutState записывает состояние с настроенным TTL.
	PutState(ctx context.Context, userID string, entry *Entry) error
	// DeleteState удаляет кешированное состояние.
	DeleteState(ctx context.Context, userID string) error
	// GetClientInfo возвращает последнее известное сохранение
	// клиента или ErrMiss.
	GetClientInfo(ctx context.Context, userID string) (*models.ClientSaveInfo, error)
	// PutClientInfo записывает информацию о клиенте с коротким TTL.
	PutClientInfo(ctx context.Context, userID string, info *models.ClientSaveInfo) error
	// Close освобождает ресурсы кеша.
	Close() error
}
