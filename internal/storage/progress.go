package storage

import (
	"context"
	"time"

	"github.com/iudanet/statekeeper/internal/models"
)

//go:generate moq -out progress_mock.go . ProgressStorage

// ProgressRecord durable запись игрового прогресса пользователя.
// Blob — запечатанное состояние в проводном формате; хранилище
// может прозрачно сжимать его, наружу всегда отдается несжатым.
type ProgressRecord struct {
	UpdatedAt time.Time
	UserID    string
	Blob      []byte
	Version   int64
}

// HistoryEntry запись истории сохранений пользователя.
type HistoryEntry struct {
	CreatedAt  time.Time
	UserID     string
	SaveReason models.SaveReason
	ID         int64
	Version    int64
}

// ProgressStorage определяет контракт долговременного хранилища
// прогресса. Реализация обязана обеспечивать optimistic concurrency:
// запись с неожидаемой текущей версией дает ErrVersionConflict.
type ProgressStorage interface {
	// GetProgress возвращает текущую durable запись пользователя
	// или ErrNotFound.
	GetProgress(ctx context.Context, userID string) (*ProgressRecord, error)
	// SaveProgress записывает новую версию прогресса.
	// expectedVersion 0 означает создание первой записи; иначе
	// запись проходит только если durable версия равна ожидаемой.
	SaveProgress(ctx context.Context, rec *ProgressRecord, expectedVersion int64) error
	// AddHistory добавляет запись истории сохранений.
	AddHistory(ctx context.Context, userID string, reason models.SaveReason, version int64) error
	// GetHistory возвращает последние записи истории пользователя,
	// новые первыми.
	GetHistory(ctx context.Context, userID string, limit int) ([]*HistoryEntry, error)
	// TrimHistory оставляет каждому пользователю не более keep
	// последних записей истории; возвращает число удаленных.
	TrimHistory(ctx context.Context, keep int) (int64, error)
}
