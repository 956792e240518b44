package models

import "time"

// SyncOperation тип задачи реконсиляции.
type SyncOperation string

// Операции реконсиляции между горячим кешем и долговременным
// хранилищем. cache_repair и data_repair ставит оркестратор при
// сбоях записи кеша и провалах целостности durable слоя, cleanup
// планирует сам воркер. store_repair ставится оператором: кеш
// оказывается новее durable только после восстановления базы из
// бэкапа или ручного вмешательства.
const (
	SyncOpCacheRepair SyncOperation = "cache_repair" // durable → cache
	SyncOpStoreRepair SyncOperation = "store_repair" // cache → durable (только если кеш новее)
	SyncOpDataRepair  SyncOperation = "data_repair"  // проверка правдоподобия durable записи
	SyncOpCleanup     SyncOperation = "cleanup"      // очистка очереди и истории
)

// Valid проверяет, что операция известна воркеру.
func (op SyncOperation) Valid() bool {
	switch op {
	case SyncOpCacheRepair, SyncOpStoreRepair, SyncOpDataRepair, SyncOpCleanup:
		return true
	}
	return false
}

// SyncStatus статус задачи реконсиляции.
type SyncStatus string

// Жизненный цикл задачи: pending → processing → {completed | pending(retry) | failed}.
const (
	SyncStatusPending    SyncStatus = "pending"
	SyncStatusProcessing SyncStatus = "processing"
	SyncStatusCompleted  SyncStatus = "completed"
	SyncStatusFailed     SyncStatus = "failed"
)

// SyncTask представляет задачу фоновой реконсиляции.
// Создается оркестратором при частичных сбоях или периодическим
// планированием; выбирается воркером FIFO по возрасту.
type SyncTask struct {
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	NotBefore time.Time     `json:"not_before"` // requeue backoff: не брать задачу раньше этого времени
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Operation SyncOperation `json:"operation"`
	Payload   []byte        `json:"payload"`
	Status    SyncStatus    `json:"status"`
	Attempts  int           `json:"attempts"`
}

// ClientSaveInfo последнее известное сохранение от конкретного клиента.
// Живет только в кеш-слое с коротким TTL; используется для
// диагностики одновременной игры с нескольких устройств.
type ClientSaveInfo struct {
	Timestamp time.Time `json:"timestamp"`
	ClientID  string    `json:"client_id"`
}
