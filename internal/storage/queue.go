package storage

import (
	"context"
	"time"

	"github.com/iudanet/statekeeper/internal/models"
)

//go:generate moq -out queue_mock.go . QueueStorage

// QueueStorage определяет контракт очереди задач реконсиляции.
// Задачи выбираются FIFO по возрасту с учетом not_before
// (отложенный ретрай с backoff).
type QueueStorage interface {
	// EnqueueTask ставит задачу в очередь.
	EnqueueTask(ctx context.Context, task *models.SyncTask) error
	// HasPendingTask проверяет наличие невыполненной задачи той же
	// операции для пользователя (защита от дублей в очереди).
	HasPendingTask(ctx context.Context, userID string, op models.SyncOperation) (bool, error)
	// DueTasks возвращает до limit pending задач с наступившим
	// not_before, старые первыми.
	DueTasks(ctx context.Context, now time.Time, limit int) ([]*models.SyncTask, error)
	// MarkProcessing переводит задачу pending → processing.
	MarkProcessing(ctx context.Context, id string) error
	// CompleteTask переводит задачу в completed.
	CompleteTask(ctx context.Context, id string) error
	// FailTask переводит задачу в failed (терминальный статус).
	FailTask(ctx context.Context, id string) error
	// RetryTask возвращает задачу в pending с увеличенным числом
	// попыток и отложенным not_before.
	RetryTask(ctx context.Context, id string, attempts int, notBefore time.Time) error
	// PruneCompleted удаляет completed задачи старше порога;
	// возвращает число удаленных.
	PruneCompleted(ctx context.Context, olderThan time.Time) (int64, error)
	// FailedTasks возвращает failed задачи для журналирования.
	FailedTasks(ctx context.Context, limit int) ([]*models.SyncTask, error)
}
