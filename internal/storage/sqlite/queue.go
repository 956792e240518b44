package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iudanet/statekeeper/internal/models"
	"github.com/iudanet/statekeeper/internal/storage"
)

// EnqueueTask ставит задачу реконсиляции в очередь.
func (s *Storage) EnqueueTask(ctx context.Context, task *models.SyncTask) error {
	query := `
		INSERT INTO sync_queue (
			id, user_id, operation, payload, status,
			attempts, not_before, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := task.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		string(task.Operation),
		task.Payload,
		string(task.Status),
		task.Attempts,
		task.NotBefore.UnixMilli(),
		createdAt.UnixMilli(),
		createdAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// HasPendingTask проверяет наличие незавершенной задачи той же
// операции для пользователя. Используется оркестратором, чтобы не
// плодить дубли cache_repair при деградировавшем кеше.
func (s *Storage) HasPendingTask(ctx context.Context, userID string, op models.SyncOperation) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM sync_queue
		WHERE user_id = ? AND operation = ? AND status IN (?, ?)
	`

	var count int
	err := s.db.QueryRowContext(ctx, query,
		userID,
		string(op),
		string(models.SyncStatusPending),
		string(models.SyncStatusProcessing),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check pending task: %w", err)
	}
	return count > 0, nil
}

// DueTasks возвращает до limit pending задач с наступившим
// not_before, старые первыми (FIFO по возрасту).
func (s *Storage) DueTasks(ctx context.Context, now time.Time, limit int) ([]*models.SyncTask, error) {
	query := `
		SELECT id, user_id, operation, payload, status,
		       attempts, not_before, created_at, updated_at
		FROM sync_queue
		WHERE status = ? AND not_before <= ?
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, string(models.SyncStatusPending), now.UnixMilli(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tasks: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			err = cerr
		}
	}()

	return scanTasks(rows)
}

// MarkProcessing переводит задачу pending → processing.
func (s *Storage) MarkProcessing(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.SyncStatusProcessing, models.SyncStatusPending)
}

// CompleteTask переводит задачу в терминальный completed.
func (s *Storage) CompleteTask(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.SyncStatusCompleted, models.SyncStatusProcessing)
}

// FailTask переводит задачу в терминальный failed.
func (s *Storage) FailTask(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.SyncStatusFailed, "")
}

// setStatus меняет статус задачи. Непустой from ограничивает переход
// текущим статусом (защита от двойной обработки).
func (s *Storage) setStatus(ctx context.Context, id string, to, from models.SyncStatus) error {
	var result sql.Result
	var err error

	if from != "" {
		query := `UPDATE sync_queue SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
		result, err = s.db.ExecContext(ctx, query, string(to), time.Now().UnixMilli(), id, string(from))
	} else {
		query := `UPDATE sync_queue SET status = ?, updated_at = ? WHERE id = ?`
		result, err = s.db.ExecContext(ctx, query, string(to), time.Now().UnixMilli(), id)
	}
	if err != nil {
		return fmt.Errorf("failed to set task status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrTaskNotFound
	}
	return nil
}

// RetryTask возвращает задачу в pending с увеличенным числом попыток
// и отложенным not_before (backoff через requeue delay).
func (s *Storage) RetryTask(ctx context.Context, id string, attempts int, notBefore time.Time) error {
	query := `
		UPDATE sync_queue
		SET status = ?, attempts = ?, not_before = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		string(models.SyncStatusPending),
		attempts,
		notBefore.UnixMilli(),
		time.Now().UnixMilli(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to retry task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrTaskNotFound
	}
	return nil
}

// PruneCompleted удаляет completed задачи старше порога.
func (s *Storage) PruneCompleted(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM sync_queue WHERE status = ? AND updated_at < ?`
	result, err := s.db.ExecContext(ctx, query, string(models.SyncStatusCompleted), olderThan.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune completed tasks: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return removed, nil
}

// FailedTasks возвращает failed задачи для журналирования, новые первыми.
func (s *Storage) FailedTasks(ctx context.Context, limit int) ([]*models.SyncTask, error) {
	query := `
		SELECT id, user_id, operation, payload, status,
		       attempts, not_before, created_at, updated_at
		FROM sync_queue
		WHERE status = ?
		ORDER BY updated_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, string(models.SyncStatusFailed), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed tasks: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			err = cerr
		}
	}()

	return scanTasks(rows)
}

// scanTasks is a helper function to scan multiple tasks from rows
func scanTasks(rows *sql.Rows) ([]*models.SyncTask, error) {
	var tasks []*models.SyncTask

	for rows.Next() {
		task := &models.SyncTask{}
		var operation, status string
		var notBefore, createdAt, updatedAt int64

		err := rows.Scan(
			&task.ID,
			&task.UserID,
			&operation,
			&task.Payload,
			&status,
			&task.Attempts,
			&notBefore,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		task.Operation = models.SyncOperation(operation)
		task.Status = models.SyncStatus(status)
		task.NotBefore = time.UnixMilli(notBefore)
		task.CreatedAt = time.UnixMilli(createdAt)
		task.UpdatedAt = time.UnixMilli(updatedAt)
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tasks, nil
}
