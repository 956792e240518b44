// Package worker реализует фоновую реконсиляцию слоев хранения:
// обработку очереди задач починки и регулярную уборку.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/iudanet/statekeeper/internal/cache"
	"github.com/iudanet/statekeeper/internal/models"
	"github.com/iudanet/statekeeper/internal/seal"
	"github.com/iudanet/statekeeper/internal/storage"
	"github.com/iudanet/statekeeper/internal/validation"
)

// системный идентификатор для задач, не привязанных к пользователю
const systemUserID = "system"

// Config параметры реконсилятора.
type Config struct {
	// PollInterval период опроса очереди
	PollInterval time.Duration
	// CleanupInterval период постановки задачи уборки
	CleanupInterval time.Duration
	// BatchSize максимум задач за один проход
	BatchSize int
	// MaxAttempts после стольких неудач задача помечается failed
	MaxAttempts int
	// BaseBackoff стартовая задержка повтора
	BaseBackoff time.Duration
	// MaxBackoff потолок задержки повтора
	MaxBackoff time.Duration
	// TaskTimeout дедлайн обработки одной задачи
	TaskTimeout time.Duration
	// HistoryKeep сколько записей истории сохранять на пользователя
	HistoryKeep int
	// CompletedRetention сколько держать выполненные задачи
	CompletedRetention time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{
		PollInterval:       5 * time.Second,
		CleanupInterval:    time.Hour,
		BatchSize:          32,
		MaxAttempts:        5,
		BaseBackoff:        2 * time.Second,
		MaxBackoff:         5 * time.Minute,
		TaskTimeout:        30 * time.Second,
		HistoryKeep:        50,
		CompletedRetention: 24 * time.Hour,
	}
}

// Reconciler обрабатывает очередь задач синхронизации. Источник
// истины при расхождении слоев всегда durable хранилище, кроме
// store_repair, где кеш доказуемо новее.
type Reconciler struct {
	store  storage.ProgressStorage
	queue  storage.QueueStorage
	cache  cache.StateCache
	sealer *seal.Sealer
	logger *slog.Logger
	limits validation.Limits
	cfg    Config
}

// New создает реконсилятор.
func New(
	cfg Config,
	store storage.ProgressStorage,
	queue storage.QueueStorage,
	stateCache cache.StateCache,
	sealer *seal.Sealer,
	limits validation.Limits,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		store:  store,
		queue:  queue,
		cache:  stateCache,
		sealer: sealer,
		limits: limits,
		logger: logger,
		cfg:    cfg,
	}
}

// Run крутит цикл опроса до отмены контекста. Задачи одного прохода
// обрабатываются последовательно, поэтому отмена не бросает задачу
// на середине прохода дольше, чем на одну задачу.
func (r *Reconciler) Run(ctx context.Context) {
	r.logger.Info("reconciler started",
		"poll_interval", r.cfg.PollInterval,
		"batch_size", r.cfg.BatchSize,
	)

	poll := time.NewTicker(r.cfg.PollInterval)
	defer poll.Stop()
	cleanup := time.NewTicker(r.cfg.CleanupInterval)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-poll.C:
			r.processDue(ctx)
		case <-cleanup.C:
			r.scheduleCleanup(ctx)
		}
	}
}

// processDue выбирает созревшие задачи и обрабатывает их по одной.
func (r *Reconciler) processDue(ctx context.Context) {
	tasks, err := r.queue.DueTasks(ctx, time.Now(), r.cfg.BatchSize)
	if err != nil {
		r.logger.Error("failed to fetch due tasks", "error", err)
		return
	}

	for _, task := range tasks {
		if ctx.Err() != nil {
			return
		}
		r.processTask(ctx, task)
	}
}

// processTask проводит задачу через жизненный цикл
// pending → processing → completed/pending(retry)/failed.
func (r *Reconciler) processTask(ctx context.Context, task *models.SyncTask) {
	if err := r.queue.MarkProcessing(ctx, task.ID); err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			// Задачу уже перехватил другой воркер
			return
		}
		r.logger.Error("failed to mark task processing", "task_id", task.ID, "error", err)
		return
	}

	taskCtx := ctx
	if r.cfg.TaskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, r.cfg.TaskTimeout)
		defer cancel()
	}

	err := r.handle(taskCtx, task)
	if err == nil {
		if completeErr := r.queue.CompleteTask(ctx, task.ID); completeErr != nil {
			r.logger.Error("failed to complete task", "task_id", task.ID, "error", completeErr)
		}
		return
	}

	attempts := task.Attempts + 1
	if r.terminalFailure(err) || attempts >= r.cfg.MaxAttempts {
		r.logger.Error("task failed permanently",
			"task_id", task.ID,
			"user_id", task.UserID,
			"operation", task.Operation,
			"attempts", attempts,
			"error", err,
		)
		if failErr := r.queue.FailTask(ctx, task.ID); failErr != nil {
			r.logger.Error("failed to mark task failed", "task_id", task.ID, "error", failErr)
		}
		return
	}

	delay := r.backoff(attempts)
	r.logger.Warn("task failed, will retry",
		"task_id", task.ID,
		"operation", task.Operation,
		"attempts", attempts,
		"retry_in", delay,
		"error", err,
	)
	if retryErr := r.queue.RetryTask(ctx, task.ID, attempts, time.Now().Add(delay)); retryErr != nil {
		r.logger.Error("failed to reschedule task", "task_id", task.ID, "error", retryErr)
	}
}

// errNoRetry помечает ошибки, по которым повтор бессмыслен.
var errNoRetry = errors.New("no retry")

func (r *Reconciler) terminalFailure(err error) bool {
	return errors.Is(err, errNoRetry)
}

// backoff возвращает фибоначчиеву задержку для данной попытки.
func (r *Reconciler) backoff(attempts int) time.Duration {
	b := retry.WithCappedDuration(r.cfg.MaxBackoff, retry.NewFibonacci(r.cfg.BaseBackoff))
	var delay time.Duration
	for range attempts {
		next, stop := b.Next()
		if stop {
			break
		}
		delay = next
	}
	return delay
}

func (r *Reconciler) handle(ctx context.Context, task *models.SyncTask) error {
	switch task.Operation {
	case models.SyncOpCacheRepair:
		return r.repairCache(ctx, task.UserID)
	case models.SyncOpStoreRepair:
		return r.repairStore(ctx, task.UserID)
	case models.SyncOpDataRepair:
		return r.verifyData(ctx, task.UserID)
	case models.SyncOpCleanup:
		return r.cleanup(ctx)
	default:
		return fmt.Errorf("unknown operation %q: %w", task.Operation, errNoRetry)
	}
}

// repairCache восстанавливает кеш из durable записи. Отсутствие
// durable прогресса означает, что валиден только пустой кеш.
func (r *Reconciler) repairCache(ctx context.Context, userID string) error {
	rec, err := r.store.GetProgress(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			if delErr := r.cache.DeleteState(ctx, userID); delErr != nil {
				return fmt.Errorf("delete stale cache entry: %w", delErr)
			}
			return nil
		}
		return fmt.Errorf("read progress: %w", err)
	}

	entry := &cache.Entry{Blob: rec.Blob, Version: rec.Version, SavedAt: rec.UpdatedAt}
	if err := r.cache.PutState(ctx, userID, entry); err != nil {
		return fmt.Errorf("rewrite cache entry: %w", err)
	}

	r.logger.Info("cache entry repaired", "user_id", userID, "version", rec.Version)
	return nil
}

// repairStore продвигает кешированную версию в durable, если кеш
// доказуемо новее. Запечатка проверяется до записи: порченый кеш
// не должен затирать валидный durable.
func (r *Reconciler) repairStore(ctx context.Context, userID string) error {
	entry, err := r.cache.GetState(ctx, userID)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			// Нечего продвигать
			return nil
		}
		return fmt.Errorf("read cache: %w", err)
	}

	signed, err := models.DecodeSignedState(string(entry.Blob))
	if err != nil {
		return fmt.Errorf("decode cached blob: %w", errors.Join(err, errNoRetry))
	}
	if _, err := r.sealer.Open(userID, signed); err != nil {
		return fmt.Errorf("cached blob failed integrity check: %w", errors.Join(err, errNoRetry))
	}

	expectedVersion := int64(0)
	rec, err := r.store.GetProgress(ctx, userID)
	switch {
	case err == nil:
		if rec.Version >= entry.Version {
			return nil
		}
		expectedVersion = rec.Version
	case errors.Is(err, storage.ErrNotFound):
	default:
		return fmt.Errorf("read progress: %w", err)
	}

	newRec := &storage.ProgressRecord{
		UserID:    userID,
		Blob:      entry.Blob,
		Version:   entry.Version,
		UpdatedAt: entry.SavedAt,
	}
	if err := r.store.SaveProgress(ctx, newRec, expectedVersion); err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			// Durable успели обновить параллельно; повтор пересчитает
			return fmt.Errorf("progress moved during repair: %w", err)
		}
		return fmt.Errorf("write progress: %w", err)
	}

	r.logger.Info("store entry repaired from cache", "user_id", userID, "version", entry.Version)
	return nil
}

// verifyData проверяет правдоподобие durable состояния. Невалидное
// состояние не чинится молча: задача падает, решение за оператором
// через adminVerify с autoRepair.
func (r *Reconciler) verifyData(ctx context.Context, userID string) error {
	rec, err := r.store.GetProgress(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("read progress: %w", err)
	}

	signed, err := models.DecodeSignedState(string(rec.Blob))
	if err != nil {
		return fmt.Errorf("decode stored blob: %w", errors.Join(err, errNoRetry))
	}
	state, err := r.sealer.Open(userID, signed)
	if err != nil {
		return fmt.Errorf("stored blob failed integrity check: %w", errors.Join(err, errNoRetry))
	}

	report := validation.Check(state, r.limits)
	if !report.Valid {
		r.logger.Error("stored state failed plausibility check",
			"user_id", userID,
			"version", rec.Version,
			"errors", report.Errors,
		)
		return fmt.Errorf("state implausible: %v: %w", report.Errors, errNoRetry)
	}
	if len(report.Warnings) > 0 {
		r.logger.Warn("stored state has plausibility warnings",
			"user_id", userID,
			"warnings", report.Warnings,
		)
	}
	return nil
}

// cleanup убирает выполненные задачи и усекает историю сохранений.
func (r *Reconciler) cleanup(ctx context.Context) error {
	pruned, err := r.queue.PruneCompleted(ctx, time.Now().Add(-r.cfg.CompletedRetention))
	if err != nil {
		return fmt.Errorf("prune completed tasks: %w", err)
	}

	trimmed, err := r.store.TrimHistory(ctx, r.cfg.HistoryKeep)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	failed, err := r.queue.FailedTasks(ctx, r.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("list failed tasks: %w", err)
	}
	for _, task := range failed {
		r.logger.Warn("task requires operator attention",
			"task_id", task.ID,
			"user_id", task.UserID,
			"operation", task.Operation,
			"attempts", task.Attempts,
		)
	}

	r.logger.Info("cleanup finished",
		"pruned_tasks", pruned,
		"trimmed_history", trimmed,
		"failed_tasks", len(failed),
	)
	return nil
}

// scheduleCleanup ставит задачу уборки, если такой еще нет в очереди.
func (r *Reconciler) scheduleCleanup(ctx context.Context) {
	has, err := r.queue.HasPendingTask(ctx, systemUserID, models.SyncOpCleanup)
	if err != nil || has {
		return
	}

	task := &models.SyncTask{
		ID:        uuid.New().String(),
		UserID:    systemUserID,
		Operation: models.SyncOpCleanup,
		Status:    models.SyncStatusPending,
		CreatedAt: time.Now(),
	}
	if err := r.queue.EnqueueTask(ctx, task); err != nil {
		r.logger.Error("failed to schedule cleanup", "error", err)
	}
}
