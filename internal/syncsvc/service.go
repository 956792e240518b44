// Package syncsvc реализует сервис синхронизации игрового состояния:
// публичный save/load/adminVerify API поверх гейтирования, слияния,
// запечатывания, горячего кеша и долговременного хранилища.
package syncsvc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/statekeeper/internal/cache"
	"github.com/iudanet/statekeeper/internal/merge"
	"github.com/iudanet/statekeeper/internal/models"
	"github.com/iudanet/statekeeper/internal/seal"
	"github.com/iudanet/statekeeper/internal/storage"
	"github.com/iudanet/statekeeper/internal/throttle"
	"github.com/iudanet/statekeeper/internal/validation"
)

// Config параметры оркестратора.
type Config struct {
	// MaxPayloadBytes потолок размера сериализованного состояния
	MaxPayloadBytes int
	// CacheTimeout дедлайн операций кеша; короче StoreTimeout,
	// чтобы деградировавший кеш не тормозил путь сохранения
	CacheTimeout time.Duration
	// StoreTimeout дедлайн операций долговременного хранилища
	StoreTimeout time.Duration
	// DeviceHorizon окно, в котором сохранение с другого clientId
	// считается признаком одновременной игры с двух устройств
	DeviceHorizon time.Duration
	// Thresholds пороги значимости дельты
	Thresholds ChangeThresholds
	// Limits пороги правдоподобия для adminVerify
	Limits validation.Limits
	// Throttle параметры гейтирования сохранений
	Throttle throttle.Config
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{
		MaxPayloadBytes: 5 << 20,
		CacheTimeout:    200 * time.Millisecond,
		StoreTimeout:    2 * time.Second,
		DeviceHorizon:   30 * time.Second,
		Thresholds:      DefaultThresholds(),
		Limits:          validation.DefaultLimits(),
		Throttle: throttle.Config{
			MinInterval:  500 * time.Millisecond,
			FlushTimeout: 5 * time.Second,
			IdleAfter:    10 * time.Minute,
		},
	}
}

// SaveOptions опции одного сохранения.
type SaveOptions struct {
	// Reason причина сохранения; пустая трактуется как auto
	Reason models.SaveReason
	// ClientID идентификатор устройства для диагностики
	// многоустройственной игры (опционален)
	ClientID string
	// Critical сохранение нельзя троттлить, коалесить или
	// пропускать
	Critical bool
}

// SaveResult результат сохранения.
type SaveResult struct {
	// Version присвоенная durable версия
	Version int64
	// ConflictCount число коллизий, разрешенных слиянием
	ConflictCount int
	// Accepted запрос принят (в том числе как skipped)
	Accepted bool
	// Skipped дельта незначима, durable запись не выполнялась
	Skipped bool
}

// Source источник данных ответа load.
type Source string

const (
	SourceCache Source = "cache"
	SourceStore Source = "store"
	SourceNone  Source = "none"
)

// LoadResult результат загрузки. State nil и Source none означают
// отсутствие прогресса: сервис никогда не фабрикует данные, решение
// об инициализации нового состояния остается за вызывающим.
type LoadResult struct {
	State  *models.GameState
	Source Source
}

// VerifyResult результат административной проверки состояния.
type VerifyResult struct {
	Errors       []string
	Warnings     []string
	AppliedFixes []string
	Valid        bool
	Repaired     bool
}

// Service оркестратор синхронизации игрового состояния.
type Service struct {
	store  storage.ProgressStorage
	queue  storage.QueueStorage
	cache  cache.StateCache
	sealer *seal.Sealer
	gate   *throttle.Coordinator
	logger *slog.Logger
	cfg    Config
}

// New создает сервис синхронизации.
func New(
	cfg Config,
	store storage.ProgressStorage,
	queue storage.QueueStorage,
	stateCache cache.StateCache,
	sealer *seal.Sealer,
	logger *slog.Logger,
) *Service {
	s := &Service{
		store:  store,
		queue:  queue,
		cache:  stateCache,
		sealer: sealer,
		logger: logger,
		cfg:    cfg,
	}
	s.gate = throttle.New(cfg.Throttle, s.flushSave, logger)
	return s
}

// Close останавливает гейт, флаша оставшиеся батчи.
func (s *Service) Close() {
	s.gate.Stop()
}

// Save принимает сохранение игрового состояния.
// Путь: валидация → диагностика устройств → гейт троттлинга/
// коалесинга → durable запись с optimistic version check →
// best-effort запись кеша.
func (s *Service) Save(ctx context.Context, userID string, state *models.GameState, opts SaveOptions) (SaveResult, error) {
	if userID == "" {
		return SaveResult{}, errorf(CodeUnauthorized, "user id is empty")
	}
	if state == nil {
		return SaveResult{}, errorf(CodeInvalidJSON, "state is nil")
	}

	reason := opts.Reason
	if reason == "" {
		reason = models.SaveReasonAuto
	}
	if !reason.Valid() {
		return SaveResult{}, errorf(CodeInvalidJSON, "unknown save reason %q", reason)
	}

	// Причина exit — это flush при закрытии сессии: транспорт не
	// различается, но сохранение эскалируется до критичного и
	// минует коалесинг
	critical := opts.Critical || reason == models.SaveReasonCritical || reason == models.SaveReasonExit

	serialized, err := state.Marshal()
	if err != nil {
		return SaveResult{}, WrapError(CodeInvalidJSON, err)
	}
	if s.cfg.MaxPayloadBytes > 0 && len(serialized) > s.cfg.MaxPayloadBytes {
		return SaveResult{}, errorf(CodePayloadTooLarge, "payload is %d bytes, limit %d", len(serialized), s.cfg.MaxPayloadBytes)
	}

	state = state.Clone()
	state.UserID = userID
	state.SaveReason = reason
	if state.SaveVersion < 1 {
		state.SaveVersion = 1
	}

	s.observeClient(ctx, userID, opts.ClientID)

	out := s.gate.Submit(ctx, state, critical)
	if out.Err != nil {
		return SaveResult{}, s.mapGateError(out.Err)
	}

	return SaveResult{
		Accepted:      out.Accepted,
		Skipped:       out.Skipped,
		Version:       out.Version,
		ConflictCount: out.ConflictCount,
	}, nil
}

// mapGateError переводит ошибки гейта в таксономию.
func (s *Service) mapGateError(err error) error {
	switch {
	case errors.Is(err, throttle.ErrSaveInProgress):
		return WrapError(CodeSaveInProgress, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return WrapError(CodeUnknown, err)
	default:
		var taxonomy *Error
		if errors.As(err, &taxonomy) {
			return taxonomy
		}
		return WrapError(CodeUnknown, err)
	}
}

// flushSave выполняет durable сохранение под пер-пользовательским
// гейтом. Вызывается координатором строго последовательно для
// одного пользователя.
func (s *Service) flushSave(ctx context.Context, state *models.GameState, critical bool) throttle.Outcome {
	userID := state.UserID

	stored, storedRec, err := s.loadStored(ctx, userID)
	if err != nil {
		return throttle.Outcome{Err: err}
	}

	conflicts := 0
	if stored != nil {
		switch {
		case state.SaveVersion < stored.SaveVersion:
			// Отставшая версия: клиент не видел текущую durable.
			// Слепая перезапись запрещена; критичное сохранение
			// идет через слияние
			if !critical {
				return throttle.Outcome{Err: errorf(CodeVersionMismatch,
					"incoming version %d is behind stored %d", state.SaveVersion, stored.SaveVersion)}
			}
			result, mergeErr := merge.Merge(stored, state, merge.StrategySmart)
			if mergeErr != nil {
				return throttle.Outcome{Err: WrapError(CodeUnknown, mergeErr)}
			}
			state = result.State
			conflicts = result.ConflictCount
		case state.SaveVersion == stored.SaveVersion:
			// Оба клиента видели одну базу и погнались: конфликт
			// разрешается слиянием, не перезаписью
			result, mergeErr := merge.Merge(stored, state, merge.StrategySmart)
			if mergeErr != nil {
				return throttle.Outcome{Err: WrapError(CodeUnknown, mergeErr)}
			}
			state = result.State
			conflicts = result.ConflictCount
		default:
			// Версия впереди durable: обычное принятие.
			// Незначимая некритичная дельта пропускается без
			// durable записи
			if !critical && !meaningfulChange(stored, state, s.cfg.Thresholds) {
				return throttle.Outcome{
					Accepted: true,
					Skipped:  true,
					Version:  stored.SaveVersion,
				}
			}
		}
	}

	now := time.Now().UTC()
	state.SavedAt = now

	signed, err := s.sealer.Sign(userID, state)
	if err != nil {
		return throttle.Outcome{Err: WrapError(CodeUnknown, err)}
	}

	expectedVersion := int64(0)
	if storedRec != nil {
		expectedVersion = storedRec.Version
	}

	rec := &storage.ProgressRecord{
		UserID:    userID,
		Blob:      []byte(signed.Encode()),
		Version:   state.SaveVersion,
		UpdatedAt: now,
	}

	storeCtx, cancel := s.storeContext(ctx)
	err = s.store.SaveProgress(storeCtx, rec, expectedVersion)
	cancel()
	if err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			// Конкурирующий процесс успел записать первым
			return throttle.Outcome{Err: WrapError(CodeVersionMismatch, err)}
		}
		return throttle.Outcome{Err: WrapError(CodeStoreUnavailable, err)}
	}

	s.appendHistory(ctx, userID, state.SaveReason, state.SaveVersion)
	s.writeCache(ctx, userID, signed, state)

	return throttle.Outcome{
		Accepted:      true,
		Version:       state.SaveVersion,
		ConflictCount: conflicts,
	}
}

// loadStored читает и распечатывает текущую durable запись.
// Возвращает (nil, nil, nil) при отсутствии прогресса.
func (s *Service) loadStored(ctx context.Context, userID string) (*models.GameState, *storage.ProgressRecord, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	rec, err := s.store.GetProgress(storeCtx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, WrapError(CodeStoreUnavailable, err)
	}

	state, err := s.openBlob(userID, rec.Blob)
	if err != nil {
		// Порченая durable запись — сигнал о вмешательстве или
		// смене ключа; никогда не ретраится и не перезаписывается
		// молча
		return nil, nil, WrapError(CodeIntegrityViolation, err)
	}
	return state, rec, nil
}

// openBlob декодирует и распечатывает blob проводного формата.
func (s *Service) openBlob(userID string, blob []byte) (*models.GameState, error) {
	signed, err := models.DecodeSignedState(string(blob))
	if err != nil {
		return nil, err
	}
	return s.sealer.Open(userID, signed)
}

// appendHistory добавляет запись истории сохранений (best-effort).
func (s *Service) appendHistory(ctx context.Context, userID string, reason models.SaveReason, version int64) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.store.AddHistory(storeCtx, userID, reason, version); err != nil {
		s.logger.Warn("failed to append save history",
			"user_id", userID,
			"version", version,
			"error", err,
		)
	}
}

// writeCache записывает свежезапечатанное состояние в горячий кеш.
// Сбой кеша не валит сохранение: расхождение слоев чинит задача
// cache_repair.
func (s *Service) writeCache(ctx context.Context, userID string, signed *models.SignedState, state *models.GameState) {
	cacheCtx, cancel := s.cacheContext(ctx)
	defer cancel()

	entry := &cache.Entry{
		Blob:    []byte(signed.Encode()),
		Version: state.SaveVersion,
		SavedAt: state.SavedAt,
	}
	if err := s.cache.PutState(cacheCtx, userID, entry); err != nil {
		s.logger.Warn("cache write failed, scheduling repair",
			"user_id", userID,
			"version", state.SaveVersion,
			"error", err,
		)
		s.enqueueRepair(ctx, userID, models.SyncOpCacheRepair)
	}
}

// enqueueRepair ставит задачу реконсиляции, избегая дублей.
func (s *Service) enqueueRepair(ctx context.Context, userID string, op models.SyncOperation) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	has, err := s.queue.HasPendingTask(storeCtx, userID, op)
	if err == nil && has {
		return
	}

	task := &models.SyncTask{
		ID:        uuid.New().String(),
		UserID:    userID,
		Operation: op,
		Status:    models.SyncStatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.queue.EnqueueTask(storeCtx, task); err != nil {
		s.logger.Error("failed to enqueue repair task",
			"user_id", userID,
			"operation", op,
			"error", err,
		)
	}
}

// observeClient фиксирует clientId сохранения и эмитит телеметрию,
// если в коротком горизонте писал другой клиент. Сохранение не
// блокируется: легитимная игра с двух устройств разрешена.
func (s *Service) observeClient(ctx context.Context, userID, clientID string) {
	if clientID == "" {
		return
	}

	cacheCtx, cancel := s.cacheContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	known, err := s.cache.GetClientInfo(cacheCtx, userID)
	if err == nil && known.ClientID != clientID && s.cfg.DeviceHorizon > 0 &&
		now.Sub(known.Timestamp) < s.cfg.DeviceHorizon {
		s.logger.Warn("concurrent device save detected",
			"user_id", userID,
			"client_id", clientID,
			"previous_client_id", known.ClientID,
			"since_previous", now.Sub(known.Timestamp),
		)
	}

	info := &models.ClientSaveInfo{ClientID: clientID, Timestamp: now}
	if err := s.cache.PutClientInfo(cacheCtx, userID, info); err != nil {
		s.logger.Debug("failed to record client info", "user_id", userID, "error", err)
	}
}

// Load возвращает последнее известное состояние пользователя.
// Сначала горячий кеш; при промахе или сбое целостности кеша —
// долговременное хранилище. Отсутствие прогресса — не ошибка.
func (s *Service) Load(ctx context.Context, userID string) (LoadResult, error) {
	if userID == "" {
		return LoadResult{Source: SourceNone}, errorf(CodeUnauthorized, "user id is empty")
	}

	if state := s.loadFromCache(ctx, userID); state != nil {
		return LoadResult{State: state, Source: SourceCache}, nil
	}

	storeCtx, cancel := s.storeContext(ctx)
	rec, err := s.store.GetProgress(storeCtx, userID)
	cancel()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return LoadResult{Source: SourceNone}, nil
		}
		return LoadResult{Source: SourceNone}, WrapError(CodeStoreUnavailable, err)
	}

	state, err := s.openBlob(userID, rec.Blob)
	if err != nil {
		// Никогда не отдаем дефолтное состояние вместо порченого.
		// Воркер зафиксирует запись в журнале для ручного ремонта.
		s.enqueueRepair(ctx, userID, models.SyncOpDataRepair)
		return LoadResult{Source: SourceNone}, WrapError(CodeIntegrityViolation, err)
	}

	// Прогретый из durable кеш ускорит следующий load
	cacheCtx, cancel := s.cacheContext(ctx)
	entry := &cache.Entry{Blob: rec.Blob, Version: rec.Version, SavedAt: rec.UpdatedAt}
	if err := s.cache.PutState(cacheCtx, userID, entry); err != nil {
		s.logger.Debug("cache warmup failed", "user_id", userID, "error", err)
	}
	cancel()

	return LoadResult{State: state, Source: SourceStore}, nil
}

// loadFromCache пробует горячий кеш. Любой сбой — включая провал
// целостности — дает nil и, при подозрении на порчу, задачу
// cache_repair; вызывающий уходит в durable.
func (s *Service) loadFromCache(ctx context.Context, userID string) *models.GameState {
	cacheCtx, cancel := s.cacheContext(ctx)
	defer cancel()

	entry, err := s.cache.GetState(cacheCtx, userID)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("cache read failed", "user_id", userID, "error", err)
		}
		return nil
	}

	state, err := s.openBlob(userID, entry.Blob)
	if err != nil {
		s.logger.Warn("cached state failed integrity check, scheduling repair",
			"user_id", userID,
			"error", err,
		)
		s.enqueueRepair(ctx, userID, models.SyncOpCacheRepair)
		return nil
	}
	return state
}

// AdminVerify запускает проверку правдоподобия durable состояния
// пользователя; с autoRepair применяет ремонт и поднимает версию
// с причиной repair.
func (s *Service) AdminVerify(ctx context.Context, userID string, autoRepair bool) (VerifyResult, error) {
	if userID == "" {
		return VerifyResult{}, errorf(CodeUnauthorized, "user id is empty")
	}

	stored, storedRec, err := s.loadStored(ctx, userID)
	if err != nil {
		return VerifyResult{}, err
	}
	if stored == nil {
		return VerifyResult{}, WrapError(CodeUnknown, storage.ErrNotFound)
	}

	report := validation.Check(stored, s.cfg.Limits)
	result := VerifyResult{
		Valid:    report.Valid,
		Errors:   report.Errors,
		Warnings: report.Warnings,
	}
	if report.Valid || !autoRepair {
		return result, nil
	}

	repaired, fixes := validation.Repair(stored, s.cfg.Limits)
	repaired.SaveVersion = storedRec.Version + 1
	repaired.SaveReason = models.SaveReasonRepair
	repaired.SavedAt = time.Now().UTC()

	signed, err := s.sealer.Sign(userID, repaired)
	if err != nil {
		return result, WrapError(CodeUnknown, err)
	}

	rec := &storage.ProgressRecord{
		UserID:    userID,
		Blob:      []byte(signed.Encode()),
		Version:   repaired.SaveVersion,
		UpdatedAt: repaired.SavedAt,
	}

	storeCtx, cancel := s.storeContext(ctx)
	err = s.store.SaveProgress(storeCtx, rec, storedRec.Version)
	cancel()
	if err != nil {
		return result, WrapError(CodeStoreUnavailable, err)
	}

	s.appendHistory(ctx, userID, models.SaveReasonRepair, repaired.SaveVersion)
	s.writeCache(ctx, userID, signed, repaired)

	result.Repaired = true
	result.AppliedFixes = fixes
	result.Valid = true
	return result, nil
}

// storeContext ограничивает операцию хранилища сконфигурированным
// дедлайном.
func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// cacheContext ограничивает операцию кеша коротким дедлайном.
func (s *Service) cacheContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.CacheTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.CacheTimeout)
}
