package syncsvc

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/statekeeper/internal/cache"
	"github.com/iudanet/statekeeper/internal/cache/bolt"
	"github.com/iudanet/statekeeper/internal/models"
	"github.com/iudanet/statekeeper/internal/seal"
	"github.com/iudanet/statekeeper/internal/storage"
	"github.com/iudanet/statekeeper/internal/storage/sqlite"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testConfig() Config {
	cfg := DefaultConfig()
	// Нулевое окно: каждый Submit флашится сразу, без коалесинга
	cfg.Throttle.MinInterval = 0
	return cfg
}

func setupService(t *testing.T, cfg Config) (*Service, *sqlite.Storage, cache.StateCache) {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	boltCache, err := bolt.New(context.Background(), filepath.Join(t.TempDir(), "cache.db"), bolt.Config{
		StateTTL:  time.Hour,
		ClientTTL: 30 * time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = boltCache.Close() })

	sealer, err := seal.New(testSecret)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	svc := New(cfg, store, store, boltCache, sealer, logger)
	t.Cleanup(svc.Close)

	return svc, store, boltCache
}

func setupServiceWithCache(t *testing.T, cfg Config, stateCache cache.StateCache) (*Service, *sqlite.Storage) {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sealer, err := seal.New(testSecret)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	svc := New(cfg, store, store, stateCache, sealer, logger)
	t.Cleanup(svc.Close)

	return svc, store
}

func testState(userID string, version int64) *models.GameState {
	state := models.NewGameState(userID)
	state.SaveVersion = version
	state.SetNumberMap(models.PayloadKeyResources, map[string]float64{"gold": 100, "gems": 5})
	state.SetNumberMap(models.PayloadKeyLevels, map[string]float64{"main": 3})
	state.SetAchievements([]string{"first_login"})
	state.Payload[models.PayloadKeyPlaytime] = float64(3600)
	return state
}

func TestService_SaveAndLoad(t *testing.T) {
	svc, _, _ := setupService(t, testConfig())
	ctx := context.Background()

	res, err := svc.Save(ctx, "user-1", testState("user-1", 1), SaveOptions{Reason: models.SaveReasonManual})
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.False(t, res.Skipped)
	assert.Equal(t, int64(1), res.Version)

	got, err := svc.Load(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got.State)
	assert.Equal(t, SourceCache, got.Source)
	assert.Equal(t, int64(1), got.State.SaveVersion)
	assert.Equal(t, float64(100), got.State.Resources()["gold"])
}

func TestService_SaveValidation(t *testing.T) {
	svc, _, _ := setupService(t, testConfig())
	ctx := context.Background()

	_, err := svc.Save(ctx, "", testState("user-1", 1), SaveOptions{})
	assert.Equal(t, CodeUnauthorized, CodeOf(err))

	_, err = svc.Save(ctx, "user-1", nil, SaveOptions{})
	assert.Equal(t, CodeInvalidJSON, CodeOf(err))

	_, err = svc.Save(ctx, "user-1", testState("user-1", 1), SaveOptions{Reason: "bogus"})
	assert.Equal(t, CodeInvalidJSON, CodeOf(err))
}

func TestService_SavePayloadTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPayloadBytes = 256
	svc, _, _ := setupService(t, cfg)

	state := testState("user-1", 1)
	huge := make([]string, 200)
	for i := range huge {
		huge[i] = "achievement_with_a_long_identifier"
	}
	state.SetAchievements(huge)

	_, err := svc.Save(context.Background(), "user-1", state, SaveOptions{})
	assert.Equal(t, CodePayloadTooLarge, CodeOf(err))
}

// Два клиента сохраняют одну и ту же версию: победителей нет,
// результат сливается и получает следующую версию.
func TestService_SaveSameVersionMerges(t *testing.T) {
	svc, _, _ := setupService(t, testConfig())
	ctx := context.Background()

	first := testState("user-1", 5)
	first.SetNumberMap(models.PayloadKeyResources, map[string]float64{"gold": 100})
	_, err := svc.Save(ctx, "user-1", first, SaveOptions{})
	require.NoError(t, err)

	second := testState("user-1", 5)
	second.SetNumberMap(models.PayloadKeyResources, map[string]float64{"gold": 80, "gems": 7})
	res, err := svc.Save(ctx, "user-1", second, SaveOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(6), res.Version)
	assert.Positive(t, res.ConflictCount)

	got, err := svc.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.State.SaveVersion)
	// Счетчики не регрессируют: выживает максимум каждой стороны
	assert.Equal(t, float64(100), got.State.Resources()["gold"])
	assert.Equal(t, float64(7), got.State.Resources()["gems"])
}

func TestService_SaveBehindVersionRejected(t *testing.T) {
	svc, _, _ := setupService(t, testConfig())
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", testState("user-1", 7), SaveOptions{})
	require.NoError(t, err)

	_, err = svc.Save(ctx, "user-1", testState("user-1", 3), SaveOptions{})
	assert.Equal(t, CodeVersionMismatch, CodeOf(err))
}

// Критичное сохранение с отставшей версией не теряется и не
// перезаписывает durable слепо: конфликт уходит в слияние.
func TestService_CriticalBehindVersionMerges(t *testing.T) {
	svc, _, _ := setupService(t, testConfig())
	ctx := context.Background()

	stored := testState("user-1", 7)
	stored.SetNumberMap(models.PayloadKeyResources, map[string]float64{"gold": 500})
	_, err := svc.Save(ctx, "user-1", stored, SaveOptions{})
	require.NoError(t, err)

	stale := testState("user-1", 3)
	stale.SetNumberMap(models.PayloadKeyResources, map[string]float64{"gold": 50, "gems": 9})
	res, err := svc.Save(ctx, "user-1", stale, SaveOptions{Critical: true})
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.Version)

	got, err := svc.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, float64(500), got.State.Resources()["gold"])
	assert.Equal(t, float64(9), got.State.Resources()["gems"])
}

// Причина exit эквивалентна критичному сохранению: троттлинг и
// проверка значимости не применяются.
func TestService_ExitReasonEscalates(t *testing.T) {
	svc, _, _ := setupService(t, testConfig())
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", testState("user-1", 5), SaveOptions{})
	require.NoError(t, err)

	same := testState("user-1", 6)
	res, err := svc.Save(ctx, "user-1", same, SaveOptions{Reason: models.SaveReasonExit})
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, int64(6), res.Version)
}

func TestService_InsignificantDeltaSkipped(t *testing.T) {
	cfg := testConfig()
	cfg.Thresholds = ChangeThresholds{MinResourceDelta: 100, MinLevelDelta: 5, MinQuestDelta: 1}
	svc, store, _ := setupService(t, cfg)
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", testState("user-1", 5), SaveOptions{})
	require.NoError(t, err)

	next := testState("user-1", 6)
	next.SetNumberMap(models.PayloadKeyResources, map[string]float64{"gold": 101, "gems": 5})
	res, err := svc.Save(ctx, "user-1", next, SaveOptions{})
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.True(t, res.Skipped)
	assert.Equal(t, int64(5), res.Version)

	// Пропуск не трогает durable слой
	rec, err := store.GetProgress(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), rec.Version)
}

// Сбой кеша не валит сохранение: durable запись проходит, а
// расхождение слоев чинится задачей cache_repair.
func TestService_CacheFailureDoesNotLoseSave(t *testing.T) {
	failingCache := &cache.StateCacheMock{
		GetStateFunc: func(ctx context.Context, userID string) (*cache.Entry, error) {
			return nil, errors.New("cache down")
		},
		PutStateFunc: func(ctx context.Context, userID string, entry *cache.Entry) error {
			return errors.New("cache down")
		},
		GetClientInfoFunc: func(ctx context.Context, userID string) (*models.ClientSaveInfo, error) {
			return nil, cache.ErrMiss
		},
		PutClientInfoFunc: func(ctx context.Context, userID string, info *models.ClientSaveInfo) error {
			return errors.New("cache down")
		},
		CloseFunc: func() error { return nil },
	}
	svc, store := setupServiceWithCache(t, testConfig(), failingCache)
	ctx := context.Background()

	res, err := svc.Save(ctx, "user-1", testState("user-1", 1), SaveOptions{ClientID: "device-a"})
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	has, err := store.HasPendingTask(ctx, "user-1", models.SyncOpCacheRepair)
	require.NoError(t, err)
	assert.True(t, has)

	// Load обходит мертвый кеш и читает durable
	got, err := svc.Load(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got.State)
	assert.Equal(t, SourceStore, got.Source)
}

// Порченая запись кеша не отдается клиенту: load падает на durable
// и ставит задачу починки кеша.
func TestService_CorruptedCacheFallsBackToStore(t *testing.T) {
	svc, store, stateCache := setupService(t, testConfig())
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", testState("user-1", 1), SaveOptions{})
	require.NoError(t, err)

	err = stateCache.PutState(ctx, "user-1", &cache.Entry{
		Blob:    []byte("not a sealed state"),
		Version: 1,
		SavedAt: time.Now(),
	})
	require.NoError(t, err)

	got, err := svc.Load(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got.State)
	assert.Equal(t, SourceStore, got.Source)
	assert.Equal(t, float64(100), got.State.Resources()["gold"])

	has, err := store.HasPendingTask(ctx, "user-1", models.SyncOpCacheRepair)
	require.NoError(t, err)
	assert.True(t, has)
}

// Порченая durable запись поднимается как нарушение целостности и
// никогда не подменяется дефолтным состоянием.
func TestService_LoadCorruptedStoreSurfacesIntegrity(t *testing.T) {
	svc, store, stateCache := setupService(t, testConfig())
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", testState("user-1", 1), SaveOptions{})
	require.NoError(t, err)

	// Подмена durable blob напрямую, мимо печати
	rec := &storage.ProgressRecord{UserID: "user-1", Blob: []byte("tampered"), Version: 2}
	require.NoError(t, store.SaveProgress(ctx, rec, 1))

	// Кеш выбит, иначе load отдал бы прогретую копию
	require.NoError(t, stateCache.DeleteState(ctx, "user-1"))

	got, err := svc.Load(ctx, "user-1")
	require.Error(t, err)
	assert.Equal(t, CodeIntegrityViolation, CodeOf(err))
	assert.Nil(t, got.State)
	assert.Equal(t, SourceNone, got.Source)

	// Порченая запись попадает воркеру на диагностику
	has, err := store.HasPendingTask(ctx, "user-1", models.SyncOpDataRepair)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestService_LoadNoProgress(t *testing.T) {
	svc, _, _ := setupService(t, testConfig())

	got, err := svc.Load(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got.State)
	assert.Equal(t, SourceNone, got.Source)
}

func TestService_LoadWarmsCache(t *testing.T) {
	svc, _, stateCache := setupService(t, testConfig())
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", testState("user-1", 1), SaveOptions{})
	require.NoError(t, err)

	require.NoError(t, stateCache.DeleteState(ctx, "user-1"))

	got, err := svc.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, SourceStore, got.Source)

	got, err = svc.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, got.Source)
}

func TestService_SaveHistoryRecorded(t *testing.T) {
	svc, store, _ := setupService(t, testConfig())
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", testState("user-1", 1), SaveOptions{Reason: models.SaveReasonManual})
	require.NoError(t, err)
	_, err = svc.Save(ctx, "user-1", testState("user-1", 2), SaveOptions{Reason: models.SaveReasonCritical})
	require.NoError(t, err)

	history, err := store.GetHistory(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.SaveReasonCritical, history[0].SaveReason)
	assert.Equal(t, models.SaveReasonManual, history[1].SaveReason)
}

func TestService_AdminVerify(t *testing.T) {
	svc, _, _ := setupService(t, testConfig())
	ctx := context.Background()

	state := testState("user-1", 1)
	state.SetNumberMap(models.PayloadKeyResources, map[string]float64{"gold": -50})
	_, err := svc.Save(ctx, "user-1", state, SaveOptions{})
	require.NoError(t, err)

	report, err := svc.AdminVerify(ctx, "user-1", false)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.Errors)
	assert.False(t, report.Repaired)

	report, err = svc.AdminVerify(ctx, "user-1", true)
	require.NoError(t, err)
	assert.True(t, report.Repaired)
	assert.NotEmpty(t, report.AppliedFixes)

	got, err := svc.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.State.SaveVersion)
	assert.Equal(t, models.SaveReasonRepair, got.State.SaveReason)
	assert.Equal(t, float64(0), got.State.Resources()["gold"])
}

func TestService_AdminVerifyValidState(t *testing.T) {
	svc, _, _ := setupService(t, testConfig())
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", testState("user-1", 1), SaveOptions{})
	require.NoError(t, err)

	report, err := svc.AdminVerify(ctx, "user-1", true)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.False(t, report.Repaired)
}

func TestService_ConcurrentDeviceTelemetry(t *testing.T) {
	svc, _, stateCache := setupService(t, testConfig())
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", testState("user-1", 1), SaveOptions{ClientID: "device-a"})
	require.NoError(t, err)

	info, err := stateCache.GetClientInfo(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "device-a", info.ClientID)

	// Второе устройство не блокируется, информация обновляется
	_, err = svc.Save(ctx, "user-1", testState("user-1", 2), SaveOptions{ClientID: "device-b"})
	require.NoError(t, err)

	info, err = stateCache.GetClientInfo(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "device-b", info.ClientID)
}

// Коалесинг: серия авто-сохранений внутри окна дает одну durable
// запись с версией последнего сохранения.
func TestService_AutoSavesCoalesce(t *testing.T) {
	cfg := testConfig()
	cfg.Throttle.MinInterval = 50 * time.Millisecond
	svc, store, _ := setupService(t, cfg)
	ctx := context.Background()

	// Каждое авто-сохранение несет реальный прирост золота, иначе
	// flush батча был бы отброшен как незначимая дельта.
	progressed := func(version int64) *models.GameState {
		state := testState("user-1", version)
		state.SetNumberMap(models.PayloadKeyResources, map[string]float64{
			"gold": 100 + float64(version)*10,
			"gems": 5,
		})
		return state
	}

	_, err := svc.Save(ctx, "user-1", testState("user-1", 1), SaveOptions{})
	require.NoError(t, err)

	type saveOutcome struct {
		err error
		res SaveResult
	}
	done := make(chan saveOutcome, 3)
	for v := int64(2); v <= 4; v++ {
		go func(version int64) {
			res, saveErr := svc.Save(ctx, "user-1", progressed(version), SaveOptions{})
			done <- saveOutcome{res: res, err: saveErr}
		}(v)
	}

	for range 3 {
		out := <-done
		require.NoError(t, out.err)
		assert.True(t, out.res.Accepted)
		assert.False(t, out.res.Skipped)
		assert.Equal(t, int64(4), out.res.Version)
	}

	rec, err := store.GetProgress(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), rec.Version)
}
