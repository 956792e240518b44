// Package throttle реализует пер-пользовательское гейтирование
// сохранений: взаимное исключение durable записей, минимальный
// интервал между сохранениями и коалесинг запросов внутри окна.
//
// Состояние process-local: маппинг userId → gate живет в памяти
// одного процесса. Горизонтальное масштабирование требует выноса
// гейта в разделяемый store с TTL-арендой или шардирования
// пользователей по инстансам.
package throttle

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/statekeeper/internal/models"
)

// ErrSaveInProgress возвращается, когда durable запись для
// пользователя уже в полете. Запрос не ставится в очередь:
// клиент ретраит сам, порядок durable записей остается простым.
var ErrSaveInProgress = errors.New("save already in progress for user")

// Config параметры координатора.
type Config struct {
	// MinInterval окно коалесинга: некритичные сохранения,
	// пришедшие раньше, чем MinInterval после предыдущего,
	// буферизуются и флашатся одной durable записью
	MinInterval time.Duration
	// FlushTimeout дедлайн отложенного флаша батча по таймеру
	FlushTimeout time.Duration
	// IdleAfter через сколько неактивности пер-пользовательский
	// gate удаляется фоновой очисткой
	IdleAfter time.Duration
}

// Outcome результат durable флаша, доставляемый каждому ожидающему
// в батче. Зеркалит SaveResult оркестратора.
type Outcome struct {
	Err           error
	Version       int64
	ConflictCount int
	Accepted      bool
	Skipped       bool
}

// Flusher выполняет собственно durable сохранение состояния.
// Координатор гарантирует: для одного userId не более одного
// вызова Flusher одновременно.
type Flusher func(ctx context.Context, state *models.GameState, critical bool) Outcome

// Coordinator пер-пользовательский гейт сохранений.
type Coordinator struct {
	gates  map[string]*userGate
	flush  Flusher
	logger *slog.Logger
	stopC  chan struct{}
	cfg    Config
	mu     sync.Mutex
	wg     sync.WaitGroup
}

// userGate состояние гейтирования одного пользователя.
type userGate struct {
	lastSaveAt time.Time
	batch      *pendingBatch
	mu         sync.Mutex
	inFlight   bool
}

// pendingBatch несфлашенный батч внутри окна коалесинга:
// последнее состояние с наибольшей версией плюс ожидающие вызовы.
type pendingBatch struct {
	state   *models.GameState
	timer   *time.Timer
	waiters []chan Outcome
}

// New создает координатор. flush выполняет durable сохранение и
// вызывается строго последовательно для одного пользователя.
func New(cfg Config, flush Flusher, logger *slog.Logger) *Coordinator {
	c := &Coordinator{
		gates:  make(map[string]*userGate),
		flush:  flush,
		logger: logger,
		cfg:    cfg,
		stopC:  make(chan struct{}),
	}

	if cfg.IdleAfter > 0 {
		go c.cleanupLoop()
	}

	return c
}

// Submit гейтирует одно сохранение и возвращает результат флаша.
// Поведение:
//   - вне окна коалесинга запрос флашится сразу (или отклоняется
//     ErrSaveInProgress, если durable запись уже в полете);
//   - внутри окна некритичный запрос буферизуется; больший
//     saveVersion замещает буфер; вызов блокируется до флаша
//     батча по таймеру (или до отмены ctx);
//   - критичный запрос флашит накопленный батч немедленно, минуя
//     коалесинг; все ожидающие получают общий результат.
func (c *Coordinator) Submit(ctx context.Context, state *models.GameState, critical bool) Outcome {
	g := c.gate(state.UserID)
	g.mu.Lock()

	if g.batch != nil {
		if !critical {
			// Last-writer-wins внутри окна: больший номер версии
			// замещает буферизованное состояние
			if state.SaveVersion >= g.batch.state.SaveVersion {
				g.batch.state = state
			}
			ch := make(chan Outcome, 1)
			g.batch.waiters = append(g.batch.waiters, ch)
			g.mu.Unlock()
			return c.await(ctx, ch)
		}

		// Критичный запрос адоптирует батч и флашит немедленно
		batch := g.batch
		g.batch = nil
		batch.timer.Stop()
		if batch.state.SaveVersion > state.SaveVersion {
			state = batch.state
		}
		out := c.runFlush(ctx, g, state, true)
		g.mu.Unlock()
		resolve(batch.waiters, out)
		return out
	}

	if !critical && c.cfg.MinInterval > 0 && !g.lastSaveAt.IsZero() {
		if since := time.Since(g.lastSaveAt); since < c.cfg.MinInterval {
			ch := make(chan Outcome, 1)
			batch := &pendingBatch{state: state, waiters: []chan Outcome{ch}}
			userID := state.UserID
			batch.timer = time.AfterFunc(c.cfg.MinInterval-since, func() {
				c.flushBatch(userID)
			})
			g.batch = batch
			g.mu.Unlock()
			return c.await(ctx, ch)
		}
	}

	out := c.runFlush(ctx, g, state, critical)
	g.mu.Unlock()
	return out
}

// await блокируется до результата флаша или отмены контекста.
// Отмена не отменяет сам флаш: батч доживет до таймера.
func (c *Coordinator) await(ctx context.Context, ch chan Outcome) Outcome {
	select {
	case out := <-ch:
		return out
	case <-ctx.Done():
		return Outcome{Err: ctx.Err()}
	}
}

// runFlush выполняет флаш под пер-пользовательским взаимным
// исключением. g.mu удерживается на входе и на выходе, но
// отпускается на время I/O, чтобы коалесинг не блокировался.
func (c *Coordinator) runFlush(ctx context.Context, g *userGate, state *models.GameState, critical bool) Outcome {
	if g.inFlight {
		return Outcome{Err: ErrSaveInProgress}
	}
	g.inFlight = true
	g.mu.Unlock()

	out := c.flush(ctx, state, critical)

	g.mu.Lock()
	g.inFlight = false
	if out.Err == nil {
		g.lastSaveAt = time.Now()
	}
	return out
}

// flushBatch флашит накопленный батч по истечении окна.
func (c *Coordinator) flushBatch(userID string) {
	c.wg.Add(1)
	defer c.wg.Done()

	c.mu.Lock()
	g, exists := c.gates[userID]
	c.mu.Unlock()
	if !exists {
		return
	}

	g.mu.Lock()
	batch := g.batch
	if batch == nil {
		g.mu.Unlock()
		return
	}
	g.batch = nil

	ctx := context.Background()
	if c.cfg.FlushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.FlushTimeout)
		defer cancel()
	}

	out := c.runFlush(ctx, g, batch.state, false)
	g.mu.Unlock()

	if out.Err != nil {
		c.logger.Warn("deferred batch flush failed",
			"user_id", userID,
			"error", out.Err,
		)
	}
	resolve(batch.waiters, out)
}

// resolve доставляет общий результат всем ожидающим батча.
func resolve(waiters []chan Outcome, out Outcome) {
	for _, ch := range waiters {
		ch <- out
	}
}

// gate возвращает (создавая при необходимости) gate пользователя.
func (c *Coordinator) gate(userID string) *userGate {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, exists := c.gates[userID]
	if !exists {
		g = &userGate{}
		c.gates[userID] = g
	}
	return g
}

// cleanupLoop периодически удаляет неактивные gates.
func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.cfg.IdleAfter)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupIdleGates()
		case <-c.stopC:
			return
		}
	}
}

// cleanupIdleGates удаляет gates без батча, без записи в полете
// и с последним сохранением старше IdleAfter.
func (c *Coordinator) cleanupIdleGates() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for userID, g := range c.gates {
		g.mu.Lock()
		idle := g.batch == nil && !g.inFlight && now.Sub(g.lastSaveAt) > c.cfg.IdleAfter
		g.mu.Unlock()
		if idle {
			delete(c.gates, userID)
		}
	}
}

// Stop останавливает очистку и флашит оставшиеся батчи, чтобы
// буферизованный прогресс не потерялся при остановке процесса.
func (c *Coordinator) Stop() {
	close(c.stopC)

	c.mu.Lock()
	pending := make([]string, 0)
	for userID, g := range c.gates {
		g.mu.Lock()
		if g.batch != nil {
			g.batch.timer.Stop()
			pending = append(pending, userID)
		}
		g.mu.Unlock()
	}
	c.mu.Unlock()

	for _, userID := range pending {
		c.flushBatch(userID)
	}
	c.wg.Wait()
}
