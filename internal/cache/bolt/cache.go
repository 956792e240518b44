// Package bolt реализует горячий кеш-слой поверх bbolt с TTL.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/statekeeper/internal/cache"
	"github.com/iudanet/statekeeper/internal/models"
)

var (
	// BoltDB bucket names
	bucketState   = []byte("state")
	bucketClients = []byte("clients")
)

// Config TTL-параметры кеша.
type Config struct {
	// StateTTL время жизни кешированного состояния
	StateTTL time.Duration
	// ClientTTL время жизни информации о клиенте (~30 минут)
	ClientTTL time.Duration
}

// Cache represents bbolt-backed hot cache implementation
type Cache struct {
	db  *bbolt.DB
	cfg Config
}

// envelope обертка значения с абсолютным сроком истечения.
type envelope struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt int64           `json:"expires_at"` // unix, 0 = без TTL
}

// New creates a new bbolt cache instance
// dbPath is the path to the bbolt database file
func New(ctx context.Context, dbPath string, cfg Config) (*Cache, error) {
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	c := &Cache{db: db, cfg: cfg}

	if err := c.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return c, nil
}

// Close closes the database connection
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// initBuckets создает необходимые buckets если они не существуют
func (c *Cache) initBuckets() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketState); err != nil {
			return fmt.Errorf("failed to create state bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists(bucketClients); err != nil {
			return fmt.Errorf("failed to create clients bucket: %w", err)
		}
		return nil
	})
}

// GetState возвращает кешированное состояние или cache.ErrMiss.
// Истекшая запись трактуется как промах и лениво удаляется.
func (c *Cache) GetState(ctx context.Context, userID string) (*cache.Entry, error) {
	raw, err := c.get(ctx, bucketState, userID)
	if err != nil {
		return nil, err
	}

	var entry cache.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode cached state: %w", err)
	}
	return &entry, nil
}

// PutState записывает состояние с настроенным TTL.
func (c *Cache) PutState(ctx context.Context, userID string, entry *cache.Entry) error {
	return c.put(ctx, bucketState, userID, entry, c.cfg.StateTTL)
}

// DeleteState удаляет кешированное состояние пользователя.
func (c *Cache) DeleteState(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketState).Delete([]byte(userID))
	})
}

// GetClientInfo возвращает последнее известное сохранение клиента.
func (c *Cache) GetClientInfo(ctx context.Context, userID string) (*models.ClientSaveInfo, error) {
	raw, err := c.get(ctx, bucketClients, userID)
	if err != nil {
		return nil, err
	}

	var info models.ClientSaveInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("failed to decode client info: %w", err)
	}
	return &info, nil
}

// PutClientInfo записывает информацию о клиенте с коротким TTL.
func (c *Cache) PutClientInfo(ctx context.Context, userID string, info *models.ClientSaveInfo) error {
	return c.put(ctx, bucketClients, userID, info, c.cfg.ClientTTL)
}

// get читает значение с проверкой TTL. ctx проверяется до I/O:
// у bbolt нет контекстов, но дедлайн вызывающего честно уважается.
func (c *Cache) get(ctx context.Context, bucket []byte, key string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var env envelope
	found := false
	err := c.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &env)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if !found {
		return nil, cache.ErrMiss
	}

	if env.ExpiresAt > 0 && time.Now().Unix() >= env.ExpiresAt {
		// Ленивая очистка истекшей записи
		_ = c.db.Update(func(tx *bbolt.Tx) error {
			return tx.Bucket(bucket).Delete([]byte(key))
		})
		return nil, cache.ErrMiss
	}

	return env.Value, nil
}

// put сериализует значение в envelope с TTL и записывает его.
func (c *Cache) put(ctx context.Context, bucket []byte, key string, value any, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	// Нулевой TTL означает запись без срока; отрицательный дает
	// уже истекшую запись, что удобно для тестов и принудительной
	// инвалидации.
	env := envelope{Value: raw}
	if ttl != 0 {
		env.ExpiresAt = time.Now().Add(ttl).Unix()
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode cache envelope: %w", err)
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}
