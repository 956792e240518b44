package sqlite

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/iudanet/statekeeper/internal/models"
	"github.com/iudanet/statekeeper/internal/storage"
)

// compressThreshold размер blob, начиная с которого запечатанное
// состояние хранится gzip-сжатым (is_compressed = 1).
const compressThreshold = 16 * 1024

// GetProgress возвращает текущую durable запись пользователя.
// Blob отдается несжатым независимо от способа хранения.
func (s *Storage) GetProgress(ctx context.Context, userID string) (*storage.ProgressRecord, error) {
	query := `
		SELECT user_id, game_state, version, is_compressed, updated_at
		FROM progress
		WHERE user_id = ?
	`

	rec := &storage.ProgressRecord{}
	var compressed int
	var updatedAt int64

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&rec.UserID,
		&rec.Blob,
		&rec.Version,
		&compressed,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	rec.UpdatedAt = unixToTime(updatedAt)

	if intToBool(compressed) {
		blob, err := gunzipBlob(rec.Blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress progress blob: %w", err)
		}
		rec.Blob = blob
	}

	return rec, nil
}

// SaveProgress записывает новую версию прогресса с optimistic
// concurrency проверкой. expectedVersion 0 создает первую запись;
// иначе запись проходит только при совпадении durable версии.
func (s *Storage) SaveProgress(ctx context.Context, rec *storage.ProgressRecord, expectedVersion int64) error {
	blob := rec.Blob
	compressed := false
	if len(blob) >= compressThreshold {
		gz, err := gzipBlob(blob)
		if err != nil {
			return fmt.Errorf("failed to compress progress blob: %w", err)
		}
		// Сжатие применяется только когда оно реально уменьшает blob
		if len(gz) < len(blob) {
			blob = gz
			compressed = true
		}
	}

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	if expectedVersion == 0 {
		query := `
			INSERT INTO progress (user_id, game_state, version, is_compressed, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(user_id) DO NOTHING
		`
		result, err := s.db.ExecContext(ctx, query,
			rec.UserID,
			blob,
			rec.Version,
			boolToInt(compressed),
			updatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert progress: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			// Запись уже существует: создатель проиграл гонку
			return storage.ErrVersionConflict
		}
		return nil
	}

	query := `
		UPDATE progress
		SET game_state = ?, version = ?, is_compressed = ?, updated_at = ?
		WHERE user_id = ? AND version = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		blob,
		rec.Version,
		boolToInt(compressed),
		updatedAt.Unix(),
		rec.UserID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Либо записи нет, либо durable версия ушла вперед
		if _, err := s.GetProgress(ctx, rec.UserID); errors.Is(err, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return storage.ErrVersionConflict
	}

	return nil
}

// AddHistory добавляет запись истории сохранений.
func (s *Storage) AddHistory(ctx context.Context, userID string, reason models.SaveReason, version int64) error {
	query := `
		INSERT INTO progress_history (user_id, save_reason, version, created_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, userID, string(reason), version, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// GetHistory возвращает последние записи истории пользователя, новые первыми.
func (s *Storage) GetHistory(ctx context.Context, userID string, limit int) ([]*storage.HistoryEntry, error) {
	query := `
		SELECT id, user_id, save_reason, version, created_at
		FROM progress_history
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			err = cerr
		}
	}()

	var entries []*storage.HistoryEntry
	for rows.Next() {
		entry := &storage.HistoryEntry{}
		var reason string
		var createdAt int64

		if err := rows.Scan(&entry.ID, &entry.UserID, &reason, &entry.Version, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.SaveReason = models.SaveReason(reason)
		entry.CreatedAt = unixToTime(createdAt)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

// TrimHistory оставляет каждому пользователю не более keep последних
// записей истории. Возвращает число удаленных записей.
func (s *Storage) TrimHistory(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative, got %d", keep)
	}

	query := `
		DELETE FROM progress_history
		WHERE id NOT IN (
			SELECT id FROM progress_history AS recent
			WHERE recent.user_id = progress_history.user_id
			ORDER BY recent.id DESC
			LIMIT ?
		)
	`
	result, err := s.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to trim history: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return removed, nil
}

// gzipBlob сжимает blob запечатанного состояния.
func gzipBlob(blob []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(blob); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// gunzipBlob распаковывает blob, сохраненный с is_compressed = 1.
func gunzipBlob(blob []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}

// Helper functions for bool/int conversion
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}

func unixToTime(timestamp int64) time.Time {
	return time.Unix(timestamp, 0)
}
