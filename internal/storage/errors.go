package storage

import "errors"

// Сторожевые ошибки слоя долговременного хранилища.
var (
	// ErrNotFound запись прогресса для пользователя отсутствует
	ErrNotFound = errors.New("progress not found")
	// ErrVersionConflict durable версия не совпала с ожидаемой:
	// optimistic concurrency поймал гонку записей
	ErrVersionConflict = errors.New("version conflict")
	// ErrTaskNotFound задача реконсиляции отсутствует
	ErrTaskNotFound = errors.New("sync task not found")
)
