package syncsvc

import (
	"math"

	"github.com/iudanet/statekeeper/internal/models"
)

// ChangeThresholds пороги значимости дельты между снапшотами.
// Сохранение, чьи ключевые счетчики ушли от последнего durable
// снапшота меньше, чем на порог, принимается но пропускается
// (skipped) — это ограничивает write amplification от частых
// малоценных обновлений вроде тиков пассивного начисления.
// Значения — настройка, не контракт.
type ChangeThresholds struct {
	// MinResourceDelta минимальная дельта ресурсного счетчика
	MinResourceDelta float64
	// MinLevelDelta минимальная дельта уровня
	MinLevelDelta float64
	// MinQuestDelta минимальная дельта числа завершенных квестов
	MinQuestDelta int
}

// DefaultThresholds пороги по умолчанию: любое целочисленное
// продвижение ключевых счетчиков значимо.
func DefaultThresholds() ChangeThresholds {
	return ChangeThresholds{
		MinResourceDelta: 1,
		MinLevelDelta:    1,
		MinQuestDelta:    1,
	}
}

// meaningfulChange сообщает, достаточно ли велика дельта между
// сохраненным и входящим снапшотами, чтобы оправдать durable запись.
// Инспектируются только ключевые счетчики прогресса: валюты,
// уровни контейнеров/апгрейдов и число завершенных квестов.
func meaningfulChange(stored, incoming *models.GameState, th ChangeThresholds) bool {
	if countersDiffer(stored.Resources(), incoming.Resources(), th.MinResourceDelta) {
		return true
	}
	if countersDiffer(stored.Levels(), incoming.Levels(), th.MinLevelDelta) {
		return true
	}

	delta := incoming.CompletedQuestCount() - stored.CompletedQuestCount()
	if delta < 0 {
		delta = -delta
	}
	return delta >= th.MinQuestDelta
}

// countersDiffer проверяет дельту двух map счетчиков: появление или
// исчезновение ключа всегда значимо, изменение — от порога.
func countersDiffer(stored, incoming map[string]float64, threshold float64) bool {
	for name, incomingValue := range incoming {
		storedValue, exists := stored[name]
		if !exists {
			return true
		}
		if math.Abs(incomingValue-storedValue) >= threshold {
			return true
		}
	}
	for name := range stored {
		if _, exists := incoming[name]; !exists {
			return true
		}
	}
	return false
}
