// Package merge разрешает конфликты версий игрового состояния.
//
// Слияние — чистая функция: никакого I/O, детерминированный результат.
// SMART-правила подобраны так, что повторное слияние уже слитого
// результата с любым из входов — no-op на уже согласованных полях
// (воркер реконсиляции может ретраить слияние).
package merge

import (
	"fmt"
	"sort"
	"time"

	"github.com/iudanet/statekeeper/internal/models"
)

// Strategy стратегия разрешения конфликта двух снапшотов.
type Strategy string

const (
	// StrategyClientWins тривиальный выбор входящего снапшота.
	// Только для явных административных override.
	StrategyClientWins Strategy = "client_wins"
	// StrategyServerWins тривиальный выбор сохраненного снапшота.
	// Только для явных административных override.
	StrategyServerWins Strategy = "server_wins"
	// StrategySmart пополевое слияние (стратегия по умолчанию).
	StrategySmart Strategy = "smart"
)

// Result результат слияния двух снапшотов.
type Result struct {
	State         *models.GameState
	ChangedFields []string
	ConflictCount int
}

// Merge разрешает конфликт между base (сохраненным) и incoming
// (входящим) состояниями одного пользователя. Версия результата —
// max(base, incoming)+1, причина сохранения — merge.
func Merge(base, incoming *models.GameState, strategy Strategy) (Result, error) {
	if base == nil || incoming == nil {
		return Result{}, fmt.Errorf("both states are required for merge")
	}
	if base.UserID != incoming.UserID {
		return Result{}, fmt.Errorf("cannot merge states of different users %q and %q", base.UserID, incoming.UserID)
	}

	var result Result
	switch strategy {
	case StrategyClientWins:
		result = Result{State: incoming.Clone()}
	case StrategyServerWins:
		result = Result{State: base.Clone()}
	case StrategySmart:
		result = smartMerge(base, incoming)
	default:
		return Result{}, fmt.Errorf("unknown merge strategy %q", strategy)
	}

	now := time.Now().UTC()
	result.State.SaveVersion = maxVersion(base, incoming) + 1
	result.State.SavedAt = now
	result.State.MergedAt = &now
	result.State.SaveReason = models.SaveReasonMerge
	return result, nil
}

func maxVersion(base, incoming *models.GameState) int64 {
	if base.SaveVersion > incoming.SaveVersion {
		return base.SaveVersion
	}
	return incoming.SaveVersion
}

// smartMerge выполняет пополевое слияние поверх копии incoming:
// несогласованные секции payload заменяются разрешенными значениями.
func smartMerge(base, incoming *models.GameState) Result {
	merged := incoming.Clone()
	conflicts := 0
	var changed []string

	// Денежные/ресурсные счетчики: max, валюта никогда не регрессирует
	if resolved, n := mergeCounters(base.Resources(), incoming.Resources()); n > 0 {
		merged.SetNumberMap(models.PayloadKeyResources, resolved)
		conflicts += n
		changed = append(changed, models.PayloadKeyResources)
	}

	// Уровни контейнеров/апгрейдов: max
	if resolved, n := mergeCounters(base.Levels(), incoming.Levels()); n > 0 {
		merged.SetNumberMap(models.PayloadKeyLevels, resolved)
		conflicts += n
		changed = append(changed, models.PayloadKeyLevels)
	}

	if resolved, n := mergeQuests(base.Quests(), incoming.Quests()); n > 0 {
		merged.SetQuests(resolved)
		conflicts += n
		changed = append(changed, models.PayloadKeyQuests)
	}

	if resolved, grew := unionAchievements(base.Achievements(), incoming.Achievements()); grew {
		merged.SetAchievements(resolved)
		conflicts++
		changed = append(changed, models.PayloadKeyAchievements)
	}

	// Свободные настройки: shallow merge, incoming выигрывает коллизии
	if resolved, added := mergeSettings(base.Settings(), incoming.Settings()); added > 0 {
		merged.Payload[models.PayloadKeySettings] = resolved
		conflicts += added
		changed = append(changed, models.PayloadKeySettings)
	}

	// Учтенное время игры ведет себя как счетчик: берем max
	if basePt, incPt := base.PlaytimeSeconds(), incoming.PlaytimeSeconds(); basePt > incPt {
		merged.Payload[models.PayloadKeyPlaytime] = basePt
		conflicts++
		changed = append(changed, models.PayloadKeyPlaytime)
	}

	// startDate: более ранняя метка — прогресс не может начаться позже
	if resolved, took := earlierStart(base.StartDate(), incoming.StartDate()); took {
		merged.Payload[models.PayloadKeyStartDate] = float64(resolved)
		conflicts++
		changed = append(changed, models.PayloadKeyStartDate)
	}

	// Неизвестные секции, которых нет во входящем снапшоте,
	// сохраняются из base (incoming выигрывает все коллизии)
	for key, value := range base.Payload {
		if _, exists := merged.Payload[key]; !exists {
			merged.Payload[key] = value
		}
	}

	sort.Strings(changed)
	return Result{State: merged, ConflictCount: conflicts, ChangedFields: changed}
}

// mergeCounters сливает счетчики правилом max. Возвращает результат
// и число разрешенных коллизий; 0 означает, что incoming уже
// содержит разрешенные значения.
func mergeCounters(base, incoming map[string]float64) (map[string]float64, int) {
	resolved := make(map[string]float64, len(incoming))
	for name, v := range incoming {
		resolved[name] = v
	}

	conflicts := 0
	for name, baseValue := range base {
		incomingValue, exists := resolved[name]
		if !exists || baseValue > incomingValue {
			resolved[name] = baseValue
			conflicts++
		}
	}
	return resolved, conflicts
}

// mergeQuests сливает записи о квестах по id:
// завершенный квест всегда выигрывает у незавершенного; из двух
// незавершенных берется больший прогресс; при равенстве прогресса
// остальные поля сливаются shallow (incoming выигрывает).
func mergeQuests(base, incoming []models.Quest) ([]models.Quest, int) {
	byID := make(map[string]models.Quest, len(incoming))
	order := make([]string, 0, len(incoming))
	for _, q := range incoming {
		byID[q.ID] = q
		order = append(order, q.ID)
	}

	conflicts := 0
	for _, baseQuest := range base {
		incomingQuest, exists := byID[baseQuest.ID]
		if !exists {
			byID[baseQuest.ID] = baseQuest
			order = append(order, baseQuest.ID)
			conflicts++
			continue
		}

		winner, resolved := resolveQuest(baseQuest, incomingQuest)
		if resolved {
			byID[baseQuest.ID] = winner
			conflicts++
		}
	}

	result := make([]models.Quest, 0, len(order))
	for _, id := range order {
		result = append(result, byID[id])
	}
	return result, conflicts
}

// resolveQuest возвращает победившую запись и true, если запись
// отличается от incoming (т.е. base внес вклад).
func resolveQuest(base, incoming models.Quest) (models.Quest, bool) {
	if base.Completed != incoming.Completed {
		if base.Completed {
			return base, true
		}
		return incoming, false
	}

	if base.Progress != incoming.Progress {
		if base.Progress > incoming.Progress {
			return base, true
		}
		return incoming, false
	}

	// Равный прогресс: shallow merge остальных полей, incoming выигрывает
	if len(base.Extra) == 0 {
		return incoming, false
	}
	merged := incoming
	merged.Extra = make(map[string]any, len(base.Extra)+len(incoming.Extra))
	changed := false
	for k, v := range base.Extra {
		merged.Extra[k] = v
		if _, exists := incoming.Extra[k]; !exists {
			changed = true
		}
	}
	for k, v := range incoming.Extra {
		merged.Extra[k] = v
	}
	return merged, changed
}

// unionAchievements объединяет множества достижений.
// Возвращает true, если base добавил что-то к incoming.
func unionAchievements(base, incoming []string) ([]string, bool) {
	seen := make(map[string]bool, len(incoming))
	result := make([]string, 0, len(incoming)+len(base))
	for _, id := range incoming {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}

	grew := false
	for _, id := range base {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
			grew = true
		}
	}
	sort.Strings(result)
	return result, grew
}

// mergeSettings сливает настройки shallow, incoming выигрывает
// коллизии ключей. added — число ключей, которые внес base.
func mergeSettings(base, incoming map[string]any) (map[string]any, int) {
	if len(base) == 0 {
		return nil, 0
	}

	resolved := make(map[string]any, len(base)+len(incoming))
	for k, v := range base {
		resolved[k] = v
	}
	for k, v := range incoming {
		resolved[k] = v
	}

	added := 0
	for k := range base {
		if _, exists := incoming[k]; !exists {
			added++
		}
	}
	return resolved, added
}

// earlierStart выбирает более раннюю ненулевую метку начала.
// Возвращает true, если победила метка base.
func earlierStart(base, incoming int64) (int64, bool) {
	if base == 0 {
		return incoming, false
	}
	if incoming == 0 || base < incoming {
		return base, true
	}
	return incoming, false
}
