package validation

import (
	"fmt"
	"sort"

	"github.com/iudanet/statekeeper/internal/models"
)

// Limits настраиваемые пороги правдоподобия игрового состояния.
// Потолки намеренно щедрые: превышение дает warning для античит
// телеметрии, а не отказ в сохранении. Жесткие ошибки — только
// значения, невозможные в принципе (отрицательные счетчики).
type Limits struct {
	// MaxResource потолок одного ресурсного счетчика
	MaxResource float64
	// MaxLevel потолок уровня контейнера/апгрейда
	MaxLevel float64
	// MaxQuestProgress потолок прогресса квеста
	MaxQuestProgress float64
	// MaxLevelsPerHour потолок скорости прокачки: суммарные уровни
	// на час учтенного времени игры
	MaxLevelsPerHour float64
	// MinPlaytimeSeconds время игры, ниже которого скорость
	// прокачки не оценивается (слишком мало данных)
	MinPlaytimeSeconds float64
}

// DefaultLimits возвращает пороги по умолчанию.
// Конкретные значения — конфигурация, не контракт.
func DefaultLimits() Limits {
	return Limits{
		MaxResource:        1e12,
		MaxLevel:           10_000,
		MaxQuestProgress:   100,
		MaxLevelsPerHour:   500,
		MinPlaytimeSeconds: 60,
	}
}

// Report результат проверки правдоподобия.
// Errors делают состояние невалидным; Warnings только помечают
// подозрительные значения для телеметрии.
type Report struct {
	Errors   []string
	Warnings []string
	Valid    bool
}

// Check проверяет игровое состояние на правдоподобие.
// Отвергает отрицательные счетчики; помечает (не отвергает)
// счетчики за потолком и неправдоподобную скорость прогресса.
func Check(state *models.GameState, limits Limits) Report {
	report := Report{Valid: true}
	if state == nil {
		report.Valid = false
		report.Errors = append(report.Errors, "state is nil")
		return report
	}

	if state.SaveVersion < 1 {
		report.Valid = false
		report.Errors = append(report.Errors, fmt.Sprintf("save version %d is below 1", state.SaveVersion))
	}

	checkCounters(&report, state.Resources(), "resource", limits.MaxResource)
	checkCounters(&report, state.Levels(), "level", limits.MaxLevel)

	for _, q := range state.Quests() {
		if q.Progress < 0 {
			report.Valid = false
			report.Errors = append(report.Errors, fmt.Sprintf("quest %q has negative progress %v", q.ID, q.Progress))
		} else if limits.MaxQuestProgress > 0 && q.Progress > limits.MaxQuestProgress {
			report.Warnings = append(report.Warnings, fmt.Sprintf("quest %q progress %v exceeds %v", q.ID, q.Progress, limits.MaxQuestProgress))
		}
	}

	playtime := state.PlaytimeSeconds()
	if playtime < 0 {
		report.Valid = false
		report.Errors = append(report.Errors, fmt.Sprintf("playtime %v is negative", playtime))
	}

	// Скорость прокачки оценивается только при достаточном playtime:
	// на первых секундах любой прогресс выглядит мгновенным.
	if playtime >= limits.MinPlaytimeSeconds && limits.MaxLevelsPerHour > 0 {
		total := 0.0
		for _, lvl := range state.Levels() {
			if lvl > 0 {
				total += lvl
			}
		}
		perHour := total / (playtime / 3600)
		if perHour > limits.MaxLevelsPerHour {
			report.Warnings = append(report.Warnings, fmt.Sprintf("progression rate %.1f levels/hour exceeds %.1f", perHour, limits.MaxLevelsPerHour))
		}
	}

	return report
}

// checkCounters проверяет map счетчиков: отрицательные — ошибка,
// за потолком — warning. Имена обходятся в сортированном порядке,
// чтобы отчет был детерминированным.
func checkCounters(report *Report, counters map[string]float64, kind string, ceiling float64) {
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := counters[name]
		switch {
		case value < 0:
			report.Valid = false
			report.Errors = append(report.Errors, fmt.Sprintf("%s %q is negative: %v", kind, name, value))
		case ceiling > 0 && value > ceiling:
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s %q value %v exceeds ceiling %v", kind, name, value, ceiling))
		}
	}
}

// Repair приводит состояние к валидным границам: отрицательные и
// переполненные счетчики зажимаются, отсутствующие метаданные версии
// заполняются. Возвращает исправленную копию и список примененных
// фиксов. Повторный Repair над результатом не находит ничего.
// Используется только административной задачей ремонта, никогда
// на горячем пути сохранения.
func Repair(state *models.GameState, limits Limits) (*models.GameState, []string) {
	repaired := state.Clone()
	var fixes []string

	resources := repaired.Resources()
	if clampCounters(resources, limits.MaxResource, "resource", &fixes) {
		repaired.SetNumberMap(models.PayloadKeyResources, resources)
	}

	levels := repaired.Levels()
	if clampCounters(levels, limits.MaxLevel, "level", &fixes) {
		repaired.SetNumberMap(models.PayloadKeyLevels, levels)
	}

	quests := repaired.Quests()
	questsFixed := false
	for i, q := range quests {
		switch {
		case q.Progress < 0:
			fixes = append(fixes, fmt.Sprintf("quest %q: progress %v -> 0", q.ID, q.Progress))
			quests[i].Progress = 0
			questsFixed = true
		case limits.MaxQuestProgress > 0 && q.Progress > limits.MaxQuestProgress:
			fixes = append(fixes, fmt.Sprintf("quest %q: progress %v -> %v", q.ID, q.Progress, limits.MaxQuestProgress))
			quests[i].Progress = limits.MaxQuestProgress
			questsFixed = true
		}
	}
	if questsFixed {
		repaired.SetQuests(quests)
	}

	if repaired.PlaytimeSeconds() < 0 {
		fixes = append(fixes, fmt.Sprintf("playtime %v -> 0", repaired.PlaytimeSeconds()))
		repaired.Payload[models.PayloadKeyPlaytime] = float64(0)
	}

	if repaired.SaveVersion < 1 {
		fixes = append(fixes, fmt.Sprintf("save version %d -> 1", repaired.SaveVersion))
		repaired.SaveVersion = 1
	}
	if !repaired.SaveReason.Valid() {
		fixes = append(fixes, fmt.Sprintf("save reason %q -> %q", repaired.SaveReason, models.SaveReasonRepair))
		repaired.SaveReason = models.SaveReasonRepair
	}

	return repaired, fixes
}

// clampCounters зажимает счетчики в [0, ceiling]. Возвращает true,
// если хотя бы одно значение было изменено.
func clampCounters(counters map[string]float64, ceiling float64, kind string, fixes *[]string) bool {
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := false
	for _, name := range names {
		value := counters[name]
		switch {
		case value < 0:
			*fixes = append(*fixes, fmt.Sprintf("%s %q: %v -> 0", kind, name, value))
			counters[name] = 0
			changed = true
		case ceiling > 0 && value > ceiling:
			*fixes = append(*fixes, fmt.Sprintf("%s %q: %v -> %v", kind, name, value, ceiling))
			counters[name] = ceiling
			changed = true
		}
	}
	return changed
}
