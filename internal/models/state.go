package models

import (
	"encoding/json"
	"time"
)

// SaveReason причина сохранения игрового состояния.
type SaveReason string

// Причины сохранения, приходящие от клиента или назначаемые движком.
const (
	SaveReasonManual   SaveReason = "manual"   // явное сохранение игроком
	SaveReasonAuto     SaveReason = "auto"     // периодическое автосохранение
	SaveReasonCritical SaveReason = "critical" // сохранение, которое нельзя отбросить
	SaveReasonExit     SaveReason = "exit"     // flush при закрытии вкладки/сессии
	SaveReasonMerge    SaveReason = "merge"    // результат слияния конфликтующих версий
	SaveReasonRepair   SaveReason = "repair"   // результат административного ремонта
)

// Valid проверяет, что причина сохранения известна движку.
func (r SaveReason) Valid() bool {
	switch r {
	case SaveReasonManual, SaveReasonAuto, SaveReasonCritical,
		SaveReasonExit, SaveReasonMerge, SaveReasonRepair:
		return true
	}
	return false
}

// Ключи payload, которые движок инспектирует.
// Весь остальной payload — непрозрачный игровой документ.
const (
	PayloadKeyResources    = "resources"       // map[name]number — валюты и ресурсы
	PayloadKeyLevels       = "levels"          // map[name]number — уровни контейнеров/апгрейдов
	PayloadKeyQuests       = "quests"          // []quest — записи о квестах
	PayloadKeyAchievements = "achievements"    // []string — разблокированные достижения
	PayloadKeySettings     = "settings"        // map — свободные настройки клиента
	PayloadKeyPlaytime     = "playtimeSeconds" // number — учтенное время игры
	PayloadKeyStartDate    = "startDate"       // number — unix ms начала прогресса
)

// GameState представляет игровое состояние пользователя:
// типизированный конверт метаданных вокруг непрозрачного payload.
// Движок не интерпретирует payload за пределами инспектируемых ключей.
type GameState struct {
	SavedAt     time.Time      `json:"savedAt"`
	MergedAt    *time.Time     `json:"mergedAt,omitempty"`
	Payload     map[string]any `json:"payload"`
	UserID      string         `json:"userId"`
	SaveReason  SaveReason     `json:"saveReason"`
	SaveVersion int64          `json:"saveVersion"`
}

// NewGameState создает пустое состояние первой версии для пользователя.
func NewGameState(userID string) *GameState {
	return &GameState{
		UserID:      userID,
		SaveVersion: 1,
		SavedAt:     time.Now().UTC(),
		SaveReason:  SaveReasonManual,
		Payload:     make(map[string]any),
	}
}

// Quest типизированное представление одной записи о квесте
// внутри payload. Поля за пределами известных сохраняются в Extra.
type Quest struct {
	Extra     map[string]any
	ID        string
	Progress  float64
	Completed bool
}

// ToMap конвертирует квест обратно в payload-представление.
func (q Quest) ToMap() map[string]any {
	m := make(map[string]any, len(q.Extra)+3)
	for k, v := range q.Extra {
		m[k] = v
	}
	m["id"] = q.ID
	m["completed"] = q.Completed
	m["progress"] = q.Progress
	return m
}

// QuestFromMap извлекает квест из payload-представления.
func QuestFromMap(m map[string]any) Quest {
	q := Quest{Extra: make(map[string]any)}
	for k, v := range m {
		switch k {
		case "id":
			if s, ok := v.(string); ok {
				q.ID = s
			}
		case "completed":
			if b, ok := v.(bool); ok {
				q.Completed = b
			}
		case "progress":
			if f, ok := ToNumber(v); ok {
				q.Progress = f
			}
		default:
			q.Extra[k] = v
		}
	}
	return q
}

// ToNumber приводит типы, которыми encoding/json представляет числа,
// к float64. Возвращает false для нечисловых значений.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// numberMap извлекает map[name]number по ключу payload.
func (s *GameState) numberMap(key string) map[string]float64 {
	result := make(map[string]float64)
	raw, ok := s.Payload[key].(map[string]any)
	if !ok {
		return result
	}
	for name, v := range raw {
		if f, ok := ToNumber(v); ok {
			result[name] = f
		}
	}
	return result
}

// Resources возвращает счетчики валют/ресурсов. Отсутствующая
// секция дает пустую map, не nil-панику.
func (s *GameState) Resources() map[string]float64 {
	return s.numberMap(PayloadKeyResources)
}

// Levels возвращает уровни контейнеров и апгрейдов.
func (s *GameState) Levels() map[string]float64 {
	return s.numberMap(PayloadKeyLevels)
}

// Quests возвращает типизированные записи о квестах.
func (s *GameState) Quests() []Quest {
	raw, ok := s.Payload[PayloadKeyQuests].([]any)
	if !ok {
		return nil
	}
	quests := make([]Quest, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			quests = append(quests, QuestFromMap(m))
		}
	}
	return quests
}

// CompletedQuestCount возвращает число завершенных квестов.
func (s *GameState) CompletedQuestCount() int {
	count := 0
	for _, q := range s.Quests() {
		if q.Completed {
			count++
		}
	}
	return count
}

// Achievements возвращает идентификаторы разблокированных достижений.
func (s *GameState) Achievements() []string {
	raw, ok := s.Payload[PayloadKeyAchievements].([]any)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		if id, ok := item.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Settings возвращает свободные настройки клиента.
func (s *GameState) Settings() map[string]any {
	if m, ok := s.Payload[PayloadKeySettings].(map[string]any); ok {
		return m
	}
	return nil
}

// PlaytimeSeconds возвращает учтенное время игры в секундах.
func (s *GameState) PlaytimeSeconds() float64 {
	f, _ := ToNumber(s.Payload[PayloadKeyPlaytime])
	return f
}

// StartDate возвращает unix ms начала прогресса (0, если не записан).
func (s *GameState) StartDate() int64 {
	f, ok := ToNumber(s.Payload[PayloadKeyStartDate])
	if !ok {
		return 0
	}
	return int64(f)
}

// SetNumberMap записывает map[name]number секцию payload.
func (s *GameState) SetNumberMap(key string, values map[string]float64) {
	m := make(map[string]any, len(values))
	for name, v := range values {
		m[name] = v
	}
	s.Payload[key] = m
}

// SetQuests записывает записи о квестах в payload.
func (s *GameState) SetQuests(quests []Quest) {
	raw := make([]any, 0, len(quests))
	for _, q := range quests {
		raw = append(raw, q.ToMap())
	}
	s.Payload[PayloadKeyQuests] = raw
}

// SetAchievements записывает достижения в payload.
func (s *GameState) SetAchievements(ids []string) {
	raw := make([]any, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id)
	}
	s.Payload[PayloadKeyAchievements] = raw
}

// Clone создает глубокую копию состояния.
// Payload копируется через JSON round-trip: payload приходит из
// encoding/json и содержит только JSON-совместимые значения.
func (s *GameState) Clone() *GameState {
	clone := &GameState{
		UserID:      s.UserID,
		SaveVersion: s.SaveVersion,
		SavedAt:     s.SavedAt,
		SaveReason:  s.SaveReason,
		Payload:     clonePayload(s.Payload),
	}
	if s.MergedAt != nil {
		t := *s.MergedAt
		clone.MergedAt = &t
	}
	return clone
}

func clonePayload(payload map[string]any) map[string]any {
	if payload == nil {
		return make(map[string]any)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		// payload всегда JSON-совместим; сюда попасть нельзя
		return make(map[string]any)
	}
	var clone map[string]any
	if err := json.Unmarshal(raw, &clone); err != nil {
		return make(map[string]any)
	}
	return clone
}

// Marshal сериализует состояние в JSON.
func (s *GameState) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalGameState десериализует состояние из JSON.
func UnmarshalGameState(data []byte) (*GameState, error) {
	var state GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Payload == nil {
		state.Payload = make(map[string]any)
	}
	return &state, nil
}
