package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/statekeeper/internal/models"
)

func snapshot(version int64, mutate func(*models.GameState)) *models.GameState {
	state := models.NewGameState("user1")
	state.SaveVersion = version
	if mutate != nil {
		mutate(state)
	}
	return state
}

func TestMerge_InputValidation(t *testing.T) {
	base := snapshot(1, nil)

	_, err := Merge(nil, base, StrategySmart)
	assert.Error(t, err)

	other := models.NewGameState("user2")
	_, err = Merge(base, other, StrategySmart)
	assert.Error(t, err)

	_, err = Merge(base, base.Clone(), Strategy("bogus"))
	assert.Error(t, err)
}

func TestMerge_VersionIsMaxPlusOne(t *testing.T) {
	base := snapshot(5, nil)
	incoming := snapshot(3, nil)

	for _, strategy := range []Strategy{StrategyClientWins, StrategyServerWins, StrategySmart} {
		result, err := Merge(base, incoming, strategy)
		require.NoError(t, err)
		assert.Equal(t, int64(6), result.State.SaveVersion, "strategy %s", strategy)
		assert.Equal(t, models.SaveReasonMerge, result.State.SaveReason)
		require.NotNil(t, result.State.MergedAt)
	}
}

func TestMerge_TrivialStrategies(t *testing.T) {
	base := snapshot(2, func(s *models.GameState) {
		s.SetNumberMap(models.PayloadKeyResources, map[string]float64{"coins": 500})
	})
	incoming := snapshot(2, func(s *models.GameState) {
		s.SetNumberMap(models.PayloadKeyResources, map[string]float64{"coins": 10})
	})

	clientWins, err := Merge(base, incoming, StrategyClientWins)
	require.NoError(t, err)
	assert.Equal(t, float64(10), clientWins.State.Resources()["coins"])
	assert.Zero(t, clientWins.ConflictCount)

	serverWins, err := Merge(base, incoming, StrategyServerWins)
	require.NoError(t, err)
	assert.Equal(t, float64(500), serverWins.State.Resources()["coins"])
}

func TestSmartMerge_CountersNeverRegress(t *testing.T) {
	base := snapshot(4, func(s *models.GameState) {
		s.SetNumberMap(models.PayloadKeyResources, map[string]float64{"coins": 500, "gems": 2})
		s.SetNumberMap(models.PayloadKeyLevels, map[string]float64{"container": 7})
	})
	incoming := snapshot(4, func(s *models.GameState) {
		s.SetNumberMap(models.PayloadKeyResources, map[string]float64{"coins": 100, "gems": 9, "dust": 1})
		s.SetNumberMap(models.PayloadKeyLevels, map[string]float64{"container": 5})
	})

	result, err := Merge(base, incoming, StrategySmart)
	require.NoError(t, err)

	resources := result.State.Resources()
	assert.Equal(t, float64(500), resources["coins"], "base coins must win")
	assert.Equal(t, float64(9), resources["gems"], "incoming gems must win")
	assert.Equal(t, float64(1), resources["dust"], "incoming-only counter kept")
	assert.Equal(t, float64(7), result.State.Levels()["container"])
	assert.Positive(t, result.ConflictCount)
	assert.Contains(t, result.ChangedFields, models.PayloadKeyResources)

	// Никакой счетчик не ниже min(base, incoming)
	for name, merged := range resources {
		baseV := base.Resources()[name]
		incV := incoming.Resources()[name]
		low := baseV
		if incV < low {
			low = incV
		}
		assert.GreaterOrEqual(t, merged, low, "counter %s regressed", name)
	}
}

func TestSmartMerge_Quests(t *testing.T) {
	base := snapshot(2, func(s *models.GameState) {
		s.SetQuests([]models.Quest{
			{ID: "done", Completed: true, Progress: 100},
			{ID: "ahead", Progress: 80},
			{ID: "tie", Progress: 50, Extra: map[string]any{"hint": "old", "baseOnly": true}},
			{ID: "baseOnly", Progress: 10},
		})
	})
	incoming := snapshot(2, func(s *models.GameState) {
		s.SetQuests([]models.Quest{
			{ID: "done", Completed: false, Progress: 10},
			{ID: "ahead", Progress: 30},
			{ID: "tie", Progress: 50, Extra: map[string]any{"hint": "new"}},
			{ID: "incomingOnly", Progress: 5},
		})
	})

	result, err := Merge(base, incoming, StrategySmart)
	require.NoError(t, err)

	byID := make(map[string]models.Quest)
	for _, q := range result.State.Quests() {
		byID[q.ID] = q
	}

	assert.True(t, byID["done"].Completed, "completed quest always wins")
	assert.Equal(t, float64(80), byID["ahead"].Progress, "higher progress wins")
	assert.Equal(t, "new", byID["tie"].Extra["hint"], "incoming wins extra collisions")
	assert.Equal(t, true, byID["tie"].Extra["baseOnly"], "base-only extra preserved")
	assert.Contains(t, byID, "baseOnly")
	assert.Contains(t, byID, "incomingOnly")
}

func TestSmartMerge_AchievementsUnion(t *testing.T) {
	base := snapshot(2, func(s *models.GameState) {
		s.SetAchievements([]string{"a", "b"})
	})
	incoming := snapshot(2, func(s *models.GameState) {
		s.SetAchievements([]string{"b", "c"})
	})

	result, err := Merge(base, incoming, StrategySmart)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, result.State.Achievements())
}

func TestSmartMerge_SettingsIncomingWins(t *testing.T) {
	base := snapshot(2, func(s *models.GameState) {
		s.Payload[models.PayloadKeySettings] = map[string]any{"sound": true, "lang": "ru"}
	})
	incoming := snapshot(2, func(s *models.GameState) {
		s.Payload[models.PayloadKeySettings] = map[string]any{"sound": false}
	})

	result, err := Merge(base, incoming, StrategySmart)
	require.NoError(t, err)

	settings := result.State.Settings()
	assert.Equal(t, false, settings["sound"], "incoming wins collision")
	assert.Equal(t, "ru", settings["lang"], "base-only key preserved")
}

func TestSmartMerge_TimestampsAndPlaytime(t *testing.T) {
	base := snapshot(2, func(s *models.GameState) {
		s.Payload[models.PayloadKeyStartDate] = float64(1000)
		s.Payload[models.PayloadKeyPlaytime] = float64(5000)
	})
	incoming := snapshot(2, func(s *models.GameState) {
		s.Payload[models.PayloadKeyStartDate] = float64(2000)
		s.Payload[models.PayloadKeyPlaytime] = float64(3000)
	})

	result, err := Merge(base, incoming, StrategySmart)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.State.StartDate(), "earlier start wins")
	assert.Equal(t, float64(5000), result.State.PlaytimeSeconds(), "playtime takes max")
}

func TestSmartMerge_UnknownSectionsPreserved(t *testing.T) {
	base := snapshot(2, func(s *models.GameState) {
		s.Payload["boardLayout"] = map[string]any{"cells": float64(9)}
	})
	incoming := snapshot(2, nil)

	result, err := Merge(base, incoming, StrategySmart)
	require.NoError(t, err)
	assert.NotNil(t, result.State.Payload["boardLayout"])
}

func TestSmartMerge_RemergeIsNoOp(t *testing.T) {
	base := snapshot(4, func(s *models.GameState) {
		s.SetNumberMap(models.PayloadKeyResources, map[string]float64{"coins": 500})
		s.SetAchievements([]string{"a"})
		s.SetQuests([]models.Quest{{ID: "q1", Completed: true, Progress: 100}})
	})
	incoming := snapshot(4, func(s *models.GameState) {
		s.SetNumberMap(models.PayloadKeyResources, map[string]float64{"coins": 300})
		s.SetAchievements([]string{"b"})
		s.SetQuests([]models.Quest{{ID: "q1", Completed: false, Progress: 20}})
	})

	first, err := Merge(base, incoming, StrategySmart)
	require.NoError(t, err)

	// Ретрай воркера: повторное слияние результата с каждым из входов
	// не должно менять уже согласованные поля
	for _, input := range []*models.GameState{base, incoming} {
		again, err := Merge(input, first.State, StrategySmart)
		require.NoError(t, err)
		assert.Equal(t, first.State.Resources(), again.State.Resources())
		assert.Equal(t, first.State.Achievements(), again.State.Achievements())
		assert.Equal(t, first.State.Quests(), again.State.Quests())
	}
}

func TestSmartMerge_EqualSnapshotsNoConflicts(t *testing.T) {
	base := snapshot(3, func(s *models.GameState) {
		s.SetNumberMap(models.PayloadKeyResources, map[string]float64{"coins": 100})
	})

	result, err := Merge(base, base.Clone(), StrategySmart)
	require.NoError(t, err)
	assert.Zero(t, result.ConflictCount)
	assert.Empty(t, result.ChangedFields)
	assert.Equal(t, int64(4), result.State.SaveVersion)
}
