package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateFirstCompletion(t *testing.T) {
	s := Snapshot{
		Habits:          []HabitState{{Streak: 1, CompletionCount: 1}},
		WillpowerPoints: 12,
		Level:           0,
	}

	newly := Evaluate(s, UnlockedSet(nil))
	assert.Contains(t, newly, "ach_first_step")
	assert.NotContains(t, newly, "ach_on_a_roll")
}

func TestEvaluateIsIdempotent(t *testing.T) {
	s := Snapshot{
		Habits:          []HabitState{{Streak: 7, CompletionCount: 7, Color: "#EF4444"}},
		WillpowerPoints: 150,
		Level:           1,
	}

	unlocked := UnlockedSet(nil)
	first := Evaluate(s, unlocked)
	require.NotEmpty(t, first)
	assert.Contains(t, first, "ach_on_a_roll")
	assert.Contains(t, first, "ach_week_warrior")

	// 同一快照、已并入解锁集后再次求值，不得重复解锁
	for _, id := range first {
		unlocked[id] = true
	}
	second := Evaluate(s, unlocked)
	assert.Empty(t, second)
}

func TestEvaluateDistinctColorsAndHabitCount(t *testing.T) {
	habits := []HabitState{
		{Color: "#5D5FEF"},
		{Color: "#11D1A9"},
		{Color: "#5D5FEF"},
	}
	s := Snapshot{Habits: habits}
	assert.NotContains(t, Evaluate(s, UnlockedSet(nil)), "ach_rainbow")

	s.Habits = append(s.Habits, HabitState{Color: "#F59E0B"}, HabitState{Color: "#EF4444"})
	newly := Evaluate(s, UnlockedSet(nil))
	assert.Contains(t, newly, "ach_rainbow")
	assert.Contains(t, newly, "ach_forge_master") // 5个习惯
}

func TestEvaluatePerfectDayRequiresMinimumHabits(t *testing.T) {
	// 习惯数不足3个时，即便全部完成也不解锁
	s := Snapshot{Habits: []HabitState{
		{CompletedToday: true},
		{CompletedToday: true},
	}}
	assert.NotContains(t, Evaluate(s, UnlockedSet(nil)), "ach_perfect_day")

	s.Habits = append(s.Habits, HabitState{CompletedToday: true})
	assert.Contains(t, Evaluate(s, UnlockedSet(nil)), "ach_perfect_day")

	s.Habits[1].CompletedToday = false
	assert.NotContains(t, Evaluate(s, UnlockedSet(nil)), "ach_perfect_day")
}

func TestEvaluateLevelAndPoints(t *testing.T) {
	s := Snapshot{WillpowerPoints: 1000, Level: 10}
	newly := Evaluate(s, UnlockedSet(nil))
	assert.Contains(t, newly, "ach_level_5")
	assert.Contains(t, newly, "ach_level_10")
	assert.Contains(t, newly, "ach_point_collector")
}

func TestEvaluateSharedHabit(t *testing.T) {
	s := Snapshot{Habits: []HabitState{{Shared: true}}}
	assert.Contains(t, Evaluate(s, UnlockedSet(nil)), "ach_social_butterfly")
}

func TestCatalogIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, a := range Catalog {
		require.False(t, seen[a.ID], "duplicate achievement id %s", a.ID)
		seen[a.ID] = true
	}

	got, ok := FindByID("ach_first_step")
	require.True(t, ok)
	assert.Equal(t, "First Step", got.Name)

	_, ok = FindByID("ach_unknown")
	assert.False(t, ok)
}
