package habit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestCalculateStreakEmptyHistory(t *testing.T) {
	now := day(2024, 1, 10, 12)
	created := day(2024, 1, 1, 0)

	assert.Equal(t, 0, CalculateStreak(nil, TypeGood, created, now))
}

func TestCalculateStreakSingleCompletionToday(t *testing.T) {
	now := day(2024, 1, 10, 12)
	history := []time.Time{day(2024, 1, 10, 8)}

	assert.Equal(t, 1, CalculateStreak(history, TypeGood, day(2024, 1, 1, 0), now))
}

func TestCalculateStreakConsecutiveDays(t *testing.T) {
	created := day(2024, 1, 1, 0)
	history := []time.Time{
		day(2024, 1, 1, 8),
		day(2024, 1, 2, 9),
		day(2024, 1, 3, 7),
	}

	assert.Equal(t, 3, CalculateStreak(history, TypeGood, created, day(2024, 1, 3, 12)))
}

func TestCalculateStreakSurvivesOneDayGrace(t *testing.T) {
	history := []time.Time{
		day(2024, 1, 1, 8),
		day(2024, 1, 2, 9),
	}

	// 最近一次打卡是昨天，连击保持
	assert.Equal(t, 2, CalculateStreak(history, TypeGood, day(2024, 1, 1, 0), day(2024, 1, 3, 12)))
	// 最近一次打卡是前天，连击归零
	assert.Equal(t, 0, CalculateStreak(history, TypeGood, day(2024, 1, 1, 0), day(2024, 1, 4, 12)))
}

func TestCalculateStreakGapRestartsAtOne(t *testing.T) {
	history := []time.Time{
		day(2024, 1, 1, 8),
		day(2024, 1, 2, 9),
		// 1月3日缺卡
		day(2024, 1, 4, 10),
	}

	assert.Equal(t, 1, CalculateStreak(history, TypeGood, day(2024, 1, 1, 0), day(2024, 1, 4, 12)))
}

func TestCalculateStreakDuplicateSameDayDoesNotInflate(t *testing.T) {
	history := []time.Time{
		day(2024, 1, 1, 8),
		day(2024, 1, 1, 20),
		day(2024, 1, 2, 9),
	}

	assert.Equal(t, 2, CalculateStreak(history, TypeGood, day(2024, 1, 1, 0), day(2024, 1, 2, 12)))
}

func TestCalculateStreakInsertionOrderIrrelevant(t *testing.T) {
	history := []time.Time{
		day(2024, 1, 3, 7),
		day(2024, 1, 1, 8),
		day(2024, 1, 2, 9),
	}

	assert.Equal(t, 3, CalculateStreak(history, TypeGood, day(2024, 1, 1, 0), day(2024, 1, 3, 12)))
}

func TestCalculateStreakCrossOffsetSameUTCDay(t *testing.T) {
	// 两个时间戳本地时区不同，但落在同一个UTC日历日
	east := time.FixedZone("UTC+9", 9*3600)
	history := []time.Time{
		time.Date(2024, 1, 1, 23, 0, 0, 0, east), // UTC: 01-01 14:00
		day(2024, 1, 2, 10),
	}

	assert.Equal(t, 2, CalculateStreak(history, TypeGood, day(2024, 1, 1, 0), day(2024, 1, 2, 12)))
}

func TestCalculateStreakBadHabitDaysFree(t *testing.T) {
	created := day(2024, 1, 1, 10)

	// 无破戒记录：从创建起数
	assert.Equal(t, 9, CalculateStreak(nil, TypeBad, created, day(2024, 1, 10, 12)))

	// 有破戒记录：从最近一次破戒起数
	history := []time.Time{day(2024, 1, 5, 22)}
	assert.Equal(t, 5, CalculateStreak(history, TypeBad, created, day(2024, 1, 10, 12)))

	// 当天破戒：归零
	history = append(history, day(2024, 1, 10, 9))
	assert.Equal(t, 0, CalculateStreak(history, TypeBad, created, day(2024, 1, 10, 12)))
}

func TestCalculateStreakNonNegative(t *testing.T) {
	// 创建时间在"现在"之后也不应产生负数
	assert.Equal(t, 0, CalculateStreak(nil, TypeBad, day(2024, 1, 10, 0), day(2024, 1, 5, 0)))
}
