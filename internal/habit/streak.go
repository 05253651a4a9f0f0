package habit

import (
	"sort"
	"time"

	"github.com/HabitForge/habitforge-backend/pkg/calendar"
)

// CalculateStreak 是连击的唯一计算函数，纯函数：
// 结果只由 (history, habitType, createdAt, now) 决定。
//
// GOOD习惯：把打卡历史折叠成去重后的日历日，若最近一天既不是今天
// 也不是昨天则连击为0；否则从最近一天起向前数连续的日历日。
// BAD习惯：连击是距离最近一次破戒（无记录时取创建时间）经过的完整
// 日历日数，即"戒除天数"。
func CalculateStreak(history []time.Time, habitType Type, createdAt, now time.Time) int {
	if habitType == TypeBad {
		last := createdAt
		for _, t := range history {
			if t.After(last) {
				last = t
			}
		}
		return calendar.WholeDaysBetween(last, now)
	}

	if len(history) == 0 {
		return 0
	}

	// 1. 折叠为去重的日历日零点，降序排列
	daySet := make(map[time.Time]struct{}, len(history))
	for _, t := range history {
		daySet[calendar.StartOfDay(t)] = struct{}{}
	}
	days := make([]time.Time, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	// 2. 最近一天必须是今天或昨天，否则连击已经断了
	latest := days[0]
	if !calendar.SameDay(latest, now) && !calendar.IsYesterday(latest, now) {
		return 0
	}

	// 3. 从最近一天起向前数，每一天都必须恰好早一个日历日
	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
			streak++
			continue
		}
		break
	}
	return streak
}
