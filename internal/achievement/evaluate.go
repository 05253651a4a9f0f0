package achievement

// HabitState 是成就求值所需的单个习惯的最小快照。
// 由调用方（habit模块）在每次变更动作后构造。
type HabitState struct {
	Color string
	// Streak 是该习惯当前的连击值
	Streak int
	// CompletionCount 是该习惯的累计打卡次数
	CompletionCount int
	// CompletedToday 表示该习惯在"今天"（UTC日历日）是否有打卡记录
	CompletedToday bool
	// CompletedOnWeekend 表示该习惯是否有落在周末的打卡记录
	CompletedOnWeekend bool
	// Shared 表示该习惯是否处于共享状态
	Shared bool
}

// Snapshot 是成就求值的完整输入：用户的全部习惯加上用户自身的状态。
type Snapshot struct {
	Habits          []HabitState
	WillpowerPoints int
	Level           int
}

// satisfied 是成就规则的分发表入口。
func satisfied(a Achievement, s Snapshot) bool {
	switch a.Kind {
	case KindFirstCompletion:
		return s.WillpowerPoints > 0
	case KindStreak:
		for _, h := range s.Habits {
			if h.Streak >= a.Threshold {
				return true
			}
		}
		return false
	case KindTotalCompletions:
		total := 0
		for _, h := range s.Habits {
			total += h.CompletionCount
		}
		return total >= a.Threshold
	case KindHabitCount:
		return len(s.Habits) >= a.Threshold
	case KindDistinctColors:
		colors := make(map[string]struct{})
		for _, h := range s.Habits {
			colors[h.Color] = struct{}{}
		}
		return len(colors) >= a.Threshold
	case KindLevel:
		return s.Level >= a.Threshold
	case KindPoints:
		return s.WillpowerPoints >= a.Threshold
	case KindPerfectDay:
		if len(s.Habits) < a.Threshold {
			return false
		}
		for _, h := range s.Habits {
			if !h.CompletedToday {
				return false
			}
		}
		return true
	case KindWeekendCompletion:
		for _, h := range s.Habits {
			if h.CompletedOnWeekend {
				return true
			}
		}
		return false
	case KindSharedHabit:
		for _, h := range s.Habits {
			if h.Shared {
				return true
			}
		}
		return false
	}
	return false
}

// Evaluate 对快照重新运行全部成就规则，返回新解锁的成就ID列表（按目录顺序）。
// 解锁是单调的集合并：已经在 unlocked 中的成就永远不会被再次返回，
// 对同一快照求值两次，第二次必然返回空。
func Evaluate(s Snapshot, unlocked map[string]bool) []string {
	var newly []string
	for _, a := range Catalog {
		if unlocked[a.ID] {
			continue
		}
		if satisfied(a, s) {
			newly = append(newly, a.ID)
		}
	}
	return newly
}

// UnlockedSet 把ID切片转换为 Evaluate 需要的集合形式。
func UnlockedSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
