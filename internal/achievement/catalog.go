package achievement

// Kind 是成就判定规则的枚举类型。
// 成就不再是闭包形式的动态谓词，而是带类型化参数的固定规则，
// 由 Evaluate 中的分发表统一求值，便于审计和测试。
type Kind string

const (
	// KindFirstCompletion 在用户获得第一点意志力点数时解锁
	KindFirstCompletion Kind = "FIRST_COMPLETION"
	// KindStreak 在任意习惯的连击达到 Threshold 天时解锁
	KindStreak Kind = "STREAK"
	// KindTotalCompletions 在所有习惯的累计打卡次数达到 Threshold 时解锁
	KindTotalCompletions Kind = "TOTAL_COMPLETIONS"
	// KindHabitCount 在创建的习惯数量达到 Threshold 时解锁
	KindHabitCount Kind = "HABIT_COUNT"
	// KindDistinctColors 在习惯颜色种类达到 Threshold 时解锁
	KindDistinctColors Kind = "DISTINCT_COLORS"
	// KindLevel 在用户等级达到 Threshold 时解锁
	KindLevel Kind = "LEVEL"
	// KindPoints 在意志力点数达到 Threshold 时解锁
	KindPoints Kind = "POINTS"
	// KindPerfectDay 在一天内完成所有习惯时解锁（至少 Threshold 个习惯）
	KindPerfectDay Kind = "PERFECT_DAY"
	// KindWeekendCompletion 在周六或周日完成过任意习惯时解锁
	KindWeekendCompletion Kind = "WEEKEND_COMPLETION"
	// KindSharedHabit 在分享过任意习惯时解锁
	KindSharedHabit Kind = "SHARED_HABIT"
)

// Achievement 是成就目录中的一个静态条目。
// 目录在编译期固定；用户状态中只按ID记录已解锁的成就。
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	Kind        Kind   `json:"-"`
	Threshold   int    `json:"-"`
}

// Catalog 是全部成就的静态目录，按解锁检查的顺序排列。
var Catalog = []Achievement{
	// --- 连击类 ---
	{ID: "ach_first_step", Name: "First Step", Description: "Complete a habit for the first time.", Emoji: "🌱", Kind: KindFirstCompletion},
	{ID: "ach_on_a_roll", Name: "On a Roll", Description: "Maintain a 3-day streak on any habit.", Emoji: "🔥", Kind: KindStreak, Threshold: 3},
	{ID: "ach_week_warrior", Name: "Week Warrior", Description: "Maintain a 7-day streak on any habit.", Emoji: "⚔️", Kind: KindStreak, Threshold: 7},
	{ID: "ach_unstoppable", Name: "Unstoppable", Description: "Maintain a 30-day streak on any habit.", Emoji: "🚀", Kind: KindStreak, Threshold: 30},
	{ID: "ach_legendary", Name: "Legendary Consistency", Description: "Maintain a 100-day streak. You are a machine!", Emoji: "👑", Kind: KindStreak, Threshold: 100},

	// --- 数量类 ---
	{ID: "ach_dedication", Name: "Dedication", Description: "Complete habits 50 times in total.", Emoji: "🏋️", Kind: KindTotalCompletions, Threshold: 50},
	{ID: "ach_century_club", Name: "Century Club", Description: "Complete habits 100 times in total.", Emoji: "💯", Kind: KindTotalCompletions, Threshold: 100},

	// --- 创建与多样性 ---
	{ID: "ach_forge_master", Name: "Forge Master", Description: "Create 5 different habits.", Emoji: "🛠️", Kind: KindHabitCount, Threshold: 5},
	{ID: "ach_rainbow", Name: "Taste the Rainbow", Description: "Have habits of 3 different colors.", Emoji: "🎨", Kind: KindDistinctColors, Threshold: 3},

	// --- 等级类 ---
	{ID: "ach_level_5", Name: "High Five", Description: "Reach Level 5.", Emoji: "🖐️", Kind: KindLevel, Threshold: 5},
	{ID: "ach_level_10", Name: "Double Digits", Description: "Reach Level 10.", Emoji: "⭐", Kind: KindLevel, Threshold: 10},
	{ID: "ach_point_collector", Name: "Point Collector", Description: "Earn 1000 Willpower Points.", Emoji: "💰", Kind: KindPoints, Threshold: 1000},

	// --- 时机类 ---
	{ID: "ach_perfect_day", Name: "Perfect Day", Description: "Complete all your active habits in one day (min 3 habits).", Emoji: "🌟", Kind: KindPerfectDay, Threshold: 3},
	{ID: "ach_weekend_warrior", Name: "Weekend Warrior", Description: "Complete a habit on a Saturday or Sunday.", Emoji: "🏖️", Kind: KindWeekendCompletion},

	// --- 社交类 ---
	{ID: "ach_social_butterfly", Name: "Social Butterfly", Description: "Share a habit with a friend.", Emoji: "🦋", Kind: KindSharedHabit},
}

// FindByID 按ID查找目录条目。
func FindByID(id string) (Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
