package habit

import (
	"errors"
	"fmt"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/achievement"
	"github.com/HabitForge/habitforge-backend/internal/notification"
	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/internal/social"
	"github.com/HabitForge/habitforge-backend/internal/user"
	"github.com/HabitForge/habitforge-backend/pkg/calendar"
	"gorm.io/gorm"
)

const (
	// basePoints 是每次有效打卡的基础意志点数
	basePoints = 10
	// streakPointsFactor 是连击的每日加成系数
	streakPointsFactor = 2
	// sharedBonusPoints 是共享习惯中队友同日完成的固定加成
	sharedBonusPoints = 25
)

// streakMilestones 是触发里程碑通知的连击天数
var streakMilestones = []int{3, 7, 14, 30, 60, 100}

var (
	// ErrHabitNotFound 表示习惯不存在或不属于操作者
	ErrHabitNotFound = errors.New("习惯不存在")
)

// CompleteResult 汇总一次打卡动作产生的全部效果
type CompleteResult struct {
	Habit   *Habit
	Account *user.Account

	// Duplicate 表示GOOD习惯当日重复打卡，整个动作是无操作
	Duplicate bool

	// PointsAwarded 是本次获得的总点数（含组队加成），BAD习惯恒为0
	PointsAwarded int

	// SharedBonus 表示组队加成是否生效
	SharedBonus bool

	// Milestone 是本次达到的连击里程碑天数，未达到时为0
	Milestone int

	// NewlyUnlocked 是本次新解锁的成就ID
	NewlyUnlocked []string
}

// FindHabit 在给定的数据库句柄中按主键和所有者查找习惯
func FindHabit(db *gorm.DB, ownerEmail, habitUUID string) (*Habit, error) {
	var h Habit
	err := db.Where("uuid = ? AND owner_email = ?", habitUUID, ownerEmail).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询习惯失败: %w", err)
	}
	return &h, nil
}

// ListForAccount 返回账户的全部习惯，按创建顺序排列
func ListForAccount(db *gorm.DB, email string) ([]Habit, error) {
	var habits []Habit
	err := db.Where("owner_email = ?", email).Order("created_at asc").Find(&habits).Error
	if err != nil {
		return nil, fmt.Errorf("查询习惯列表失败: %w", err)
	}
	return habits, nil
}

// CompletionTimes 返回一个习惯的全部打卡时间戳，按插入顺序排列
func CompletionTimes(db *gorm.DB, habitUUID string) ([]time.Time, error) {
	var completions []Completion
	err := db.Where("habit_uuid = ?", habitUUID).Order("id asc").Find(&completions).Error
	if err != nil {
		return nil, fmt.Errorf("查询打卡记录失败: %w", err)
	}
	times := make([]time.Time, 0, len(completions))
	for _, c := range completions {
		times = append(times, c.CompletedAt)
	}
	return times, nil
}

// Create 创建一个新习惯，并重新求值成就（习惯数量、颜色收集类成就
// 在创建时就可能解锁）。
func Create(email, name, emoji, color string, habitType Type) (*Habit, []string, error) {
	h := Habit{
		UUID:       NewUUID(),
		OwnerEmail: email,
		Name:       name,
		Emoji:      emoji,
		Color:      color,
		Type:       habitType,
		Streak:     0,
	}
	h.SetSharedWithEmails(nil)

	var newly []string
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		account, err := user.FindAccount(tx, email)
		if err != nil {
			return err
		}
		if err := tx.Create(&h).Error; err != nil {
			return fmt.Errorf("无法创建习惯: %w", err)
		}

		newly, err = evaluateAchievements(tx, account, time.Now())
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &h, newly, nil
}

// Rename 更新习惯的展示属性
func Rename(email, habitUUID, name, emoji, color string) (*Habit, error) {
	var h *Habit
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		h, err = FindHabit(tx, email, habitUUID)
		if err != nil {
			return err
		}
		h.Name = name
		h.Emoji = emoji
		h.Color = color
		return tx.Model(&Habit{}).Where("uuid = ?", habitUUID).
			Updates(map[string]interface{}{"name": name, "emoji": emoji, "color": color}).Error
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Delete 无条件删除习惯及其打卡记录。
// 习惯挂在共享记录上时不级联：共享记录归social模块管理，
// 需要退出共享的调用方应先走Unshare。
func Delete(email, habitUUID string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := FindHabit(tx, email, habitUUID); err != nil {
			return err
		}
		if err := tx.Where("habit_uuid = ?", habitUUID).Delete(&Completion{}).Error; err != nil {
			return fmt.Errorf("无法删除打卡记录: %w", err)
		}
		if err := tx.Where("uuid = ?", habitUUID).Delete(&Habit{}).Error; err != nil {
			return fmt.Errorf("无法删除习惯: %w", err)
		}
		return nil
	})
}

// Complete 是打卡动作的归约器，在一个事务内完成全部状态推进：
// 追加打卡、重算连击、发放点数、重算等级、求值成就、写入通知。
// GOOD习惯当日已打卡时整个动作是无操作。
func Complete(email, habitUUID string, now time.Time) (*CompleteResult, error) {
	result := &CompleteResult{}
	var sharedID string

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		h, err := FindHabit(tx, email, habitUUID)
		if err != nil {
			return err
		}
		account, err := user.FindAccount(tx, email)
		if err != nil {
			return err
		}
		result.Habit = h
		result.Account = account

		history, err := CompletionTimes(tx, habitUUID)
		if err != nil {
			return err
		}

		// 1. GOOD习惯当日去重：重复打卡不改变任何状态
		if h.Type == TypeGood {
			for _, t := range history {
				if calendar.SameDay(t, now) {
					result.Duplicate = true
					return nil
				}
			}
		}

		// 2. 追加打卡并重算连击
		oldStreak := h.Streak
		history = append(history, now)
		newStreak := CalculateStreak(history, h.Type, h.CreatedAt, now)

		points := 0
		if h.Type == TypeGood {
			points = basePoints + streakPointsFactor*newStreak
		}

		// 3. 共享习惯：把打卡同步进共享记录，检测队友同日完成
		if h.IsShared() {
			sharedID = h.SharedHabitUUID
			friendSameDay, others, err := social.AppendCompletion(tx, h.SharedHabitUUID, email, now)
			if err != nil {
				return err
			}
			if friendSameDay && h.Type == TypeGood {
				points += sharedBonusPoints
				result.SharedBonus = true
			}
			if err := notifySharedCompletion(tx, account.Name, h.Name, others); err != nil {
				return err
			}
		}

		completion := Completion{
			HabitUUID:     habitUUID,
			OwnerEmail:    email,
			CompletedAt:   now,
			PointsAwarded: points,
		}
		if err := tx.Create(&completion).Error; err != nil {
			return fmt.Errorf("无法写入打卡记录: %w", err)
		}

		h.Streak = newStreak
		if err := tx.Model(&Habit{}).Where("uuid = ?", habitUUID).
			Update("streak", newStreak).Error; err != nil {
			return fmt.Errorf("无法更新连击缓存: %w", err)
		}

		// 4. 发放点数并重算等级
		if points > 0 {
			account.WillpowerPoints += points
			account.Level = user.LevelForPoints(account.WillpowerPoints)
		}
		result.PointsAwarded = points

		// 5. 连击里程碑只在跨越时通知一次
		if h.Type == TypeGood && newStreak > oldStreak {
			for _, m := range streakMilestones {
				if newStreak == m {
					result.Milestone = m
					n := notification.New(email, notification.TypeStreakMilestone,
						fmt.Sprintf("连击里程碑！「%s」已连续坚持 %d 天 🔥", h.Name, m))
					if err := notification.Append(tx, n); err != nil {
						return err
					}
					break
				}
			}
		}

		// 6. 成就求值与账户落盘
		newly, err := evaluateAchievements(tx, account, now)
		if err != nil {
			return err
		}
		result.NewlyUnlocked = newly

		return tx.Model(&user.Account{}).Where("email = ?", email).
			Updates(map[string]interface{}{
				"willpower_points": account.WillpowerPoints,
				"level":            account.Level,
				"unlocked":         account.Unlocked,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	if sharedID != "" && !result.Duplicate {
		social.RefreshMirror(sharedID)
	}
	return result, nil
}

// notifySharedCompletion 把一次共享打卡通知给其他所有成员。
// 关闭了社交通知的账户会被跳过。
func notifySharedCompletion(tx *gorm.DB, actorName, habitName string, others []social.SharedMember) error {
	message := fmt.Sprintf("%s 刚刚完成了共享习惯「%s」", actorName, habitName)
	for _, m := range others {
		account, err := user.FindAccount(tx, m.Email)
		if errors.Is(err, user.ErrAccountNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if !account.GetSettings().SocialNotifs {
			continue
		}
		n := notification.New(m.Email, notification.TypeSocialCompletion, message)
		if err := notification.Append(tx, n); err != nil {
			return err
		}
	}
	return nil
}

// buildSnapshot 汇总账户的全部习惯状态，作为成就求值的输入
func buildSnapshot(tx *gorm.DB, account *user.Account, now time.Time) (achievement.Snapshot, error) {
	habits, err := ListForAccount(tx, account.Email)
	if err != nil {
		return achievement.Snapshot{}, err
	}

	snapshot := achievement.Snapshot{
		Habits:          make([]achievement.HabitState, 0, len(habits)),
		WillpowerPoints: account.WillpowerPoints,
		Level:           account.Level,
	}
	for _, h := range habits {
		times, err := CompletionTimes(tx, h.UUID)
		if err != nil {
			return achievement.Snapshot{}, err
		}
		state := achievement.HabitState{
			Color:           h.Color,
			Streak:          h.Streak,
			CompletionCount: len(times),
			Shared:          h.IsShared(),
		}
		for _, t := range times {
			if calendar.SameDay(t, now) {
				state.CompletedToday = true
			}
			if calendar.IsWeekend(t) {
				state.CompletedOnWeekend = true
			}
		}
		snapshot.Habits = append(snapshot.Habits, state)
	}
	return snapshot, nil
}

// evaluateAchievements 对账户重新运行全部成就规则，把新解锁的成就
// 追加进账户并为每个解锁写一条通知。解锁集合只增不减，对同一状态
// 求值两次，第二次不会产生任何解锁或通知。
func evaluateAchievements(tx *gorm.DB, account *user.Account, now time.Time) ([]string, error) {
	snapshot, err := buildSnapshot(tx, account, now)
	if err != nil {
		return nil, err
	}

	unlockedIDs := account.UnlockedIDs()
	newly := achievement.Evaluate(snapshot, achievement.UnlockedSet(unlockedIDs))
	if len(newly) == 0 {
		return nil, nil
	}

	for _, id := range newly {
		a, ok := achievement.FindByID(id)
		if !ok {
			continue
		}
		n := notification.New(account.Email, notification.TypeAchievement,
			fmt.Sprintf("成就解锁：%s %s — %s", a.Emoji, a.Name, a.Description))
		if err := notification.Append(tx, n); err != nil {
			return nil, err
		}
	}

	account.SetUnlockedIDs(append(unlockedIDs, newly...))
	err = tx.Model(&user.Account{}).Where("email = ?", account.Email).
		Update("unlocked", account.Unlocked).Error
	if err != nil {
		return nil, fmt.Errorf("无法写回成就解锁集合: %w", err)
	}
	return newly, nil
}
