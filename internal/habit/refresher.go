package habit

import (
	"fmt"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/platform/config"
	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/internal/platform/metadata"
	"github.com/HabitForge/habitforge-backend/pkg/calendar"
	"github.com/HabitForge/habitforge-backend/pkg/lifecycle"
)

// RefreshStreaks 重算全部习惯的缓存连击值。
// 连击会随"今天"的推移自然衰减（GOOD断签归零、BAD戒除天数增长），
// 打卡动作之外也需要定期把缓存值拉回纯函数的结果。
func RefreshStreaks(now time.Time) (int, error) {
	var habits []Habit
	if err := database.DB.Find(&habits).Error; err != nil {
		return 0, fmt.Errorf("查询习惯列表失败: %w", err)
	}

	changed := 0
	for i := range habits {
		h := &habits[i]
		history, err := CompletionTimes(database.DB, h.UUID)
		if err != nil {
			return changed, err
		}
		fresh := CalculateStreak(history, h.Type, h.CreatedAt, now)
		if fresh == h.Streak {
			continue
		}
		err = database.DB.Model(&Habit{}).Where("uuid = ?", h.UUID).
			Update("streak", fresh).Error
		if err != nil {
			return changed, fmt.Errorf("无法更新连击缓存: %w", err)
		}
		changed++
	}

	if err := metadata.SetLastStreakRefreshDay(database.DB, calendar.DayKey(now)); err != nil {
		return changed, err
	}
	return changed, nil
}

// runRefreshLoop 是连击刷新器的主循环
func runRefreshLoop(handle *lifecycle.Handle, interval time.Duration) {
	for {
		if err := handle.Sleep(interval); err != nil {
			fmt.Println("连击刷新器: 收到停机信号，退出。")
			return
		}

		changed, err := RefreshStreaks(time.Now())
		if err != nil {
			fmt.Printf("连击刷新器错误: %v\n", err)
			continue
		}
		if changed > 0 {
			fmt.Printf("连击刷新器: 已修正 %d 个习惯的连击缓存。\n", changed)
		}
	}
}

// StartStreakRefresher 启动后台连击刷新器。
// 启动时如果当天还没有刷新过，先补做一轮。
func StartStreakRefresher(handle *lifecycle.Handle, cfg config.WorkersConfig) {
	go func() {
		defer handle.Close()

		now := time.Now()
		lastDay, err := metadata.GetLastStreakRefreshDay(database.DB)
		if err != nil {
			fmt.Printf("连击刷新器警告: 无法读取上次刷新日: %v\n", err)
		}
		if lastDay != calendar.DayKey(now) {
			if _, err := RefreshStreaks(now); err != nil {
				fmt.Printf("连击刷新器错误: 启动补刷失败: %v\n", err)
			}
		}

		interval := time.Duration(cfg.StreakRefreshMinutes) * time.Minute
		fmt.Printf("连击刷新器已启动，间隔 %v。\n", interval)
		runRefreshLoop(handle, interval)
	}()
}
