package reminder

import (
	"fmt"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/platform/config"
	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/internal/platform/metadata"
	"github.com/HabitForge/habitforge-backend/pkg/lifecycle"
)

// runSweepLoop 是提醒调度器的主循环
func runSweepLoop(handle *lifecycle.Handle, interval time.Duration) {
	for {
		if err := handle.Sleep(interval); err != nil {
			fmt.Println("提醒调度器: 收到停机信号，退出。")
			return
		}

		now := time.Now()
		lastSweep, err := metadata.GetLastReminderSweep(database.DB)
		if err != nil {
			fmt.Printf("提醒调度器错误: 无法读取上次扫描时间: %v\n", err)
			continue
		}

		sent, err := Sweep(now, lastSweep)
		if err != nil {
			fmt.Printf("提醒调度器错误: %v\n", err)
			continue
		}
		if err := metadata.SetLastReminderSweep(database.DB, now); err != nil {
			fmt.Printf("提醒调度器错误: 无法记录扫描时间: %v\n", err)
			continue
		}
		if sent > 0 {
			fmt.Printf("提醒调度器: 本轮发送了 %d 封提醒邮件（模拟）。\n", sent)
		}
	}
}

// StartScheduler 启动后台提醒调度器
func StartScheduler(handle *lifecycle.Handle, cfg config.WorkersConfig) {
	go func() {
		defer handle.Close()

		interval := time.Duration(cfg.ReminderSweepMinutes) * time.Minute
		fmt.Printf("提醒调度器已启动，间隔 %v。\n", interval)
		runSweepLoop(handle, interval)
	}()
}
