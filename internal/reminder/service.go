package reminder

import (
	"errors"
	"fmt"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/internal/user"
)

// ErrUnknownAccount 表示提醒目标不是已注册账户
var ErrUnknownAccount = errors.New("提醒目标账户不存在")

// sendMockEmail 是模拟的邮件发送。不接入任何真实邮件服务，
// 只打印一行日志并模拟少量投递延迟。
func sendMockEmail(email, subject string) {
	time.Sleep(50 * time.Millisecond)
	fmt.Printf("[邮件模拟] 收件人=%s 主题=%q\n", email, subject)
}

// SendTest 向指定账户发送一封测试提醒邮件（模拟）。
// 账户不存在时拒绝。
func SendTest(email string) (string, error) {
	account, err := user.GetAccount(email)
	if errors.Is(err, user.ErrAccountNotFound) {
		return "", ErrUnknownAccount
	}
	if err != nil {
		return "", err
	}

	sendMockEmail(account.Email, "HabitForge 测试提醒")
	return fmt.Sprintf("测试提醒已发送至 %s", account.Email), nil
}

// reminderInstant 解析账户设置里的提醒时刻，返回它在now当天的具体时间。
// 格式非法时回落到09:00。
func reminderInstant(reminderTime string, now time.Time) time.Time {
	t, err := time.Parse("15:04", reminderTime)
	if err != nil {
		t, _ = time.Parse("15:04", "09:00")
	}
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// Sweep 对开启了邮件提醒的账户执行一轮提醒投递。
// 对每个账户，只有当其当天的提醒时刻已过、且上一轮扫描发生在该时刻
// 之前时才发送，保证每天至多提醒一次。返回本轮发送的数量。
func Sweep(now, lastSweep time.Time) (int, error) {
	var accounts []user.Account
	if err := database.DB.Find(&accounts).Error; err != nil {
		return 0, fmt.Errorf("查询账户列表失败: %w", err)
	}

	sent := 0
	for i := range accounts {
		settings := accounts[i].GetSettings()
		if !settings.EmailNotifs {
			continue
		}
		instant := reminderInstant(settings.ReminderTime, now)
		if now.Before(instant) || !lastSweep.Before(instant) {
			continue
		}
		sendMockEmail(accounts[i].Email, "别忘了今天的习惯打卡！")
		sent++
	}
	return sent, nil
}
