package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/habit"
	"gorm.io/gorm"
)

// csvHeader 是导出文件的固定列
var csvHeader = []string{"date", "habit_name", "habit_type", "status", "points_earned"}

// BuildCSV 把一个账户的全部打卡记录导出为CSV。
// 每行对应一条打卡记录，按时间升序排列。
func BuildCSV(db *gorm.DB, email string) ([]byte, error) {
	habits, err := habit.ListForAccount(db, email)
	if err != nil {
		return nil, err
	}
	habitsByUUID := make(map[string]habit.Habit, len(habits))
	for _, h := range habits {
		habitsByUUID[h.UUID] = h
	}

	var completions []habit.Completion
	err = db.Where("owner_email = ?", email).Order("completed_at asc").Find(&completions).Error
	if err != nil {
		return nil, fmt.Errorf("查询打卡记录失败: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("无法写入CSV表头: %w", err)
	}

	for _, c := range completions {
		h, ok := habitsByUUID[c.HabitUUID]
		if !ok {
			// 习惯已被删除但记录残留时跳过
			continue
		}
		status := "completed"
		if h.Type == habit.TypeBad {
			status = "incident"
		}
		row := []string{
			c.CompletedAt.UTC().Format(time.RFC3339),
			h.Name,
			string(h.Type),
			status,
			strconv.Itoa(c.PointsAwarded),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("无法写入CSV行: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("CSV写入失败: %w", err)
	}
	return buf.Bytes(), nil
}
