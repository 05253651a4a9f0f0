package social

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SharedHabit 是一次习惯分享建立的共享记录。
// 记录本身不持有任何成员的习惯对象；每个成员账户里各有一个
// 指向这条记录的派生习惯（见habit模块的sharingDetails）。
type SharedHabit struct {
	UUID       string `gorm:"primaryKey;type:varchar(36)"`
	OwnerEmail string `gorm:"type:varchar(255);not null;index"`
	HabitName  string `gorm:"type:varchar(255);not null"`
	HabitEmoji string `gorm:"type:varchar(16)"`
	HabitColor string `gorm:"type:varchar(32)"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SharedMember 是共享记录里的一个成员及其打卡历史。
// Completions 存RFC3339时间戳的JSON数组，按追加顺序排列。
type SharedMember struct {
	ID              uint           `gorm:"primaryKey"`
	SharedHabitUUID string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_shared_member"`
	Email           string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_shared_member"`
	Name            string         `gorm:"type:varchar(255)"`
	Completions     datatypes.JSON `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SharedComment 是共享记录下的一条留言
type SharedComment struct {
	UUID            string `gorm:"primaryKey;type:varchar(36)"`
	SharedHabitUUID string `gorm:"type:varchar(36);not null;index"`
	AuthorEmail     string `gorm:"type:varchar(255);not null"`
	AuthorName      string `gorm:"type:varchar(255)"`
	Text            string `gorm:"type:text;not null"`
	CreatedAt       time.Time
}

// NewUUID 生成一个时间有序的UUID，失败时回落到随机UUID
func NewUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// CompletionTimes 把成员的打卡历史解析为时间列表
func (m *SharedMember) CompletionTimes() ([]time.Time, error) {
	var raw []string
	if len(m.Completions) > 0 {
		if err := json.Unmarshal(m.Completions, &raw); err != nil {
			return nil, err
		}
	}
	times := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, nil
}

// SetCompletionTimes 用时间列表覆盖成员的打卡历史
func (m *SharedMember) SetCompletionTimes(times []time.Time) error {
	raw := make([]string, 0, len(times))
	for _, t := range times {
		raw = append(raw, t.UTC().Format(time.RFC3339))
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	m.Completions = datatypes.JSON(data)
	return nil
}
