package social

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/platform/database"
)

const (
	// RecordsKey 是Redis中共享记录镜像的哈希键，field为记录UUID，value为JSON视图
	RecordsKey = "shared:records"
	// UpdatesChannel 是共享记录变更的发布频道，取代轮询比对
	UpdatesChannel = "shared:updates"
)

// MemberView 是共享成员的对外视图
type MemberView struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Completions []string `json:"completions"`
}

// CommentView 是共享留言的对外视图
type CommentView struct {
	ID          string    `json:"id"`
	AuthorEmail string    `json:"authorEmail"`
	AuthorName  string    `json:"authorName"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RecordView 是共享记录的完整对外视图，也是Redis镜像里缓存的结构
type RecordView struct {
	ID         string        `json:"id"`
	OwnerEmail string        `json:"ownerEmail"`
	HabitName  string        `json:"habitName"`
	HabitEmoji string        `json:"habitEmoji"`
	HabitColor string        `json:"habitColor"`
	Members    []MemberView  `json:"members"`
	Comments   []CommentView `json:"comments"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// buildView 从SQLite组装一条共享记录的完整视图
func buildView(sharedID string) (*RecordView, error) {
	record, err := FindRecord(database.DB, sharedID)
	if err != nil {
		return nil, err
	}
	members, err := Members(database.DB, sharedID)
	if err != nil {
		return nil, err
	}
	comments, err := Comments(database.DB, sharedID)
	if err != nil {
		return nil, err
	}

	view := RecordView{
		ID:         record.UUID,
		OwnerEmail: record.OwnerEmail,
		HabitName:  record.HabitName,
		HabitEmoji: record.HabitEmoji,
		HabitColor: record.HabitColor,
		Members:    make([]MemberView, 0, len(members)),
		Comments:   make([]CommentView, 0, len(comments)),
		CreatedAt:  record.CreatedAt,
	}
	for _, m := range members {
		var raw []string
		if len(m.Completions) > 0 {
			if err := json.Unmarshal(m.Completions, &raw); err != nil {
				return nil, fmt.Errorf("无法解析成员打卡历史: %w", err)
			}
		}
		if raw == nil {
			raw = []string{}
		}
		view.Members = append(view.Members, MemberView{
			Email:       m.Email,
			Name:        m.Name,
			Completions: raw,
		})
	}
	for _, c := range comments {
		view.Comments = append(view.Comments, CommentView{
			ID:          c.UUID,
			AuthorEmail: c.AuthorEmail,
			AuthorName:  c.AuthorName,
			Text:        c.Text,
			CreatedAt:   c.CreatedAt,
		})
	}
	return &view, nil
}

// RefreshMirror 在一次变更提交后刷新Redis中的记录镜像，并发布变更事件。
// 记录已被删除时改为清除镜像。镜像只是缓存，任何失败都不影响权威状态。
func RefreshMirror(sharedID string) {
	if !database.IsRedisHealthy() {
		return
	}

	view, err := buildView(sharedID)
	if errors.Is(err, ErrRecordNotFound) {
		if err := database.RDB.HDel(database.Ctx, RecordsKey, sharedID).Err(); err != nil {
			fmt.Printf("警告: 无法清除共享记录镜像 %s: %v\n", sharedID, err)
		}
		publishUpdate(sharedID)
		return
	}
	if err != nil {
		fmt.Printf("警告: 无法组装共享记录视图 %s: %v\n", sharedID, err)
		return
	}

	data, err := json.Marshal(view)
	if err != nil {
		fmt.Printf("警告: 无法序列化共享记录视图 %s: %v\n", sharedID, err)
		return
	}
	if err := database.RDB.HSet(database.Ctx, RecordsKey, sharedID, string(data)).Err(); err != nil {
		fmt.Printf("警告: 无法写入共享记录镜像 %s: %v\n", sharedID, err)
		return
	}
	publishUpdate(sharedID)
}

// publishUpdate 向订阅方广播一条记录发生了变更
func publishUpdate(sharedID string) {
	if err := database.RDB.Publish(database.Ctx, UpdatesChannel, sharedID).Err(); err != nil {
		fmt.Printf("警告: 无法发布共享记录变更 %s: %v\n", sharedID, err)
	}
}

// GetRecordView 读取一条共享记录的视图：Redis可用时先查镜像，
// 未命中或解析失败时回源SQLite并回填。
func GetRecordView(sharedID string) (*RecordView, error) {
	if database.IsRedisHealthy() {
		data, err := database.RDB.HGet(database.Ctx, RecordsKey, sharedID).Result()
		if err == nil {
			var view RecordView
			if jsonErr := json.Unmarshal([]byte(data), &view); jsonErr == nil {
				return &view, nil
			}
		}
	}

	view, err := buildView(sharedID)
	if err != nil {
		return nil, err
	}
	if database.IsRedisHealthy() {
		if data, err := json.Marshal(view); err == nil {
			_ = database.RDB.HSet(database.Ctx, RecordsKey, sharedID, string(data)).Err()
		}
	}
	return view, nil
}

// WarmupCache 从SQLite重建Redis中的共享记录镜像
func WarmupCache() error {
	var records []SharedHabit
	if err := database.DB.Find(&records).Error; err != nil {
		return fmt.Errorf("无法读取共享记录列表: %w", err)
	}

	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, RecordsKey)
	for _, record := range records {
		view, err := buildView(record.UUID)
		if err != nil {
			return err
		}
		data, err := json.Marshal(view)
		if err != nil {
			return fmt.Errorf("无法序列化共享记录视图: %w", err)
		}
		pipe.HSet(database.Ctx, RecordsKey, record.UUID, string(data))
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热共享记录镜像到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 条共享记录镜像。\n", len(records))
	return nil
}
