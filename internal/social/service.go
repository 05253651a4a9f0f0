package social

import (
	"errors"
	"fmt"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/notification"
	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/pkg/calendar"
	"gorm.io/gorm"
)

var (
	// ErrRecordNotFound 表示共享记录不存在
	ErrRecordNotFound = errors.New("共享记录不存在")
	// ErrNotOwner 表示只有发起分享的人才能执行该操作
	ErrNotOwner = errors.New("只有共享记录的所有者可以执行该操作")
	// ErrNotMember 表示操作者不是共享记录的成员
	ErrNotMember = errors.New("不是该共享记录的成员")
)

// FindRecord 在给定的数据库句柄中按ID查找共享记录
func FindRecord(db *gorm.DB, sharedID string) (*SharedHabit, error) {
	var record SharedHabit
	err := db.Where("uuid = ?", sharedID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询共享记录失败: %w", err)
	}
	return &record, nil
}

// Members 返回共享记录的全部成员，按加入顺序排列
func Members(db *gorm.DB, sharedID string) ([]SharedMember, error) {
	var members []SharedMember
	err := db.Where("shared_habit_uuid = ?", sharedID).Order("id asc").Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("查询共享成员失败: %w", err)
	}
	return members, nil
}

// CreateRecord 创建一条新的共享记录，并把所有者连同其打卡历史作为首个成员写入。
// 必须在调用方的事务内执行。
func CreateRecord(tx *gorm.DB, ownerEmail, ownerName, habitName, habitEmoji, habitColor string, ownerHistory []time.Time) (*SharedHabit, error) {
	record := SharedHabit{
		UUID:       NewUUID(),
		OwnerEmail: ownerEmail,
		HabitName:  habitName,
		HabitEmoji: habitEmoji,
		HabitColor: habitColor,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("无法创建共享记录: %w", err)
	}

	owner := SharedMember{
		SharedHabitUUID: record.UUID,
		Email:           ownerEmail,
		Name:            ownerName,
	}
	if err := owner.SetCompletionTimes(ownerHistory); err != nil {
		return nil, fmt.Errorf("无法序列化所有者打卡历史: %w", err)
	}
	if err := tx.Create(&owner).Error; err != nil {
		return nil, fmt.Errorf("无法写入共享记录的所有者成员: %w", err)
	}
	return &record, nil
}

// AddMember 把一个账户加入共享记录。成员已存在时什么都不做（幂等）。
func AddMember(tx *gorm.DB, sharedID, email, name string) error {
	var count int64
	err := tx.Model(&SharedMember{}).
		Where("shared_habit_uuid = ? AND email = ?", sharedID, email).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("查询共享成员失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	member := SharedMember{
		SharedHabitUUID: sharedID,
		Email:           email,
		Name:            name,
	}
	if err := member.SetCompletionTimes(nil); err != nil {
		return err
	}
	if err := tx.Create(&member).Error; err != nil {
		return fmt.Errorf("无法写入共享成员: %w", err)
	}
	return nil
}

// RemoveMember 把一个成员移出共享记录。所有者移除成员后若只剩一个成员，
// 共享记录整体解散（记录、成员、留言全部删除），返回 dissolved=true。
func RemoveMember(tx *gorm.DB, sharedID, email string) (dissolved bool, remaining []SharedMember, err error) {
	result := tx.Where("shared_habit_uuid = ? AND email = ?", sharedID, email).Delete(&SharedMember{})
	if result.Error != nil {
		return false, nil, fmt.Errorf("无法移除共享成员: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil, ErrNotMember
	}

	remaining, err = Members(tx, sharedID)
	if err != nil {
		return false, nil, err
	}
	if len(remaining) >= 2 {
		return false, remaining, nil
	}

	// 1. 成员不足两人，共享失去意义，解散整条记录
	if err := tx.Where("shared_habit_uuid = ?", sharedID).Delete(&SharedMember{}).Error; err != nil {
		return false, nil, fmt.Errorf("无法清理共享成员: %w", err)
	}
	if err := tx.Where("shared_habit_uuid = ?", sharedID).Delete(&SharedComment{}).Error; err != nil {
		return false, nil, fmt.Errorf("无法清理共享留言: %w", err)
	}
	if err := tx.Where("uuid = ?", sharedID).Delete(&SharedHabit{}).Error; err != nil {
		return false, nil, fmt.Errorf("无法删除共享记录: %w", err)
	}
	return true, remaining, nil
}

// AppendCompletion 把一次打卡追加到成员的共享历史里。
// 返回是否有其他成员在同一个日历日也打过卡（驱动组队加成），
// 以及除打卡者外的全部成员（调用方据此发送社交打卡通知）。
func AppendCompletion(tx *gorm.DB, sharedID, memberEmail string, ts time.Time) (friendSameDay bool, others []SharedMember, err error) {
	members, err := Members(tx, sharedID)
	if err != nil {
		return false, nil, err
	}

	var self *SharedMember
	for i := range members {
		if members[i].Email == memberEmail {
			self = &members[i]
			continue
		}
		others = append(others, members[i])
	}
	if self == nil {
		return false, nil, ErrNotMember
	}

	times, err := self.CompletionTimes()
	if err != nil {
		return false, nil, fmt.Errorf("无法解析共享打卡历史: %w", err)
	}
	times = append(times, ts)
	if err := self.SetCompletionTimes(times); err != nil {
		return false, nil, err
	}
	if err := tx.Model(&SharedMember{}).Where("id = ?", self.ID).
		Update("completions", self.Completions).Error; err != nil {
		return false, nil, fmt.Errorf("无法更新共享打卡历史: %w", err)
	}

	// 2. 检查是否有队友在同一天也完成了
	for i := range others {
		otherTimes, err := others[i].CompletionTimes()
		if err != nil {
			return false, nil, fmt.Errorf("无法解析成员打卡历史: %w", err)
		}
		for _, t := range otherTimes {
			if calendar.SameDay(t, ts) {
				friendSameDay = true
				break
			}
		}
		if friendSameDay {
			break
		}
	}
	return friendSameDay, others, nil
}

// AddComment 在共享记录下追加一条留言，并通知除作者外的全部成员
func AddComment(sharedID, authorEmail, authorName, text string) (*SharedComment, error) {
	var comment SharedComment
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		record, err := FindRecord(tx, sharedID)
		if err != nil {
			return err
		}

		members, err := Members(tx, sharedID)
		if err != nil {
			return err
		}
		isMember := false
		for _, m := range members {
			if m.Email == authorEmail {
				isMember = true
				break
			}
		}
		if !isMember {
			return ErrNotMember
		}

		comment = SharedComment{
			UUID:            NewUUID(),
			SharedHabitUUID: sharedID,
			AuthorEmail:     authorEmail,
			AuthorName:      authorName,
			Text:            text,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("无法写入共享留言: %w", err)
		}

		message := fmt.Sprintf("%s 在共享习惯「%s」下留言: %s", authorName, record.HabitName, text)
		for _, m := range members {
			if m.Email == authorEmail {
				continue
			}
			n := notification.New(m.Email, notification.TypeSocialComment, message)
			if err := notification.Append(tx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	RefreshMirror(sharedID)
	return &comment, nil
}

// Comments 返回共享记录的全部留言，按时间升序
func Comments(db *gorm.DB, sharedID string) ([]SharedComment, error) {
	var comments []SharedComment
	err := db.Where("shared_habit_uuid = ?", sharedID).Order("created_at asc").Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("查询共享留言失败: %w", err)
	}
	return comments, nil
}
