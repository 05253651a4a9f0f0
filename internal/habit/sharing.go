package habit

import (
	"errors"
	"fmt"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/notification"
	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/internal/social"
	"github.com/HabitForge/habitforge-backend/internal/user"
	"gorm.io/gorm"
)

var (
	// ErrSelfShare 表示把习惯分享给了自己
	ErrSelfShare = errors.New("不能把习惯分享给自己")
	// ErrUnknownAccount 表示分享目标不是已注册账户
	ErrUnknownAccount = errors.New("分享目标账户不存在")
	// ErrNotShared 表示习惯没有挂在任何共享记录上
	ErrNotShared = errors.New("该习惯未处于共享状态")
	// ErrNotSharingOwner 表示只有发起分享的人才能管理成员
	ErrNotSharingOwner = errors.New("只有共享发起者可以管理成员")
)

// Share 把一个习惯分享给另一个账户。
// 首次分享会创建共享记录并镜像所有者的打卡历史；目标账户会得到一个
// 指向同一共享记录的派生习惯（全新ID、空历史）和一条邀请通知。
// 后续分享在同一条记录上追加成员，对同一目标幂等。
// 分享给自己或未注册账户会被整体拒绝，状态不发生任何变化。
func Share(ownerEmail, habitUUID, friendEmail string) (*Habit, error) {
	if friendEmail == ownerEmail {
		return nil, ErrSelfShare
	}
	known, err := user.IsKnownAccount(friendEmail)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, ErrUnknownAccount
	}

	var h *Habit
	var sharedID string
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		h, err = FindHabit(tx, ownerEmail, habitUUID)
		if err != nil {
			return err
		}
		owner, err := user.FindAccount(tx, ownerEmail)
		if err != nil {
			return err
		}
		friend, err := user.FindAccount(tx, friendEmail)
		if err != nil {
			// Redis集合与SQLite短暂不一致时会走到这里
			if errors.Is(err, user.ErrAccountNotFound) {
				return ErrUnknownAccount
			}
			return err
		}

		// 1. 首次分享：创建共享记录，镜像所有者历史
		if !h.IsShared() {
			history, err := CompletionTimes(tx, habitUUID)
			if err != nil {
				return err
			}
			record, err := social.CreateRecord(tx, ownerEmail, owner.Name, h.Name, h.Emoji, h.Color, history)
			if err != nil {
				return err
			}
			h.SharedHabitUUID = record.UUID
			h.SharedOwnerEmail = ownerEmail
			h.SetSharedWithEmails(nil)
		} else if h.SharedOwnerEmail != ownerEmail {
			return ErrNotSharingOwner
		}
		sharedID = h.SharedHabitUUID

		// 2. 把目标账户加入共享记录（幂等）
		if err := social.AddMember(tx, sharedID, friendEmail, friend.Name); err != nil {
			return err
		}

		// 3. 更新所有者习惯上的受邀列表
		invited := h.SharedWithEmails()
		alreadyInvited := false
		for _, e := range invited {
			if e == friendEmail {
				alreadyInvited = true
				break
			}
		}
		if !alreadyInvited {
			h.SetSharedWithEmails(append(invited, friendEmail))
		}
		err = tx.Model(&Habit{}).Where("uuid = ?", habitUUID).
			Updates(map[string]interface{}{
				"shared_habit_uuid":  h.SharedHabitUUID,
				"shared_owner_email": h.SharedOwnerEmail,
				"shared_with":        h.SharedWith,
			}).Error
		if err != nil {
			return fmt.Errorf("无法更新习惯的共享信息: %w", err)
		}

		// 4. 在目标账户下创建派生习惯（目标已持有时跳过）
		var count int64
		err = tx.Model(&Habit{}).
			Where("owner_email = ? AND shared_habit_uuid = ?", friendEmail, sharedID).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("查询派生习惯失败: %w", err)
		}
		if count == 0 {
			derived := Habit{
				UUID:             NewUUID(),
				OwnerEmail:       friendEmail,
				Name:             h.Name,
				Emoji:            h.Emoji,
				Color:            h.Color,
				Type:             h.Type,
				Streak:           0,
				SharedHabitUUID:  sharedID,
				SharedOwnerEmail: ownerEmail,
			}
			derived.SetSharedWithEmails(nil)
			if err := tx.Create(&derived).Error; err != nil {
				return fmt.Errorf("无法创建派生习惯: %w", err)
			}

			n := notification.New(friendEmail, notification.TypeSocialInvite,
				fmt.Sprintf("%s 邀请你一起坚持习惯「%s」%s", owner.Name, h.Name, h.Emoji))
			if err := notification.Append(tx, n); err != nil {
				return err
			}
		}

		// 5. 共享类成就对双方都可能解锁
		if _, err := evaluateAchievements(tx, owner, time.Now()); err != nil {
			return err
		}
		_, err = evaluateAchievements(tx, friend, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	social.RefreshMirror(sharedID)
	return h, nil
}

// Unshare 把一个成员移出习惯的共享记录。只有发起者可以调用。
// 移除后记录只剩一个成员时整条共享解散，剩余习惯上的共享信息被清除；
// 否则只删除被移除账户的派生习惯并收缩受邀列表。
func Unshare(ownerEmail, habitUUID, memberEmail string) (*Habit, error) {
	var h *Habit
	var sharedID string
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		h, err = FindHabit(tx, ownerEmail, habitUUID)
		if err != nil {
			return err
		}
		if !h.IsShared() {
			return ErrNotShared
		}
		if h.SharedOwnerEmail != ownerEmail {
			return ErrNotSharingOwner
		}
		sharedID = h.SharedHabitUUID

		dissolved, _, err := social.RemoveMember(tx, sharedID, memberEmail)
		if err != nil {
			return err
		}

		// 被移除账户的派生习惯一并删除（移除的是所有者自己时没有派生习惯）
		if memberEmail != ownerEmail {
			err = tx.Where("owner_email = ? AND shared_habit_uuid = ?", memberEmail, sharedID).
				Delete(&Habit{}).Error
			if err != nil {
				return fmt.Errorf("无法删除派生习惯: %w", err)
			}
		}

		if dissolved {
			// 剩余成员的习惯全部脱离共享
			var linked []Habit
			if err := tx.Where("shared_habit_uuid = ?", sharedID).Find(&linked).Error; err != nil {
				return fmt.Errorf("查询共享习惯失败: %w", err)
			}
			for i := range linked {
				linked[i].ClearSharing()
				err = tx.Model(&Habit{}).Where("uuid = ?", linked[i].UUID).
					Updates(map[string]interface{}{
						"shared_habit_uuid":  "",
						"shared_owner_email": "",
						"shared_with":        linked[i].SharedWith,
					}).Error
				if err != nil {
					return fmt.Errorf("无法清除共享信息: %w", err)
				}
			}
			h.ClearSharing()
			return nil
		}

		// 记录仍然存续，只收缩所有者习惯上的受邀列表
		invited := h.SharedWithEmails()
		pruned := make([]string, 0, len(invited))
		for _, e := range invited {
			if e != memberEmail {
				pruned = append(pruned, e)
			}
		}
		h.SetSharedWithEmails(pruned)
		return tx.Model(&Habit{}).Where("uuid = ?", habitUUID).
			Update("shared_with", h.SharedWith).Error
	})
	if err != nil {
		return nil, err
	}

	social.RefreshMirror(sharedID)
	return h, nil
}
