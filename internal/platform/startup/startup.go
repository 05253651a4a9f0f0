package startup

import (
	"fmt"

	"github.com/HabitForge/habitforge-backend/internal/billing"
	"github.com/HabitForge/habitforge-backend/internal/habit"
	"github.com/HabitForge/habitforge-backend/internal/notification"
	"github.com/HabitForge/habitforge-backend/internal/platform/metadata"
	"github.com/HabitForge/habitforge-backend/internal/social"
	"github.com/HabitForge/habitforge-backend/internal/user"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.PrimeDB(); err != nil {
		return err
	}
	if err := user.PrimeCachedDB(); err != nil {
		return err
	}
	if err := habit.PrimeDB(); err != nil {
		return err
	}
	if err := notification.PrimeCachedDB(); err != nil {
		return err
	}
	if err := social.PrimeCachedDB(); err != nil {
		return err
	}
	if err := billing.PrimeDB(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 是一个专门用于在运行时热重建Redis缓存的函数。
// SQLite始终是权威数据，这里只是把三块缓存（已知账户集合、
// 未读数哈希、共享记录镜像）整体重建。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	err := func() error {
		user.LockRepository()
		defer user.UnlockRepository()
		if err := user.WarmupCache(); err != nil {
			return err
		}
		if err := notification.WarmupCache(); err != nil {
			return err
		}
		return social.WarmupCache()
	}()
	if err != nil {
		return err
	}

	fmt.Println("缓存热重建完成。")
	return nil
}
