package social

import (
	"fmt"

	"github.com/HabitForge/habitforge-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	err := database.DB.AutoMigrate(&SharedHabit{}, &SharedMember{}, &SharedComment{})
	if err != nil {
		return fmt.Errorf("无法迁移social相关表: %w", err)
	}
	fmt.Println("Social数据库表迁移成功。")
	return nil
}

// PrimeCachedDB 是social模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
