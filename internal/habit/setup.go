package habit

import (
	"fmt"

	"github.com/HabitForge/habitforge-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Habit{}, &Completion{}); err != nil {
		return fmt.Errorf("无法迁移habit相关表: %w", err)
	}
	fmt.Println("Habit数据库表迁移成功。")
	return nil
}

// PrimeDB 是habit模块的初始化总入口
func PrimeDB() error {
	return migrateDB()
}
