package billing

import (
	"fmt"

	"github.com/HabitForge/habitforge-backend/internal/platform/database"
)

// PrimeDB 是billing模块的初始化总入口
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Order{}); err != nil {
		return fmt.Errorf("无法迁移order表: %w", err)
	}
	fmt.Println("Billing数据库表迁移成功。")
	return nil
}
