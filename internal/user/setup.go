package user

import (
	"fmt"

	"github.com/HabitForge/habitforge-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Account{}); err != nil {
		return fmt.Errorf("无法迁移account表: %w", err)
	}
	fmt.Println("Account数据库表迁移成功。")
	return nil
}

// WarmupCache 从SQLite加载所有账户邮箱，并预热到Redis的Set中
func WarmupCache() error {
	var accounts []Account
	// 1. 从SQLite读取所有账户的邮箱
	if err := database.DB.Select("email").Find(&accounts).Error; err != nil {
		return fmt.Errorf("无法从SQLite读取账户邮箱: %w", err)
	}

	if len(accounts) == 0 {
		fmt.Println("无现有账户数据，无需预热账户缓存。")
		return nil
	}

	// 2. 将邮箱转换为interface{}切片以用于SAdd
	emails := make([]interface{}, len(accounts))
	for i, a := range accounts {
		emails[i] = a.Email
	}

	// 3. 使用Pipeline批量将所有邮箱添加到Redis的Set中
	pipe := database.RDB.Pipeline()
	// 先清空旧的缓存，确保数据一致性
	pipe.Del(database.Ctx, KnownAccountsKey)
	pipe.SAdd(database.Ctx, KnownAccountsKey, emails...)

	_, err := pipe.Exec(database.Ctx)
	if err != nil {
		return fmt.Errorf("预热账户邮箱到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 个账户邮箱到Redis。\n", len(accounts))
	return nil
}

// PrimeCachedDB 是user模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
