package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/pkg/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrEmailTaken 表示注册邮箱已被占用
	ErrEmailTaken = errors.New("该邮箱已被注册")
	// ErrInvalidCredentials 表示邮箱或密码不匹配。
	// 登录失败只返回这一种错误，不区分"账户不存在"和"密码错误"。
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	// ErrAccountNotFound 表示账户不存在
	ErrAccountNotFound = errors.New("账户不存在")
)

// FindAccount 在给定的数据库句柄（可以是事务）中按邮箱查找账户。
// 账户不存在时返回 ErrAccountNotFound。
func FindAccount(db *gorm.DB, email string) (*Account, error) {
	var account Account
	err := db.Where("email = ?", email).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询账户失败: %w", err)
	}
	return &account, nil
}

// GetAccount 是 FindAccount 在全局数据库连接上的便捷形式。
func GetAccount(email string) (*Account, error) {
	return FindAccount(database.DB, email)
}

// IsKnownAccount 检查一个邮箱是否属于已注册的账户。
// Redis可用时只查缓存的账户集合；不可用时回落到SQLite。
func IsKnownAccount(email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	if database.IsRedisHealthy() {
		exists, err := database.RDB.SIsMember(database.Ctx, KnownAccountsKey, email).Result()
		if err == nil {
			return exists, nil
		}
		// 缓存查询失败时回落到数据库，不让一次Redis抖动拒绝分享操作
	}
	var count int64
	if err := database.DB.Model(&Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询账户是否存在失败: %w", err)
	}
	return count > 0, nil
}

// SignUp 创建一个新账户。邮箱已被占用时返回 ErrEmailTaken。
func SignUp(name, email, password string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("无法哈希密码: %w", err)
	}

	account := Account{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Level:        0,
	}
	account.SetUnlockedIDs([]string{})
	account.SetSettings(DefaultSettings())

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		return tx.Create(&account).Error
	})
	if err != nil {
		return nil, err
	}

	// 注册成功后把邮箱加入Redis的已知账户集合
	if database.IsRedisHealthy() {
		if err := database.RDB.SAdd(database.Ctx, KnownAccountsKey, email).Err(); err != nil {
			fmt.Printf("警告: 无法将新账户 %s 写入Redis缓存: %v\n", email, err)
		}
	}
	return &account, nil
}

// SignIn 验证邮箱和密码，成功时签发会话令牌。
func SignIn(email, password string) (string, *Account, error) {
	account, err := FindAccount(database.DB, email)
	if errors.Is(err, ErrAccountNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	sessionToken, err := token.NewSessionToken(account.Email, time.Now())
	if err != nil {
		return "", nil, fmt.Errorf("无法签发会话令牌: %w", err)
	}
	return sessionToken, account, nil
}

// UpdateSettings 整体替换账户的偏好设置
func UpdateSettings(email string, settings SettingsData) (*Account, error) {
	var account *Account
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		account, err = FindAccount(tx, email)
		if err != nil {
			return err
		}
		account.SetSettings(settings)
		return tx.Model(&Account{}).Where("email = ?", email).
			Update("settings", account.Settings).Error
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}
