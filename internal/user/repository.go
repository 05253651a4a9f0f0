package user

import (
	"sync"
)

// --- Redis 键名常量 ---

const (
	// KnownAccountsKey 是一个Set，用于快速判断一个邮箱是否是已注册的账户。
	// 分享习惯前的"对方账户是否存在"检查走这里，避免每次都查SQLite。
	// Key: known_accounts
	// Member: 账户邮箱
	KnownAccountsKey = "known_accounts"
)

// --- 并发控制 ---

// repoMutex 是一个模块内部的、不导出的全局读写锁，
// 用于保护对本模块管理的Redis键的并发访问。
var repoMutex sync.RWMutex

// LockRepository 封装了对模块全局锁的写锁定操作。
func LockRepository() {
	repoMutex.Lock()
}

// UnlockRepository 封装了对模块全局锁的写解锁操作。
func UnlockRepository() {
	repoMutex.Unlock()
}

// RLockRepository 封装了对模块全局锁的读锁定操作。
func RLockRepository() {
	repoMutex.RLock()
}

// RUnlockRepository 封装了对模块全局锁的读解锁操作。
func RUnlockRepository() {
	repoMutex.RUnlock()
}
