package notification

import (
	"fmt"
	"strconv"

	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/internal/platform/metadata"
	"github.com/HabitForge/habitforge-backend/pkg/lifecycle"
)

// cacheDispatcher 是一个单一写入者，负责把通知相关的缓存副作用
// （Redis未读数哈希的重算）从请求路径上移走并串行化。
// SQLite中的通知表是权威数据；这里维护的只是缓存，丢一次重算不损坏状态。
type cacheDispatcher struct {
	recountChan chan string
	isShutdown  bool
}

// globalDispatcher 是私有的、全局的分发器实例
var globalDispatcher = cacheDispatcher{
	recountChan: make(chan string, 4096),
}

// submitRecount 提交一次账户未读数的重算请求。
// 队列满或Redis不可用时直接放弃：缓存会在下次预热时重建。
func submitRecount(email string) {
	if !database.IsRedisHealthy() {
		return
	}
	select {
	case globalDispatcher.recountChan <- email:
	default:
		fmt.Printf("警告: 通知缓存队列已满，放弃账户 %s 的未读数重算\n", email)
	}
}

// recount 从SQLite重算一个账户的未读数并写入Redis哈希
func (d *cacheDispatcher) recount(email string) {
	count, err := UnreadCount(email)
	if err != nil {
		fmt.Printf("通知分发器错误: %v\n", err)
		return
	}
	if !database.IsRedisHealthy() {
		return
	}
	err = database.RDB.HSet(database.Ctx, metadata.RedisUnreadCountsKey, email, strconv.FormatInt(count, 10)).Err()
	if err != nil {
		fmt.Printf("通知分发器错误: 无法写入未读数缓存: %v\n", err)
	}
}

// runMainLoop 是分发器的主事件循环，响应两阶段停机
func (d *cacheDispatcher) runMainLoop(gracefulHandle, forcefulHandle *lifecycle.Handle) {
	for {
		select {
		case <-gracefulHandle.Done():
			// 收到第一停机信号，进入排空模式
			fmt.Println("通知分发器: 收到优雅停机信号，正在处理剩余任务...")
			d.drainQueue(forcefulHandle)
			fmt.Println("通知分发器: 优雅停机完成，主循环退出。")
			return
		case email := <-d.recountChan:
			d.recount(email)
		}
	}
}

// drainQueue 在收到优雅停机信号后，尽力处理完channel中的剩余任务
func (d *cacheDispatcher) drainQueue(forcefulHandle *lifecycle.Handle) {
	d.isShutdown = true
	for {
		select {
		case <-forcefulHandle.Done():
			fmt.Println("通知分发器: 收到强制停机信号，排空队列被中断。")
			return
		case email := <-d.recountChan:
			d.recount(email)
		default:
			// 队列已空
			return
		}
	}
}

// StartDispatcher 启动全局的通知缓存分发器。
// 它接收两个handle来管理其两阶段的关闭逻辑。
func StartDispatcher(gracefulHandle, forcefulHandle *lifecycle.Handle) {
	go func() {
		defer gracefulHandle.Close()
		defer forcefulHandle.Close()
		fmt.Println("通知缓存分发器已启动。")
		globalDispatcher.runMainLoop(gracefulHandle, forcefulHandle)
	}()
}

// WarmupCache 从SQLite重建Redis中的未读数哈希
func WarmupCache() error {
	type unreadRow struct {
		AccountEmail string
		Count        int64
	}
	var rows []unreadRow
	err := database.DB.Model(&Notification{}).
		Select("account_email, count(*) as count").
		Where("is_read = ?", false).
		Group("account_email").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("无法从SQLite统计未读通知: %w", err)
	}

	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, metadata.RedisUnreadCountsKey)
	for _, row := range rows {
		pipe.HSet(database.Ctx, metadata.RedisUnreadCountsKey, row.AccountEmail, strconv.FormatInt(row.Count, 10))
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热未读数缓存到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 个账户的未读数缓存。\n", len(rows))
	return nil
}
