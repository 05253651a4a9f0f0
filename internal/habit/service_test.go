package habit

import (
	"testing"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/achievement"
	"github.com/HabitForge/habitforge-backend/internal/notification"
	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/internal/platform/metadata"
	"github.com/HabitForge/habitforge-backend/internal/social"
	"github.com/HabitForge/habitforge-backend/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库绑定在单个连接上，收紧连接池避免丢表
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&Habit{}, &Completion{},
		&user.Account{},
		&notification.Notification{},
		&social.SharedHabit{}, &social.SharedMember{}, &social.SharedComment{},
		&metadata.Metadata{},
	))
	database.DB = db
	database.UpdateStatus(false, "")
}

func createTestAccount(t *testing.T, email, name string) *user.Account {
	t.Helper()
	account := user.Account{
		Email:        email,
		Name:         name,
		PasswordHash: "x",
	}
	account.SetUnlockedIDs([]string{})
	account.SetSettings(user.DefaultSettings())
	require.NoError(t, database.DB.Create(&account).Error)
	return &account
}

func createTestHabit(t *testing.T, email, name string, habitType Type) *Habit {
	t.Helper()
	h, _, err := Create(email, name, "⭐", "#2266ff", habitType)
	require.NoError(t, err)
	return h
}

func TestCompleteThreeConsecutiveDaysAwards42Points(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	days := []time.Time{
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
	}

	var last *CompleteResult
	for _, d := range days {
		var err error
		last, err = Complete("a@example.com", h.UUID, d)
		require.NoError(t, err)
		require.False(t, last.Duplicate)
	}

	assert.Equal(t, 3, last.Habit.Streak)
	assert.Equal(t, 42, last.Account.WillpowerPoints)
	assert.Equal(t, 0, last.Account.Level)
}

func TestCompleteSameDayGoodIsNoOp(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	first, err := Complete("a@example.com", h.UUID, now)
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	second, err := Complete("a@example.com", h.UUID, now.Add(4*time.Hour))
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, 0, second.PointsAwarded)

	// 历史长度与账户点数都不变
	var count int64
	require.NoError(t, database.DB.Model(&Completion{}).Where("habit_uuid = ?", h.UUID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	account, err := user.GetAccount("a@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.Account.WillpowerPoints, account.WillpowerPoints)
}

func TestCompleteBadHabitAwardsNoPoints(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	h := createTestHabit(t, "a@example.com", "No Sugar", TypeBad)

	now := time.Date(2024, 1, 5, 21, 0, 0, 0, time.UTC)
	result, err := Complete("a@example.com", h.UUID, now)
	require.NoError(t, err)
	assert.Equal(t, 0, result.PointsAwarded)
	assert.Equal(t, 0, result.Habit.Streak)

	// BAD习惯允许同日多次记录
	result, err = Complete("a@example.com", h.UUID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, result.Duplicate)

	var count int64
	require.NoError(t, database.DB.Model(&Completion{}).Where("habit_uuid = ?", h.UUID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestCompleteStreakMilestoneNotifiedOnce(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	var milestone *CompleteResult
	for i := 0; i < 3; i++ {
		var err error
		milestone, err = Complete("a@example.com", h.UUID, start.AddDate(0, 0, i))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, milestone.Milestone)

	var ns []notification.Notification
	err := database.DB.Where("type = ?", notification.TypeStreakMilestone).Find(&ns).Error
	require.NoError(t, err)
	assert.Len(t, ns, 1)
}

func TestCompleteLevelTracksPoints(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	var last *CompleteResult
	for i := 0; i < 7; i++ {
		var err error
		last, err = Complete("a@example.com", h.UUID, start.AddDate(0, 0, i))
		require.NoError(t, err)
	}

	// 12+14+16+18+20+22+24 = 126
	assert.Equal(t, 126, last.Account.WillpowerPoints)
	assert.Equal(t, 1, last.Account.Level)
	assert.Equal(t, user.LevelForPoints(last.Account.WillpowerPoints), last.Account.Level)
}

func TestFirstCompletionUnlocksAchievementOnce(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	first, err := Complete("a@example.com", h.UUID, start)
	require.NoError(t, err)
	assert.Contains(t, first.NewlyUnlocked, "ach_first_step")

	second, err := Complete("a@example.com", h.UUID, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.NotContains(t, second.NewlyUnlocked, "ach_first_step")

	account, err := user.GetAccount("a@example.com")
	require.NoError(t, err)
	unlocked := account.UnlockedIDs()
	count := 0
	for _, id := range unlocked {
		if id == "ach_first_step" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAchievementUnlockWritesNotification(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	_, err := Complete("a@example.com", h.UUID, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var ns []notification.Notification
	err = database.DB.Where("type = ?", notification.TypeAchievement).Find(&ns).Error
	require.NoError(t, err)
	assert.NotEmpty(t, ns)
}

func TestShareRejectsUnknownAccount(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	_, err := Share("a@example.com", h.UUID, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUnknownAccount)

	// 状态不发生任何变化
	fresh, err := FindHabit(database.DB, "a@example.com", h.UUID)
	require.NoError(t, err)
	assert.False(t, fresh.IsShared())

	var count int64
	require.NoError(t, database.DB.Model(&social.SharedHabit{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestShareRejectsSelf(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	_, err := Share("a@example.com", h.UUID, "a@example.com")
	assert.ErrorIs(t, err, ErrSelfShare)
}

func TestShareCreatesRecordAndDerivedHabit(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	createTestAccount(t, "b@example.com", "B")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	_, err := Complete("a@example.com", h.UUID, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	shared, err := Share("a@example.com", h.UUID, "b@example.com")
	require.NoError(t, err)
	require.True(t, shared.IsShared())
	assert.Equal(t, "a@example.com", shared.SharedOwnerEmail)
	assert.Equal(t, []string{"b@example.com"}, shared.SharedWithEmails())

	// 所有者历史被镜像进共享记录
	members, err := social.Members(database.DB, shared.SharedHabitUUID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	ownerTimes, err := members[0].CompletionTimes()
	require.NoError(t, err)
	assert.Len(t, ownerTimes, 1)

	// 受邀账户得到一个空历史的派生习惯
	bHabits, err := ListForAccount(database.DB, "b@example.com")
	require.NoError(t, err)
	require.Len(t, bHabits, 1)
	assert.Equal(t, shared.SharedHabitUUID, bHabits[0].SharedHabitUUID)
	assert.Equal(t, 0, bHabits[0].Streak)

	var count int64
	require.NoError(t, database.DB.Model(&Completion{}).Where("habit_uuid = ?", bHabits[0].UUID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// 受邀账户收到邀请通知
	var ns []notification.Notification
	err = database.DB.Where("account_email = ? AND type = ?", "b@example.com", notification.TypeSocialInvite).Find(&ns).Error
	require.NoError(t, err)
	assert.Len(t, ns, 1)

	// 重复分享同一目标是无操作
	_, err = Share("a@example.com", h.UUID, "b@example.com")
	require.NoError(t, err)
	members, err = social.Members(database.DB, shared.SharedHabitUUID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestShareUnlocksSocialAchievement(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	createTestAccount(t, "b@example.com", "B")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	_, err := Share("a@example.com", h.UUID, "b@example.com")
	require.NoError(t, err)

	account, err := user.GetAccount("a@example.com")
	require.NoError(t, err)
	assert.True(t, achievement.UnlockedSet(account.UnlockedIDs())["ach_social_butterfly"])
}

func TestSharedCompletionSameDayBonus(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	createTestAccount(t, "b@example.com", "B")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	_, err := Share("a@example.com", h.UUID, "b@example.com")
	require.NoError(t, err)

	bHabits, err := ListForAccount(database.DB, "b@example.com")
	require.NoError(t, err)
	require.Len(t, bHabits, 1)

	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	// 所有者先打卡：没有队友同日记录，无加成
	aResult, err := Complete("a@example.com", h.UUID, day)
	require.NoError(t, err)
	assert.False(t, aResult.SharedBonus)
	assert.Equal(t, 12, aResult.PointsAwarded)

	// 好友同日打卡：触发固定加成
	bResult, err := Complete("b@example.com", bHabits[0].UUID, day.Add(3*time.Hour))
	require.NoError(t, err)
	assert.True(t, bResult.SharedBonus)
	assert.Equal(t, 12+25, bResult.PointsAwarded)

	// 双方都收到对方的社交打卡通知
	var ns []notification.Notification
	err = database.DB.Where("type = ?", notification.TypeSocialCompletion).Find(&ns).Error
	require.NoError(t, err)
	assert.Len(t, ns, 2)
}

func TestUnshareSecondToLastMemberClearsSharing(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	createTestAccount(t, "b@example.com", "B")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	shared, err := Share("a@example.com", h.UUID, "b@example.com")
	require.NoError(t, err)
	sharedID := shared.SharedHabitUUID

	result, err := Unshare("a@example.com", h.UUID, "b@example.com")
	require.NoError(t, err)

	// 记录解散，剩余习惯的共享信息被清除
	assert.False(t, result.IsShared())
	_, err = social.FindRecord(database.DB, sharedID)
	assert.ErrorIs(t, err, social.ErrRecordNotFound)

	// 被移除账户的派生习惯一并删除
	bHabits, err := ListForAccount(database.DB, "b@example.com")
	require.NoError(t, err)
	assert.Empty(t, bHabits)
}

func TestUnshareKeepsRecordWithRemainingMembers(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	createTestAccount(t, "b@example.com", "B")
	createTestAccount(t, "c@example.com", "C")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	_, err := Share("a@example.com", h.UUID, "b@example.com")
	require.NoError(t, err)
	shared, err := Share("a@example.com", h.UUID, "c@example.com")
	require.NoError(t, err)

	result, err := Unshare("a@example.com", h.UUID, "b@example.com")
	require.NoError(t, err)
	assert.True(t, result.IsShared())
	assert.Equal(t, []string{"c@example.com"}, result.SharedWithEmails())

	members, err := social.Members(database.DB, shared.SharedHabitUUID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestUnshareOnlyOwner(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	createTestAccount(t, "b@example.com", "B")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	_, err := Share("a@example.com", h.UUID, "b@example.com")
	require.NoError(t, err)

	bHabits, err := ListForAccount(database.DB, "b@example.com")
	require.NoError(t, err)
	require.Len(t, bHabits, 1)

	_, err = Unshare("b@example.com", bHabits[0].UUID, "a@example.com")
	assert.ErrorIs(t, err, ErrNotSharingOwner)
}

func TestRefreshStreaksDecaysStaleCache(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	day := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	_, err := Complete("a@example.com", h.UUID, day)
	require.NoError(t, err)

	fresh, err := FindHabit(database.DB, "a@example.com", h.UUID)
	require.NoError(t, err)
	require.Equal(t, 1, fresh.Streak)

	// 三天后缓存的连击已经过期，刷新器应把它归零
	changed, err := RefreshStreaks(day.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	fresh, err = FindHabit(database.DB, "a@example.com", h.UUID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Streak)

	lastDay, err := metadata.GetLastStreakRefreshDay(database.DB)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-04", lastDay)
}

func TestDeleteHabitRemovesCompletions(t *testing.T) {
	setupTestDB(t)
	createTestAccount(t, "a@example.com", "A")
	h := createTestHabit(t, "a@example.com", "Read", TypeGood)

	_, err := Complete("a@example.com", h.UUID, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, Delete("a@example.com", h.UUID))

	_, err = FindHabit(database.DB, "a@example.com", h.UUID)
	assert.ErrorIs(t, err, ErrHabitNotFound)

	var count int64
	require.NoError(t, database.DB.Model(&Completion{}).Where("habit_uuid = ?", h.UUID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
