package notification

import (
	"testing"

	"github.com/HabitForge/habitforge-backend/internal/platform/database"
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
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Notification{}))
	database.DB = db
	database.UpdateStatus(false, "")
}

func TestAppendAndList(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, Append(database.DB, New("a@example.com", TypeAchievement, "first")))
	require.NoError(t, Append(database.DB, New("a@example.com", TypeStreakMilestone, "second")))
	require.NoError(t, Append(database.DB, New("b@example.com", TypeSocialInvite, "other account")))

	ns, err := ListForAccount("a@example.com")
	require.NoError(t, err)
	require.Len(t, ns, 2)
	// 按创建顺序排列
	assert.Equal(t, "first", ns[0].Message)
	assert.Equal(t, "second", ns[1].Message)
	assert.False(t, ns[0].IsRead)
}

func TestMarkReadOnlyOwnNotifications(t *testing.T) {
	setupTestDB(t)

	mine := New("a@example.com", TypeAchievement, "mine")
	theirs := New("b@example.com", TypeAchievement, "theirs")
	require.NoError(t, Append(database.DB, mine))
	require.NoError(t, Append(database.DB, theirs))

	// 试图标记别人的通知是无操作
	require.NoError(t, MarkRead("a@example.com", []string{mine.UUID, theirs.UUID}))

	count, err := UnreadCount("a@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	count, err = UnreadCount("b@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestMarkAllRead(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, Append(database.DB, New("a@example.com", TypeSocialComment, "one")))
	require.NoError(t, Append(database.DB, New("a@example.com", TypeSocialCompletion, "two")))

	require.NoError(t, MarkAllRead("a@example.com"))

	count, err := UnreadCount("a@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestMarkReadEmptyIDs(t *testing.T) {
	setupTestDB(t)
	assert.NoError(t, MarkRead("a@example.com", nil))
}
