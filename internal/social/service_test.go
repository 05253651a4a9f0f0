package social

import (
	"testing"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/notification"
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
	// 内存库绑定在单个连接上，收紧连接池避免丢表
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&SharedHabit{}, &SharedMember{}, &SharedComment{}, &notification.Notification{}))
	database.DB = db
	database.UpdateStatus(false, "")
}

func createTestRecord(t *testing.T, ownerEmail string, history []time.Time) *SharedHabit {
	t.Helper()
	var record *SharedHabit
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = CreateRecord(tx, ownerEmail, "Owner", "Morning Run", "🏃", "#ff8800", history)
		return err
	})
	require.NoError(t, err)
	return record
}

func TestCreateRecordMirrorsOwnerHistory(t *testing.T) {
	setupTestDB(t)
	history := []time.Time{
		time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
	}
	record := createTestRecord(t, "owner@example.com", history)

	members, err := Members(database.DB, record.UUID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "owner@example.com", members[0].Email)

	times, err := members[0].CompletionTimes()
	require.NoError(t, err)
	assert.Len(t, times, 2)
}

func TestAddMemberIsIdempotent(t *testing.T) {
	setupTestDB(t)
	record := createTestRecord(t, "owner@example.com", nil)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := AddMember(tx, record.UUID, "friend@example.com", "Friend"); err != nil {
			return err
		}
		return AddMember(tx, record.UUID, "friend@example.com", "Friend")
	})
	require.NoError(t, err)

	members, err := Members(database.DB, record.UUID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestRemoveSecondToLastMemberDissolvesRecord(t *testing.T) {
	setupTestDB(t)
	record := createTestRecord(t, "owner@example.com", nil)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return AddMember(tx, record.UUID, "friend@example.com", "Friend")
	})
	require.NoError(t, err)

	var dissolved bool
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		dissolved, _, err = RemoveMember(tx, record.UUID, "friend@example.com")
		return err
	})
	require.NoError(t, err)
	assert.True(t, dissolved)

	_, err = FindRecord(database.DB, record.UUID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	members, err := Members(database.DB, record.UUID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestRemoveMemberKeepsRecordWithTwoRemaining(t *testing.T) {
	setupTestDB(t)
	record := createTestRecord(t, "owner@example.com", nil)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := AddMember(tx, record.UUID, "a@example.com", "A"); err != nil {
			return err
		}
		return AddMember(tx, record.UUID, "b@example.com", "B")
	})
	require.NoError(t, err)

	var dissolved bool
	var remaining []SharedMember
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		dissolved, remaining, err = RemoveMember(tx, record.UUID, "b@example.com")
		return err
	})
	require.NoError(t, err)
	assert.False(t, dissolved)
	assert.Len(t, remaining, 2)

	_, err = FindRecord(database.DB, record.UUID)
	assert.NoError(t, err)
}

func TestRemoveUnknownMember(t *testing.T) {
	setupTestDB(t)
	record := createTestRecord(t, "owner@example.com", nil)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		_, _, err := RemoveMember(tx, record.UUID, "stranger@example.com")
		return err
	})
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestAppendCompletionDetectsSameDayFriend(t *testing.T) {
	setupTestDB(t)
	record := createTestRecord(t, "owner@example.com", nil)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return AddMember(tx, record.UUID, "friend@example.com", "Friend")
	})
	require.NoError(t, err)

	day := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

	// 所有者先打卡，此时没有队友同日记录
	var friendSameDay bool
	var others []SharedMember
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		friendSameDay, others, err = AppendCompletion(tx, record.UUID, "owner@example.com", day)
		return err
	})
	require.NoError(t, err)
	assert.False(t, friendSameDay)
	require.Len(t, others, 1)
	assert.Equal(t, "friend@example.com", others[0].Email)

	// 好友在同一天晚些时候打卡，应检测到同日完成
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		friendSameDay, _, err = AppendCompletion(tx, record.UUID, "friend@example.com", day.Add(6*time.Hour))
		return err
	})
	require.NoError(t, err)
	assert.True(t, friendSameDay)

	// 第二天只有好友打卡，不应再触发同日加成
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		friendSameDay, _, err = AppendCompletion(tx, record.UUID, "friend@example.com", day.Add(26*time.Hour))
		return err
	})
	require.NoError(t, err)
	assert.False(t, friendSameDay)
}

func TestAddCommentNotifiesOtherMembers(t *testing.T) {
	setupTestDB(t)
	record := createTestRecord(t, "owner@example.com", nil)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return AddMember(tx, record.UUID, "friend@example.com", "Friend")
	})
	require.NoError(t, err)

	comment, err := AddComment(record.UUID, "owner@example.com", "Owner", "加油！")
	require.NoError(t, err)
	assert.Equal(t, "加油！", comment.Text)

	var ns []notification.Notification
	require.NoError(t, database.DB.Find(&ns).Error)
	require.Len(t, ns, 1)
	assert.Equal(t, "friend@example.com", ns[0].AccountEmail)
	assert.Equal(t, notification.TypeSocialComment, ns[0].Type)
}

func TestAddCommentRejectsNonMember(t *testing.T) {
	setupTestDB(t)
	record := createTestRecord(t, "owner@example.com", nil)

	_, err := AddComment(record.UUID, "stranger@example.com", "Stranger", "hi")
	assert.ErrorIs(t, err, ErrNotMember)
}
