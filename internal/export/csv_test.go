package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/habit"
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
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&habit.Habit{}, &habit.Completion{},
		&user.Account{},
		&notification.Notification{},
		&social.SharedHabit{}, &social.SharedMember{}, &social.SharedComment{},
		&metadata.Metadata{},
	))
	database.DB = db
	database.UpdateStatus(false, "")
}

func TestBuildCSVEmptyAccount(t *testing.T) {
	setupTestDB(t)
	account := user.Account{Email: "a@example.com", Name: "A", PasswordHash: "x"}
	account.SetUnlockedIDs([]string{})
	account.SetSettings(user.DefaultSettings())
	require.NoError(t, database.DB.Create(&account).Error)

	data, err := BuildCSV(database.DB, "a@example.com")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, csvHeader, records[0])
}

func TestBuildCSVRowsPerCompletion(t *testing.T) {
	setupTestDB(t)
	account := user.Account{Email: "a@example.com", Name: "A", PasswordHash: "x"}
	account.SetUnlockedIDs([]string{})
	account.SetSettings(user.DefaultSettings())
	require.NoError(t, database.DB.Create(&account).Error)

	h, _, err := habit.Create("a@example.com", "Read", "📚", "#2266ff", habit.TypeGood)
	require.NoError(t, err)
	bad, _, err := habit.Create("a@example.com", "No Sugar", "🍬", "#cc2222", habit.TypeBad)
	require.NoError(t, err)

	day1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	_, err = habit.Complete("a@example.com", h.UUID, day1)
	require.NoError(t, err)
	_, err = habit.Complete("a@example.com", h.UUID, day2)
	require.NoError(t, err)
	_, err = habit.Complete("a@example.com", bad.UUID, day2.Add(time.Hour))
	require.NoError(t, err)

	data, err := BuildCSV(database.DB, "a@example.com")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	// 时间升序：Read两天，然后No Sugar
	assert.Equal(t, []string{"2024-01-01T09:00:00Z", "Read", "GOOD", "completed", "12"}, records[1])
	assert.Equal(t, []string{"2024-01-02T09:00:00Z", "Read", "GOOD", "completed", "14"}, records[2])
	assert.Equal(t, []string{"2024-01-02T10:00:00Z", "No Sugar", "BAD", "incident", "0"}, records[3])
}
