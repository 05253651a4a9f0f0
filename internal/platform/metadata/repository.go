package metadata

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Generic Accessors ---

// GetValue retrieves a value for a given key from the metadata table.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// If the key doesn't exist, return an empty string, which is a valid default.
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue creates or updates a value for a given key.
func SetValue(db *gorm.DB, key, value string) error {
	// Use GORM's OnConflict clause for an efficient and atomic "upsert" operation.
	// It will update the 'value' column if a record with the same 'key' already exists.
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// --- Specific Helpers for Type Conversion ---

// GetLastStreakRefreshDay retrieves the last day (YYYY-MM-DD) streaks were refreshed.
func GetLastStreakRefreshDay(db *gorm.DB) (string, error) {
	return GetValue(db, LastStreakRefreshDayKey)
}

// SetLastStreakRefreshDay records the day streaks were refreshed.
func SetLastStreakRefreshDay(db *gorm.DB, day string) error {
	return SetValue(db, LastStreakRefreshDayKey, day)
}

// GetLastReminderSweep retrieves and parses the last reminder sweep timestamp.
func GetLastReminderSweep(db *gorm.DB) (time.Time, error) {
	valueStr, err := GetValue(db, LastReminderSweepKey)
	if err != nil {
		return time.Time{}, err
	}
	if valueStr == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析元数据 '%s' 的值: %w", LastReminderSweepKey, err)
	}
	return ts, nil
}

// SetLastReminderSweep records the last reminder sweep timestamp.
func SetLastReminderSweep(db *gorm.DB, ts time.Time) error {
	return SetValue(db, LastReminderSweepKey, ts.UTC().Format(time.RFC3339))
}
