package metadata

// --- SQLite Keys ---
// These keys are used for the 'key' column in the 'metadata' SQLite table.
const (
	// SchemaVersionKey stores the version of the persisted schema, bumped
	// whenever a migration changes the shape of stored documents.
	SchemaVersionKey = "schema_version"

	// LastStreakRefreshDayKey stores the UTC calendar day (YYYY-MM-DD) on which
	// the streak refresher last recomputed all cached streaks.
	LastStreakRefreshDayKey = "last_streak_refresh_day"

	// LastReminderSweepKey stores the RFC3339 timestamp of the last completed
	// reminder sweep.
	LastReminderSweepKey = "last_reminder_sweep"
)

// --- Redis Keys ---
// These keys are used for storing metadata in Redis.
const (
	// RedisUnreadCountsKey is a Redis Hash mapping account email to the number
	// of unread notifications. Maintained by the notification dispatcher and
	// rebuilt from SQLite on warmup.
	RedisUnreadCountsKey = "meta:unread_counts"
)
