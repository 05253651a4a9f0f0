package calendar

import "time"

// 本包提供连击计算所依赖的日历日工具函数。
// 所有“同一天”的判断都在UTC下进行：源数据是带时区的时间戳，
// 如果按本地墙上时钟判断日界，夏令时切换会导致连击计算不可复现。

// DayKeyLayout 是日历日键的格式，例如 "2024-01-31"。
const DayKeyLayout = "2006-01-02"

// DayKey 返回时间戳所属的UTC日历日键。
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

// StartOfDay 返回时间戳所属UTC日历日的零点。
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay 判断两个时间戳是否落在同一个UTC日历日。
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// IsYesterday 判断 t 是否落在 ref 的前一个UTC日历日。
func IsYesterday(t, ref time.Time) bool {
	return SameDay(t, StartOfDay(ref).AddDate(0, 0, -1))
}

// WholeDaysBetween 返回从 from 到 to 之间经过的完整日历日数。
// to 早于 from 时返回0。
func WholeDaysBetween(from, to time.Time) int {
	days := int(StartOfDay(to).Sub(StartOfDay(from)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// IsWeekend 判断时间戳是否落在UTC的周六或周日。
func IsWeekend(t time.Time) bool {
	wd := t.UTC().Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
