package avro

import "time"

// Logical-type value conversions (spec.md §4.4 "Logical-type encodings").
// These operate on plain Go time.Time/time.Duration values; the binary
// builder cases in cases_logical_binary.go call them once they've matched
// a field's declared Go type to a logical schema.

const (
	millisPerSecond = int64(time.Second / time.Millisecond)
	microsPerSecond = int64(time.Second / time.Microsecond)
)

// dateToDays converts a time.Time (truncated to its UTC calendar date) to
// days since the Unix epoch.
func dateToDays(t time.Time) int32 {
	t = t.UTC()
	days := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400
	return int32(days)
}

// daysToDate converts days since the Unix epoch to a UTC time.Time at
// midnight.
func daysToDate(days int32) time.Time {
	return time.Unix(int64(days)*86400, 0).UTC()
}

// timeToMillis converts a time.Time's time-of-day (UTC) to milliseconds
// since midnight.
func timeToMillis(t time.Time) int32 {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int32(t.Sub(midnight).Milliseconds())
}

// millisToTime converts milliseconds since midnight to a UTC time.Time
// anchored at the Unix epoch date.
func millisToTime(ms int32) time.Time {
	return time.Unix(0, 0).UTC().Add(time.Duration(ms) * time.Millisecond)
}

// timeToMicros converts a time.Time's time-of-day (UTC) to microseconds
// since midnight.
func timeToMicros(t time.Time) int64 {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return t.Sub(midnight).Microseconds()
}

// microsToTime converts microseconds since midnight to a UTC time.Time
// anchored at the Unix epoch date.
func microsToTime(us int64) time.Time {
	return time.Unix(0, 0).UTC().Add(time.Duration(us) * time.Microsecond)
}

// timestampToMillis converts a time.Time to milliseconds since the Unix
// epoch.
func timestampToMillis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// millisToTimestamp converts milliseconds since the Unix epoch to a UTC
// time.Time.
func millisToTimestamp(ms int64) time.Time {
	return time.Unix(ms/millisPerSecond, (ms%millisPerSecond)*int64(time.Millisecond)).UTC()
}

// timestampToMicros converts a time.Time to microseconds since the Unix
// epoch.
func timestampToMicros(t time.Time) int64 {
	return t.UnixNano() / int64(time.Microsecond)
}

// microsToTimestamp converts microseconds since the Unix epoch to a UTC
// time.Time.
func microsToTimestamp(us int64) time.Time {
	return time.Unix(us/microsPerSecond, (us%microsPerSecond)*int64(time.Microsecond)).UTC()
}

// durationToParts converts a time.Duration to the Avro duration triple.
// Writers always derive months=0 and fold everything into days and the
// millisecond remainder, and reject negative durations.
func durationToParts(d time.Duration) (months, days, millis uint32, err error) {
	if d < 0 {
		return 0, 0, 0, newError(Overflow, "duration must be non-negative, got %s", d)
	}
	totalMillis := d.Milliseconds()
	const millisPerDay = 86400000
	days64 := totalMillis / millisPerDay
	rem := totalMillis % millisPerDay
	if days64 > int64(^uint32(0)) {
		return 0, 0, 0, newError(Overflow, "duration %s exceeds representable day count", d)
	}
	return 0, uint32(days64), uint32(rem), nil
}

// partsToDuration converts the Avro duration triple to a time.Duration.
// A non-zero months component cannot be represented exactly (months have
// no fixed length) and is approximated as 30 days each, matching the
// common reference-implementation convention.
func partsToDuration(months, days, millis uint32) time.Duration {
	const daysPerMonth = 30
	totalDays := int64(months)*daysPerMonth + int64(days)
	return time.Duration(totalDays)*24*time.Hour + time.Duration(millis)*time.Millisecond
}
