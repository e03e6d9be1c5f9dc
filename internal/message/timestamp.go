package message

import "time"

// TimestampLayout is the one textual form every timestamp is rendered in.
// Dedup and sorting compare these strings across sources, so every origin
// must format through this layout or cross-source dedup silently breaks.
const TimestampLayout = "2006-01-02, 03:04 PM"

// FormatTimestamp normalizes to UTC first: sources arrive in different
// zones (epoch millis from webhooks, offset strings from the Graph API)
// and the rendered strings must be byte-equal for dedup to hold.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}

// SortTime is the instant used for ordering. A timestamp that does not
// parse sorts as the zero time, i.e. older than everything parseable.
func SortTime(m Message) time.Time {
	t, err := ParseTimestamp(m.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
