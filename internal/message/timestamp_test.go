package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp(t *testing.T) {
	in := time.Date(2024, 3, 5, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-05, 02:05 PM", FormatTimestamp(in))

	morning := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-01, 09:00 AM", FormatTimestamp(morning))
}

func TestTimestampRoundTrip(t *testing.T) {
	in := time.Date(2024, 3, 5, 14, 5, 0, 0, time.UTC)

	parsed, err := ParseTimestamp(FormatTimestamp(in))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(in))
}

func TestSortTimeFallsBackToZero(t *testing.T) {
	garbled := Message{Username: "@bob", Content: "hi", Timestamp: "yesterday-ish"}
	dated := Message{Username: "@bob", Content: "hi", Timestamp: "2024-01-01, 09:00 AM"}

	assert.True(t, SortTime(garbled).IsZero())
	assert.True(t, SortTime(dated).After(SortTime(garbled)))
}

func TestKeyIgnoresIsNew(t *testing.T) {
	a := Message{Username: "@bob", Content: "hi", Timestamp: "2024-01-01, 09:00 AM", IsNew: true}
	b := Message{Username: "@bob", Content: "hi", Timestamp: "2024-01-01, 09:00 AM"}

	assert.Equal(t, a.Key(), b.Key())
}
