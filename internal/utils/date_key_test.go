package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateKey(t *testing.T) {
	require.Equal(t, "January-15", DateKey(time.January, 15))
	require.Equal(t, "February-2", DateKey(time.February, 2))
	require.Equal(t, "December-31", DateKey(time.December, 31))
}

func TestParseDateKey(t *testing.T) {
	month, day, err := ParseDateKey("January-15")
	require.NoError(t, err)
	require.Equal(t, time.January, month)
	require.Equal(t, 15, day)

	for _, key := range []string{"", "January", "Januar-15", "January-0", "January-32", "January-x"} {
		_, _, err := ParseDateKey(key)
		require.Error(t, err, "key %q", key)
	}
}

func TestISODate(t *testing.T) {
	require.Equal(t, "2025-01-05", ISODate(2025, time.January, 5))
	require.Equal(t, "2025-12-31", ISODate(2025, time.December, 31))
}

func TestSlotRange(t *testing.T) {
	require.Equal(t, "18:00 - 19:30", SlotRange("18:00", "19:30"))
}
