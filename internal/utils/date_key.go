package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateKey builds the "MonthName-day" key used by the admin override store,
// e.g. DateKey(time.January, 15) == "January-15".
func DateKey(month time.Month, day int) string {
	return month.String() + "-" + strconv.Itoa(day)
}

// ParseDateKey splits a "MonthName-day" key back into its parts.
func ParseDateKey(key string) (time.Month, int, error) {
	name, dayStr, ok := strings.Cut(key, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid date key %q", key)
	}
	var month time.Month
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			month = m
			break
		}
	}
	if month == 0 {
		return 0, 0, fmt.Errorf("invalid month name in date key %q", key)
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("invalid day in date key %q", key)
	}
	return month, day, nil
}

// ISODate formats a calendar day as YYYY-MM-DD with a 1-based, zero-padded month.
func ISODate(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// SlotRange formats a slot as "18:00 - 19:30".
func SlotRange(startTime, endTime string) string {
	return startTime + " - " + endTime
}
