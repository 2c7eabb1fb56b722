package festival

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowFor(t *testing.T) {
	christmas := findFestival(t, "SANTA25")

	from, until := christmas.WindowFor(2026, time.UTC)

	assert.Equal(t, time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC), from, "window opens five days before")
	assert.Equal(t, time.Date(2026, time.December, 26, 0, 0, 0, 0, time.UTC), until, "window closes one day after")
}

func TestInWindow(t *testing.T) {
	blackFriday := findFestival(t, "BLACKFRIDAY")

	testCases := []struct {
		name     string
		now      time.Time
		expected bool
	}{
		{"day_of_festival", time.Date(2026, time.November, 29, 12, 0, 0, 0, time.UTC), true},
		{"window_opens", time.Date(2026, time.November, 24, 0, 0, 0, 0, time.UTC), true},
		{"just_before_window", time.Date(2026, time.November, 23, 23, 59, 59, 0, time.UTC), false},
		{"window_closes", time.Date(2026, time.November, 30, 0, 0, 0, 0, time.UTC), true},
		{"just_after_window", time.Date(2026, time.November, 30, 0, 0, 1, 0, time.UTC), false},
		{"months_away", time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, ok := blackFriday.InWindow(tc.now)
			assert.Equal(t, tc.expected, ok)
		})
	}
}

// TestOverlappingWindows verifies that two festivals close together (Halloween
// and Diwali in October) can both be in window at once; each entry is judged
// independently.
func TestOverlappingWindows(t *testing.T) {
	now := time.Date(2026, time.October, 26, 0, 0, 0, 0, time.UTC)

	halloween := findFestival(t, "SPOOKY15")
	diwali := findFestival(t, "DIWALI30")

	_, _, halloweenOK := halloween.InWindow(now)
	_, _, diwaliOK := diwali.InWindow(now)

	assert.True(t, halloweenOK, "Oct 26 is inside the Halloween lead window")
	assert.False(t, diwaliOK, "Oct 26 is past the Diwali lag window")

	now = time.Date(2026, time.October, 21, 0, 0, 0, 0, time.UTC)
	_, _, diwaliOK = diwali.InWindow(now)
	assert.True(t, diwaliOK, "Oct 21 is inside the Diwali lag window")
}

func TestDefaultCalendarCodesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range DefaultCalendar {
		assert.False(t, seen[f.Code], "duplicate code %s", f.Code)
		seen[f.Code] = true
		assert.NotEmpty(t, f.Name)
		assert.Greater(t, f.DiscountPercentage, 0)
		assert.LessOrEqual(t, f.DiscountPercentage, 100)
	}
}

func findFestival(t *testing.T, code string) Festival {
	t.Helper()
	for _, f := range DefaultCalendar {
		if f.Code == code {
			return f
		}
	}
	require.Failf(t, "festival not found", "code %s", code)
	return Festival{}
}
