package valueobject

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("parses ISO date", func(t *testing.T) {
		d, err := ParseDate("2026-02-10")
		require.NoError(t, err)
		assert.Equal(t, 2026, d.Year())
		assert.Equal(t, 10, d.Day())
		assert.Equal(t, "2026-02-10", d.String())
	})

	t.Run("rejects other layouts", func(t *testing.T) {
		_, err := ParseDate("10/02/2026")
		assert.Error(t, err)
	})
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 15, 18, 45, 0, 0, time.UTC)
	assert.True(t, DateOf(ts).Equal(NewDate(2026, 3, 15)))
}

func TestInclusiveDayCount(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"same day", "2026-02-05", "2026-02-05", 1},
		{"ten days", "2026-02-05", "2026-02-14", 10},
		{"across month", "2026-01-30", "2026-02-02", 4},
		{"leap day", "2028-02-28", "2028-03-01", 3},
		{"reversed", "2026-02-10", "2026-02-09", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InclusiveDayCount(MustParseDate(tt.start), MustParseDate(tt.end))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate_MonthStartAndPeriod(t *testing.T) {
	d := MustParseDate("2026-02-10")
	assert.Equal(t, "2026-02-01", d.MonthStart().String())
	assert.Equal(t, "2026-02", d.PeriodMonth())
	assert.Equal(t, "2026-02-09", d.AddDays(-1).String())
}

func TestDateRange(t *testing.T) {
	t.Run("rejects end before start", func(t *testing.T) {
		_, err := NewDateRange(MustParseDate("2026-02-10"), MustParseDate("2026-02-01"))
		assert.Error(t, err)
	})

	t.Run("overlap", func(t *testing.T) {
		version, err := NewDateRange(MustParseDate("2026-02-05"), MustParseDate("2026-02-14"))
		require.NoError(t, err)
		window, err := NewDateRange(MustParseDate("2026-02-01"), MustParseDate("2026-02-09"))
		require.NoError(t, err)

		assert.Equal(t, 10, version.Days())
		assert.Equal(t, 5, version.Overlap(window))
		assert.True(t, version.Contains(MustParseDate("2026-02-14")))
		assert.False(t, version.Contains(MustParseDate("2026-02-15")))
	})

	t.Run("disjoint ranges do not overlap", func(t *testing.T) {
		a, _ := NewDateRange(MustParseDate("2026-01-01"), MustParseDate("2026-01-05"))
		b, _ := NewDateRange(MustParseDate("2026-01-10"), MustParseDate("2026-01-12"))
		assert.Equal(t, 0, a.Overlap(b))
	})
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Day  Date `json:"day"`
		Skip Date `json:"skip"`
	}

	raw, err := json.Marshal(payload{Day: MustParseDate("2026-02-10")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2026-02-10","skip":null}`, string(raw))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"day":"2026-03-01","skip":""}`), &decoded))
	assert.Equal(t, "2026-03-01", decoded.Day.String())
	assert.True(t, decoded.Skip.IsZero())
}

func TestIsHalfStep(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"0", true},
		{"0.5", true},
		{"2.5", true},
		{"3", true},
		{"2.3", false},
		{"1.25", false},
		{"-1.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHalfStep(decimal.RequireFromString(tt.value)))
		})
	}
}

func TestParseDays(t *testing.T) {
	d, err := ParseDays("2,5")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("2.5")))

	_, err = ParseDays("dos")
	assert.Error(t, err)
}
