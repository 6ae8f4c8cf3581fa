package schedule_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaemin/maintbilling/internal/schedule"
)

func TestParseMonth(t *testing.T) {
	month, err := schedule.ParseMonth("2024-07")
	require.NoError(t, err)
	assert.Equal(t, schedule.NewMonth(2024, time.July), month)
	assert.Equal(t, "2024-07", month.String())

	_, err = schedule.ParseMonth("2024/07")
	assert.Error(t, err)
	_, err = schedule.ParseMonth("")
	assert.Error(t, err)
}

func TestMonthBounds(t *testing.T) {
	month := schedule.NewMonth(2024, time.February)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), month.First())
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), month.Last())

	assert.True(t, month.Contains(time.Date(2024, 2, 15, 12, 30, 0, 0, time.UTC)))
	assert.False(t, month.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMonthArithmetic(t *testing.T) {
	month := schedule.NewMonth(2024, time.January)
	assert.Equal(t, schedule.NewMonth(2024, time.April), month.AddMonths(3))
	assert.Equal(t, schedule.NewMonth(2023, time.December), month.Previous())
	assert.True(t, month.Before(schedule.NewMonth(2024, time.February)))
	assert.False(t, month.Before(month))
}

func TestMonthJSON(t *testing.T) {
	var target struct {
		Month schedule.Month `json:"month"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"month": "2024-05"}`), &target))
	assert.Equal(t, schedule.NewMonth(2024, time.May), target.Month)

	data, err := json.Marshal(target)
	require.NoError(t, err)
	assert.JSONEq(t, `{"month": "2024-05"}`, string(data))
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{
			name:   "plain shift",
			start:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			months: 2,
			want:   time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "jan 31 clamps to feb 29 in a leap year",
			start:  time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "jan 31 clamps to feb 28 otherwise",
			start:  time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "year rollover",
			start:  time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
			months: 12,
			want:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schedule.AddMonthsClamped(tt.start, tt.months))
		})
	}
}
