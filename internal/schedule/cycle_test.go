package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaemin/maintbilling/internal/schedule"
)

func TestParseCycle(t *testing.T) {
	cycle, err := schedule.ParseCycle("quarterly")
	require.NoError(t, err)
	assert.Equal(t, schedule.CycleQuarterly, cycle)

	_, err = schedule.ParseCycle("weekly")
	assert.Error(t, err)
}

func TestTargetMonths(t *testing.T) {
	assert.Len(t, schedule.TargetMonths(schedule.CycleMonthly), 12)
	assert.Equal(t, []time.Month{3, 6, 9, 12}, schedule.TargetMonths(schedule.CycleQuarterly))
	assert.Equal(t, []time.Month{6, 12}, schedule.TargetMonths(schedule.CycleSemiannual))
	assert.Equal(t, []time.Month{6, 12}, schedule.TargetMonths(schedule.CycleBiannual))
	assert.Empty(t, schedule.TargetMonths(schedule.CycleIrregular))
}

func TestCoverageMonths(t *testing.T) {
	tests := []struct {
		cycle schedule.Cycle
		want  int
	}{
		{schedule.CycleMonthly, 1},
		{schedule.CycleQuarterly, 3},
		{schedule.CycleSemiannual, 6},
		{schedule.CycleBiannual, 6},
		{schedule.CycleIrregular, 1},
	}
	for _, tt := range tests {
		got, err := schedule.CoverageMonths(tt.cycle)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, string(tt.cycle))
	}

	_, err := schedule.CoverageMonths(schedule.Cycle("weekly"))
	assert.Error(t, err)
}

func TestIsBillingMonth(t *testing.T) {
	assert.True(t, schedule.IsBillingMonth(schedule.CycleMonthly, time.February, nil))
	assert.True(t, schedule.IsBillingMonth(schedule.CycleQuarterly, time.September, nil))
	assert.False(t, schedule.IsBillingMonth(schedule.CycleQuarterly, time.February, nil))
	assert.True(t, schedule.IsBillingMonth(schedule.CycleSemiannual, time.December, nil))
	assert.False(t, schedule.IsBillingMonth(schedule.CycleSemiannual, time.March, nil))
}

func TestIsBillingMonthIrregular(t *testing.T) {
	// Irregular contracts bill only in months named by their timing text.
	custom := []time.Month{time.April, time.October}
	assert.True(t, schedule.IsBillingMonth(schedule.CycleIrregular, time.April, custom))
	assert.False(t, schedule.IsBillingMonth(schedule.CycleIrregular, time.May, custom))
	assert.False(t, schedule.IsBillingMonth(schedule.CycleIrregular, time.April, nil))
}
