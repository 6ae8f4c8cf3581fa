package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaemin/maintbilling/internal/schedule"
)

func TestContractPeriodStatusUndefined(t *testing.T) {
	status := schedule.ContractPeriodStatus(nil, nil, false, 12, date(2024, 7, 1))
	assert.True(t, status.Active)
	assert.True(t, status.PeriodUndefined)
	assert.False(t, status.AutoRenewed)

	start := date(2024, 1, 1)
	status = schedule.ContractPeriodStatus(&start, nil, false, 12, date(2024, 7, 1))
	assert.True(t, status.Active)
	assert.True(t, status.PeriodUndefined)
}

func TestContractPeriodStatusWindow(t *testing.T) {
	start := date(2024, 1, 1)
	end := date(2024, 12, 31)

	status := schedule.ContractPeriodStatus(&start, &end, false, 12, date(2024, 7, 1))
	assert.True(t, status.Active)
	assert.False(t, status.PeriodUndefined)
	assert.False(t, status.AutoRenewed)

	// Before the start date the contract is not yet active.
	status = schedule.ContractPeriodStatus(&start, &end, false, 12, date(2023, 12, 1))
	assert.False(t, status.Active)

	// After the end without auto-renewal it is expired.
	status = schedule.ContractPeriodStatus(&start, &end, false, 12, date(2025, 2, 1))
	assert.False(t, status.Active)
}

func TestContractPeriodStatusAutoRenewal(t *testing.T) {
	start := date(2023, 1, 1)
	end := date(2023, 12, 31)

	status := schedule.ContractPeriodStatus(&start, &end, true, 12, date(2024, 7, 1))
	assert.True(t, status.Active)
	assert.True(t, status.AutoRenewed)
	require.NotNil(t, status.EffectiveStart)
	require.NotNil(t, status.EffectiveEnd)
	assert.Equal(t, date(2024, 1, 1), *status.EffectiveStart)
	assert.Equal(t, date(2024, 12, 31), *status.EffectiveEnd)
}

func TestContractPeriodStatusAutoRenewalMultiplePeriods(t *testing.T) {
	start := date(2021, 3, 1)
	end := date(2022, 2, 28)

	// Three years later the window has rolled forward three times.
	status := schedule.ContractPeriodStatus(&start, &end, true, 12, date(2024, 7, 1))
	assert.True(t, status.Active)
	assert.True(t, status.AutoRenewed)
	require.NotNil(t, status.EffectiveStart)
	require.NotNil(t, status.EffectiveEnd)
	assert.Equal(t, date(2024, 3, 1), *status.EffectiveStart)
	assert.Equal(t, date(2025, 2, 28), *status.EffectiveEnd)
}

func TestContractPeriodStatusRenewalDefault(t *testing.T) {
	start := date(2023, 1, 1)
	end := date(2023, 12, 31)

	// Zero renewal months falls back to the twelve-month default.
	status := schedule.ContractPeriodStatus(&start, &end, true, 0, date(2024, 3, 1))
	assert.True(t, status.Active)
	require.NotNil(t, status.EffectiveEnd)
	assert.Equal(t, date(2024, 12, 31), *status.EffectiveEnd)
}
