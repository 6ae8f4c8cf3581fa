package billing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaemin/maintbilling/internal/billing"
	"github.com/jaemin/maintbilling/internal/model"
	"github.com/jaemin/maintbilling/internal/schedule"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func month(s string) schedule.Month {
	m, err := schedule.ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

// activeContract returns a contract with a defined 2024 period, monthly cycle
// and an intentionally zero outsourcing amount, which generates without
// warnings.
func activeContract() model.Contract {
	start := date(2024, 1, 1)
	end := date(2024, 12, 31)
	return model.Contract{
		ID:                    uuid.New(),
		CompanyID:             uuid.New(),
		ItemName:              "server maintenance",
		ContractStart:         &start,
		ContractEnd:           &end,
		MonthlyAmount:         dec("1000000"),
		BillingCycle:          schedule.CycleMonthly,
		BillingTiming:         "end of month",
		AutoRenewal:           true,
		OutsourcingAmountZero: true,
		Status:                model.ContractStatusActive,
		Company:               model.Company{Name: "Acme Logistics"},
	}
}

func inputs(contracts ...model.Contract) billing.Inputs {
	return billing.Inputs{
		Contracts:          contracts,
		Histories:          map[uuid.UUID][]model.ContractHistory{},
		OutsourcingEntries: map[uuid.UUID][]model.OutsourcingEntry{},
		CompanyRules:       map[uuid.UUID]model.CompanyRule{},
	}
}

func TestGenerateMonthlyContract(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	contract := activeContract()

	result := engine.GenerateForMonth(month("2024-03"), inputs(contract))
	require.Empty(t, result.Failures)
	require.Len(t, result.Generated, 1)

	generated := result.Generated[0]
	record := generated.Billing
	assert.Equal(t, contract.ID, record.ContractID)
	assert.Equal(t, 1, record.CoverMonths)
	assert.True(t, dec("1000000").Equal(record.FinalAmount))
	assert.True(t, dec("100000").Equal(record.VATAmount))
	assert.True(t, dec("1100000").Equal(record.TotalAmount))
	assert.True(t, record.OutsourcingAmount.IsZero())
	assert.True(t, dec("1000000").Equal(record.Profit))
	assert.Equal(t, model.BillingStatusDraft, record.Status)
	assert.Equal(t, model.ProvenanceComputed, record.Provenance[model.FieldAmount])
	assert.Empty(t, generated.Warnings)
	assert.Nil(t, generated.SupersededID)

	// 2024-03-31 is a Sunday; the end-of-month proposal lands on Friday.
	require.NotNil(t, record.SuggestedDate)
	assert.Equal(t, date(2024, 3, 29), *record.SuggestedDate)
	require.NotNil(t, record.SalesDate)
	assert.Equal(t, date(2024, 3, 29), *record.SalesDate)
}

func TestGenerateSkipsNonBillingMonth(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	contract := activeContract()
	contract.BillingCycle = schedule.CycleQuarterly

	result := engine.GenerateForMonth(month("2024-02"), inputs(contract))
	assert.Empty(t, result.Generated)
	assert.Empty(t, result.Failures)
}

func TestGenerateQuarterlyCoversThreeMonths(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	contract := activeContract()
	contract.BillingCycle = schedule.CycleQuarterly

	result := engine.GenerateForMonth(month("2024-03"), inputs(contract))
	require.Len(t, result.Generated, 1)

	record := result.Generated[0].Billing
	assert.Equal(t, 3, record.CoverMonths)
	assert.True(t, dec("3000000").Equal(record.FinalAmount))
	assert.True(t, dec("300000").Equal(record.VATAmount))
}

func TestGenerateSkipsExpiredContract(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	contract := activeContract()
	contract.AutoRenewal = false
	start := date(2022, 1, 1)
	end := date(2022, 12, 31)
	contract.ContractStart = &start
	contract.ContractEnd = &end

	result := engine.GenerateForMonth(month("2024-03"), inputs(contract))
	assert.Empty(t, result.Generated)
	assert.Empty(t, result.Failures)
}

func TestGenerateRejectsFinalizedDuplicate(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	contract := activeContract()

	in := inputs(contract)
	in.Existing = []model.MonthlyBilling{{
		ID:          uuid.New(),
		ContractID:  contract.ID,
		TargetMonth: month("2024-03"),
		Status:      model.BillingStatusConfirmed,
	}}

	result := engine.GenerateForMonth(month("2024-03"), in)
	assert.Empty(t, result.Generated)
	require.Len(t, result.Failures, 1)

	failure := result.Failures[0]
	assert.Equal(t, contract.ID, failure.ContractID)
	assert.True(t, errors.Is(failure.Err, billing.ErrAlreadyFinalized))

	var structural *billing.StructuralError
	assert.True(t, errors.As(failure.Err, &structural))
}

func TestGenerateSupersedesExistingDraft(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	contract := activeContract()
	draftID := uuid.New()

	in := inputs(contract)
	in.Existing = []model.MonthlyBilling{{
		ID:          draftID,
		ContractID:  contract.ID,
		TargetMonth: month("2024-03"),
		Status:      model.BillingStatusDraft,
	}}

	result := engine.GenerateForMonth(month("2024-03"), in)
	require.Len(t, result.Generated, 1)
	require.Empty(t, result.Failures)

	generated := result.Generated[0]
	require.NotNil(t, generated.SupersededID)
	assert.Equal(t, draftID, *generated.SupersededID)
	assertHasWarning(t, generated.Warnings, billing.CodeDuplicateBilling, model.SeverityError)
}

func TestGenerateIgnoresCancelledRecords(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	contract := activeContract()

	in := inputs(contract)
	in.Existing = []model.MonthlyBilling{{
		ID:          uuid.New(),
		ContractID:  contract.ID,
		TargetMonth: month("2024-03"),
		Status:      model.BillingStatusCancelled,
	}}

	result := engine.GenerateForMonth(month("2024-03"), in)
	require.Len(t, result.Generated, 1)
	assert.Nil(t, result.Generated[0].SupersededID)
	assert.Empty(t, result.Generated[0].Warnings)
}

func TestGenerateReverseBilling(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	contract := activeContract()
	contract.ReverseBilling = true

	result := engine.GenerateForMonth(month("2024-03"), inputs(contract))
	require.Len(t, result.Generated, 1)

	record := result.Generated[0].Billing
	require.NotNil(t, record.Memo)
	assert.Contains(t, *record.Memo, "reverse billing")
	// Amounts are still computed for reference; dates are not proposed.
	assert.True(t, dec("1000000").Equal(record.FinalAmount))
	assert.Nil(t, record.SuggestedDate)
	assert.Nil(t, record.SalesDate)
	assertHasWarning(t, result.Generated[0].Warnings, billing.CodeReverseBilling, model.SeverityInfo)
}

func TestGenerateManualTiming(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	contract := activeContract()
	contract.BillingTiming = "TBD"

	result := engine.GenerateForMonth(month("2024-03"), inputs(contract))
	require.Len(t, result.Generated, 1)

	record := result.Generated[0].Billing
	assert.Nil(t, record.SuggestedDate)
	assert.Nil(t, record.SalesDate)
	assertHasWarning(t, result.Generated[0].Warnings, billing.CodeTimingManual, model.SeverityWarning)
}

func TestGenerateAppliesAmountHistory(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	contract := activeContract()

	in := inputs(contract)
	in.Histories[contract.ID] = []model.ContractHistory{{
		ContractID:    contract.ID,
		ChangeType:    model.ChangeTypeAmount,
		EffectiveDate: date(2024, 2, 1),
		NewAmount:     decimal.NewNullDecimal(dec("1200000")),
	}}

	result := engine.GenerateForMonth(month("2024-03"), in)
	require.Len(t, result.Generated, 1)

	record := result.Generated[0].Billing
	assert.True(t, dec("1200000").Equal(record.FinalAmount))
	assert.True(t, dec("120000").Equal(record.VATAmount))
}

func TestGenerateSumsOutsourcingEntries(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	contract := activeContract()
	contract.OutsourcingAmountZero = false

	in := inputs(contract)
	in.OutsourcingEntries[contract.ID] = []model.OutsourcingEntry{
		{ContractID: contract.ID, TargetMonth: month("2024-03"), Amount: dec("100000")},
		{ContractID: contract.ID, TargetMonth: month("2024-03"), Amount: dec("200000")},
		{ContractID: contract.ID, TargetMonth: month("2024-02"), Amount: dec("999999")},
	}

	result := engine.GenerateForMonth(month("2024-03"), in)
	require.Len(t, result.Generated, 1)

	record := result.Generated[0].Billing
	assert.True(t, dec("300000").Equal(record.OutsourcingAmount))
	assert.False(t, record.OutsourcingDefaulted)
	assert.True(t, dec("700000").Equal(record.Profit))
}

func TestGenerateFlagsAutoRenewal(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	contract := activeContract()
	start := date(2023, 1, 1)
	end := date(2023, 12, 31)
	contract.ContractStart = &start
	contract.ContractEnd = &end

	result := engine.GenerateForMonth(month("2024-03"), inputs(contract))
	require.Len(t, result.Generated, 1)

	assert.True(t, result.Generated[0].AutoRenewed)
	assertHasWarning(t, result.Generated[0].Warnings, billing.CodeAutoRenewed, model.SeverityInfo)
}

func TestGenerateIsolatesContractFailures(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	healthy := activeContract()
	broken := activeContract()

	in := inputs(broken, healthy)
	// Out-of-order amendment log makes as-of resolution unsafe for this one
	// contract.
	in.Histories[broken.ID] = []model.ContractHistory{
		{
			ContractID:    broken.ID,
			ChangeType:    model.ChangeTypeAmount,
			EffectiveDate: date(2024, 2, 1),
			NewAmount:     decimal.NewNullDecimal(dec("1500000")),
		},
		{
			ContractID:    broken.ID,
			ChangeType:    model.ChangeTypeAmount,
			EffectiveDate: date(2024, 1, 1),
			NewAmount:     decimal.NewNullDecimal(dec("1200000")),
		},
	}

	result := engine.GenerateForMonth(month("2024-03"), in)
	require.Len(t, result.Generated, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, healthy.ID, result.Generated[0].Contract.ID)
	assert.Equal(t, broken.ID, result.Failures[0].ContractID)
}

func TestGenerateIrregularWithExplicitMonths(t *testing.T) {
	engine := billing.NewEngine(billing.DefaultPolicy())
	contract := activeContract()
	contract.BillingCycle = schedule.CycleIrregular
	contract.BillingTiming = "March, September"

	result := engine.GenerateForMonth(month("2024-03"), inputs(contract))
	require.Len(t, result.Generated, 1)

	result = engine.GenerateForMonth(month("2024-04"), inputs(contract))
	assert.Empty(t, result.Generated)
}

func assertHasWarning(t *testing.T, warnings model.WarningList, code string, severity model.Severity) {
	t.Helper()
	for _, w := range warnings {
		if w.Code == code {
			assert.Equal(t, severity, w.Severity)
			return
		}
	}
	t.Errorf("warning %s not found in %v", code, warnings)
}
