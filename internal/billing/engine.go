// Package billing implements monthly billing generation and validation over
// an in-memory batch of contract data. The engine is pure: it reads the
// inputs, produces candidate records and warnings, and leaves persistence and
// locking to the caller.
package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jaemin/maintbilling/internal/calc"
	"github.com/jaemin/maintbilling/internal/model"
	"github.com/jaemin/maintbilling/internal/schedule"
)

type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Inputs is the read-only snapshot a generation run works on. Histories,
// entries and rules are keyed by contract respectively company ID. Existing
// must contain the billing records of the target month and the month before
// it.
type Inputs struct {
	Contracts          []model.Contract
	Histories          map[uuid.UUID][]model.ContractHistory
	OutsourcingEntries map[uuid.UUID][]model.OutsourcingEntry
	Existing           []model.MonthlyBilling
	Holidays           []time.Time
	CompanyRules       map[uuid.UUID]model.CompanyRule
}

// Generated is one produced candidate record with its validation outcome.
type Generated struct {
	Billing     model.MonthlyBilling
	Contract    model.Contract
	Warnings    model.WarningList
	AutoRenewed bool
	// SupersededID is set when a draft for the same month already existed;
	// the caller cancels it and records the regeneration.
	SupersededID *uuid.UUID
}

// Result of a generation run. Failures are per contract; one bad contract
// never aborts the batch.
type Result struct {
	Month     schedule.Month
	Generated []Generated
	Failures  []ContractFailure
}

// GenerateForMonth produces one candidate billing per eligible contract for
// the target month. Irregular-cycle contracts are included only when their
// timing text names explicit billing months; otherwise they are manual-only.
func (e *Engine) GenerateForMonth(month schedule.Month, in Inputs) Result {
	result := Result{Month: month}
	holidays := schedule.NewHolidaySet(in.Holidays)

	existingByContract := make(map[uuid.UUID][]model.MonthlyBilling)
	previousByContract := make(map[uuid.UUID]*model.MonthlyBilling)
	prevMonth := month.Previous()
	for i := range in.Existing {
		b := in.Existing[i]
		if b.Status == model.BillingStatusCancelled {
			continue
		}
		switch {
		case b.TargetMonth.Equal(month):
			existingByContract[b.ContractID] = append(existingByContract[b.ContractID], b)
		case b.TargetMonth.Equal(prevMonth):
			previousByContract[b.ContractID] = &in.Existing[i]
		}
	}

	for _, contract := range in.Contracts {
		generated, err := e.generateOne(month, contract, in, holidays, existingByContract[contract.ID], previousByContract[contract.ID])
		if err != nil {
			result.Failures = append(result.Failures, newFailure(contract.ID, contract.Company.Name, err))
			continue
		}
		if generated == nil {
			continue // not eligible this month
		}
		result.Generated = append(result.Generated, *generated)
	}
	return result
}

func (e *Engine) generateOne(
	month schedule.Month,
	contract model.Contract,
	in Inputs,
	holidays schedule.HolidaySet,
	sameMonth []model.MonthlyBilling,
	previous *model.MonthlyBilling,
) (*Generated, error) {
	timing := schedule.ParseTiming(contract.BillingTiming)

	status := contract.PeriodStatusAt(month)
	if !status.Active {
		return nil, nil
	}
	if !schedule.IsBillingMonth(contract.BillingCycle, month.Month(), timing.Months) {
		return nil, nil
	}

	var supersededID *uuid.UUID
	for i := range sameMonth {
		if sameMonth[i].Status.Final() {
			return nil, &StructuralError{Err: fmt.Errorf("%w (%s)", ErrAlreadyFinalized, month)}
		}
		if supersededID == nil {
			supersededID = &sameMonth[i].ID
		}
	}

	coverMonths, err := schedule.CoverageMonths(contract.BillingCycle)
	if err != nil {
		return nil, calculation(err)
	}

	histories := in.Histories[contract.ID]
	effectiveRate, err := calc.EffectiveAmount(histories, model.ChangeTypeAmount, month, contract.MonthlyAmount)
	if err != nil {
		return nil, structural("resolving amount history: %v", err)
	}

	billed, err := calc.BilledAmount(effectiveRate, coverMonths)
	if err != nil {
		return nil, calculation(err)
	}
	vat := calc.VAT(billed, e.policy.VATRate)
	total := billed.Add(vat)

	effectiveOutDefault, err := calc.EffectiveAmount(histories, model.ChangeTypeOutsourcing, month, contract.DefaultOutsourcingAmount)
	if err != nil {
		return nil, structural("resolving outsourcing history: %v", err)
	}
	entryAmounts := monthEntryAmounts(in.OutsourcingEntries[contract.ID], month)
	outsourcing, defaulted := calc.OutsourcingTotal(entryAmounts, effectiveOutDefault, coverMonths, contract.OutsourcingAmountZero)
	profit := calc.Profit(billed, outsourcing)

	record := model.MonthlyBilling{
		ContractID:           contract.ID,
		TargetMonth:          month,
		CoverMonths:          coverMonths,
		CalculatedAmount:     billed,
		FinalAmount:          billed,
		VATAmount:            vat,
		TotalAmount:          total,
		OutsourcingAmount:    outsourcing,
		OutsourcingDefaulted: defaulted,
		Profit:               profit,
		Status:               model.BillingStatusDraft,
		Provenance:           model.ComputedProvenance(),
	}

	if contract.ReverseBilling || timing.ReverseBilling {
		memo := "reverse billing: counterparty issues the invoice, dates tracked for reference only"
		record.Memo = &memo
	} else if !timing.RequiresManual {
		issueDate, err := e.proposeIssueDate(month, timing, holidays)
		if err != nil {
			return nil, structural("proposing issue date: %v", err)
		}
		record.SuggestedDate = &issueDate
		salesDate := issueDate
		record.SalesDate = &salesDate
	}

	warnings := e.Validate(record, Context{
		Contract:     contract,
		Timing:       timing,
		PeriodStatus: status,
		Previous:     previous,
		SameMonth:    sameMonth,
		CompanyRule:  companyRule(in.CompanyRules, contract.CompanyID),
	})
	record.Warnings = warnings
	record.HasWarnings = len(warnings) > 0

	return &Generated{
		Billing:      record,
		Contract:     contract,
		Warnings:     warnings,
		AutoRenewed:  status.AutoRenewed,
		SupersededID: supersededID,
	}, nil
}

func (e *Engine) proposeIssueDate(month schedule.Month, timing schedule.Timing, holidays schedule.HolidaySet) (time.Time, error) {
	day := e.policy.DefaultIssueDay
	switch {
	case timing.EndOfMonth:
		day = 0
	case timing.DaySet:
		day = timing.Day
	}
	return schedule.IssueDate(month, day, holidays, e.policy.BusinessDaySearchLimit)
}

func monthEntryAmounts(entries []model.OutsourcingEntry, month schedule.Month) []decimal.Decimal {
	var amounts []decimal.Decimal
	for _, entry := range entries {
		if entry.TargetMonth.Equal(month) {
			amounts = append(amounts, entry.Amount)
		}
	}
	return amounts
}

func companyRule(rules map[uuid.UUID]model.CompanyRule, companyID uuid.UUID) *model.CompanyRule {
	if rule, ok := rules[companyID]; ok && rule.IsActive {
		return &rule
	}
	return nil
}
