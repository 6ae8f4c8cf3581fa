package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jaemin/maintbilling/internal/model"
	"github.com/jaemin/maintbilling/internal/schedule"
)

// Warning codes, in evaluation order.
const (
	CodePeriodUndefined     = "PERIOD_UNDEFINED"
	CodeTimingManual        = "TIMING_MANUAL_REQUIRED"
	CodeAmountSuddenChange  = "AMOUNT_SUDDEN_CHANGE"
	CodeOutsourcingMissing  = "OUTSOURCING_MISSING"
	CodeDuplicateBilling    = "DUPLICATE_BILLING"
	CodeReverseBilling      = "REVERSE_BILLING"
	CodePORequired          = "PO_REQUIRED"
	CodeAttachmentRequired  = "ATTACHMENT_REQUIRED"
	CodeContractExpiring    = "CONTRACT_EXPIRING"
	CodePreviousUnconfirmed = "PREVIOUS_UNCONFIRMED"
	CodeAutoRenewed         = "AUTO_RENEWED"
)

// Context is the read-only lookup data a validation pass works against.
type Context struct {
	Contract     model.Contract
	Timing       schedule.Timing
	PeriodStatus schedule.PeriodStatus
	// Previous is the preceding month's non-cancelled record, if any.
	Previous *model.MonthlyBilling
	// SameMonth holds other non-cancelled records for the same contract and
	// month.
	SameMonth   []model.MonthlyBilling
	CompanyRule *model.CompanyRule
}

// checkFunc evaluates one rule against an immutable candidate and context.
// Rules never mutate the candidate and never depend on each other.
type checkFunc func(b model.MonthlyBilling, ctx Context, pol Policy) []model.Warning

// checks run in this fixed order so warning lists are deterministic and
// diffable across runs.
var checks = []checkFunc{
	checkPeriodUndefined,
	checkTimingManual,
	checkSuddenAmountChange,
	checkOutsourcingMissing,
	checkDuplicateBilling,
	checkReverseBilling,
	checkCompanyRules,
	checkContractExpiring,
	checkPreviousUnconfirmed,
	checkAutoRenewed,
}

// Validate evaluates every rule against the candidate record. Findings are
// advisory: billing-miss prevention outweighs strict correctness, so nothing
// here blocks record creation.
func (e *Engine) Validate(b model.MonthlyBilling, ctx Context) model.WarningList {
	var warnings model.WarningList
	for _, check := range checks {
		warnings = append(warnings, check(b, ctx, e.policy)...)
	}
	return warnings
}

func warn(code string, severity model.Severity, format string, args ...interface{}) []model.Warning {
	return []model.Warning{{Code: code, Severity: severity, Message: fmt.Sprintf(format, args...)}}
}

func checkPeriodUndefined(_ model.MonthlyBilling, ctx Context, _ Policy) []model.Warning {
	if ctx.Contract.ContractStart == nil || ctx.Contract.ContractEnd == nil {
		return warn(CodePeriodUndefined, model.SeverityWarning,
			"contract period not finalized; billing proceeds but needs review")
	}
	return nil
}

func checkTimingManual(_ model.MonthlyBilling, ctx Context, _ Policy) []model.Warning {
	irregularWithoutMonths := ctx.Contract.BillingCycle == schedule.CycleIrregular && len(ctx.Timing.Months) == 0
	if ctx.Timing.RequiresManual || irregularWithoutMonths {
		return warn(CodeTimingManual, model.SeverityWarning,
			"issue date must be set manually: %q", ctx.Contract.BillingTiming)
	}
	return nil
}

func checkSuddenAmountChange(b model.MonthlyBilling, ctx Context, pol Policy) []model.Warning {
	if ctx.Previous == nil || !ctx.Previous.FinalAmount.IsPositive() {
		return nil
	}
	prev := ctx.Previous.FinalAmount
	changePct := b.FinalAmount.Sub(prev).Abs().Div(prev).Mul(decimal.NewFromInt(100))
	if changePct.GreaterThan(decimal.NewFromInt(int64(pol.SuddenChangePercent))) {
		return warn(CodeAmountSuddenChange, model.SeverityWarning,
			"amount changed %s%% against previous month (%s -> %s)",
			changePct.Round(1), prev, b.FinalAmount)
	}
	return nil
}

func checkOutsourcingMissing(b model.MonthlyBilling, ctx Context, _ Policy) []model.Warning {
	if ctx.Contract.OutsourcingAmountZero || !b.OutsourcingAmount.IsZero() {
		return nil
	}
	if b.OutsourcingDefaulted || ctx.Contract.DefaultOutsourcingCompanyID != nil {
		return warn(CodeOutsourcingMissing, model.SeverityWarning,
			"outsourcing amount is zero without an explicit zero setting")
	}
	return nil
}

func checkDuplicateBilling(_ model.MonthlyBilling, ctx Context, _ Policy) []model.Warning {
	if len(ctx.SameMonth) > 0 {
		return warn(CodeDuplicateBilling, model.SeverityError,
			"%d other billing record(s) exist for this contract and month", len(ctx.SameMonth))
	}
	return nil
}

func checkReverseBilling(_ model.MonthlyBilling, ctx Context, _ Policy) []model.Warning {
	if ctx.Contract.ReverseBilling || ctx.Timing.ReverseBilling {
		return warn(CodeReverseBilling, model.SeverityInfo,
			"reverse billing contract; managed against the counterparty's invoice")
	}
	return nil
}

func checkCompanyRules(_ model.MonthlyBilling, ctx Context, _ Policy) []model.Warning {
	if ctx.CompanyRule == nil {
		return nil
	}
	var warnings []model.Warning
	if ctx.CompanyRule.RequiresPO {
		warnings = append(warnings, warn(CodePORequired, model.SeverityInfo,
			"company requires a PO number on invoices")...)
	}
	if ctx.CompanyRule.RequiresAttachment {
		note := ""
		if ctx.CompanyRule.AttachmentNote != nil {
			note = ": " + *ctx.CompanyRule.AttachmentNote
		}
		warnings = append(warnings, warn(CodeAttachmentRequired, model.SeverityInfo,
			"company requires supporting attachments%s", note)...)
	}
	return warnings
}

func checkContractExpiring(b model.MonthlyBilling, ctx Context, pol Policy) []model.Warning {
	if ctx.Contract.ContractEnd == nil || ctx.Contract.AutoRenewal {
		return nil
	}
	days := int(ctx.Contract.ContractEnd.Sub(b.TargetMonth.First()).Hours() / 24)
	if days > 0 && days <= pol.ExpiryLookaheadDays {
		return warn(CodeContractExpiring, model.SeverityWarning,
			"contract ends %s without auto-renewal; renewal needs confirmation",
			ctx.Contract.ContractEnd.Format("2006-01-02"))
	}
	return nil
}

func checkPreviousUnconfirmed(_ model.MonthlyBilling, ctx Context, _ Policy) []model.Warning {
	if ctx.Previous != nil && !ctx.Previous.Status.Final() {
		return warn(CodePreviousUnconfirmed, model.SeverityWarning,
			"previous month (%s) billing is still unconfirmed", ctx.Previous.TargetMonth)
	}
	return nil
}

func checkAutoRenewed(_ model.MonthlyBilling, ctx Context, _ Policy) []model.Warning {
	if ctx.PeriodStatus.AutoRenewed {
		start, end := "", ""
		if ctx.PeriodStatus.EffectiveStart != nil {
			start = ctx.PeriodStatus.EffectiveStart.Format("2006-01-02")
		}
		if ctx.PeriodStatus.EffectiveEnd != nil {
			end = ctx.PeriodStatus.EffectiveEnd.Format("2006-01-02")
		}
		return warn(CodeAutoRenewed, model.SeverityInfo,
			"active through auto-renewal (%s ~ %s)", start, end)
	}
	return nil
}
