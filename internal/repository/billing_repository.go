package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jaemin/maintbilling/internal/model"
	"github.com/jaemin/maintbilling/internal/schedule"
)

// ErrBillingFinalized is returned when a write collides with a confirmed or
// locked record. The unique partial index on (contract_id, target_month)
// backs this check at the database level.
var ErrBillingFinalized = errors.New("billing already confirmed or locked")

// ErrBillingLocked is returned when an override targets a locked record
// without the explicit locked-override flag.
var ErrBillingLocked = errors.New("billing is locked")

type BillingRepository struct {
	db *gorm.DB
}

func NewBillingRepository(db *gorm.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

const billingColumns = `
	id,
	contract_id,
	target_month,
	cover_months,
	calculated_amount,
	override_amount,
	final_amount,
	vat_amount,
	total_amount,
	outsourcing_amount,
	outsourcing_defaulted,
	profit,
	suggested_date,
	sales_date,
	request_date,
	status,
	warnings,
	has_warnings,
	provenance,
	memo,
	created_at,
	updated_at,
	locked_at,
	locked_by
`

func (r *BillingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MonthlyBilling, error) {
	var billing model.MonthlyBilling
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+billingColumns+`
		FROM monthly_billings
		WHERE id = ?
	`, id).Scan(&billing).Error
	if err != nil {
		return nil, err
	}
	if billing.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &billing, nil
}

// ListForMonths returns all non-cancelled records whose target month is in
// months. The generation run asks for the target month plus the one before.
func (r *BillingRepository) ListForMonths(ctx context.Context, months []schedule.Month) ([]model.MonthlyBilling, error) {
	if len(months) == 0 {
		return nil, nil
	}
	dates := make([]time.Time, 0, len(months))
	for _, m := range months {
		dates = append(dates, m.First())
	}

	var billings []model.MonthlyBilling
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+billingColumns+`
		FROM monthly_billings
		WHERE target_month = ANY(?) AND status <> 'cancelled'
		ORDER BY target_month, created_at
	`, dates).Scan(&billings).Error
	if err != nil {
		return nil, err
	}
	return billings, nil
}

// ListForRange returns non-cancelled records with target month in [from, to).
func (r *BillingRepository) ListForRange(ctx context.Context, from, to schedule.Month) ([]model.MonthlyBilling, error) {
	var billings []model.MonthlyBilling
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+billingColumns+`
		FROM monthly_billings
		WHERE target_month >= ? AND target_month < ? AND status <> 'cancelled'
		ORDER BY target_month, created_at
	`, from.First(), to.First()).Scan(&billings).Error
	if err != nil {
		return nil, err
	}
	return billings, nil
}

// Create persists one generated record. Inside the transaction it re-checks
// for a finalized record under row locks (the engine's precondition is a pure
// decision; the mutual-exclusion guarantee lives here) and cancels a
// superseded draft when the run is a regeneration.
func (r *BillingRepository) Create(ctx context.Context, billing model.MonthlyBilling, supersededID *uuid.UUID) (*model.MonthlyBilling, error) {
	var saved model.MonthlyBilling
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []struct {
			ID     uuid.UUID
			Status model.BillingStatus
		}
		err := tx.Raw(`
			SELECT id, status
			FROM monthly_billings
			WHERE contract_id = ? AND target_month = ? AND status <> 'cancelled'
			FOR UPDATE
		`, billing.ContractID, billing.TargetMonth.First()).Scan(&existing).Error
		if err != nil {
			return err
		}
		for _, row := range existing {
			if row.Status.Final() {
				return ErrBillingFinalized
			}
			if supersededID == nil || row.ID != *supersededID {
				return ErrBillingFinalized
			}
		}

		if supersededID != nil {
			if err := tx.Exec(`
				UPDATE monthly_billings
				SET status = 'cancelled', updated_at = NOW()
				WHERE id = ? AND status = 'draft'
			`, *supersededID).Error; err != nil {
				return err
			}
		}

		return tx.Raw(`
			INSERT INTO monthly_billings (
				contract_id,
				target_month,
				cover_months,
				calculated_amount,
				override_amount,
				final_amount,
				vat_amount,
				total_amount,
				outsourcing_amount,
				outsourcing_defaulted,
				profit,
				suggested_date,
				sales_date,
				request_date,
				status,
				warnings,
				has_warnings,
				provenance,
				memo
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING `+billingColumns+`
		`,
			billing.ContractID,
			billing.TargetMonth,
			billing.CoverMonths,
			billing.CalculatedAmount,
			billing.OverrideAmount,
			billing.FinalAmount,
			billing.VATAmount,
			billing.TotalAmount,
			billing.OutsourcingAmount,
			billing.OutsourcingDefaulted,
			billing.Profit,
			billing.SuggestedDate,
			billing.SalesDate,
			billing.RequestDate,
			billing.Status,
			billing.Warnings,
			billing.HasWarnings,
			billing.Provenance,
			billing.Memo,
		).Scan(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Confirm moves a draft to confirmed.
func (r *BillingRepository) Confirm(ctx context.Context, id uuid.UUID) (*model.MonthlyBilling, error) {
	var updated model.MonthlyBilling
	err := r.db.WithContext(ctx).Raw(`
		UPDATE monthly_billings
		SET status = 'confirmed', updated_at = NOW()
		WHERE id = ? AND status = 'draft'
		RETURNING `+billingColumns+`
	`, id).Scan(&updated).Error
	if err != nil {
		return nil, err
	}
	if updated.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &updated, nil
}

// Lock finalizes a record against implicit regeneration.
func (r *BillingRepository) Lock(ctx context.Context, id uuid.UUID, lockedBy string) (*model.MonthlyBilling, error) {
	var updated model.MonthlyBilling
	err := r.db.WithContext(ctx).Raw(`
		UPDATE monthly_billings
		SET status = 'locked', locked_at = NOW(), locked_by = ?, updated_at = NOW()
		WHERE id = ? AND status IN ('draft', 'confirmed')
		RETURNING `+billingColumns+`
	`, lockedBy, id).Scan(&updated).Error
	if err != nil {
		return nil, err
	}
	if updated.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &updated, nil
}

// Cancel voids a record. Voided records do not count toward the
// one-per-month constraint.
func (r *BillingRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE monthly_billings
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = ? AND status IN ('draft', 'confirmed')
	`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// OverrideUpdate carries recomputed values for an explicit override. The
// service computes them; this method persists atomically, refusing locked
// records unless the caller explicitly overrides a locked one.
type OverrideUpdate struct {
	OverrideAmount decimal.NullDecimal
	FinalAmount    decimal.Decimal
	VATAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	Profit         decimal.Decimal
	SalesDate      *time.Time
	RequestDate    *time.Time
	Memo           *string
	Provenance     model.FieldProvenance
	AllowLocked    bool
}

func (r *BillingRepository) ApplyOverride(ctx context.Context, id uuid.UUID, update OverrideUpdate) (*model.MonthlyBilling, error) {
	statusFilter := `('draft', 'confirmed')`
	if update.AllowLocked {
		statusFilter = `('draft', 'confirmed', 'locked')`
	}

	var updated model.MonthlyBilling
	err := r.db.WithContext(ctx).Raw(`
		UPDATE monthly_billings
		SET
			override_amount = ?,
			final_amount = ?,
			vat_amount = ?,
			total_amount = ?,
			profit = ?,
			sales_date = COALESCE(?, sales_date),
			request_date = COALESCE(?, request_date),
			memo = COALESCE(?, memo),
			provenance = ?,
			updated_at = NOW()
		WHERE id = ? AND status IN `+statusFilter+`
		RETURNING `+billingColumns+`
	`,
		update.OverrideAmount,
		update.FinalAmount,
		update.VATAmount,
		update.TotalAmount,
		update.Profit,
		update.SalesDate,
		update.RequestDate,
		update.Memo,
		update.Provenance,
		id,
	).Scan(&updated).Error
	if err != nil {
		return nil, err
	}
	if updated.ID == uuid.Nil {
		return nil, ErrBillingLocked
	}
	return &updated, nil
}

// ListEntriesForMonth returns the month's outsourcing purchases keyed by
// contract.
func (r *BillingRepository) ListEntriesForMonth(ctx context.Context, month schedule.Month) (map[uuid.UUID][]model.OutsourcingEntry, error) {
	var entries []model.OutsourcingEntry
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, billing_id, company_id, target_month, amount, source_note, purchase_date, created_at
		FROM outsourcing_entries
		WHERE target_month = ?
		ORDER BY created_at
	`, month.First()).Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID][]model.OutsourcingEntry)
	for _, entry := range entries {
		result[entry.ContractID] = append(result[entry.ContractID], entry)
	}
	return result, nil
}

// ListHolidays returns holiday dates within [from, to].
func (r *BillingRepository) ListHolidays(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	var holidays []model.Holiday
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, holiday_date, name, created_at
		FROM holidays
		WHERE holiday_date >= ? AND holiday_date <= ?
		ORDER BY holiday_date
	`, from, to).Scan(&holidays).Error
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(holidays))
	for _, h := range holidays {
		dates = append(dates, h.HolidayDate)
	}
	return dates, nil
}
