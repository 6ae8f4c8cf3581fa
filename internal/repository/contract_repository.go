package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jaemin/maintbilling/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

const contractColumns = `
	c.id,
	c.company_id,
	c.item_name,
	c.contract_start,
	c.contract_end,
	c.monthly_amount,
	c.billing_cycle,
	COALESCE(c.billing_timing, '') AS billing_timing,
	c.auto_renewal,
	c.renewal_period_months,
	c.reverse_billing,
	c.default_outsourcing_company_id,
	c.default_outsourcing_amount,
	c.outsourcing_amount_zero,
	c.status,
	c.notes,
	c.created_at,
	c.updated_at
`

// ListBillable returns the contracts eligible for automatic generation:
// active or period-undefined ones. Expired and terminated contracts never
// enter a billing run.
func (r *ContractRepository) ListBillable(ctx context.Context) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts c
		WHERE c.status IN ('active', 'period_undefined')
		ORDER BY c.created_at
	`).Scan(&contracts).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachCompanies(ctx, contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *ContractRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts c
		WHERE c.id = ?
	`, id).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	contracts := []model.Contract{contract}
	if err := r.attachCompanies(ctx, contracts); err != nil {
		return nil, err
	}
	return &contracts[0], nil
}

func (r *ContractRepository) attachCompanies(ctx context.Context, contracts []model.Contract) error {
	if len(contracts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(contracts))
	for _, c := range contracts {
		ids = append(ids, c.CompanyID)
	}

	var companies []model.Company
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, code, name, company_type, warehouse_code, is_active, created_at, updated_at
		FROM companies
		WHERE id = ANY(?)
	`, ids).Scan(&companies).Error
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]model.Company, len(companies))
	for _, company := range companies {
		byID[company.ID] = company
	}
	for i := range contracts {
		contracts[i].Company = byID[contracts[i].CompanyID]
	}
	return nil
}

// ListCompanies returns companies keyed by ID.
func (r *ContractRepository) ListCompanies(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Company, error) {
	result := make(map[uuid.UUID]model.Company)
	if len(ids) == 0 {
		return result, nil
	}

	var companies []model.Company
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, code, name, company_type, warehouse_code, is_active, created_at, updated_at
		FROM companies
		WHERE id = ANY(?)
	`, ids).Scan(&companies).Error
	if err != nil {
		return nil, err
	}
	for _, company := range companies {
		result[company.ID] = company
	}
	return result, nil
}

// ListHistories returns each contract's amendment log ordered by effective
// date, which the engine relies on for as-of resolution.
func (r *ContractRepository) ListHistories(ctx context.Context, contractIDs []uuid.UUID) (map[uuid.UUID][]model.ContractHistory, error) {
	result := make(map[uuid.UUID][]model.ContractHistory)
	if len(contractIDs) == 0 {
		return result, nil
	}

	var histories []model.ContractHistory
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, change_type, effective_date, old_amount, new_amount, reason, created_by, created_at
		FROM contract_history
		WHERE contract_id = ANY(?)
		ORDER BY contract_id, effective_date ASC, created_at ASC
	`, contractIDs).Scan(&histories).Error
	if err != nil {
		return nil, err
	}

	for _, h := range histories {
		result[h.ContractID] = append(result[h.ContractID], h)
	}
	return result, nil
}

// AppendHistory writes one amendment entry. The log is append-only; there is
// deliberately no update or delete counterpart.
func (r *ContractRepository) AppendHistory(ctx context.Context, h model.ContractHistory) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO contract_history (contract_id, change_type, effective_date, old_amount, new_amount, reason, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, h.ContractID, h.ChangeType, h.EffectiveDate, h.OldAmount, h.NewAmount, h.Reason, h.CreatedBy).Error
}

// ListCompanyRules returns active policy rules keyed by company.
func (r *ContractRepository) ListCompanyRules(ctx context.Context) (map[uuid.UUID]model.CompanyRule, error) {
	var rules []model.CompanyRule
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, company_id, requires_po, requires_attachment, attachment_note, is_active, created_at, updated_at
		FROM company_rules
		WHERE is_active
	`).Scan(&rules).Error
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]model.CompanyRule, len(rules))
	for _, rule := range rules {
		result[rule.CompanyID] = rule
	}
	return result, nil
}

// ListCodeMappings returns warehouse-code labels for reporting.
func (r *ContractRepository) ListCodeMappings(ctx context.Context) (map[string]string, error) {
	var mappings []model.CodeMapping
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, code, name, category, is_active, created_at, updated_at
		FROM code_mappings
		WHERE is_active
	`).Scan(&mappings).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(mappings))
	for _, m := range mappings {
		result[m.Code] = m.Name
	}
	return result, nil
}
