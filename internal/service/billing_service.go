package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jaemin/maintbilling/internal/billing"
	"github.com/jaemin/maintbilling/internal/calc"
	"github.com/jaemin/maintbilling/internal/model"
	"github.com/jaemin/maintbilling/internal/repository"
	"github.com/jaemin/maintbilling/internal/schedule"
)

type ExcelGenerator interface {
	Generate(export model.BillingExport) ([]byte, error)
}

type ExcelImporter interface {
	Parse(data []byte) (model.ImportResult, error)
}

type PDFGenerator interface {
	Generate(statement model.BillingStatement) ([]byte, error)
}

type BillingService struct {
	contracts *repository.ContractRepository
	billings  *repository.BillingRepository
	engine    *billing.Engine
	policy    billing.Policy
	excel     ExcelGenerator
	importer  ExcelImporter
	pdf       PDFGenerator
	log       zerolog.Logger
}

func NewBillingService(
	contracts *repository.ContractRepository,
	billings *repository.BillingRepository,
	engine *billing.Engine,
	policy billing.Policy,
	excel ExcelGenerator,
	importer ExcelImporter,
	pdf PDFGenerator,
	log zerolog.Logger,
) *BillingService {
	return &BillingService{
		contracts: contracts,
		billings:  billings,
		engine:    engine,
		policy:    policy,
		excel:     excel,
		importer:  importer,
		pdf:       pdf,
		log:       log,
	}
}

// WarningReport is one validation finding annotated with the contract it
// belongs to.
type WarningReport struct {
	BillingID   *uuid.UUID    `json:"billing_id,omitempty"`
	ContractID  uuid.UUID     `json:"contract_id"`
	CompanyName string        `json:"company_name,omitempty"`
	Warning     model.Warning `json:"warning"`
}

type GenerateResult struct {
	Month    schedule.Month            `json:"month"`
	Billings []model.MonthlyBilling    `json:"billings"`
	Warnings []WarningReport           `json:"warnings"`
	Failures []billing.ContractFailure `json:"failures"`
}

// GenerateMonth runs a full generation pass for the target month. With
// persist unset the result is a dry-run preview; with it set each candidate
// is written under the repository's check-and-set, and conflicts come back as
// per-contract failures rather than aborting the batch.
func (s *BillingService) GenerateMonth(ctx context.Context, month schedule.Month, persist bool) (*GenerateResult, error) {
	if month.IsZero() {
		return nil, fmt.Errorf("%w: month is required", ErrInvalidInput)
	}

	inputs, err := s.loadInputs(ctx, month)
	if err != nil {
		return nil, err
	}

	run := s.engine.GenerateForMonth(month, *inputs)

	result := &GenerateResult{Month: month, Failures: run.Failures}
	for _, generated := range run.Generated {
		record := generated.Billing

		if persist {
			saved, err := s.billings.Create(ctx, record, generated.SupersededID)
			if err != nil {
				if errors.Is(err, repository.ErrBillingFinalized) {
					err = ErrAlreadyFinalized
				}
				result.Failures = append(result.Failures, billing.ContractFailure{
					ContractID:  generated.Contract.ID,
					CompanyName: generated.Contract.Company.Name,
					Err:         err,
					Message:     err.Error(),
				})
				continue
			}
			record = *saved
		}

		result.Billings = append(result.Billings, record)
		for _, w := range generated.Warnings {
			report := WarningReport{
				ContractID:  generated.Contract.ID,
				CompanyName: generated.Contract.Company.Name,
				Warning:     w,
			}
			if persist {
				id := record.ID
				report.BillingID = &id
			}
			result.Warnings = append(result.Warnings, report)
		}
	}

	s.log.Info().
		Str("month", month.String()).
		Bool("persist", persist).
		Int("generated", len(result.Billings)).
		Int("failures", len(result.Failures)).
		Msg("billing generation run finished")
	return result, nil
}

func (s *BillingService) loadInputs(ctx context.Context, month schedule.Month) (*billing.Inputs, error) {
	contracts, err := s.contracts.ListBillable(ctx)
	if err != nil {
		return nil, err
	}

	contractIDs := make([]uuid.UUID, 0, len(contracts))
	for _, c := range contracts {
		contractIDs = append(contractIDs, c.ID)
	}
	histories, err := s.contracts.ListHistories(ctx, contractIDs)
	if err != nil {
		return nil, err
	}

	entries, err := s.billings.ListEntriesForMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	existing, err := s.billings.ListForMonths(ctx, []schedule.Month{month.Previous(), month})
	if err != nil {
		return nil, err
	}

	// Issue dates land inside the month and roll backward a bounded number
	// of days, so the holiday window starts just ahead of it.
	holidayFrom := month.First().AddDate(0, 0, -(s.policy.BusinessDaySearchLimit + 1))
	holidays, err := s.billings.ListHolidays(ctx, holidayFrom, month.Last())
	if err != nil {
		return nil, err
	}

	rules, err := s.contracts.ListCompanyRules(ctx)
	if err != nil {
		return nil, err
	}

	return &billing.Inputs{
		Contracts:          contracts,
		Histories:          histories,
		OutsourcingEntries: entries,
		Existing:           existing,
		Holidays:           holidays,
		CompanyRules:       rules,
	}, nil
}

// ListMonth returns the month's non-cancelled billing records.
func (s *BillingService) ListMonth(ctx context.Context, month schedule.Month) ([]model.MonthlyBilling, error) {
	return s.billings.ListForMonths(ctx, []schedule.Month{month})
}

func (s *BillingService) Confirm(ctx context.Context, id uuid.UUID) (*model.MonthlyBilling, error) {
	updated, err := s.billings.Confirm(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no draft billing %s", ErrNotFound, id)
		}
		return nil, err
	}
	return updated, nil
}

func (s *BillingService) Lock(ctx context.Context, id uuid.UUID, lockedBy string) (*model.MonthlyBilling, error) {
	updated, err := s.billings.Lock(ctx, id, lockedBy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no open billing %s", ErrNotFound, id)
		}
		return nil, err
	}
	return updated, nil
}

func (s *BillingService) Cancel(ctx context.Context, id uuid.UUID) error {
	err := s.billings.Cancel(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: no open billing %s", ErrNotFound, id)
	}
	return err
}

// OverrideInput is an explicit user override of computed fields. Amount
// overrides recompute VAT, total and profit; every override is appended to
// the contract's change log.
type OverrideInput struct {
	BillingID   uuid.UUID
	Amount      *decimal.Decimal
	SalesDate   *time.Time
	RequestDate *time.Time
	Memo        *string
	AllowLocked bool
	By          string
}

func (s *BillingService) Override(ctx context.Context, input OverrideInput) (*model.MonthlyBilling, error) {
	record, err := s.billings.GetByID(ctx, input.BillingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: billing %s", ErrNotFound, input.BillingID)
		}
		return nil, err
	}
	if record.Status == model.BillingStatusLocked && !input.AllowLocked {
		return nil, ErrBillingLocked
	}
	if record.Status == model.BillingStatusCancelled {
		return nil, fmt.Errorf("%w: billing %s is cancelled", ErrInvalidInput, input.BillingID)
	}

	provenance := record.Provenance
	if provenance == nil {
		provenance = model.ComputedProvenance()
	}

	update := repository.OverrideUpdate{
		OverrideAmount: record.OverrideAmount,
		FinalAmount:    record.FinalAmount,
		VATAmount:      record.VATAmount,
		TotalAmount:    record.TotalAmount,
		Profit:         record.Profit,
		SalesDate:      input.SalesDate,
		RequestDate:    input.RequestDate,
		Memo:           input.Memo,
		AllowLocked:    input.AllowLocked,
	}

	if input.Amount != nil {
		update.OverrideAmount = decimal.NewNullDecimal(*input.Amount)
		update.FinalAmount = *input.Amount
		update.VATAmount = calc.VAT(*input.Amount, s.policy.VATRate)
		update.TotalAmount = input.Amount.Add(update.VATAmount)
		update.Profit = calc.Profit(*input.Amount, record.OutsourcingAmount)
		provenance[model.FieldAmount] = model.ProvenanceOverridden
		provenance[model.FieldVAT] = model.ProvenanceOverridden
		provenance[model.FieldProfit] = model.ProvenanceOverridden
	}
	if input.SalesDate != nil || input.RequestDate != nil {
		provenance[model.FieldIssueDate] = model.ProvenanceOverridden
	}
	update.Provenance = provenance

	updated, err := s.billings.ApplyOverride(ctx, input.BillingID, update)
	if err != nil {
		if errors.Is(err, repository.ErrBillingLocked) {
			return nil, ErrBillingLocked
		}
		return nil, err
	}

	if input.Amount != nil {
		reason := fmt.Sprintf("billing %s amount override for %s", input.BillingID, record.TargetMonth)
		by := input.By
		audit := model.ContractHistory{
			ContractID:    record.ContractID,
			ChangeType:    model.ChangeTypeOverride,
			EffectiveDate: record.TargetMonth.First(),
			OldAmount:     decimal.NewNullDecimal(record.FinalAmount),
			NewAmount:     decimal.NewNullDecimal(*input.Amount),
			Reason:        &reason,
			CreatedBy:     &by,
		}
		if err := s.contracts.AppendHistory(ctx, audit); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// WarningsForMonth collects the stored validation findings of the month's
// records.
func (s *BillingService) WarningsForMonth(ctx context.Context, month schedule.Month) ([]WarningReport, error) {
	rows, err := s.monthRows(ctx, month)
	if err != nil {
		return nil, err
	}

	var reports []WarningReport
	for _, row := range rows {
		if !row.Billing.HasWarnings {
			continue
		}
		for _, w := range row.Billing.Warnings {
			id := row.Billing.ID
			reports = append(reports, WarningReport{
				BillingID:   &id,
				ContractID:  row.Billing.ContractID,
				CompanyName: row.Company.Name,
				Warning:     w,
			})
		}
	}
	return reports, nil
}

// MissingContract flags a contract that should bill this month but has no
// record yet.
type MissingContract struct {
	ContractID  uuid.UUID `json:"contract_id"`
	CompanyName string    `json:"company_name"`
	ItemName    string    `json:"item_name"`
}

// MissingForMonth returns billable contracts with no non-cancelled record for
// the month. This is the billing-miss safety net.
func (s *BillingService) MissingForMonth(ctx context.Context, month schedule.Month) ([]MissingContract, error) {
	contracts, err := s.contracts.ListBillable(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.billings.ListForMonths(ctx, []schedule.Month{month})
	if err != nil {
		return nil, err
	}

	billed := make(map[uuid.UUID]bool, len(existing))
	for _, b := range existing {
		billed[b.ContractID] = true
	}

	var missing []MissingContract
	for _, contract := range contracts {
		if billed[contract.ID] {
			continue
		}
		timing := schedule.ParseTiming(contract.BillingTiming)
		if !schedule.IsBillingMonth(contract.BillingCycle, month.Month(), timing.Months) {
			continue
		}
		if !contract.PeriodStatusAt(month).Active {
			continue
		}
		missing = append(missing, MissingContract{
			ContractID:  contract.ID,
			CompanyName: contract.Company.Name,
			ItemName:    contract.ItemName,
		})
	}
	return missing, nil
}

type SummaryTotals struct {
	Billing     decimal.Decimal `json:"billing"`
	Outsourcing decimal.Decimal `json:"outsourcing"`
	Profit      decimal.Decimal `json:"profit"`
	Count       int             `json:"count"`
}

func (t *SummaryTotals) add(b model.MonthlyBilling) {
	t.Billing = t.Billing.Add(b.FinalAmount)
	t.Outsourcing = t.Outsourcing.Add(b.OutsourcingAmount)
	t.Profit = t.Profit.Add(b.Profit)
	t.Count++
}

type WarehouseSummary struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	SummaryTotals
}

type MonthlySummary struct {
	Month schedule.Month `json:"month"`
	SummaryTotals
	ByWarehouse map[string]*WarehouseSummary `json:"by_warehouse"`
}

// MonthlySummary aggregates the month's billed, outsourcing and profit
// totals, grouped by warehouse code with labels from the code mappings.
func (s *BillingService) MonthlySummary(ctx context.Context, month schedule.Month) (*MonthlySummary, error) {
	rows, err := s.monthRows(ctx, month)
	if err != nil {
		return nil, err
	}
	labels, err := s.contracts.ListCodeMappings(ctx)
	if err != nil {
		return nil, err
	}

	summary := &MonthlySummary{Month: month, ByWarehouse: make(map[string]*WarehouseSummary)}
	for _, row := range rows {
		summary.add(row.Billing)

		code := "unknown"
		if row.Company.WarehouseCode != nil && *row.Company.WarehouseCode != "" {
			code = *row.Company.WarehouseCode
		}
		wh, ok := summary.ByWarehouse[code]
		if !ok {
			wh = &WarehouseSummary{Code: code, Label: labels[code]}
			summary.ByWarehouse[code] = wh
		}
		wh.add(row.Billing)
	}
	return summary, nil
}

type YearlySummary struct {
	Year int `json:"year"`
	SummaryTotals
	ByMonth map[string]*SummaryTotals `json:"by_month"`
}

func (s *BillingService) YearlySummary(ctx context.Context, year int) (*YearlySummary, error) {
	from := schedule.NewMonth(year, time.January)
	to := from.AddMonths(12)
	records, err := s.billings.ListForRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &YearlySummary{Year: year, ByMonth: make(map[string]*SummaryTotals)}
	for _, record := range records {
		summary.add(record)
		key := record.TargetMonth.String()
		monthTotals, ok := summary.ByMonth[key]
		if !ok {
			monthTotals = &SummaryTotals{}
			summary.ByMonth[key] = monthTotals
		}
		monthTotals.add(record)
	}
	return summary, nil
}

type FileResult struct {
	FileName string
	Content  []byte
}

// ExportMonth renders the month's billings into the spreadsheet template.
func (s *BillingService) ExportMonth(ctx context.Context, month schedule.Month) (*FileResult, error) {
	rows, err := s.monthRows(ctx, month)
	if err != nil {
		return nil, err
	}

	export := model.BillingExport{Month: month}
	for _, row := range rows {
		exportRow := model.BillingExportRow{
			CompanyCode:       row.Company.Code,
			CompanyName:       row.Company.Name,
			ItemName:          row.Contract.ItemName,
			ContractStart:     row.Contract.ContractStart,
			ContractEnd:       row.Contract.ContractEnd,
			MonthlyAmount:     row.Contract.MonthlyAmount,
			BillingAmount:     row.Billing.FinalAmount,
			VATAmount:         row.Billing.VATAmount,
			TotalAmount:       row.Billing.TotalAmount,
			OutsourcingAmount: row.Billing.OutsourcingAmount,
			Profit:            row.Billing.Profit,
			BillingTiming:     row.Contract.BillingTiming,
			SalesDate:         row.Billing.SalesDate,
			RequestDate:       row.Billing.RequestDate,
			AutoRenewal:       row.Contract.AutoRenewal,
		}
		if row.Company.WarehouseCode != nil {
			exportRow.WarehouseCode = *row.Company.WarehouseCode
		}
		if row.OutsourcingCompany != nil {
			exportRow.OutsourcingCompany = row.OutsourcingCompany.Name
		}
		if row.Contract.Notes != nil {
			exportRow.Notes = *row.Contract.Notes
		}
		if row.Billing.Memo != nil {
			if exportRow.Notes != "" {
				exportRow.Notes += "; "
			}
			exportRow.Notes += *row.Billing.Memo
		}
		export.Rows = append(export.Rows, exportRow)
		export.TotalBilling = export.TotalBilling.Add(row.Billing.FinalAmount)
		export.TotalOutsourcing = export.TotalOutsourcing.Add(row.Billing.OutsourcingAmount)
		export.TotalProfit = export.TotalProfit.Add(row.Billing.Profit)
	}

	content, err := s.excel.Generate(export)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		FileName: fmt.Sprintf("billing-%s.xlsx", month),
		Content:  content,
	}, nil
}

// ImportWorkbook parses an uploaded template workbook and returns the parsed
// records with per-row errors. Applying the rows is a separate, reviewed
// step.
func (s *BillingService) ImportWorkbook(_ context.Context, data []byte) (*model.ImportResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	result, err := s.importer.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &result, nil
}

// Statement renders a printable statement for one billing record.
func (s *BillingService) Statement(ctx context.Context, id uuid.UUID) (*FileResult, error) {
	record, err := s.billings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: billing %s", ErrNotFound, id)
		}
		return nil, err
	}
	contract, err := s.contracts.GetContract(ctx, record.ContractID)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.Generate(model.BillingStatement{
		Billing:  *record,
		Contract: *contract,
		Company:  contract.Company,
	})
	if err != nil {
		return nil, err
	}

	name := sanitizeFileName(contract.Company.Name)
	if name == "" {
		name = contract.CompanyID.String()
	}
	return &FileResult{
		FileName: fmt.Sprintf("statement-%s-%s.pdf", name, record.TargetMonth),
		Content:  content,
	}, nil
}

type billingRow struct {
	Billing            model.MonthlyBilling
	Contract           model.Contract
	Company            model.Company
	OutsourcingCompany *model.Company
}

func (s *BillingService) monthRows(ctx context.Context, month schedule.Month) ([]billingRow, error) {
	records, err := s.billings.ListForMonths(ctx, []schedule.Month{month})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	contracts := make(map[uuid.UUID]model.Contract)
	var companyIDs []uuid.UUID
	for _, record := range records {
		if _, ok := contracts[record.ContractID]; ok {
			continue
		}
		contract, err := s.contracts.GetContract(ctx, record.ContractID)
		if err != nil {
			return nil, err
		}
		contracts[record.ContractID] = *contract
		if contract.DefaultOutsourcingCompanyID != nil {
			companyIDs = append(companyIDs, *contract.DefaultOutsourcingCompanyID)
		}
	}
	outsourcingCompanies, err := s.contracts.ListCompanies(ctx, companyIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]billingRow, 0, len(records))
	for _, record := range records {
		contract := contracts[record.ContractID]
		row := billingRow{Billing: record, Contract: contract, Company: contract.Company}
		if contract.DefaultOutsourcingCompanyID != nil {
			if company, ok := outsourcingCompanies[*contract.DefaultOutsourcingCompanyID]; ok {
				row.OutsourcingCompany = &company
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
