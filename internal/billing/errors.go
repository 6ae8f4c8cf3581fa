package billing

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyFinalized means a confirmed or locked record already exists
	// for the contract and month. Regeneration over a finalized record must
	// go through the explicit override path, never an implicit overwrite.
	ErrAlreadyFinalized = errors.New("confirmed or locked billing already exists for this month")
)

// StructuralError marks conditions that risk a missed or duplicated billing
// (finalized duplicate, malformed amendment log, business-day search
// exhausted). It is always surfaced to the caller and never recovered
// silently.
type StructuralError struct {
	Err error
}

func (e *StructuralError) Error() string { return "structural: " + e.Err.Error() }
func (e *StructuralError) Unwrap() error { return e.Err }

// CalculationError marks an input that cannot be computed (invalid cycle,
// non-positive coverage). It is fatal for the one contract only; the batch
// continues.
type CalculationError struct {
	Err error
}

func (e *CalculationError) Error() string { return "calculation: " + e.Err.Error() }
func (e *CalculationError) Unwrap() error { return e.Err }

// ContractFailure records why one contract's generation failed while the rest
// of the batch proceeded.
type ContractFailure struct {
	ContractID  uuid.UUID `json:"contract_id"`
	CompanyName string    `json:"company_name,omitempty"`
	Err         error     `json:"-"`
	Message     string    `json:"error"`
}

func newFailure(contractID uuid.UUID, companyName string, err error) ContractFailure {
	return ContractFailure{
		ContractID:  contractID,
		CompanyName: companyName,
		Err:         err,
		Message:     err.Error(),
	}
}

func structural(format string, args ...interface{}) error {
	return &StructuralError{Err: fmt.Errorf(format, args...)}
}

func calculation(err error) error {
	return &CalculationError{Err: err}
}
