package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-ledger/internal/application/dto"
	"github.com/jhoicas/almacen-ledger/internal/domain"
	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// RecordFromRequest adapta el request HTTP al caso de uso Record(ctx, RecordMovementInput).
func (uc *RecordMovementUseCase) RecordFromRequest(ctx context.Context, ownerID, userID string, in dto.RegisterMovementRequest) (*entity.Movement, error) {
	var effective time.Time
	if in.EffectiveDate != "" {
		d, err := time.Parse(dateLayout, in.EffectiveDate)
		if err != nil {
			return nil, &domain.ValidationError{Field: "effective_date", Reason: "formato esperado AAAA-MM-DD"}
		}
		effective = d
	}
	return uc.Record(ctx, RecordMovementInput{
		OwnerID:       ownerID,
		UserID:        userID,
		MaterialID:    in.MaterialID,
		Type:          in.Type,
		Quantity:      in.Quantity,
		UnitPrice:     in.UnitPrice,
		IsReturn:      in.IsReturn,
		EffectiveDate: effective,
		CostCenterID:  in.CostCenterID,
		SupplierID:    in.SupplierID,
		EmployeeID:    in.EmployeeID,
		ThirdPartyID:  in.ThirdPartyID,
		Notes:         in.Notes,
	})
}

// ToMovementResponse convierte el hecho persistido al DTO de respuesta.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		MaterialID:    m.MaterialID,
		Type:          m.Type,
		IsReturn:      m.IsReturn,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		EffectiveDate: m.EffectiveDate.Format(dateLayout),
		CreatedAt:     m.CreatedAt,
		SupplierID:    m.SupplierID,
		EmployeeID:    m.EmployeeID,
		ThirdPartyID:  m.ThirdPartyID,
		CostCenterID:  m.CostCenterID,
		Notes:         m.Notes,
	}
}

// ToReportDTO convierte el reporte de reconciliación.
func (r *ReconciliationReport) ToReportDTO() dto.ReconciliationReportDTO {
	out := dto.ReconciliationReportDTO{
		OwnerID:     r.OwnerID,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Checked:     r.Checked,
		Corrected:   r.Corrected,
		Failed:      r.Failed,
		Corrections: make([]dto.StockCorrectionDTO, 0, len(r.Corrections)),
		Unchanged:   make([]dto.StockCheckDTO, 0, len(r.Unchanged)),
		Failures:    make([]dto.ReconciliationFailureDTO, 0, len(r.Failures)),
	}
	for _, c := range r.Corrections {
		out.Corrections = append(out.Corrections, dto.StockCorrectionDTO(c))
	}
	for _, u := range r.Unchanged {
		out.Unchanged = append(out.Unchanged, dto.StockCheckDTO(u))
	}
	for _, f := range r.Failures {
		out.Failures = append(out.Failures, dto.ReconciliationFailureDTO{MaterialID: f.MaterialID, Name: f.Name, Error: f.Err.Error()})
	}
	return out
}

// ToValuationDTO convierte el reporte de valorización.
func (r *ValuationReport) ToValuationDTO() dto.FinancialValuationDTO {
	rows := make([]dto.ValuationRowDTO, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, dto.ValuationRowDTO(row))
	}
	return dto.FinancialValuationDTO{
		Policy:     r.Policy,
		Rows:       rows,
		TotalValue: r.TotalValue,
		TotalItems: r.TotalItems,
	}
}
