package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-ledger/internal/application/dto"
	"github.com/jhoicas/almacen-ledger/pkg/validator"
)

func TestValidate_RequestValido(t *testing.T) {
	req := dto.RegisterMovementRequest{MaterialID: "m1", Type: "ENTRY", Quantity: 3, EffectiveDate: "2026-10-18"}

	assert.NoError(t, validator.Validate(&req))
}

func TestFormatValidationErrors_UsaNombresJSON(t *testing.T) {
	req := dto.RegisterMovementRequest{Type: "TRANSFER", EffectiveDate: "18/10/2026"}

	err := validator.Validate(&req)
	require.Error(t, err)
	fields := validator.FormatValidationErrors(err)

	assert.Equal(t, "campo obligatorio", fields["material_id"])
	assert.Equal(t, "debe ser uno de: ENTRY EXIT entry exit", fields["type"])
	assert.Equal(t, "formato de fecha esperado 2006-01-02", fields["effective_date"])
}

func TestFormatValidationErrors_ErrorAjeno(t *testing.T) {
	assert.Empty(t, validator.FormatValidationErrors(assert.AnError))
}
