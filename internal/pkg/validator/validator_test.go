package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addLineInput struct {
	ProductID string `validate:"required"`
	Quantity  int    `validate:"required,gte=1"`
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(addLineInput{ProductID: "prod-1", Quantity: 2}))
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(addLineInput{Quantity: 1})

	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	fields := vErr.Fields()
	assert.Equal(t, "is required", fields["ProductID"])
}

func TestValidate_RangeViolation(t *testing.T) {
	err := Validate(addLineInput{ProductID: "prod-1", Quantity: -2})

	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "Quantity")
}

func TestValidate_LenTag(t *testing.T) {
	type currencyInput struct {
		Currency string `validate:"omitempty,len=3"`
	}

	assert.NoError(t, Validate(currencyInput{}))
	assert.NoError(t, Validate(currencyInput{Currency: "USD"}))

	err := Validate(currencyInput{Currency: "DOLLARS"})
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "must have length 3", vErr.Fields()["Currency"])
}
