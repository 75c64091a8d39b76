package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entryRequest struct {
	Amount decimal.Decimal `validate:"gt=0"`
	Time   string          `validate:"omitempty,clock"`
	Type   string          `validate:"required,oneof=IN OUT"`
}

func TestCheck_Valid(t *testing.T) {
	err := Check(&entryRequest{Amount: decimal.NewFromInt(10), Time: "23:59", Type: "IN"})
	assert.NoError(t, err)
}

func TestCheck_AmountMustBePositive(t *testing.T) {
	for _, amount := range []int64{0, -5} {
		errs := ValidateStruct(&entryRequest{Amount: decimal.NewFromInt(amount), Type: "OUT"})
		require.Len(t, errs, 1)
		assert.Equal(t, "gt", errs[0].Tag)
	}
}

func TestCheck_ClockFormat(t *testing.T) {
	for _, v := range []string{"24:00", "9:30", "10:60", "noon"} {
		err := Check(&entryRequest{Amount: decimal.NewFromInt(1), Time: v, Type: "IN"})
		assert.Error(t, err, v)
	}
}

func TestCheck_FirstFailureMessage(t *testing.T) {
	err := Check(&entryRequest{Amount: decimal.NewFromInt(1), Type: "SIDEWAYS"})
	require.Error(t, err)
	assert.Equal(t, "Validation failed: Field 'entryRequest.Type' failed on tag 'oneof'", err.Error())
}
