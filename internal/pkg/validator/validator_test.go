package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type priced struct {
	Price decimal.Decimal `validate:"gte=0"`
}

func TestGet_DecimalFields(t *testing.T) {
	assert.NoError(t, Get().Struct(priced{Price: decimal.RequireFromString("19.99")}))
	assert.NoError(t, Get().Struct(priced{Price: decimal.Zero}))
	assert.Error(t, Get().Struct(priced{Price: decimal.RequireFromString("-0.01")}))
}
