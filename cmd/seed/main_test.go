package main

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_catalog/internal/pkg/validator"
)

func TestGenerateProducts(t *testing.T) {
	opts := options{
		count:      25,
		categories: []string{"Books", "Gadgets"},
		priceMin:   10,
		priceMax:   20,
	}

	products := generateProducts(gofakeit.New(42), opts)

	require.Len(t, products, 25)
	for _, p := range products {
		require.NoError(t, validator.Get().Struct(p))
		assert.Contains(t, opts.categories, p.Category)
		assert.True(t, p.Price.GreaterThanOrEqual(decimal.NewFromInt(10)), p.Price.String())
		assert.True(t, p.Price.LessThanOrEqual(decimal.NewFromInt(20)), p.Price.String())
		require.NotNil(t, p.Subcategory)
		if p.Category == "Gadgets" {
			assert.Equal(t, "Default", *p.Subcategory)
		} else {
			assert.Contains(t, subcategories["Books"], *p.Subcategory)
		}
	}
}

func TestSplitCategories(t *testing.T) {
	assert.Equal(t, []string{"Books", "Home & Garden"}, splitCategories(" Books , ,Home & Garden"))
	assert.Len(t, splitCategories(defaultCategories), 6)
}
