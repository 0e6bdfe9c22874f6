package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid inputs", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), USD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, USD, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})

	t.Run("from string", func(t *testing.T) {
		m, err := NewMoneyFromString("12.3456", EUR)
		require.NoError(t, err)
		assert.Equal(t, "12.3456 EUR", m.String())
	})

	t.Run("rejects malformed string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", EUR)
		assert.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	a, _ := NewMoneyFromString("100.50", USD)
	b, _ := NewMoneyFromString("25.25", USD)
	other, _ := NewMoneyFromString("10", EUR)

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "125.7500 USD", sum.String())
	})

	t.Run("sub", func(t *testing.T) {
		diff, err := a.Sub(b)
		require.NoError(t, err)
		assert.Equal(t, "75.2500 USD", diff.String())
	})

	t.Run("sub below zero is a loss not an error", func(t *testing.T) {
		diff, err := b.Sub(a)
		require.NoError(t, err)
		assert.True(t, diff.IsNegative())
	})

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := a.Add(other)
		assert.Error(t, err)
		_, err = a.Sub(other)
		assert.Error(t, err)
	})

	t.Run("neg and abs", func(t *testing.T) {
		n := a.Neg()
		assert.True(t, n.IsNegative())
		assert.True(t, n.Abs().Equal(a))
	})
}

func TestMoneyJSON(t *testing.T) {
	m, _ := NewMoneyFromString("42.5", GBP)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equal(back))
}
