package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/caixa/internal/money"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "BrazilianThousands", input: "1.234,56", want: 123456},
		{name: "CommaDecimal", input: "12,5", want: 1250},
		{name: "DotDecimal", input: "12.50", want: 1250},
		{name: "Integer", input: "100", want: 10000},
		{name: "CurrencyPrefix", input: "R$ 45,00", want: 4500},
		{name: "DotThousandsCommaLast", input: "1,234.56", want: 123456},
		{name: "Rounds", input: "0,005", want: 1},
		{name: "Negative", input: "-3,00", want: -300},
		{name: "Empty", input: "  ", wantErr: true},
		{name: "Garbage", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.Parse(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, money.ErrInvalidAmount)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePositive(t *testing.T) {
	_, err := money.ParsePositive("0")
	assert.ErrorIs(t, err, money.ErrInvalidAmount)

	got, err := money.ParsePositive("0,01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", money.Format(123456))
	assert.Equal(t, "R$ 0,05", money.Format(5))
	assert.Equal(t, "-R$ 3,00", money.Format(-300))
}

func TestDecimal(t *testing.T) {
	assert.Equal(t, "45.00", money.Decimal(4500))
	assert.Equal(t, "0.07", money.Decimal(7))
}
