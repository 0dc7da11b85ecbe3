// Package money handles amounts stored as integer cents.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrInvalidAmount = errors.New("invalid amount")

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Parse converts operator or CSV input into cents.
// Accepted forms: "1.234,56", "12,5", "12.50", "1234".
// When both separators are present the last one is the decimal separator.
func Parse(s string) (int64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "R$")
	clean = strings.TrimSpace(clean)

	if clean == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	comma := strings.LastIndex(clean, ",")
	dot := strings.LastIndex(clean, ".")

	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case comma >= 0:
		clean = strings.Replace(clean, ",", ".", 1)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// ParsePositive is Parse restricted to amounts greater than zero.
func ParsePositive(s string) (int64, error) {
	cents, err := Parse(s)
	if err != nil {
		return 0, err
	}

	if cents <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}

	return cents, nil
}

// Format renders cents as a pt-BR currency string, e.g. "R$ 1.234,56".
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return printer.Sprintf("%sR$ %d,%02d", sign, cents/100, cents%100)
}

// Decimal returns the plain "1234.56" representation used on the wire and in CSVs.
func Decimal(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
