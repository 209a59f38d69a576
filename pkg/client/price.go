package client

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidPrice is returned by ParsePrice for text that is not an amount.
var ErrInvalidPrice = errors.New("client: invalid price")

// ParsePrice reads currency text such as "R$ 1.234,56", "19,9" or "19.9".
// With a comma present, dots are thousands separators; otherwise a single dot is the radix.
func ParsePrice(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Decimal{}, ErrInvalidPrice
	}

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	return d, nil
}

// FormatPrice renders v with two decimals and a comma radix: 19.9 -> "19,90".
func FormatPrice(v float64) string {
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(2), ".", ",", 1)
}

// FormatBRL prefixes FormatPrice with the real sign: "R$ 19,90".
func FormatBRL(v float64) string {
	return "R$ " + FormatPrice(v)
}
