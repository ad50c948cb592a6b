package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	currencyNoise = strings.NewReplacer("€", "", "$", "", "£", "", "EUR", "", "USD", "", "GBP", "", " ", "", " ", "")
	commaDecimal  = regexp.MustCompile(`,\d{1,2}$`)
	plainNumber   = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// NormalizeAmount parses a locale-formatted amount when the decimal separator is unknown.
// A comma followed by one or two trailing digits is a decimal comma and dots are thousands
// separators; otherwise commas are thousands separators. Parentheses or a leading or trailing minus mark a negative amount.
func NormalizeAmount(token string) (decimal.Decimal, error) {
	s, negative := splitSign(token)
	if commaDecimal.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	return finishAmount(token, s, negative)
}

// parseAmount parses an amount whose decimal separator is known from the dialect.
func parseAmount(token string, decimalSep byte) (decimal.Decimal, error) {
	s, negative := splitSign(token)
	if decimalSep == ',' {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	return finishAmount(token, s, negative)
}

func splitSign(token string) (string, bool) {
	s := strings.TrimSpace(token)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = currencyNoise.Replace(s)
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		negative = true
		s = s[:len(s)-1]
	}
	return s, negative
}

func finishAmount(token, s string, negative bool) (decimal.Decimal, error) {
	if !plainNumber.MatchString(s) {
		return decimal.Zero, fmt.Errorf("invalid amount %q", token)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", token, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
