package billing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Every monetary value inside the engine is an integer amount of
// centavos. Parsing from user input and formatting back to display
// strings happens only here.

var errMalformedAmount = errors.New("malformed amount")

// ParseAmount converts user-entered currency text into centavos.
// Accepts pt-BR formatting ("1.234,56", "R$ 80,00") as well as plain
// decimal input ("1234.56", "80").
func ParseAmount(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, errMalformedAmount
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	intPart := s
	fracPart := ""

	switch {
	case strings.Contains(s, ","):
		// Comma is the decimal separator, dots are thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return 0, errMalformedAmount
		}
		intPart, fracPart = parts[0], parts[1]
	case strings.Contains(s, "."):
		lastDot := strings.LastIndex(s, ".")
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			// "1.234" or "1.234.567" -> dots are thousands separators.
			intPart = strings.ReplaceAll(s, ".", "")
			fracPart = ""
		} else {
			intPart, fracPart = s[:lastDot], s[lastDot+1:]
		}
	}

	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 2 {
		return 0, errMalformedAmount
	}
	// Pad "5" -> "50" so one decimal digit still means centavos*10.
	for len(fracPart) < 2 {
		fracPart += "0"
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, errMalformedAmount
	}
	cents, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, errMalformedAmount
	}

	total := units*100 + cents
	if negative {
		total = -total
	}
	return total, nil
}

// ParsePercent converts user-entered percentage text ("10", "7,5", "12.5%")
// into a float rate.
func ParsePercent(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, errMalformedAmount
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errMalformedAmount
	}
	// ParseFloat also accepts "nan" and "inf", neither of which is a rate.
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errMalformedAmount
	}
	return value, nil
}

// FormatBRL formats centavos as a pt-BR currency string.
// Example: 123456 -> "R$ 1.234,56"
func FormatBRL(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	units := cents / 100
	frac := cents % 100

	digits := strconv.FormatInt(units, 10)
	var groups []string
	for i := len(digits); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{digits[start:i]}, groups...)
	}

	return fmt.Sprintf("%sR$ %s,%02d", sign, strings.Join(groups, "."), frac)
}
