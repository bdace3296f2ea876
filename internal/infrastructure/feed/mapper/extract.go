package mapper

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

var maxRating = decimal.NewFromInt(5)

// ExtractPrice reads a permissive decimal amount such as "1.299,90 TL",
// "$12.50" or "1,299.90", rounded to catalog.PriceScale places. Anything
// unparsable yields zero; the result is never negative.
//
// When both separators appear, the last one is the decimal separator. When
// only one kind appears, a single occurrence is the decimal separator and a
// repeated one groups thousands.
func ExtractPrice(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return decimal.Zero
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(strings.Trim(s, "."))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d.Round(catalog.PriceScale)
}

// ExtractStock keeps only the digits of raw and parses them, so "12 adet"
// reads as 12. Anything else yields zero.
func ExtractStock(raw string) int {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

// ExtractRating reads a decimal rating clamped to [0, 5]
func ExtractRating(raw string) decimal.Decimal {
	r := ExtractPrice(raw)
	if r.GreaterThan(maxRating) {
		return maxRating
	}
	return r
}

// ParseQuantity reads the leading integer of a stock quantity, so "12 adet"
// reads as 12 and "2.0" as 2. Missing, invalid and negative values count as
// zero; values beyond int32 are clamped.
func ParseQuantity(raw string) int {
	s := strings.TrimSpace(raw)
	negative := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		negative = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || negative {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// EffectivePrice is the discounted price when positive, else the regular one
func EffectivePrice(discounted, regular decimal.Decimal) decimal.Decimal {
	if discounted.IsPositive() {
		return discounted
	}
	return regular
}
