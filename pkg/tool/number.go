package tool

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// FormatFixed renders x with exactly digits fractional digits. It works on the
// exact binary value of x and rounds exact halves away from zero, so 0.125
// renders as "0.13" while 1.005 (stored as 1.00499...) renders as "1.00".
func FormatFixed(x float64, digits int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	if digits < 0 {
		digits = 0
	}
	neg := x < 0
	if neg {
		x = -x
	}
	r := new(big.Rat).SetFloat64(x)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))

	q, m := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	if new(big.Int).Lsh(m, 1).Cmp(r.Denom()) >= 0 {
		q.Add(q, big.NewInt(1))
	}

	s := q.String()
	if digits > 0 {
		if len(s) <= digits {
			s = strings.Repeat("0", digits-len(s)+1) + s
		}
		s = s[:len(s)-digits] + "." + s[len(s)-digits:]
	}
	if neg && q.Sign() != 0 {
		s = "-" + s
	}
	return s
}

// Round2 rounds half up to two decimals.
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

// RoundInt rounds half up to the nearest integer.
func RoundInt(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

// Percent returns part/whole*100 rounded to two decimals, or 0 when whole is 0.
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return Round2(part / whole * 100)
}
