package dataset

import (
	"errors"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// decimalLiteral matches the decimal spellings a loose numeric cast accepts.
// Digit separators and the Go-only inf/nan spellings are left out.
var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ToNumber converts a cell value to float64 the way a loose numeric cast
// does: nil, blank strings and false are 0, true is 1, unparseable values are
// NaN. Strings also accept 0x/0o/0b integers and the exact word Infinity.
func ToNumber(v any) float64 {
	if s, ok := v.(string); ok {
		return stringToNumber(s)
	}
	n, err := cast.ToFloat64E(v)
	if err != nil {
		return math.NaN()
	}
	return n
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return prefixedInteger(s[2:], base)
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return n
}

// prefixedInteger parses unsigned digits in base, rounding values past
// uint64 to the nearest float64.
func prefixedInteger(digits string, base int) float64 {
	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return math.NaN()
	}
	if u, err := strconv.ParseUint(digits, base, 64); err == nil {
		return float64(u)
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(b).Float64()
	return f
}
