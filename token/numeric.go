package token

import (
	"math"
	"math/big"

	"github.com/mayhemheroes/asteria/errs"
)

// numeralKind distinguishes the two literal shapes the scanner can produce.
type numeralKind int

const (
	numInteger numeralKind = iota
	numReal
	numIntegerBoundary // exactly 2^63: valid only if sign-merged with a preceding "-"
)

type numeral struct {
	kind      numeralKind
	intValue  int64
	realValue float64
	length    uint // bytes consumed from the input
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// scanDigits consumes digits of the given radix (tolerating `-separators)
// starting at s[0], returning the accumulated digit string (separators
// stripped) and the number of source bytes consumed.
func scanDigits(s string, radix int) (digits string, n uint) {
	buf := make([]byte, 0, len(s))
	for n < uint(len(s)) {
		c := s[n]
		if c == '`' {
			n++
			continue
		}
		v := digitValue(c)
		if v < 0 || v >= radix {
			break
		}
		buf = append(buf, c)
		n++
	}
	return string(buf), n
}

// readNumericLiteral scans a numeric literal starting at s[0] (s[0] is a
// digit). integerAsReal forces every literal without an explicit radix
// distinction to be treated as real per the parser option of the same name.
func readNumericLiteral(s string, integerAsReal bool) (*numeral, *lexError) {
	radix := 10
	pos := uint(0)

	if len(s) >= 2 && s[0] == '0' && (s[1] == 'b' || s[1] == 'B') {
		radix = 2
		pos = 2
	} else if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		radix = 16
		pos = 2
	}

	intDigits, n := scanDigits(s[pos:], radix)
	pos += n
	if intDigits == "" && radix != 10 {
		return nil, &lexError{code: errs.NumericLiteralIncomplete}
	}

	hasFrac := false
	fracDigits := ""
	if pos < uint(len(s)) && s[pos] == '.' {
		// Only consume the dot as a fraction separator if at least one
		// digit of the literal's radix follows; otherwise it's a separate
		// '.' punctuator (e.g. a method call on an int literal is not
		// legal Asteria, but `0 .foo` must not swallow the dot).
		rest := s[pos+1:]
		fd, fn := scanDigits(rest, radix)
		if fn > 0 {
			hasFrac = true
			fracDigits = fd
			pos += 1 + fn
		}
	}

	expKind := byte(0)
	expNegative := false
	expValue := int64(0)
	hasExp := false
	if pos < uint(len(s)) && (s[pos] == 'e' || s[pos] == 'E' || s[pos] == 'p' || s[pos] == 'P') {
		save := pos
		kind := s[pos]
		p := pos + 1
		neg := false
		if p < uint(len(s)) && (s[p] == '+' || s[p] == '-') {
			neg = s[p] == '-'
			p++
		}
		expDigits, en := scanDigits(s[p:], 10)
		if en == 0 {
			// Not actually an exponent (e.g. a hex digit 'e' already
			// consumed above, or trailing garbage); leave position alone.
			pos = save
		} else {
			hasExp = true
			expKind = kind
			expNegative = neg
			for i := 0; i < len(expDigits); i++ {
				expValue = expValue*10 + int64(expDigits[i]-'0')
				if expValue > 1_000_000_000 {
					return nil, &lexError{code: errs.NumericLiteralExponentOverflow}
				}
			}
			pos = p + en
		}
	}
	if expNegative {
		expValue = -expValue
	}

	// Reject alphabetic suffixes immediately following the literal.
	if pos < uint(len(s)) {
		c := s[pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' {
			return nil, &lexError{code: errs.NumericLiteralSuffixDisallowed}
		}
	}
	if intDigits == "" && !hasFrac {
		return nil, &lexError{code: errs.NumericLiteralIncomplete}
	}

	isReal := hasFrac || integerAsReal
	if !isReal {
		return makeIntegerNumeral(intDigits, radix, hasExp, expKind, expValue, pos)
	}
	return makeRealNumeral(intDigits, fracDigits, radix, hasExp, expKind, expValue, pos)
}

func makeIntegerNumeral(intDigits string, radix int, hasExp bool, expKind byte, expValue int64, length uint) (*numeral, *lexError) {
	mag := new(big.Int)
	r := big.NewInt(int64(radix))
	for i := 0; i < len(intDigits); i++ {
		mag.Mul(mag, r)
		mag.Add(mag, big.NewInt(int64(digitValue(intDigits[i]))))
	}

	if hasExp {
		if expValue < 0 {
			return nil, &lexError{code: errs.IntegerLiteralExponentNegative}
		}
		base := int64(10)
		if expKind == 'p' || expKind == 'P' {
			base = 2
		}
		scale := new(big.Int).Exp(big.NewInt(base), big.NewInt(expValue), nil)
		mag.Mul(mag, scale)
	}

	maxU64 := new(big.Int).SetUint64(math.MaxUint64)
	if mag.Cmp(maxU64) > 0 {
		return nil, &lexError{code: errs.IntegerLiteralOverflow}
	}

	u := mag.Uint64()
	const boundary = uint64(1) << 63
	switch {
	case u < boundary:
		return &numeral{kind: numInteger, intValue: int64(u), length: length}, nil
	case u == boundary:
		return &numeral{kind: numIntegerBoundary, intValue: math.MinInt64, length: length}, nil
	default:
		return nil, &lexError{code: errs.IntegerLiteralOverflow}
	}
}

func makeRealNumeral(intDigits, fracDigits string, radix int, hasExp bool, expKind byte, expValue int64, length uint) (*numeral, *lexError) {
	val := new(big.Float).SetPrec(200)
	r := big.NewFloat(float64(radix))
	for i := 0; i < len(intDigits); i++ {
		val.Mul(val, r)
		val.Add(val, big.NewFloat(float64(digitValue(intDigits[i]))))
	}
	if fracDigits != "" {
		frac := new(big.Float).SetPrec(200)
		scale := new(big.Float).SetPrec(200).SetFloat64(1)
		for i := 0; i < len(fracDigits); i++ {
			scale.Quo(scale, r)
			d := new(big.Float).SetPrec(200).SetFloat64(float64(digitValue(fracDigits[i])))
			d.Mul(d, scale)
			frac.Add(frac, d)
		}
		val.Add(val, frac)
	}

	nonZero := val.Sign() != 0

	if hasExp {
		base := float64(10)
		if expKind == 'p' || expKind == 'P' {
			base = 2
		}
		scale := new(big.Float).SetPrec(200).SetFloat64(1)
		b := new(big.Float).SetPrec(200).SetFloat64(base)
		e := expValue
		neg := e < 0
		if neg {
			e = -e
		}
		for i := int64(0); i < e; i++ {
			scale.Mul(scale, b)
		}
		if neg {
			val.Quo(val, scale)
		} else {
			val.Mul(val, scale)
		}
	}

	f, _ := val.Float64()
	if math.IsInf(f, 0) {
		return nil, &lexError{code: errs.RealLiteralOverflow}
	}
	if f == 0 && nonZero {
		return nil, &lexError{code: errs.RealLiteralUnderflow}
	}
	return &numeral{kind: numReal, realValue: f, length: length}, nil
}
