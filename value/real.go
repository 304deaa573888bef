package value

import (
	"math"
	"strconv"
	"strings"
)

func isNaN(f float64) bool { return math.IsNaN(f) }

// formatReal renders a real the way the language reference's literal
// grammar expects it read back: whole numbers still carry a decimal
// point, and the IEEE special values print as nan/infinity/-infinity to
// match the value-keyword spellings the lexer recognizes.
func formatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "infinity"
	case math.IsInf(f, -1):
		return "-infinity"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
