// Package errs defines parser errors (returned, positional, code-tagged)
// and the Fatal type for invariant violations. Runtime exceptions are a
// separate type, exec.Exception.
package errs

import "fmt"

// ParserCode enumerates the lexer/parser failure modes from the language
// reference. Values are stable and may be depended on by host code.
type ParserCode int

const (
	NoDataLoaded ParserCode = iota
	Utf8SequenceInvalid
	NullCharacterDisallowed
	TokenCharacterUnrecognized
	StringLiteralUnclosed
	EscapeSequenceIncomplete
	EscapeSequenceUnknown
	EscapeSequenceInvalidHex
	EscapeUtfCodePointInvalid
	NumericLiteralIncomplete
	NumericLiteralSuffixDisallowed
	NumericLiteralExponentOverflow
	IntegerLiteralOverflow
	IntegerLiteralExponentNegative
	RealLiteralOverflow
	RealLiteralUnderflow
	BlockCommentUnclosed
)

var codeNames = map[ParserCode]string{
	NoDataLoaded:                   "no_data_loaded",
	Utf8SequenceInvalid:            "utf8_sequence_invalid",
	NullCharacterDisallowed:        "null_character_disallowed",
	TokenCharacterUnrecognized:     "token_character_unrecognized",
	StringLiteralUnclosed:          "string_literal_unclosed",
	EscapeSequenceIncomplete:       "escape_sequence_incomplete",
	EscapeSequenceUnknown:          "escape_sequence_unknown",
	EscapeSequenceInvalidHex:       "escape_sequence_invalid_hex",
	EscapeUtfCodePointInvalid:      "escape_utf_code_point_invalid",
	NumericLiteralIncomplete:       "numeric_literal_incomplete",
	NumericLiteralSuffixDisallowed: "numeric_literal_suffix_disallowed",
	NumericLiteralExponentOverflow: "numeric_literal_exponent_overflow",
	IntegerLiteralOverflow:         "integer_literal_overflow",
	IntegerLiteralExponentNegative: "integer_literal_exponent_negative",
	RealLiteralOverflow:            "real_literal_overflow",
	RealLiteralUnderflow:           "real_literal_underflow",
	BlockCommentUnclosed:           "block_comment_unclosed",
}

func (c ParserCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown_parser_error"
}

// ParserError is the wire shape of a lexer/parser failure: a position plus
// a stable code. It never unwinds a call stack; it is returned like any
// other Go error.
type ParserError struct {
	Line   uint32
	Offset uint
	Length uint
	Code   ParserCode
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s at line %d, offset %d, length %d", e.Code, e.Line, e.Offset, e.Length)
}

// New constructs a ParserError at the given position.
func New(code ParserCode, line uint32, offset, length uint) *ParserError {
	return &ParserError{Line: line, Offset: offset, Length: length, Code: code}
}

// Fatal marks an invariant violation that should never occur in a correct
// embedding (e.g. finalizing a collector mid-collection). Fatalf panics
// with this type and no entry point of this module recovers it, the same
// "stop, don't limp on" posture as the source's ASTERIA_TERMINATE.
type Fatal struct {
	Message string
}

func (e Fatal) Error() string { return e.Message }

// Fatalf panics with a Fatal built from the formatted message.
func Fatalf(format string, args ...any) {
	panic(Fatal{Message: fmt.Sprintf(format, args...)})
}
