// Package token implements Asteria's hand-written lexer: a byte stream is
// turned into a flat token vector, or a positional *errs.ParserError.
//
// The scanner is byte-at-a-time (readChar/peekChar) in the shape of
// MongooseMoo's parser.Lexer, generalized with the punctuator/numeric/string
// literal rules the language reference requires.
package token

// Kind discriminates the token categories of the language reference.
type Kind int

const (
	EOF Kind = iota
	Identifier
	Keyword
	Punctuator
	IntegerLiteral
	RealLiteral
	StringLiteral
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "eof"
	case Identifier:
		return "identifier"
	case Keyword:
		return "keyword"
	case Punctuator:
		return "punctuator"
	case IntegerLiteral:
		return "integer-literal"
	case RealLiteral:
		return "real-literal"
	case StringLiteral:
		return "string-literal"
	default:
		return "unknown"
	}
}

// Position locates a token (or an error) within the source byte stream.
type Position struct {
	Line   uint32
	Offset uint
	Length uint
}

// Token is one lexical unit tagged with its source span.
type Token struct {
	Kind Kind
	// Text is the literal source text ("keyword"/"punctuator" hold their
	// exact spelling; identifiers hold their name).
	Text string
	// IntValue / RealValue / StrValue hold the decoded literal payload for
	// the corresponding Kind; zero otherwise.
	IntValue  int64
	RealValue float64
	StrValue  string
	Pos       Position
	// boundary marks an integer literal of magnitude exactly 2^63: only
	// valid once merged with a preceding contiguous unary "-".
	boundary bool
}

func (t Token) IsValueKeyword() bool {
	switch t.Text {
	case "null", "true", "false", "nan", "infinity", "this":
		return t.Kind == Keyword
	default:
		return false
	}
}

// terminatesExpression reports whether a token, if it appeared immediately
// before a +/- sign, would prevent that sign from merging into a following
// numeric literal (spec.md §4.1 sign-merge rule).
func (t Token) terminatesExpression() bool {
	if t.Kind == Identifier || t.Kind == IntegerLiteral || t.Kind == RealLiteral || t.Kind == StringLiteral {
		return true
	}
	if t.IsValueKeyword() {
		return true
	}
	if t.Kind == Punctuator {
		switch t.Text {
		case "++", "--", ")", "]", "}":
			return true
		}
	}
	return false
}
