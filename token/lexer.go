package token

import (
	"strings"
	"unicode/utf8"

	"github.com/mayhemheroes/asteria/errs"
)

// lexError is an internal, position-less error; Tokenize attaches the
// current position before returning it as *errs.ParserError.
type lexError struct {
	code errs.ParserCode
}

// Options mirrors spec.md §6's recognized lexer configuration.
type Options struct {
	KeywordAsIdentifier       bool
	EscapableSingleQuoteString bool
	IntegerAsReal             bool
	VerboseSingleStepTraps    bool
}

// Lexer scans a byte stream into a token vector. It is not reentrant and
// holds no state beyond one Tokenize call's lifetime.
type Lexer struct {
	input    string
	filename string
	opts     Options

	pos  uint // byte offset of the next unread byte
	line uint32
}

// New creates a Lexer over src, tagged with filename for diagnostics.
func New(src, filename string, opts Options) *Lexer {
	return &Lexer{input: src, filename: filename, opts: opts, line: 1}
}

func (l *Lexer) byteAt(i uint) byte {
	if i >= uint(len(l.input)) {
		return 0
	}
	return l.input[i]
}

func (l *Lexer) rest() string {
	return l.input[l.pos:]
}

func (l *Lexer) errHere(code errs.ParserCode, length uint) *errs.ParserError {
	return errs.New(code, l.line, l.pos, length)
}

// Tokenize scans the whole input, returning the token vector in source
// order or the first error encountered.
func (l *Lexer) Tokenize() ([]Token, *errs.ParserError) {
	if err := l.validateUTF8AndNUL(); err != nil {
		return nil, err
	}
	l.stripShebang()

	var toks []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			break
		}
	}
	merged, err := l.mergeSigns(toks)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (l *Lexer) validateUTF8AndNUL() *errs.ParserError {
	s := l.input
	off := uint(0)
	line := uint32(1)
	for off < uint(len(s)) {
		if s[off] == 0 {
			return errs.New(errs.NullCharacterDisallowed, line, off, 1)
		}
		if s[off] == '\n' {
			line++
		}
		if s[off] < utf8.RuneSelf {
			off++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[off:])
		if r == utf8.RuneError && size <= 1 {
			return errs.New(errs.Utf8SequenceInvalid, line, off, 1)
		}
		off += uint(size)
	}
	return nil
}

func (l *Lexer) stripShebang() {
	if strings.HasPrefix(l.input, "#!") {
		idx := strings.IndexByte(l.input, '\n')
		if idx < 0 {
			l.pos = uint(len(l.input))
		} else {
			l.pos = uint(idx) + 1
			l.line = 2
		}
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\v', '\f', '\r', '\n':
		return true
	default:
		return false
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// skipTrivia consumes whitespace and comments, returning a block-comment
// error if one is left unterminated at EOF.
func (l *Lexer) skipTrivia() *errs.ParserError {
	for {
		for l.pos < uint(len(l.input)) {
			c := l.input[l.pos]
			if c == '\n' {
				l.line++
				l.pos++
				continue
			}
			if isSpace(c) {
				l.pos++
				continue
			}
			break
		}
		if strings.HasPrefix(l.rest(), "//") {
			idx := strings.IndexByte(l.rest(), '\n')
			if idx < 0 {
				l.pos = uint(len(l.input))
			} else {
				l.pos += uint(idx)
			}
			continue
		}
		if strings.HasPrefix(l.rest(), "/*") {
			openLine, openPos := l.line, l.pos
			idx := strings.Index(l.rest(), "*/")
			if idx < 0 {
				// consume so the line counter is accurate, then fail
				for i := uint(0); i < uint(len(l.rest())); i++ {
					if l.input[l.pos+i] == '\n' {
						l.line++
					}
				}
				return errs.New(errs.BlockCommentUnclosed, openLine, openPos, 2)
			}
			for i := uint(0); i < uint(idx); i++ {
				if l.input[l.pos+i] == '\n' {
					l.line++
				}
			}
			l.pos += uint(idx) + 2
			continue
		}
		return nil
	}
}

func (l *Lexer) next() (Token, *errs.ParserError) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}
	startLine, startPos := l.line, l.pos
	if l.pos >= uint(len(l.input)) {
		return Token{Kind: EOF, Pos: Position{Line: startLine, Offset: startPos, Length: 0}}, nil
	}

	c := l.input[l.pos]

	if c == '"' || (c == '\'' && l.opts.EscapableSingleQuoteString) {
		return l.readQuoted(c, true)
	}
	if c == '\'' {
		return l.readQuoted(c, false)
	}
	if isDigit(c) {
		n, lerr := readNumericLiteral(l.rest(), l.opts.IntegerAsReal)
		if lerr != nil {
			return Token{}, l.errHere(lerr.code, 1)
		}
		text := l.input[l.pos : l.pos+n.length]
		l.pos += n.length
		tok := Token{Text: text, Pos: Position{Line: startLine, Offset: startPos, Length: n.length}}
		switch n.kind {
		case numReal:
			tok.Kind = RealLiteral
			tok.RealValue = n.realValue
		case numIntegerBoundary:
			tok.Kind = IntegerLiteral
			tok.boundary = true
		default: // numInteger
			tok.Kind = IntegerLiteral
			tok.IntValue = n.intValue
		}
		return tok, nil
	}
	if isIdentStart(c) {
		start := l.pos
		for l.pos < uint(len(l.input)) && isIdentCont(l.input[l.pos]) {
			l.pos++
		}
		name := l.input[start:l.pos]
		kind := Identifier
		if !l.opts.KeywordAsIdentifier && isKeyword(name) {
			kind = Keyword
		}
		return Token{Kind: kind, Text: name, Pos: Position{Line: startLine, Offset: startPos, Length: l.pos - start}}, nil
	}

	if p := matchPunctuator(l.rest()); p != "" {
		l.pos += uint(len(p))
		return Token{Kind: Punctuator, Text: p, Pos: Position{Line: startLine, Offset: startPos, Length: uint(len(p))}}, nil
	}

	return Token{}, l.errHere(errs.TokenCharacterUnrecognized, 1)
}

// mergeSigns implements the sign-merge rule from spec.md §4.1, rebuilding
// the token vector with any contiguous, non-terminated "+"/"-" folded into
// the numeral that immediately follows it. It also resolves any
// 2^63-magnitude boundary literal: merged with a contiguous "-" it becomes
// math.MinInt64 (spec.md §8 scenario 3: "-0x1p63" is the one legal
// occurrence of that magnitude); anything else leaves it an overflow.
func (l *Lexer) mergeSigns(toks []Token) ([]Token, *errs.ParserError) {
	out := make([]Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		lit := toks[i]

		if lit.Kind == IntegerLiteral || lit.Kind == RealLiteral {
			if len(out) > 0 {
				sign := out[len(out)-1]
				isSign := sign.Kind == Punctuator && (sign.Text == "+" || sign.Text == "-")
				adjacent := isSign && sign.Pos.Offset+sign.Pos.Length == lit.Pos.Offset
				terminates := len(out) >= 2 && out[len(out)-2].terminatesExpression()
				if adjacent && !terminates {
					merged := lit
					merged.Pos.Offset = sign.Pos.Offset
					merged.Pos.Length = sign.Pos.Length + lit.Pos.Length
					merged.Text = sign.Text + lit.Text
					if lit.boundary {
						if sign.Text != "-" {
							return nil, errs.New(errs.IntegerLiteralOverflow, lit.Pos.Line, lit.Pos.Offset, lit.Pos.Length)
						}
						merged.boundary = false
						merged.IntValue = int64(-1) << 63 // math.MinInt64
					} else if sign.Text == "-" {
						if lit.Kind == IntegerLiteral {
							merged.IntValue = -lit.IntValue
						} else {
							merged.RealValue = -lit.RealValue
						}
					}
					out = out[:len(out)-1]
					out = append(out, merged)
					continue
				}
			}
			if lit.boundary {
				return nil, errs.New(errs.IntegerLiteralOverflow, lit.Pos.Line, lit.Pos.Offset, lit.Pos.Length)
			}
		}
		out = append(out, lit)
	}
	return out, nil
}
