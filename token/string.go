package token

import (
	"unicode/utf8"

	"github.com/mayhemheroes/asteria/errs"
)

// readQuoted scans a string literal opened by quote ('"' or '\''),
// decoding C-style escapes when withEscapes is true and copying bytes
// verbatim otherwise (plain single-quoted strings, spec.md §4.1).
func (l *Lexer) readQuoted(quote byte, withEscapes bool) (Token, *errs.ParserError) {
	startLine, startPos := l.line, l.pos
	l.pos++ // opening quote

	var decoded []byte
	for {
		if l.pos >= uint(len(l.input)) {
			return Token{}, errs.New(errs.StringLiteralUnclosed, startLine, startPos, l.pos-startPos)
		}
		c := l.input[l.pos]
		if c == quote {
			break
		}
		if c == '\n' {
			l.line++
		}
		if c == '\\' && withEscapes {
			b, err := l.readEscape()
			if err != nil {
				return Token{}, err
			}
			decoded = append(decoded, b...)
			continue
		}
		decoded = append(decoded, c)
		l.pos++
	}
	raw := l.input[startPos : l.pos+1]
	l.pos++ // closing quote

	return Token{
		Kind:     StringLiteral,
		Text:     raw,
		StrValue: string(decoded),
		Pos:      Position{Line: startLine, Offset: startPos, Length: l.pos - startPos},
	}, nil
}

// readEscape decodes one backslash escape at l.pos (pointing at the '\'),
// advancing l.pos past it and returning the decoded bytes.
func (l *Lexer) readEscape() ([]byte, *errs.ParserError) {
	escLine, escPos := l.line, l.pos
	l.pos++ // backslash
	if l.pos >= uint(len(l.input)) {
		return nil, errs.New(errs.EscapeSequenceIncomplete, escLine, escPos, 1)
	}
	c := l.input[l.pos]
	simple := map[byte]byte{
		'a': '\a', 'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r',
		't': '\t', 'v': '\v', '0': 0, 'Z': 26, 'e': 0x1b,
		'\'': '\'', '"': '"', '\\': '\\', '?': '?',
	}
	if b, ok := simple[c]; ok {
		l.pos++
		return []byte{b}, nil
	}
	switch c {
	case 'x':
		return l.readHexEscape(escLine, escPos, 2)
	case 'u':
		return l.readUnicodeEscape(escLine, escPos, 4)
	case 'U':
		return l.readUnicodeEscape(escLine, escPos, 6)
	default:
		return nil, errs.New(errs.EscapeSequenceUnknown, escLine, escPos, 2)
	}
}

func (l *Lexer) readHexEscape(escLine uint32, escPos uint, ndigits int) ([]byte, *errs.ParserError) {
	l.pos++ // 'x'
	v := 0
	for i := 0; i < ndigits; i++ {
		if l.pos >= uint(len(l.input)) {
			return nil, errs.New(errs.EscapeSequenceIncomplete, escLine, escPos, l.pos-escPos)
		}
		d := digitValue(l.input[l.pos])
		if d < 0 || d >= 16 {
			return nil, errs.New(errs.EscapeSequenceInvalidHex, escLine, escPos, l.pos-escPos+1)
		}
		v = v*16 + d
		l.pos++
	}
	return []byte{byte(v)}, nil
}

func (l *Lexer) readUnicodeEscape(escLine uint32, escPos uint, ndigits int) ([]byte, *errs.ParserError) {
	l.pos++ // 'u' or 'U'
	v := 0
	for i := 0; i < ndigits; i++ {
		if l.pos >= uint(len(l.input)) {
			return nil, errs.New(errs.EscapeSequenceIncomplete, escLine, escPos, l.pos-escPos)
		}
		d := digitValue(l.input[l.pos])
		if d < 0 || d >= 16 {
			return nil, errs.New(errs.EscapeSequenceInvalidHex, escLine, escPos, l.pos-escPos+1)
		}
		v = v*16 + d
		l.pos++
	}
	r := rune(v)
	if v > utf8.MaxRune || (v >= 0xD800 && v <= 0xDFFF) {
		return nil, errs.New(errs.EscapeUtfCodePointInvalid, escLine, escPos, l.pos-escPos)
	}
	buf := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(buf, r)
	return buf[:n], nil
}
