package token

// keywords is the normative keyword table. An identifier matching one of
// these is promoted to Keyword unless the lexer's KeywordAsIdentifier
// option is set.
var keywords = map[string]struct{}{
	"import":   {},
	"var":      {},
	"func":     {},
	"if":       {},
	"else":     {},
	"switch":   {},
	"case":     {},
	"default":  {},
	"do":       {},
	"while":    {},
	"for":      {},
	"each":     {},
	"try":      {},
	"catch":    {},
	"throw":    {},
	"break":    {},
	"continue": {},
	"return":   {},
	"defer":    {},
	"assert":   {},
	"unset":    {},
	"typeof":   {},
	"null":     {},
	"true":     {},
	"false":    {},
	"nan":      {},
	"infinity": {},
	"this":     {},
}

func isKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}
