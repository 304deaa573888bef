package token

import "sort"

// punctuators is the normative punctuator set. matchPunctuator picks the
// longest entry starting at the current position ("longest-match over a
// sorted table"), which is why `1--2` lexes as `[int(1), "--", int(2)]`
// rather than performing the sign-merge on a lone `-`.
var punctuators = []string{
	"<<=", ">>=", "**=", "...", "<=>",
	"==", "!=", "<=", ">=", "&&", "||", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"**", "<<", ">>", "??", "?=", "=>", "->",
	"+", "-", "*", "/", "%", "^", "~", "&", "|", "!",
	"=", "<", ">", "?", ".", ",", ":", ";",
	"(", ")", "{", "}", "[", "]",
}

var sortedPunctuators []string

func init() {
	sortedPunctuators = append(sortedPunctuators, punctuators...)
	sort.Slice(sortedPunctuators, func(i, j int) bool {
		return len(sortedPunctuators[i]) > len(sortedPunctuators[j])
	})
}

// matchPunctuator returns the longest punctuator that is a prefix of s, or
// "" if none matches.
func matchPunctuator(s string) string {
	for _, p := range sortedPunctuators {
		if len(p) <= len(s) && s[:len(p)] == p {
			return p
		}
	}
	return ""
}
