package token

import (
	"testing"

	"github.com/mayhemheroes/asteria/errs"
)

func TestSignMergeAdjacency(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []int64
	}{
		{"binary minus does not merge", "1 - 2", []int64{1, 2}},
		{"assignment merges", "a = -2", []int64{-2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := New(tt.src, "<test>", Options{}).Tokenize()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got []int64
			for _, tok := range toks {
				if tok.Kind == IntegerLiteral {
					got = append(got, tok.IntValue)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d integer literals %v, want %v", len(got), got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("literal %d: got %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLongestMatchBeatsSignMerge(t *testing.T) {
	toks, err := New("1--2", "<test>", Options{}).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) < 3 || toks[0].IntValue != 1 || toks[1].Text != "--" || toks[2].IntValue != 2 {
		t.Fatalf("unexpected tokens: %+v", toks)
	}
}

func TestIntegerOverflowBoundary(t *testing.T) {
	if _, err := New("0x1p63", "<test>", Options{}).Tokenize(); err == nil {
		t.Fatalf("expected overflow error for 0x1p63")
	} else if err.Code != errs.IntegerLiteralOverflow {
		t.Fatalf("expected IntegerLiteralOverflow, got %v", err.Code)
	}

	toks, err := New("-0x1p63", "<test>", Options{}).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error for -0x1p63: %v", err)
	}
	if len(toks) < 1 || toks[0].Kind != IntegerLiteral || toks[0].IntValue != (int64(-1)<<63) {
		t.Fatalf("unexpected tokens for -0x1p63: %+v", toks)
	}
}

func TestShebangStripped(t *testing.T) {
	toks, err := New("#!/usr/bin/env asteria\nvar x = 1;", "<test>", Options{}).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) == 0 || toks[0].Text != "var" {
		t.Fatalf("expected first token 'var', got %+v", toks[0])
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, err := New("/* never closes", "<test>", Options{}).Tokenize()
	if err == nil {
		t.Fatalf("expected block_comment_unclosed error")
	}
}

func TestNullByteDisallowed(t *testing.T) {
	_, err := New("var x\x00 = 1;", "<test>", Options{}).Tokenize()
	if err == nil {
		t.Fatalf("expected null_character_disallowed error")
	}
}
