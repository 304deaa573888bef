package config

import (
	"testing"

	"github.com/mayhemheroes/asteria/gc"
)

func TestParseAppliesParserOptions(t *testing.T) {
	c, err := Parse([]byte(`
parser:
  keyword_as_identifier: true
  integer_as_real: true
`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	opts := c.Parser.ToOptions()
	if !opts.KeywordAsIdentifier || !opts.IntegerAsReal {
		t.Fatalf("expected both flags set, got %#v", opts)
	}
	if opts.EscapableSingleQuoteString || opts.VerboseSingleStepTraps {
		t.Fatalf("expected unset flags to stay false, got %#v", opts)
	}
}

func TestGCApplyOnlyOverridesNonZeroFields(t *testing.T) {
	c, err := Parse([]byte(`
gc:
  newest: 5
`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	coll := gc.New()
	defaultMiddle := coll.Threshold(gc.Middle)
	c.GC.Apply(coll)

	if got := coll.Threshold(gc.Newest); got != 5 {
		t.Fatalf("expected newest threshold 5, got %d", got)
	}
	if got := coll.Threshold(gc.Middle); got != defaultMiddle {
		t.Fatalf("expected middle threshold left at its default %d, got %d", defaultMiddle, got)
	}
}

func TestDefaultIsZeroValue(t *testing.T) {
	c := Default()
	if c.Parser.ToOptions().KeywordAsIdentifier {
		t.Fatalf("expected Default() to carry no parser overrides")
	}
}
