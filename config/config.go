// Package config loads the embedding host's YAML-declared lexer options
// and collector thresholds, in the shape of the teacher's conformance
// package loading YAML test suites with gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mayhemheroes/asteria/gc"
	"github.com/mayhemheroes/asteria/token"
)

// Parser mirrors token.Options (spec.md §6's recognized lexer flags).
type Parser struct {
	KeywordAsIdentifier        bool `yaml:"keyword_as_identifier"`
	EscapableSingleQuoteString bool `yaml:"escapable_single_quote_string"`
	IntegerAsReal              bool `yaml:"integer_as_real"`
	VerboseSingleStepTraps     bool `yaml:"verbose_single_step_traps"`
}

// ToOptions converts to the lexer's own options struct.
func (p Parser) ToOptions() token.Options {
	return token.Options{
		KeywordAsIdentifier:        p.KeywordAsIdentifier,
		EscapableSingleQuoteString: p.EscapableSingleQuoteString,
		IntegerAsReal:              p.IntegerAsReal,
		VerboseSingleStepTraps:     p.VerboseSingleStepTraps,
	}
}

// GC mirrors the collector's three-generation allocation thresholds
// (spec.md §6: defaults 10, 70, 500). Zero fields fall back to the
// collector's own defaults rather than forcing a threshold of 0.
type GC struct {
	Newest int `yaml:"newest"`
	Middle int `yaml:"middle"`
	Oldest int `yaml:"oldest"`
}

// Apply overrides coll's thresholds for every non-zero field.
func (g GC) Apply(coll *gc.Collector) {
	if g.Newest != 0 {
		coll.SetThreshold(gc.Newest, g.Newest)
	}
	if g.Middle != 0 {
		coll.SetThreshold(gc.Middle, g.Middle)
	}
	if g.Oldest != 0 {
		coll.SetThreshold(gc.Oldest, g.Oldest)
	}
}

// Config is the top-level document an embedding host hands to Load.
type Config struct {
	Parser Parser `yaml:"parser"`
	GC     GC     `yaml:"gc"`
}

// Default returns a Config equivalent to the engine's built-in defaults
// (a bare lexer, the collector's own {10, 70, 500} thresholds).
func Default() Config {
	return Config{}
}

// Load reads and parses a YAML config document from path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse parses a YAML config document already in memory.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c, nil
}
