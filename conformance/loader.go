package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadedTest pairs a parsed TestCase with the suite and file it came
// from, for readable subtest names.
type LoadedTest struct {
	File  string
	Suite TestSuite
	Test  TestCase
}

// LoadDir walks dir for *.yaml fixtures and loads every test case they
// declare (spec.md §8's scenarios, expressed as data rather than Go
// table tests so new cases never need a recompile).
func LoadDir(dir string) ([]LoadedTest, error) {
	var loaded []LoadedTest
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}
		tests, err := loadFile(dir, path)
		if err != nil {
			return fmt.Errorf("conformance: %s: %w", path, err)
		}
		loaded = append(loaded, tests...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

func loadFile(root, path string) ([]LoadedTest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	tests := make([]LoadedTest, 0, len(suite.Tests))
	for _, tc := range suite.Tests {
		tests = append(tests, LoadedTest{File: rel, Suite: suite, Test: tc})
	}
	return tests, nil
}
