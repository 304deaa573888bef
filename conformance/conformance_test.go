package conformance

import "testing"

func TestConformance(t *testing.T) {
	tests, err := LoadDir("testdata")
	if err != nil {
		t.Fatalf("failed to load fixtures: %v", err)
	}
	if len(tests) == 0 {
		t.Fatal("no conformance tests loaded")
	}

	fileGroups := make(map[string][]LoadedTest)
	for _, lt := range tests {
		fileGroups[lt.File] = append(fileGroups[lt.File], lt)
	}

	for file, group := range fileGroups {
		t.Run(file, func(t *testing.T) {
			for _, lt := range group {
				lt := lt
				t.Run(lt.Test.Name, func(t *testing.T) {
					result := Run(lt)
					if result.Skipped {
						t.Skipf("skipped: %s", lt.Test.Skip)
						return
					}
					if !result.Passed {
						t.Errorf("%v", result.Error)
					}
				})
			}
		})
	}
}

func TestLoadDirFindsFixtures(t *testing.T) {
	tests, err := LoadDir("testdata")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if len(tests) < 10 {
		t.Fatalf("expected at least 10 conformance cases, got %d", len(tests))
	}
	for _, lt := range tests {
		if lt.Test.Name == "" {
			t.Errorf("test in %s has no name", lt.File)
		}
		if lt.Test.Code == "" && lt.Test.Statement == "" {
			t.Errorf("test %s in %s has neither code nor statement", lt.Test.Name, lt.File)
		}
	}
}
