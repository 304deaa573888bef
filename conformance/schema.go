package conformance

// TestSuite is one YAML fixture file: a named group of scripted cases.
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Tests       []TestCase `yaml:"tests"`
}

// TestCase is a single scripted program plus its expected outcome. Code
// is a bare expression (run as `return <code>;`); Statement is a full
// program body run verbatim. Exactly one of the two is set.
type TestCase struct {
	Name      string      `yaml:"name"`
	Code      string      `yaml:"code,omitempty"`
	Statement string      `yaml:"statement,omitempty"`
	Skip      string      `yaml:"skip,omitempty"`
	Expect    Expectation `yaml:"expect"`
}

// Expectation names what a program must produce. Error takes precedence
// over Value/Type when both are set (a test only checks one shape).
type Expectation struct {
	Value interface{} `yaml:"value,omitempty"`
	Error string      `yaml:"error,omitempty"` // exec.Code* string, e.g. "division_by_zero"
	Type  string      `yaml:"type,omitempty"`  // value.Kind.String(), e.g. "array"
}
