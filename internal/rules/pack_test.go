package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sena-ops/owaspscan/internal/model"
	"github.com/Sena-ops/owaspscan/internal/parser"
)

const vmPack = `requires: v1.0.0
rules:
  - category: Injection
    owasp_id: A03
    language: js
    pattern: 'vm\.runInNewContext\s*\('
    title: vm.runInNewContext usage
    severity: HIGH
    description: Runs code in a new V8 context
    remediation: Do not evaluate untrusted code
  - category: Logging Failures
    owasp_id: A09
    language: py
    pattern: 'logging\.\w+\(.*password'
    title: Password logged
    severity: medium
`

func writePack(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalogWithPack(t *testing.T) {
	c, err := LoadCatalog(writePack(t, vmPack))
	require.NoError(t, err)

	assert.Equal(t, 37, c.Len())
	assert.Equal(t, "Logging Failures", c.Categories()[len(c.Categories())-1])

	inj := c.RulesFor("Injection", parser.JavaScript)
	require.Len(t, inj, 7)
	last := inj[6]
	assert.Equal(t, "vm.runInNewContext usage", last.Title)
	assert.Equal(t, model.SevHigh, last.Severity)
	assert.Equal(t, "A03-js-007", last.ID)
	assert.True(t, last.Match("vm.runInNewContext(code)"))

	logRules := c.RulesFor("Logging Failures", parser.Python)
	require.Len(t, logRules, 1)
	assert.True(t, logRules[0].Match(`logging.info("password=%s", pw)`))
}

func TestPackRequiresNewerCatalog(t *testing.T) {
	_, err := LoadCatalog(writePack(t, `requires: v9.0.0
rules:
  - {category: X, language: js, pattern: foo, title: foo, severity: low}
`))
	assert.ErrorIs(t, err, ErrIncompatiblePack)
}

func TestParsePackErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"no_rules", "requires: v1.0.0\n"},
		{"bad_requires", "requires: latest\nrules:\n  - {category: X, language: js, pattern: a, title: a, severity: low}\n"},
		{"unknown_field", "rules:\n  - {category: X, language: js, pattern: a, title: a, severity: low, weight: 3}\n"},
		{"not_yaml", "rules: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePack([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestPackWithBadSeverity(t *testing.T) {
	p, err := ParsePack([]byte("rules:\n  - {category: X, language: js, pattern: a, title: a, severity: info}\n"))
	require.NoError(t, err)

	_, err = Build(p)
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestPackDuplicatingBuiltinRule(t *testing.T) {
	p, err := ParsePack([]byte("rules:\n  - {category: Injection, language: js, pattern: 'eval\\s*\\(', title: dup, severity: low}\n"))
	require.NoError(t, err)

	_, err = Build(p)
	assert.ErrorIs(t, err, ErrDuplicateRule)
}

func TestLoadPackMissingFile(t *testing.T) {
	_, err := LoadPack(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompatible(t *testing.T) {
	assert.True(t, Pack{}.Compatible(CatalogVersion))
	assert.True(t, Pack{Requires: "v0.9.0"}.Compatible("v1.0.0"))
	assert.True(t, Pack{Requires: "v1.0.0"}.Compatible("v1.0.0"))
	assert.False(t, Pack{Requires: "v1.1.0"}.Compatible("v1.0.0"))
}
