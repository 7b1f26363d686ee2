package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sena-ops/owaspscan/internal/config"
	"github.com/Sena-ops/owaspscan/internal/model"
	"github.com/Sena-ops/owaspscan/internal/report"
	"github.com/Sena-ops/owaspscan/internal/scanner"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func scanJSON(t *testing.T, root string, cfg config.Config) (report.Document, int) {
	t.Helper()
	var out bytes.Buffer
	code, err := runScan(context.Background(), root, cfg, outputOptions{JSON: true}, &out, nil)
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc), out.String())
	return doc, code
}

func TestScanEvalFinding(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.js"), "eval(userInput)\n")

	doc, code := scanJSON(t, dir, config.Default())

	require.Len(t, doc.Findings, 1)
	f := doc.Findings[0]
	assert.Equal(t, "OWASP-0001", f.ID)
	assert.Equal(t, "Injection", f.OWASPCategory)
	assert.Equal(t, "critical", f.Severity)
	assert.Equal(t, "eval() usage", f.Title)
	assert.Equal(t, 1, f.Line)
	assert.Equal(t, 1, code)
}

func TestScanHardcodedPassword(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "settings.py"), `password = "abc123"`+"\n")

	doc, code := scanJSON(t, dir, config.Default())

	require.Len(t, doc.Findings, 1)
	assert.Equal(t, "high", doc.Findings[0].Severity)
	assert.Equal(t, "Authentication Failures", doc.Findings[0].OWASPCategory)
	assert.Equal(t, 0, code, "high abaixo do threshold critical")
}

func TestScanSkipsNodeModules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "node_modules", "app.js"), "eval(x)\n")

	doc, code := scanJSON(t, dir, config.Default())
	assert.Empty(t, doc.Findings)
	assert.Equal(t, 0, doc.Summary.Total)
	assert.Equal(t, 0, code)
}

func TestScanEmptyDirectory(t *testing.T) {
	doc, code := scanJSON(t, t.TempDir(), config.Default())

	assert.Equal(t, model.Summary{}, doc.Summary)
	assert.NotNil(t, doc.Findings)
	assert.Equal(t, 0, code)
}

func TestScanFailOnThreshold(t *testing.T) {
	tests := []struct {
		name    string
		content string
		failOn  model.Severity
		want    int
	}{
		{"critical_com_fail_on_high", "eval(userInput)\n", model.SevHigh, 1},
		{"low_com_fail_on_critical", "if (process.env.NODE_ENV !== 'production') {}\n", model.SevCritical, 0},
		{"low_com_fail_on_low", "if (process.env.NODE_ENV !== 'production') {}\n", model.SevLow, 1},
		{"sem_findings", "const a = 1;\n", model.SevLow, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "index.js"), tt.content)
			cfg := config.Default()
			cfg.FailOn = tt.failOn

			_, code := scanJSON(t, dir, cfg)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestScanMissingPath(t *testing.T) {
	var out bytes.Buffer
	code, err := runScan(context.Background(), filepath.Join(t.TempDir(), "nope"), config.Default(), outputOptions{}, &out, nil)

	assert.ErrorIs(t, err, scanner.ErrPathNotFound)
	assert.Equal(t, 1, code)
	assert.Empty(t, out.String())
}

func TestScanHumanWithOutputFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "app.js"), "eval(userInput)\n")
	jsonPath := filepath.Join(t.TempDir(), "report.json")

	var out bytes.Buffer
	_, err := runScan(context.Background(), dir, config.Default(), outputOptions{Output: jsonPath}, &out, nil)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "OWASP Top 10 Static Analysis Report")
	assert.Contains(t, out.String(), "[CRITICAL] OWASP-0001: eval() usage")
	assert.Contains(t, out.String(), "JSON report written to "+jsonPath)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc report.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 1, doc.Summary.Critical)
}

func TestScanJSONWithOutputFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.py"), "DEBUG = True\n")
	jsonPath := filepath.Join(t.TempDir(), "r.json")

	var out bytes.Buffer
	_, err := runScan(context.Background(), dir, config.Default(), outputOptions{JSON: true, Output: jsonPath}, &out, nil)
	require.NoError(t, err)

	assert.Equal(t, "Report written to "+jsonPath+"\n", out.String())
	assert.FileExists(t, jsonPath)
}

func TestScanWritesSARIF(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.js"), "eval(userInput)\n")
	sarifPath := filepath.Join(t.TempDir(), "out", "scan.sarif")

	var out bytes.Buffer
	_, err := runScan(context.Background(), dir, config.Default(), outputOptions{SARIF: sarifPath}, &out, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(sarifPath)
	require.NoError(t, err)
	var log map[string]any
	require.NoError(t, json.Unmarshal(data, &log))
	assert.Equal(t, "2.1.0", log["version"])
}

func TestScanWithRulePack(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.js"), "vm.runInNewContext(code)\n")
	pack := writeFile(t, filepath.Join(t.TempDir(), "team.yaml"), `
requires: v1.0.0
rules:
  - category: Injection
    owasp_id: A03
    language: js
    pattern: 'vm\.runIn\w+Context\s*\('
    title: vm sandbox escape
    severity: critical
    description: vm is not a security boundary
    remediation: Run untrusted code in a separate process
`)
	cfg := config.Default()
	cfg.RulePacks = []string{pack}

	doc, code := scanJSON(t, dir, cfg)
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, "vm sandbox escape", doc.Findings[0].Title)
	assert.Equal(t, 1, code)
}

func TestScanParallelMatchesSequential(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.js", "b.js", "c/d.py", "c/e.py", "f.ts"} {
		writeFile(t, filepath.Join(dir, name), "eval(x)\nMath.random()\nhashlib.md5(b)\n")
	}
	seq, _ := scanJSON(t, dir, config.Default())
	cfg := config.Default()
	cfg.Workers = 4
	par, _ := scanJSON(t, dir, cfg)

	assert.Equal(t, seq, par)
}

func flagCmd() *cobra.Command {
	c := &cobra.Command{Use: "teste"}
	c.Flags().String("fail-on", "critical", "")
	c.Flags().StringArray("rules", nil, "")
	c.Flags().StringSlice("exclude", nil, "")
	c.Flags().Int("workers", 1, "")
	c.Flags().Int64("max-file-size", 0, "")
	c.Flags().Bool("no-color", false, "")
	return c
}

func TestApplyFlagsOnlyChanged(t *testing.T) {
	base := config.Default()
	base.FailOn = model.SevMedium
	base.Workers = 3
	base.Exclude = []string{"vendor"}

	c := flagCmd()
	require.NoError(t, c.Flags().Parse([]string{"--exclude", "tmp,gen", "--rules", "a.yaml", "--no-color"}))

	cfg, err := applyFlags(c, base)
	require.NoError(t, err)
	assert.Equal(t, model.SevMedium, cfg.FailOn, "flag não alterada mantém o valor do arquivo")
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, []string{"vendor", "tmp", "gen"}, cfg.Exclude)
	assert.Equal(t, []string{"a.yaml"}, cfg.RulePacks)
	assert.True(t, cfg.NoColor)
}

func TestApplyFlagsOverrides(t *testing.T) {
	c := flagCmd()
	require.NoError(t, c.Flags().Parse([]string{"--fail-on", "HIGH", "--workers", "8", "--max-file-size", "1024"}))

	cfg, err := applyFlags(c, config.Default())
	require.NoError(t, err)
	assert.Equal(t, model.SevHigh, cfg.FailOn)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, int64(1024), cfg.MaxFileBytes)
}

func TestApplyFlagsInvalid(t *testing.T) {
	c := flagCmd()
	require.NoError(t, c.Flags().Parse([]string{"--fail-on", "info"}))
	_, err := applyFlags(c, config.Default())
	assert.Error(t, err)

	c = flagCmd()
	require.NoError(t, c.Flags().Parse([]string{"--workers", "0"}))
	_, err = applyFlags(c, config.Default())
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(exitError{code: 1}))
	assert.Equal(t, 1, exitCode(assert.AnError))
}
