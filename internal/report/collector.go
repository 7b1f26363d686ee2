package report

import (
	"fmt"
	"slices"

	"github.com/Sena-ops/owaspscan/internal/model"
	"github.com/Sena-ops/owaspscan/internal/scanner"
)

const IDPrefix = "OWASP"

// Collector acumula os findings de uma execução. O contador de ids pertence
// à instância: crie um Collector novo por varredura.
type Collector struct {
	findings []model.Finding
	next     int
}

func NewCollector() *Collector {
	return &Collector{}
}

// Add transforma hits em findings, na ordem recebida, com ids sequenciais.
func (c *Collector) Add(file string, hits ...scanner.Hit) {
	for _, h := range hits {
		c.next++
		c.findings = append(c.findings, model.Finding{
			ID:          fmt.Sprintf("%s-%04d", IDPrefix, c.next),
			Severity:    h.Rule.Severity,
			Category:    h.Rule.Category,
			OWASPID:     h.Rule.OWASPID,
			RuleID:      h.Rule.ID,
			Title:       h.Rule.Title,
			FilePath:    file,
			Line:        h.Line,
			Evidence:    h.Evidence,
			Description: h.Rule.Description,
			Remediation: h.Rule.Remediation,
		})
	}
}

// AddResults junta a saída de scanner.Walk na ordem dos arquivos.
func (c *Collector) AddResults(results []scanner.FileResult) {
	for _, r := range results {
		c.Add(r.Path, r.Hits...)
	}
}

func (c *Collector) Findings() []model.Finding {
	return slices.Clone(c.findings)
}

func (c *Collector) Summarize() model.Summary {
	return model.Summarize(c.findings)
}

func (c *Collector) Result() Result {
	return NewResult(c.Findings())
}

// Result é a saída completa de uma execução. O resumo é sempre derivado dos findings.
type Result struct {
	findings []model.Finding
	summary  model.Summary
}

func NewResult(findings []model.Finding) Result {
	return Result{findings: findings, summary: model.Summarize(findings)}
}

func (r Result) Findings() []model.Finding { return slices.Clone(r.findings) }

func (r Result) Summary() model.Summary { return r.summary }

// Sorted ordena por severidade (critical primeiro), mantendo a ordem de
// chegada entre findings da mesma severidade.
func (r Result) Sorted() []model.Finding {
	out := r.Findings()
	slices.SortStableFunc(out, func(a, b model.Finding) int {
		return a.Severity.Rank() - b.Severity.Rank()
	})
	return out
}

// ExitStatus devolve 1 se houver algum finding em threshold ou acima, senão 0.
func ExitStatus(s model.Summary, threshold model.Severity) int {
	for _, sev := range model.Severities {
		if sev.Rank() > threshold.Rank() {
			break
		}
		if s.Count(sev) > 0 {
			return 1
		}
	}
	return 0
}
