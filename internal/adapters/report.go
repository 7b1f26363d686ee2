package adapters

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sena-ops/owaspscan/internal/model"
)

// Mesmo formato gerado por `owaspscan scan --json`.
type reportJSON struct {
	Summary  *model.Summary `json:"summary"`
	Findings []struct {
		ID            string `json:"id"`
		Severity      string `json:"severity"`
		OWASPCategory string `json:"owasp_category"`
		OWASPID       string `json:"owasp_id"`
		RuleID        string `json:"rule_id"`
		Title         string `json:"title"`
		File          string `json:"file"`
		Line          int    `json:"line"`
		Evidence      string `json:"evidence"`
		Description   string `json:"description"`
		Remediation   string `json:"remediation"`
	} `json:"findings"`
}

// ParseReportBytes lê um relatório JSON salvo de volta em findings.
// O resumo gravado é ignorado: ele é recalculado a partir dos findings.
func ParseReportBytes(b []byte) ([]model.Finding, error) {
	var doc reportJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("erro ao fazer parse do relatório: %w", err)
	}
	if doc.Summary == nil && doc.Findings == nil {
		return nil, fmt.Errorf("relatório sem summary nem findings")
	}

	out := make([]model.Finding, 0, len(doc.Findings))
	for i, f := range doc.Findings {
		sev, err := model.ParseSeverity(f.Severity)
		if err != nil {
			return nil, fmt.Errorf("finding #%d (%s): %w", i+1, f.ID, err)
		}
		out = append(out, model.Finding{
			ID:          f.ID,
			Severity:    sev,
			Category:    f.OWASPCategory,
			OWASPID:     f.OWASPID,
			RuleID:      f.RuleID,
			Title:       firstNonEmpty(f.Title, f.RuleID),
			FilePath:    filepath.FromSlash(f.File),
			Line:        safeLine(f.Line),
			Evidence:    f.Evidence,
			Description: f.Description,
			Remediation: f.Remediation,
		})
	}
	return out, nil
}

func ParseReportFile(path string) ([]model.Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseReportBytes(b)
}
