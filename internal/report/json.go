package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Sena-ops/owaspscan/internal/model"
)

// Document é o formato de máquina. Os nomes dos campos são contrato com quem consome o JSON.
type Document struct {
	Summary  model.Summary `json:"summary"`
	Findings []FindingDoc  `json:"findings"`
}

type FindingDoc struct {
	ID            string `json:"id"`
	Severity      string `json:"severity"`
	OWASPCategory string `json:"owasp_category"`
	Title         string `json:"title"`
	File          string `json:"file"`
	Line          int    `json:"line"`
	Evidence      string `json:"evidence"`
	Description   string `json:"description"`
	Remediation   string `json:"remediation"`
	OWASPID       string `json:"owasp_id,omitempty"`
	RuleID        string `json:"rule_id,omitempty"`
}

func NewDocument(r Result) Document {
	doc := Document{
		Summary:  r.Summary(),
		Findings: make([]FindingDoc, 0, len(r.findings)),
	}
	for _, f := range r.findings {
		doc.Findings = append(doc.Findings, FindingDoc{
			ID:            f.ID,
			Severity:      f.Severity.String(),
			OWASPCategory: f.Category,
			Title:         f.Title,
			File:          f.FilePath,
			Line:          f.Line,
			Evidence:      f.Evidence,
			Description:   f.Description,
			Remediation:   f.Remediation,
			OWASPID:       f.OWASPID,
			RuleID:        f.RuleID,
		})
	}
	return doc
}

// JSON serializa o documento com indentação de 2 espaços, sem escapar HTML na evidência.
func JSON(r Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(r)); err != nil {
		return nil, fmt.Errorf("marshal relatório: %w", err)
	}
	return buf.Bytes(), nil
}

func WriteJSON(path string, r Result) error {
	data, err := JSON(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("escrever relatório json: %w", err)
	}
	return nil
}
