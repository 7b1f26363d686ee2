package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Sena-ops/owaspscan/internal/model"
)

const (
	reportTitle = "OWASP Top 10 Static Analysis Report"
	ruleWidth   = 60
)

type HumanOptions struct {
	Color bool
}

var severityColors = map[model.Severity]lipgloss.Color{
	model.SevCritical: lipgloss.Color("9"),  // vermelho
	model.SevHigh:     lipgloss.Color("11"), // amarelo
	model.SevMedium:   lipgloss.Color("12"), // azul
	model.SevLow:      lipgloss.Color("8"),  // cinza
}

// WriteHuman escreve cabeçalho, resumo e findings ordenados por severidade.
func WriteHuman(w io.Writer, r Result, opts HumanOptions) error {
	label := plainLabel
	if opts.Color {
		label = colorLabel(lipgloss.NewRenderer(w))
	}

	s := r.Summary()
	var b strings.Builder
	b.WriteString("\n" + strings.Repeat("=", ruleWidth) + "\n")
	b.WriteString(reportTitle + "\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")

	b.WriteString("\nSummary:\n")
	fmt.Fprintf(&b, "  Critical: %d\n", s.Critical)
	fmt.Fprintf(&b, "  High:     %d\n", s.High)
	fmt.Fprintf(&b, "  Medium:   %d\n", s.Medium)
	fmt.Fprintf(&b, "  Low:      %d\n", s.Low)
	fmt.Fprintf(&b, "  Total:    %d\n", s.Total)

	if s.Total > 0 {
		b.WriteString("\nFindings:\n")
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		for _, f := range r.Sorted() {
			fmt.Fprintf(&b, "\n[%s] %s: %s\n", label(f.Severity), f.ID, f.Title)
			fmt.Fprintf(&b, "  Category: %s\n", categoryLabel(f))
			fmt.Fprintf(&b, "  Location: %s:%d\n", f.FilePath, f.Line)
			fmt.Fprintf(&b, "  Evidence: %s\n", f.Evidence)
			fmt.Fprintf(&b, "  Issue: %s\n", f.Description)
			fmt.Fprintf(&b, "  Fix: %s\n", f.Remediation)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func plainLabel(s model.Severity) string {
	return strings.ToUpper(s.String())
}

func colorLabel(re *lipgloss.Renderer) func(model.Severity) string {
	styles := make(map[model.Severity]lipgloss.Style, len(severityColors))
	for sev, c := range severityColors {
		styles[sev] = re.NewStyle().Bold(true).Foreground(c)
	}
	return func(s model.Severity) string {
		st, ok := styles[s]
		if !ok {
			return plainLabel(s)
		}
		return st.Render(plainLabel(s))
	}
}

func categoryLabel(f model.Finding) string {
	if f.OWASPID == "" {
		return f.Category
	}
	return f.OWASPID + ":" + f.Category
}
