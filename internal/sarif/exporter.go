package sarif

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/Sena-ops/owaspscan/internal/model"
)

const (
	Version = "2.1.0"
	Schema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json" // schema RTM reconhecido por GitHub/VSCode
)

type Log struct {
	Version string `json:"version"`
	Schema  string `json:"$schema"`
	Runs    []Run  `json:"runs"`
}

type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

type Tool struct {
	Driver Driver `json:"driver"`
}

type Driver struct {
	Name    string          `json:"name"`
	Version string          `json:"version"`
	Rules   []ReportingRule `json:"rules,omitempty"`
}

type ReportingRule struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	ShortDescription Message        `json:"shortDescription"`
	Help             *Message       `json:"help,omitempty"`
	Properties       map[string]any `json:"properties,omitempty"`
}

type Result struct {
	RuleID    string     `json:"ruleId"`
	Message   Message    `json:"message"`
	Level     string     `json:"level"` // error, warning, note
	Locations []Location `json:"locations"`
}

type Message struct {
	Text string `json:"text"`
}

type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

type ArtifactLocation struct {
	URI string `json:"uri"`
}

type Region struct {
	StartLine int      `json:"startLine"`
	Snippet   *Message `json:"snippet,omitempty"`
}

// NewLog converte findings em um log SARIF 2.1.0 com uma única run.
func NewLog(findings []model.Finding, toolName, toolVersion string) Log {
	fs := slices.Clone(findings)
	SortFindings(fs)

	results := make([]Result, 0, len(fs))
	var rules []ReportingRule
	seen := map[string]bool{}
	for _, f := range fs {
		ruleID := f.RuleID
		if strings.TrimSpace(ruleID) == "" {
			ruleID = f.Title
		}
		if !seen[ruleID] {
			seen[ruleID] = true
			rules = append(rules, reportingRule(ruleID, f))
		}

		fileURI := toURI(f.FilePath)
		if strings.TrimSpace(fileURI) == "" {
			fileURI = "UNKNOWN"
		}
		start := f.Line
		if start <= 0 {
			start = 1
		}

		region := Region{StartLine: start}
		if f.Evidence != "" {
			region.Snippet = &Message{Text: f.Evidence}
		}
		results = append(results, Result{
			RuleID: ruleID,
			Level:  sevToLevel(f.Severity),
			Message: Message{
				Text: strings.TrimSpace(fmt.Sprintf("%s: %s", f.Title, f.Description)),
			},
			Locations: []Location{
				{
					PhysicalLocation: PhysicalLocation{
						ArtifactLocation: ArtifactLocation{
							URI: fileURI,
						},
						Region: region,
					},
				},
			},
		})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	return Log{
		Version: Version,
		Schema:  Schema,
		Runs: []Run{
			{
				Tool: Tool{
					Driver: Driver{
						Name:    toolName,
						Version: toolVersion,
						Rules:   rules,
					},
				},
				Results: results,
			},
		},
	}
}

// Export grava os findings em um arquivo .sarif, criando o diretório se preciso.
func Export(findings []model.Finding, outPath, toolName, toolVersion string) error {
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("criar dir sarif: %w", err)
		}
	}

	data, err := json.MarshalIndent(NewLog(findings, toolName, toolVersion), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sarif: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("escrever sarif: %w", err)
	}
	return nil
}

func SortFindings(fs []model.Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].FilePath == fs[j].FilePath {
			if fs[i].Line == fs[j].Line {
				return fs[i].RuleID < fs[j].RuleID
			}
			return fs[i].Line < fs[j].Line
		}
		return fs[i].FilePath < fs[j].FilePath
	})
}

func reportingRule(id string, f model.Finding) ReportingRule {
	r := ReportingRule{
		ID:               id,
		Name:             f.Title,
		ShortDescription: Message{Text: firstNonEmpty(f.Description, f.Title)},
		Properties: map[string]any{
			"category": f.Category,
			"severity": f.Severity.String(),
		},
	}
	if f.OWASPID != "" {
		r.Properties["owasp"] = f.OWASPID
	}
	if f.Remediation != "" {
		r.Help = &Message{Text: f.Remediation}
	}
	return r
}

func sevToLevel(s model.Severity) string {
	switch s {
	case model.SevCritical, model.SevHigh:
		return "error"
	case model.SevMedium:
		return "warning"
	default:
		return "note"
	}
}

func toURI(p string) string {
	p = strings.TrimSpace(p)
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}
	return strings.TrimPrefix(p, "./")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
