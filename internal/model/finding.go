package model

import (
	"fmt"
	"strings"
)

type Severity string

const (
	SevCritical Severity = "critical"
	SevHigh     Severity = "high"
	SevMedium   Severity = "medium"
	SevLow      Severity = "low"
)

// Severities lista os níveis do mais grave para o menos grave.
var Severities = []Severity{SevCritical, SevHigh, SevMedium, SevLow}

// Rank retorna 0 para critical e cresce conforme a gravidade diminui.
// Severidades desconhecidas ficam depois de todas as conhecidas.
func (s Severity) Rank() int {
	switch s {
	case SevCritical:
		return 0
	case SevHigh:
		return 1
	case SevMedium:
		return 2
	case SevLow:
		return 3
	default:
		return len(Severities)
	}
}

func (s Severity) Valid() bool {
	return s.Rank() < len(Severities)
}

// AtLeast informa se s é tão grave quanto (ou mais grave que) threshold.
func (s Severity) AtLeast(threshold Severity) bool {
	return s.Valid() && s.Rank() <= threshold.Rank()
}

func (s Severity) String() string {
	return string(s)
}

func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("severidade inválida %q (use critical, high, medium ou low)", raw)
	}
	return s, nil
}

type Finding struct {
	ID          string   // OWASP-0001, sequencial por execução
	Severity    Severity // severidade da regra
	Category    string   // ex: "Injection"
	OWASPID     string   // ex: "A03"
	RuleID      string   // id estável da regra no catálogo
	Title       string   // nome curto da regra
	FilePath    string   // caminho como foi escaneado
	Line        int      // 1-based
	Evidence    string   // linha sem espaços nas pontas, até 100 caracteres
	Description string
	Remediation string
}

// Summary é sempre derivado de uma lista de findings; nunca é preenchido à mão.
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

func Summarize(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case SevCritical:
			s.Critical++
		case SevHigh:
			s.High++
		case SevMedium:
			s.Medium++
		case SevLow:
			s.Low++
		}
	}
	s.Total = len(findings)
	return s
}

// Count retorna a contagem de uma severidade.
func (s Summary) Count(sev Severity) int {
	switch sev {
	case SevCritical:
		return s.Critical
	case SevHigh:
		return s.High
	case SevMedium:
		return s.Medium
	case SevLow:
		return s.Low
	default:
		return 0
	}
}
