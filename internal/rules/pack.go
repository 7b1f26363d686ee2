package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/Sena-ops/owaspscan/internal/model"
	"github.com/Sena-ops/owaspscan/internal/parser"
)

// Pack é um arquivo YAML com regras extras, somadas ao catálogo embutido na inicialização.
type Pack struct {
	Path     string     `yaml:"-"`
	Requires string     `yaml:"requires,omitempty"`
	Rules    []PackRule `yaml:"rules"`
}

type PackRule struct {
	ID          string `yaml:"id,omitempty"`
	Category    string `yaml:"category"`
	OWASPID     string `yaml:"owasp_id,omitempty"`
	Language    string `yaml:"language"`
	Pattern     string `yaml:"pattern"`
	Unless      string `yaml:"unless,omitempty"`
	Title       string `yaml:"title"`
	Severity    string `yaml:"severity"`
	Description string `yaml:"description,omitempty"`
	Remediation string `yaml:"remediation,omitempty"`
}

func LoadPack(path string) (Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pack{}, fmt.Errorf("ler pacote de regras %s: %w", path, err)
	}
	p, err := ParsePack(data)
	if err != nil {
		return Pack{}, fmt.Errorf("pacote de regras %s: %w", path, err)
	}
	p.Path = path
	return p, nil
}

func ParsePack(data []byte) (Pack, error) {
	var p Pack
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Pack{}, errors.New("arquivo vazio")
		}
		return Pack{}, fmt.Errorf("parse yaml: %w", err)
	}
	if len(p.Rules) == 0 {
		return Pack{}, errors.New("nenhuma regra declarada")
	}
	if p.Requires != "" {
		if !semver.IsValid(p.Requires) {
			return Pack{}, fmt.Errorf("%w: requires %q", ErrInvalidVersion, p.Requires)
		}
	}
	return p, nil
}

// Compatible informa se o pacote roda sobre um catálogo da versão informada.
func (p Pack) Compatible(version string) bool {
	return p.Requires == "" || semver.Compare(p.Requires, version) <= 0
}

func (p Pack) toRules() ([]Rule, error) {
	out := make([]Rule, 0, len(p.Rules))
	for i, pr := range p.Rules {
		sev, err := model.ParseSeverity(pr.Severity)
		if err != nil {
			return nil, fmt.Errorf("%w: regra #%d (%s): %v", ErrInvalidRule, i+1, pr.Title, err)
		}
		out = append(out, Rule{
			ID:          strings.TrimSpace(pr.ID),
			Category:    pr.Category,
			OWASPID:     strings.TrimSpace(pr.OWASPID),
			Language:    parser.Language(pr.Language),
			Pattern:     pr.Pattern,
			Unless:      pr.Unless,
			Title:       pr.Title,
			Severity:    sev,
			Description: pr.Description,
			Remediation: pr.Remediation,
		})
	}
	return out, nil
}

// Build monta o catálogo embutido acrescido dos pacotes, na ordem recebida.
func Build(packs ...Pack) (*Catalog, error) {
	b := NewBuilder(CatalogVersion).Add(BuiltinRules()...)
	for _, p := range packs {
		if !p.Compatible(CatalogVersion) {
			return nil, fmt.Errorf("%w: %s exige %s, catálogo é %s", ErrIncompatiblePack, packName(p), p.Requires, CatalogVersion)
		}
		rs, err := p.toRules()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", packName(p), err)
		}
		b.Add(rs...)
	}
	return b.Build()
}

// LoadCatalog carrega os pacotes dos caminhos e monta o catálogo.
func LoadCatalog(paths ...string) (*Catalog, error) {
	packs := make([]Pack, 0, len(paths))
	for _, path := range paths {
		p, err := LoadPack(path)
		if err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}
	return Build(packs...)
}

func packName(p Pack) string {
	if p.Path != "" {
		return p.Path
	}
	return "pacote de regras"
}
