package rules

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/Sena-ops/owaspscan/internal/model"
	"github.com/Sena-ops/owaspscan/internal/parser"
)

// CatalogVersion é a versão do catálogo embutido. Pacotes de regras
// declaram em "requires" a versão mínima de que precisam.
const CatalogVersion = "v1.0.0"

type Rule struct {
	ID          string
	Category    string
	OWASPID     string
	Language    parser.Language
	Pattern     string
	Unless      string // opcional: linha que casa com Unless não gera finding
	Title       string
	Severity    model.Severity
	Description string
	Remediation string

	re     *regexp.Regexp
	unless *regexp.Regexp
}

// Match faz a busca case-insensitive da regra na linha crua.
// Regras que não passaram pelo Builder nunca casam.
func (r Rule) Match(line string) bool {
	if r.re == nil || !r.re.MatchString(line) {
		return false
	}
	return r.unless == nil || !r.unless.MatchString(line)
}

// Catalog é imutável depois de Build e pode ser compartilhado entre goroutines.
type Catalog struct {
	version    string
	categories []string
	languages  []parser.Language
	byCategory map[string]map[parser.Language][]Rule
	byLanguage map[parser.Language][]Rule
	size       int
}

func (c *Catalog) Version() string { return c.version }

func (c *Catalog) Len() int { return c.size }

func (c *Catalog) Categories() []string { return slices.Clone(c.categories) }

func (c *Catalog) Languages() []parser.Language { return slices.Clone(c.languages) }

// RulesFor retorna as regras de uma categoria para uma linguagem, na ordem do catálogo.
// Um par sem regras devolve uma lista vazia.
func (c *Catalog) RulesFor(category string, lang parser.Language) []Rule {
	return slices.Clone(c.byCategory[category][lang])
}

// ForLanguage junta as regras de todas as categorias para a linguagem,
// na ordem das categorias e depois na ordem das regras.
func (c *Catalog) ForLanguage(lang parser.Language) []Rule {
	return slices.Clone(c.byLanguage[lang])
}

// All retorna todas as regras, categoria por categoria.
func (c *Catalog) All() []Rule {
	out := make([]Rule, 0, c.size)
	for _, cat := range c.categories {
		for _, lang := range c.languages {
			out = append(out, c.byCategory[cat][lang]...)
		}
	}
	return out
}

var (
	ErrInvalidRule      = errors.New("regra inválida")
	ErrDuplicateRule    = errors.New("regra duplicada")
	ErrIncompatiblePack = errors.New("pacote de regras incompatível com o catálogo")
	ErrInvalidVersion   = errors.New("versão semver inválida")
)

type Builder struct {
	version string
	rules   []Rule
}

func NewBuilder(version string) *Builder {
	return &Builder{version: version}
}

func (b *Builder) Add(rs ...Rule) *Builder {
	b.rules = append(b.rules, rs...)
	return b
}

// Build valida e compila todas as regras. O Builder pode ser descartado depois.
func (b *Builder) Build() (*Catalog, error) {
	if !semver.IsValid(b.version) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, b.version)
	}

	c := &Catalog{
		version:    b.version,
		byCategory: map[string]map[parser.Language][]Rule{},
		byLanguage: map[parser.Language][]Rule{},
	}
	seen := map[string]bool{}
	langSeen := map[parser.Language]bool{}

	for i, r := range b.rules {
		r.Category = strings.TrimSpace(r.Category)
		r.Language = parser.Language(strings.ToLower(strings.TrimSpace(string(r.Language))))
		if r.Category == "" || r.Language == "" || strings.TrimSpace(r.Pattern) == "" || strings.TrimSpace(r.Title) == "" {
			return nil, fmt.Errorf("%w: regra #%d precisa de category, language, pattern e title", ErrInvalidRule, i+1)
		}
		if !r.Severity.Valid() {
			return nil, fmt.Errorf("%w: regra %q com severidade %q", ErrInvalidRule, r.Title, r.Severity)
		}

		key := r.Category + "\x00" + string(r.Language) + "\x00" + r.Pattern
		if seen[key] {
			return nil, fmt.Errorf("%w: %s/%s %q", ErrDuplicateRule, r.Category, r.Language, r.Pattern)
		}
		seen[key] = true

		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: regra %q: %v", ErrInvalidRule, r.Title, err)
		}
		r.re = re
		if strings.TrimSpace(r.Unless) != "" {
			unless, err := regexp.Compile("(?i)" + r.Unless)
			if err != nil {
				return nil, fmt.Errorf("%w: regra %q (unless): %v", ErrInvalidRule, r.Title, err)
			}
			r.unless = unless
		}

		langs, ok := c.byCategory[r.Category]
		if !ok {
			langs = map[parser.Language][]Rule{}
			c.byCategory[r.Category] = langs
			c.categories = append(c.categories, r.Category)
		}
		if r.ID == "" {
			r.ID = ruleID(r, len(langs[r.Language])+1)
		}
		langs[r.Language] = append(langs[r.Language], r)
		if !langSeen[r.Language] {
			langSeen[r.Language] = true
			c.languages = append(c.languages, r.Language)
		}
		c.size++
	}

	sort.Slice(c.languages, func(i, j int) bool { return c.languages[i] < c.languages[j] })
	for _, cat := range c.categories {
		for _, lang := range c.languages {
			c.byLanguage[lang] = append(c.byLanguage[lang], c.byCategory[cat][lang]...)
		}
	}
	return c, nil
}

func ruleID(r Rule, n int) string {
	prefix := r.OWASPID
	if prefix == "" {
		prefix = strings.ToUpper(strings.ReplaceAll(r.Category, " ", "_"))
	}
	return fmt.Sprintf("%s-%s-%03d", prefix, r.Language, n)
}
