package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Sena-ops/owaspscan/internal/parser"
	"github.com/Sena-ops/owaspscan/internal/rules"
)

var rulesJSON bool
var rulesLanguage string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Lista as regras do catálogo (embutidas e pacotes extras)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		catalog, err := rules.LoadCatalog(cfg.RulePacks...)
		if err != nil {
			return err
		}
		return listRules(cmd.OutOrStdout(), catalog, parser.Language(rulesLanguage), rulesJSON)
	},
}

func init() {
	rulesCmd.Flags().BoolVar(&rulesJSON, "json", false, "Saída em JSON")
	rulesCmd.Flags().StringVar(&rulesLanguage, "language", "", "Filtra por linguagem (js, py)")
	rulesCmd.Flags().StringArray("rules", nil, "Pacote de regras YAML extra (pode repetir)")
	rootCmd.AddCommand(rulesCmd)
}

type ruleDoc struct {
	ID       string `json:"id"`
	OWASPID  string `json:"owasp_id,omitempty"`
	Category string `json:"owasp_category"`
	Language string `json:"language"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Pattern  string `json:"pattern"`
}

func listRules(w io.Writer, catalog *rules.Catalog, lang parser.Language, asJSON bool) error {
	var list []rules.Rule
	if lang == "" {
		list = catalog.All()
	} else {
		list = catalog.ForLanguage(lang)
	}

	if asJSON {
		docs := make([]ruleDoc, 0, len(list))
		for _, r := range list {
			docs = append(docs, ruleDoc{
				ID:       r.ID,
				OWASPID:  r.OWASPID,
				Category: r.Category,
				Language: string(r.Language),
				Severity: r.Severity.String(),
				Title:    r.Title,
				Pattern:  r.Pattern,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEVERITY\tCATEGORY\tTITLE")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Severity.String(), r.Category, r.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d regras, %d categorias (catálogo %s)\n", len(list), len(catalog.Categories()), catalog.Version())
	return err
}
