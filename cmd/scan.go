package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sena-ops/owaspscan/internal/config"
	"github.com/Sena-ops/owaspscan/internal/logging"
	"github.com/Sena-ops/owaspscan/internal/model"
	"github.com/Sena-ops/owaspscan/internal/report"
	"github.com/Sena-ops/owaspscan/internal/rules"
	"github.com/Sena-ops/owaspscan/internal/sarif"
	"github.com/Sena-ops/owaspscan/internal/scanner"
)

const toolName = "owaspscan"

var jsonOutput bool
var outputPath string
var sarifPath string

type outputOptions struct {
	JSON   bool
	Output string // caminho extra para o JSON
	SARIF  string
	Color  bool
}

var scanCmd = &cobra.Command{
	Use:   "scan [caminho]",
	Short: "Escaneia um arquivo ou diretório em busca de padrões OWASP Top 10",
	Example: `  owaspscan scan /path/to/project
  owaspscan scan src/api/users.js --json
  owaspscan scan . --output report.json --fail-on high`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := outputOptions{
			JSON:   jsonOutput,
			Output: outputPath,
			SARIF:  sarifPath,
			Color:  !jsonOutput && useColor(cfg),
		}

		code, err := runScan(cmd.Context(), args[0], cfg, out, cmd.OutOrStdout(), logging.Logger)
		if err != nil {
			logging.Logger.Errorw("Erro ao escanear", "erro", err)
			return exitError{code: 1}
		}
		if code != 0 {
			return exitError{code: code}
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Saída em JSON")
	scanCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Grava também o relatório JSON neste arquivo")
	scanCmd.Flags().StringVar(&sarifPath, "sarif", "", "Grava também um relatório SARIF 2.1.0 neste arquivo")
	scanCmd.Flags().String("fail-on", string(model.SevCritical), "Sai com erro se houver achados nesta severidade ou acima (critical, high, medium, low)")
	scanCmd.Flags().StringArray("rules", nil, "Pacote de regras YAML extra (pode repetir)")
	scanCmd.Flags().StringSlice("exclude", nil, "Nomes de diretório extras a ignorar (ex: vendor,tmp)")
	scanCmd.Flags().Int("workers", 1, "Arquivos escaneados em paralelo")
	scanCmd.Flags().Int64("max-file-size", 0, "Ignora arquivos maiores que N bytes (0 = sem limite)")
	scanCmd.Flags().Bool("no-color", false, "Desabilita cores na saída")
	rootCmd.AddCommand(scanCmd)
}

// runScan executa a varredura e devolve o código de saída pelo threshold.
// Erro só em condição fatal (caminho inexistente, regras inválidas, falha de escrita).
func runScan(ctx context.Context, root string, cfg config.Config, out outputOptions, stdout io.Writer, log *zap.SugaredLogger) (int, error) {
	log = logging.OrNop(log)

	catalog, err := rules.LoadCatalog(cfg.RulePacks...)
	if err != nil {
		return 1, err
	}
	log.Debugw("Catálogo carregado", "versao", catalog.Version(), "regras", catalog.Len(), "pacotes", len(cfg.RulePacks))
	log.Infof("Escaneando: %s", root)

	results, err := scanner.Walk(ctx, root, scanner.Options{
		Catalog:      catalog,
		Exclude:      cfg.Exclude,
		Workers:      cfg.Workers,
		MaxFileBytes: cfg.MaxFileBytes,
		Logger:       log,
	})
	if err != nil {
		return 1, err
	}

	log.Debugw("Varredura concluída", "arquivos", len(results), "hits", scanner.CountHits(results))

	collector := report.NewCollector()
	collector.AddResults(results)
	res := collector.Result()

	if err := render(res, out, stdout); err != nil {
		return 1, err
	}
	if out.SARIF != "" {
		if err := sarif.Export(res.Findings(), out.SARIF, toolName, Version); err != nil {
			return 1, err
		}
		log.Infow("SARIF salvo com sucesso", "arquivo", out.SARIF)
	}

	return report.ExitStatus(res.Summary(), cfg.FailOn), nil
}

func render(res report.Result, out outputOptions, stdout io.Writer) error {
	if out.JSON {
		data, err := report.JSON(res)
		if err != nil {
			return err
		}
		if out.Output != "" {
			if err := report.WriteJSON(out.Output, res); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Report written to %s\n", out.Output)
			return nil
		}
		_, err = stdout.Write(data)
		return err
	}

	if err := report.WriteHuman(stdout, res, report.HumanOptions{Color: out.Color}); err != nil {
		return err
	}
	if out.Output != "" {
		if err := report.WriteJSON(out.Output, res); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nJSON report written to %s\n", out.Output)
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	fs := cmd.Flags()
	if fs.Changed("fail-on") {
		v, _ := fs.GetString("fail-on")
		sev, err := model.ParseSeverity(v)
		if err != nil {
			return config.Config{}, fmt.Errorf("--fail-on: %w", err)
		}
		cfg.FailOn = sev
	}
	if fs.Changed("workers") {
		cfg.Workers, _ = fs.GetInt("workers")
	}
	if fs.Changed("max-file-size") {
		cfg.MaxFileBytes, _ = fs.GetInt64("max-file-size")
	}
	if fs.Changed("exclude") {
		v, _ := fs.GetStringSlice("exclude")
		cfg.Exclude = append(cfg.Exclude, v...)
	}
	if fs.Changed("rules") {
		v, _ := fs.GetStringArray("rules")
		cfg.RulePacks = append(cfg.RulePacks, v...)
	}
	if fs.Changed("no-color") {
		cfg.NoColor, _ = fs.GetBool("no-color")
	}
	return cfg, cfg.Validate()
}
