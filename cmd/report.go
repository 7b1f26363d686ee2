package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/Sena-ops/owaspscan/internal/adapters"
	"github.com/Sena-ops/owaspscan/internal/config"
	"github.com/Sena-ops/owaspscan/internal/logging"
	"github.com/Sena-ops/owaspscan/internal/report"
	"github.com/Sena-ops/owaspscan/internal/sarif"
)

var reportJSON bool
var reportSARIF string

// reportCmd re-renderiza um relatório JSON salvo, sem escanear de novo.
var reportCmd = &cobra.Command{
	Use:   "report [arquivo.json]",
	Short: "Mostra um relatório JSON salvo e aplica o --fail-on",
	Example: `  owaspscan report report.json
  owaspscan report report.json --fail-on high --sarif out.sarif`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := outputOptions{
			JSON:  reportJSON,
			SARIF: reportSARIF,
			Color: !reportJSON && useColor(cfg),
		}
		code, err := runReport(args[0], cfg, out, cmd.OutOrStdout())
		if err != nil {
			logging.Logger.Errorw("Erro ao ler relatório", "arquivo", args[0], "erro", err)
			return exitError{code: 1}
		}
		if code != 0 {
			return exitError{code: code}
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Saída em JSON")
	reportCmd.Flags().StringVar(&reportSARIF, "sarif", "", "Converte o relatório para SARIF 2.1.0 neste arquivo")
	reportCmd.Flags().String("fail-on", "critical", "Sai com erro se houver achados nesta severidade ou acima")
	reportCmd.Flags().Bool("no-color", false, "Desabilita cores na saída")
	rootCmd.AddCommand(reportCmd)
}

func runReport(path string, cfg config.Config, out outputOptions, stdout io.Writer) (int, error) {
	findings, err := adapters.ParseReportFile(path)
	if err != nil {
		return 1, err
	}
	res := report.NewResult(findings)

	if err := render(res, out, stdout); err != nil {
		return 1, err
	}
	if out.SARIF != "" {
		if err := sarif.Export(res.Findings(), out.SARIF, toolName, Version); err != nil {
			return 1, err
		}
	}
	return report.ExitStatus(res.Summary(), cfg.FailOn), nil
}
