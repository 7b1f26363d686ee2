package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Sena-ops/owaspscan/internal/config"
	"github.com/Sena-ops/owaspscan/internal/logging"
)

// Version é sobrescrita no build com -ldflags.
var Version = "0.1.0"

var debugMode bool
var configPath string

var rootCmd = &cobra.Command{
	Use:           "owaspscan",
	Short:         "owaspscan - Scanner estático de padrões OWASP Top 10 (JS/TS e Python)",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.InitLogger(debugMode); err != nil {
			return fmt.Errorf("erro ao iniciar logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Habilita logs em nível debug")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Arquivo de configuração YAML (padrão: "+config.DefaultFile+" se existir)")
}

// exitError só carrega o código de saída; a mensagem já foi emitida.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintln(os.Stderr, "Erro:", err)
	return 1
}

// loadConfig resolve padrão -> arquivo -> ambiente e aplica as flags alteradas.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigPath: configPath, Logger: logging.Logger})
	if err != nil {
		return config.Config{}, err
	}
	return applyFlags(cmd, cfg)
}

func useColor(cfg config.Config) bool {
	if cfg.NoColor {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
