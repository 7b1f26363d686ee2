package logging

import (
	"go.uber.org/zap"
)

// Logger é o canal de diagnóstico (stderr). Antes de InitLogger descarta tudo.
var Logger = zap.NewNop().Sugar()

func InitLogger(debug bool) error {
	logger, err := New(debug)
	if err != nil {
		return err
	}
	Logger = logger
	return nil
}

// New monta o logger: em debug usa a config de desenvolvimento, senão a de
// produção em nível Warn, para que só avisos de arquivos ilegíveis apareçam.
func New(debug bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.Sampling = nil
	}
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// OrNop evita checagens de nil nos pacotes que recebem um logger opcional.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}

func Sync() {
	_ = Logger.Sync()
}
