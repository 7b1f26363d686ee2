package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Sena-ops/owaspscan/internal/logging"
	"github.com/Sena-ops/owaspscan/internal/model"
)

const (
	DefaultFile    = ".owaspscan.yaml"
	DefaultEnvFile = ".env"
)

// Config é a configuração já resolvida de uma varredura.
type Config struct {
	FailOn       model.Severity
	Workers      int
	MaxFileBytes int64
	Exclude      []string
	RulePacks    []string
	NoColor      bool
}

func Default() Config {
	return Config{
		FailOn:  model.SevCritical,
		Workers: 1,
	}
}

// File espelha o YAML. Campos nulos não sobrescrevem a camada anterior.
type File struct {
	FailOn       string   `yaml:"fail_on,omitempty"`
	Workers      *int     `yaml:"workers,omitempty"`
	MaxFileBytes *int64   `yaml:"max_file_size,omitempty"`
	Exclude      []string `yaml:"exclude,omitempty"`
	Rules        []string `yaml:"rules,omitempty"`
	NoColor      *bool    `yaml:"no_color,omitempty"`
}

type LoadOptions struct {
	ConfigPath string // vazio = DefaultFile, se existir
	EnvFile    string // vazio = DefaultEnvFile, se existir
	Logger     *zap.SugaredLogger
}

// Load aplica as camadas: padrão -> arquivo YAML -> .env/ambiente.
// Flags de linha de comando ficam por conta de quem chama.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	path, required := opts.ConfigPath, true
	if path == "" {
		path, required = DefaultFile, false
	}
	f, err := LoadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			f = File{}
		} else {
			return Config{}, err
		}
	}
	cfg, err = cfg.Apply(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	dotenv, err := readEnvFile(opts)
	if err != nil {
		return Config{}, err
	}

	cfg, err = cfg.ApplyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// readEnvFile lê o .env. O padrão é opcional: diretório (virtualenv em .env/),
// arquivo ilegível ou inválido só gera aviso. Um EnvFile explícito, se existir, precisa ser válido.
func readEnvFile(opts LoadOptions) (map[string]string, error) {
	if opts.EnvFile != "" {
		env, err := godotenv.Read(opts.EnvFile)
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("ler %s: %w", opts.EnvFile, err)
		}
		return env, nil
	}

	log := logging.OrNop(opts.Logger)
	info, err := os.Stat(DefaultEnvFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warnw("Ignorando .env", "arquivo", DefaultEnvFile, "erro", err)
		}
		return map[string]string{}, nil
	}
	if info.IsDir() {
		log.Warnw("Ignorando .env: é um diretório", "arquivo", DefaultEnvFile)
		return map[string]string{}, nil
	}
	env, err := godotenv.Read(DefaultEnvFile)
	if err != nil {
		log.Warnw("Ignorando .env", "arquivo", DefaultEnvFile, "erro", err)
		return map[string]string{}, nil
	}
	return env, nil
}

func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		return File{}, nil
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

func (c Config) Apply(f File) (Config, error) {
	if f.FailOn != "" {
		sev, err := model.ParseSeverity(f.FailOn)
		if err != nil {
			return c, fmt.Errorf("fail_on: %w", err)
		}
		c.FailOn = sev
	}
	if f.Workers != nil {
		c.Workers = *f.Workers
	}
	if f.MaxFileBytes != nil {
		c.MaxFileBytes = *f.MaxFileBytes
	}
	if len(f.Exclude) > 0 {
		c.Exclude = append(c.Exclude, f.Exclude...)
	}
	if len(f.Rules) > 0 {
		c.RulePacks = append(c.RulePacks, f.Rules...)
	}
	if f.NoColor != nil {
		c.NoColor = *f.NoColor
	}
	return c, nil
}

// ApplyEnv lê OWASPSCAN_* e NO_COLOR através de lookup.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) (Config, error) {
	if v, ok := lookup("OWASPSCAN_FAIL_ON"); ok && v != "" {
		sev, err := model.ParseSeverity(v)
		if err != nil {
			return c, fmt.Errorf("OWASPSCAN_FAIL_ON: %w", err)
		}
		c.FailOn = sev
	}
	if v, ok := lookup("OWASPSCAN_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return c, fmt.Errorf("OWASPSCAN_WORKERS inválido: %w", err)
		}
		c.Workers = n
	}
	if v, ok := lookup("OWASPSCAN_MAX_FILE_SIZE"); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return c, fmt.Errorf("OWASPSCAN_MAX_FILE_SIZE inválido: %w", err)
		}
		c.MaxFileBytes = n
	}
	if v, ok := lookup("OWASPSCAN_EXCLUDE"); ok {
		c.Exclude = append(c.Exclude, splitList(v)...)
	}
	if v, ok := lookup("OWASPSCAN_RULES"); ok {
		c.RulePacks = append(c.RulePacks, splitList(v)...)
	}
	if v, ok := lookup("NO_COLOR"); ok && v != "" {
		c.NoColor = true
	}
	return c, nil
}

func (c Config) Validate() error {
	if !c.FailOn.Valid() {
		return fmt.Errorf("fail_on inválido: %q", c.FailOn)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers precisa ser >= 1, recebido %d", c.Workers)
	}
	if c.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_size não pode ser negativo")
	}
	return nil
}

func splitList(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
