package scanner

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Sena-ops/owaspscan/internal/logging"
	"github.com/Sena-ops/owaspscan/internal/parser"
	"github.com/Sena-ops/owaspscan/internal/rules"
)

const maxEvidenceRunes = 100

var commentPrefixes = []string{"//", "#", "/*", `"""`, "'''"}

// Hit é um casamento ainda sem id; o report.Collector numera na ordem de chegada.
type Hit struct {
	Rule     rules.Rule
	Line     int // 1-based
	Evidence string
}

// IsComment só olha o começo da linha já sem espaços. Comentários no meio da
// linha ou blocos abertos em linhas anteriores não são detectados.
func IsComment(trimmed string) bool {
	for _, p := range commentPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// ScanFile lê o arquivo inteiro e aplica as regras da linguagem.
// Falha de leitura vira aviso no logger e o arquivo não contribui com achados.
func ScanFile(path string, lang parser.Language, catalog *rules.Catalog, log *zap.SugaredLogger) []Hit {
	log = logging.OrNop(log)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warnw("Não foi possível ler o arquivo", "arquivo", path, "erro", err)
		return nil
	}

	// bytes inválidos em UTF-8 são descartados, não é erro
	return ScanLines(strings.ToValidUTF8(string(data), ""), catalog.ForLanguage(lang))
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ScanLines aplica as regras linha a linha. Uma linha pode gerar vários hits.
// \r\n e \r isolado contam como fim de linha.
func ScanLines(content string, rs []rules.Rule) []Hit {
	if len(rs) == 0 {
		return nil
	}

	var hits []Hit
	for i, line := range strings.Split(newlines.Replace(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if IsComment(trimmed) {
			continue
		}
		for _, r := range rs {
			if r.Match(line) {
				hits = append(hits, Hit{
					Rule:     r,
					Line:     i + 1,
					Evidence: truncate(trimmed, maxEvidenceRunes),
				})
			}
		}
	}
	return hits
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
