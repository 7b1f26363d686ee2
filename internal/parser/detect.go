package parser

import (
	"path/filepath"
	"strings"
)

var extensions = map[string]Language{
	".js":  JavaScript,
	".jsx": JavaScript,
	".ts":  JavaScript,
	".tsx": JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".py":  Python,
}

// Classify mapeia o caminho para uma linguagem suportada usando apenas a extensão.
// O segundo retorno é false para arquivos não suportados, que devem ser ignorados em silêncio.
func Classify(path string) (Language, bool) {
	lang, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// Detect é o atalho de Classify que já monta o SourceFile.
func Detect(path string) (SourceFile, bool) {
	lang, ok := Classify(path)
	if !ok {
		return SourceFile{}, false
	}
	return SourceFile{Language: lang, Path: path}, true
}
