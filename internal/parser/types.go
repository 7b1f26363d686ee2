package parser

// Language é o domínio de varredura de um arquivo. É uma tag aberta:
// pacotes de regras podem usar outros valores.
type Language string

const (
	JavaScript Language = "js" // JavaScript e TypeScript
	Python     Language = "py"
)

type SourceFile struct {
	Language Language
	Path     string
}
