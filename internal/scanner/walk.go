package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Sena-ops/owaspscan/internal/logging"
	"github.com/Sena-ops/owaspscan/internal/parser"
	"github.com/Sena-ops/owaspscan/internal/rules"
)

// ErrPathNotFound é o único erro fatal da varredura.
var ErrPathNotFound = errors.New("caminho não existe")

// DefaultExclude são nomes de diretório cuja subárvore nunca é escaneada.
var DefaultExclude = []string{
	"node_modules", ".git", "dist", "build", ".next", "__pycache__",
	"venv", ".venv", "env", ".env", "coverage", ".nyc_output",
}

type Options struct {
	Catalog      *rules.Catalog // nil = rules.Default()
	Exclude      []string       // somados a DefaultExclude
	Workers      int            // <= 1 = sequencial
	MaxFileBytes int64          // 0 = sem limite
	Logger       *zap.SugaredLogger
}

type FileResult struct {
	Path     string
	Language parser.Language
	Hits     []Hit
}

// Walk escaneia root (arquivo ou diretório). A ordem dos resultados segue a
// ordem léxica do WalkDir, com ou sem workers, para manter os ids estáveis.
func Walk(ctx context.Context, root string, opts Options) ([]FileResult, error) {
	if opts.Catalog == nil {
		opts.Catalog = rules.Default()
	}
	log := logging.OrNop(opts.Logger)

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPathNotFound, root, err)
	}

	var files []parser.SourceFile
	if info.IsDir() {
		exclude := excludeSet(opts.Exclude)
		if seg, ok := excludedSegment(root, exclude); ok {
			log.Debugw("Raiz dentro de diretório excluído", "raiz", root, "segmento", seg)
			return []FileResult{}, nil
		}
		files, err = collect(ctx, root, exclude, log)
		if err != nil {
			return nil, err
		}
	} else if src, ok := parser.Detect(root); ok && info.Mode().IsRegular() {
		// arquivo único: exclusões não se aplicam
		files = []parser.SourceFile{src}
	}
	log.Debugw("Arquivos elegíveis", "raiz", root, "total", len(files), "workers", opts.Workers)

	results := make([]FileResult, len(files))
	scan := func(i int) {
		src := files[i]
		results[i] = FileResult{
			Path:     src.Path,
			Language: src.Language,
			Hits:     scanOne(src, opts, log),
		}
		log.Debugw("Arquivo escaneado", "arquivo", src.Path, "achados", len(results[i].Hits))
	}

	if opts.Workers <= 1 {
		for i := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			scan(i)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range files {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scan(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// collect lista os arquivos suportados sob root. Uma raiz que é symlink para
// diretório é resolvida para o WalkDir, mas os caminhos devolvidos mantêm o
// prefixo informado pelo usuário.
func collect(ctx context.Context, root string, exclude map[string]bool, log *zap.SugaredLogger) ([]parser.SourceFile, error) {
	walkRoot, err := resolveRoot(root)
	if err != nil {
		log.Warnw("Não foi possível acessar", "caminho", root, "erro", err)
		return nil, nil
	}

	var files []parser.SourceFile
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			// permissão negada e afins são locais, inclusive na raiz
			log.Warnw("Não foi possível acessar", "caminho", userPath(root, walkRoot, path), "erro", walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == walkRoot {
			return nil
		}
		if exclude[d.Name()] {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isRegular(path, d) {
			return nil
		}
		if src, ok := parser.Detect(userPath(root, walkRoot, path)); ok {
			files = append(files, src)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("percorrer %s: %w", root, err)
	}
	return files, nil
}

func resolveRoot(root string) (string, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return "", err
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return root, nil
	}
	return filepath.EvalSymlinks(root)
}

func userPath(root, walkRoot, path string) string {
	if root == walkRoot {
		return path
	}
	rel, err := filepath.Rel(walkRoot, path)
	if err != nil {
		return path
	}
	return filepath.Join(root, rel)
}

// excludedSegment verifica os segmentos do próprio caminho da raiz, como informado.
func excludedSegment(root string, exclude map[string]bool) (string, bool) {
	for _, seg := range strings.Split(filepath.ToSlash(filepath.Clean(root)), "/") {
		if exclude[seg] {
			return seg, true
		}
	}
	return "", false
}

func scanOne(src parser.SourceFile, opts Options, log *zap.SugaredLogger) []Hit {
	if opts.MaxFileBytes > 0 {
		info, err := os.Stat(src.Path)
		if err != nil {
			log.Warnw("Não foi possível ler o arquivo", "arquivo", src.Path, "erro", err)
			return nil
		}
		if info.Size() > opts.MaxFileBytes {
			log.Warnw("Arquivo ignorado por tamanho", "arquivo", src.Path, "bytes", info.Size(), "limite", opts.MaxFileBytes)
			return nil
		}
	}
	return ScanFile(src.Path, src.Language, opts.Catalog, log)
}

func isRegular(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		return err == nil && info.Mode().IsRegular()
	}
	return d.Type().IsRegular()
}

func excludeSet(extra []string) map[string]bool {
	set := make(map[string]bool, len(DefaultExclude)+len(extra))
	for _, name := range DefaultExclude {
		set[name] = true
	}
	for _, name := range extra {
		if name != "" {
			set[name] = true
		}
	}
	return set
}

// CountHits soma os hits de todos os arquivos.
func CountHits(results []FileResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Hits)
	}
	return n
}
