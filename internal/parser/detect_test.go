package parser

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected Language
		ok       bool
	}{
		{"javascript", "src/app.js", JavaScript, true},
		{"jsx", "src/App.jsx", JavaScript, true},
		{"typescript", "api/users.ts", JavaScript, true},
		{"tsx_upper", "ui/Page.TSX", JavaScript, true},
		{"esm", "lib/index.mjs", JavaScript, true},
		{"commonjs", "lib/index.cjs", JavaScript, true},
		{"python", "app/views.py", Python, true},
		{"python_upper", "SETUP.PY", Python, true},
		{"go", "main.go", "", false},
		{"no_extension", "Makefile", "", false},
		{"dotfile", ".env", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, ok := Classify(tt.path)
			if ok != tt.ok || lang != tt.expected {
				t.Errorf("esperado (%q, %v), obtido (%q, %v)", tt.expected, tt.ok, lang, ok)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	f, ok := Detect("server.ts")
	if !ok {
		t.Fatal("esperado arquivo suportado")
	}
	if f.Language != JavaScript || f.Path != "server.ts" {
		t.Errorf("resultado inesperado: %+v", f)
	}

	if _, ok := Detect("README.md"); ok {
		t.Error("README.md não deveria ser suportado")
	}
}
