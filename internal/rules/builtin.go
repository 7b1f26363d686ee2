package rules

import (
	"github.com/Sena-ops/owaspscan/internal/model"
	"github.com/Sena-ops/owaspscan/internal/parser"
)

type entry struct {
	pattern     string
	unless      string
	title       string
	severity    model.Severity
	description string
	remediation string
}

type category struct {
	owaspID string
	name    string
	rules   map[parser.Language][]entry
}

// Tabela embutida: categoria -> linguagem -> regras. Novas detecções entram aqui,
// sem tocar no scanner. O RE2 não tem lookahead, então exclusões usam "unless".
var builtin = []category{
	{
		owaspID: "A03",
		name:    "Injection",
		rules: map[parser.Language][]entry{
			parser.JavaScript: {
				{`eval\s*\(`, "", "eval() usage", model.SevCritical,
					"eval() can execute arbitrary code",
					"Use JSON.parse() for data, avoid dynamic code execution"},
				{`new\s+Function\s*\(`, "", "new Function() usage", model.SevCritical,
					"new Function() can execute arbitrary code",
					"Avoid dynamic function creation, use static alternatives"},
				{`child_process\.exec\s*\([^)]*\+`, "", "Command injection risk", model.SevCritical,
					"String concatenation in exec() allows command injection",
					"Use execFile() with array arguments, validate input"},
				{`\.innerHTML\s*=`, "", "innerHTML assignment", model.SevHigh,
					"innerHTML can execute scripts in user content",
					"Use textContent for text, sanitize HTML with DOMPurify"},
				{`document\.write\s*\(`, "", "document.write() usage", model.SevHigh,
					"document.write() can inject malicious content",
					"Use DOM manipulation methods instead"},
				{`\$\{[^}]+\}.*(?:SELECT|INSERT|UPDATE|DELETE)`, "", "SQL template injection", model.SevCritical,
					"Template literals in SQL queries allow injection",
					"Use parameterized queries with placeholders"},
			},
			parser.Python: {
				{`eval\s*\(`, "", "eval() usage", model.SevCritical,
					"eval() executes arbitrary Python code",
					"Use ast.literal_eval() for data, avoid eval()"},
				{`exec\s*\(`, "", "exec() usage", model.SevCritical,
					"exec() executes arbitrary Python code",
					"Avoid exec(), use safer alternatives"},
				{`subprocess\..*shell\s*=\s*True`, "", "Shell=True in subprocess", model.SevCritical,
					"shell=True allows command injection",
					"Use shell=False with list arguments"},
				{`pickle\.loads?\s*\(`, "", "Pickle deserialization", model.SevCritical,
					"Pickle can execute arbitrary code during deserialization",
					"Use JSON or other safe serialization formats"},
				{`yaml\.load\s*\([^)]*\)`, `yaml\.load\s*\([^)]*\)\s*,\s*Loader`, "Unsafe YAML load", model.SevHigh,
					"yaml.load() without SafeLoader can execute code",
					"Use yaml.safe_load() or Loader=yaml.SafeLoader"},
				{`cursor\.execute\s*\([^)]*%`, "", "SQL string formatting", model.SevCritical,
					"String formatting in SQL queries allows injection",
					"Use parameterized queries: cursor.execute(sql, (param,))"},
				{`cursor\.execute\s*\([^)]*\.format`, "", "SQL .format() injection", model.SevCritical,
					".format() in SQL queries allows injection",
					"Use parameterized queries with placeholders"},
			},
		},
	},
	{
		owaspID: "A02",
		name:    "Cryptographic Failures",
		rules: map[parser.Language][]entry{
			parser.JavaScript: {
				{`crypto\.createHash\s*\(['"]md5['"]\)`, "", "MD5 hash usage", model.SevHigh,
					"MD5 is cryptographically broken",
					"Use SHA-256 or better for integrity, bcrypt/argon2 for passwords"},
				{`crypto\.createHash\s*\(['"]sha1['"]\)`, "", "SHA1 hash usage", model.SevMedium,
					"SHA1 is deprecated for security purposes",
					"Use SHA-256 or better"},
				{`Math\.random\s*\(`, "", "Math.random() for security", model.SevMedium,
					"Math.random() is not cryptographically secure",
					"Use crypto.randomBytes() or crypto.getRandomValues()"},
			},
			parser.Python: {
				{`hashlib\.md5\s*\(`, "", "MD5 hash usage", model.SevHigh,
					"MD5 is cryptographically broken",
					"Use hashlib.sha256() or better, bcrypt for passwords"},
				{`hashlib\.sha1\s*\(`, "", "SHA1 hash usage", model.SevMedium,
					"SHA1 is deprecated for security purposes",
					"Use hashlib.sha256() or better"},
				{`random\.(random|randint|choice)`, "", "random module for security", model.SevMedium,
					"random module is not cryptographically secure",
					"Use secrets module for security-sensitive randomness"},
			},
		},
	},
	{
		owaspID: "A05",
		name:    "Security Misconfiguration",
		rules: map[parser.Language][]entry{
			parser.JavaScript: {
				{`cors\s*\(\s*\)`, "", "CORS allow all", model.SevHigh,
					"Unrestricted CORS allows any origin",
					"Configure specific allowed origins"},
				{`app\.use\s*\(\s*cors\s*\(\s*\{\s*origin\s*:\s*['"]?\*`, "", "CORS wildcard origin", model.SevHigh,
					"CORS wildcard allows any origin",
					"Specify allowed origins explicitly"},
				{`debug\s*[:=]\s*true`, "", "Debug mode enabled", model.SevMedium,
					"Debug mode may expose sensitive information",
					"Disable debug mode in production"},
				{`NODE_ENV\s*!==?\s*['"]production`, "", "Non-production check", model.SevLow,
					"Ensure production settings in deployment",
					"Use environment-specific configuration"},
			},
			parser.Python: {
				{`DEBUG\s*=\s*True`, "", "Django DEBUG=True", model.SevHigh,
					"Debug mode exposes sensitive error details",
					"Set DEBUG=False in production"},
				{`ALLOWED_HOSTS\s*=\s*\[\s*['"]?\*`, "", "Django wildcard hosts", model.SevHigh,
					"Wildcard ALLOWED_HOSTS is insecure",
					"Specify exact hostnames"},
				{`app\.run\s*\([^)]*debug\s*=\s*True`, "", "Flask debug mode", model.SevHigh,
					"Debug mode enables code execution via debugger",
					"Disable debug mode in production"},
			},
		},
	},
	{
		owaspID: "A07",
		name:    "Authentication Failures",
		rules: map[parser.Language][]entry{
			parser.JavaScript: {
				{`jwt\.sign\s*\([^)]*expiresIn\s*:\s*['"]?\d{8,}`, "", "Long JWT expiry", model.SevMedium,
					"Very long token expiration increases risk",
					"Use shorter expiration times (hours, not days)"},
				{`password.*['"][a-zA-Z0-9]{1,7}['"]`, "", "Short password constant", model.SevHigh,
					"Hardcoded short password is insecure",
					"Remove hardcoded passwords, use secrets management"},
				{`bcrypt.*rounds?\s*[:=]\s*[1-9]\b`, "", "Low bcrypt rounds", model.SevMedium,
					"Low bcrypt rounds make passwords easier to crack",
					"Use at least 10-12 rounds"},
			},
			parser.Python: {
				{`password.*=\s*['"][a-zA-Z0-9]{1,7}['"]`, "", "Short password constant", model.SevHigh,
					"Hardcoded short password is insecure",
					"Remove hardcoded passwords, use secrets management"},
				{`SECRET_KEY\s*=\s*['"][^'"]{1,20}['"]`, "", "Short SECRET_KEY", model.SevHigh,
					"Short secret key is vulnerable to brute force",
					"Use at least 50 random characters"},
			},
		},
	},
	{
		owaspID: "A10",
		name:    "SSRF",
		rules: map[parser.Language][]entry{
			parser.JavaScript: {
				{`fetch\s*\(\s*(?:req\.(?:query|body|params)|[a-zA-Z]+Input)`, "", "SSRF risk in fetch", model.SevHigh,
					"User input directly in fetch URL allows SSRF",
					"Validate and whitelist allowed domains"},
				{`axios\.\w+\s*\(\s*(?:req\.(?:query|body|params)|[a-zA-Z]+Input)`, "", "SSRF risk in axios", model.SevHigh,
					"User input directly in axios URL allows SSRF",
					"Validate and whitelist allowed domains"},
			},
			parser.Python: {
				{`requests\.\w+\s*\(\s*(?:request\.\w+|user_input|url_param)`, "", "SSRF risk in requests", model.SevHigh,
					"User input directly in request URL allows SSRF",
					"Validate and whitelist allowed domains"},
				{`urllib\.request\.urlopen\s*\(\s*[a-zA-Z]`, "", "SSRF risk in urllib", model.SevHigh,
					"Unvalidated URL in urlopen allows SSRF",
					"Validate and whitelist allowed domains"},
			},
		},
	},
}

var builtinLanguages = []parser.Language{parser.JavaScript, parser.Python}

// BuiltinRules expande a tabela embutida em regras, na ordem do catálogo.
func BuiltinRules() []Rule {
	var out []Rule
	for _, cat := range builtin {
		for _, lang := range builtinLanguages {
			for _, e := range cat.rules[lang] {
				out = append(out, Rule{
					Category:    cat.name,
					OWASPID:     cat.owaspID,
					Language:    lang,
					Pattern:     e.pattern,
					Unless:      e.unless,
					Title:       e.title,
					Severity:    e.severity,
					Description: e.description,
					Remediation: e.remediation,
				})
			}
		}
	}
	return out
}

// Default monta o catálogo embutido. A tabela é fixa, então um erro aqui é bug.
func Default() *Catalog {
	c, err := NewBuilder(CatalogVersion).Add(BuiltinRules()...).Build()
	if err != nil {
		panic("catálogo embutido inválido: " + err.Error())
	}
	return c
}
