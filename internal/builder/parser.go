package builder

import (
	"path/filepath"
	"regexp"
	"strings"
)

// ParsedSymbol is the record a Parser produces for one function or class
// found in a source file. This is the out-of-scope collaborator boundary
// (spec.md §1): real language parsers register a Parser here.
type ParsedSymbol struct {
	Name       string
	Kind       string // "function" or "class"
	StartLine  int
	EndLine    int
	IsExported bool
	DocComment string
}

// ParsedImport is one import/require/include statement found in a file.
type ParsedImport struct {
	Source string // as-written module string
}

// ParsedFile is everything a Parser extracts from one source file.
type ParsedFile struct {
	Symbols []ParsedSymbol
	Imports []ParsedImport
}

// Parser extracts symbols and imports from file content.
type Parser interface {
	Parse(path string, content []byte) (ParsedFile, error)
}

// ParserRegistry maps a file extension to the Parser that handles it.
type ParserRegistry struct {
	byExt map[string]Parser
}

// NewParserRegistry returns a registry pre-populated with the shipped
// heuristic fallback parser for Go-like and C-like syntax, sufficient to
// exercise the build pipeline end to end. Real tree-sitter-backed parsers
// register themselves into the same map.
func NewParserRegistry() *ParserRegistry {
	r := &ParserRegistry{byExt: make(map[string]Parser)}
	h := &heuristicParser{}
	for _, ext := range []string{".go", ".js", ".jsx", ".ts", ".tsx", ".java", ".c", ".h", ".cpp", ".py", ".rs"} {
		r.Register(ext, h)
	}
	return r
}

// Register adds or replaces the parser for a file extension.
func (r *ParserRegistry) Register(ext string, p Parser) {
	r.byExt[ext] = p
}

// For returns the parser registered for path's extension, if any.
func (r *ParserRegistry) For(path string) (Parser, bool) {
	p, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return p, ok
}

// heuristicParser finds function/class declarations and import-like
// statements with a small set of regexes rather than a real grammar. It
// favors recall over precision: it is the registry's always-available
// fallback, not a substitute for a real parser.
type heuristicParser struct{}

var (
	funcRe = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:public\s+|private\s+|protected\s+)?(?:async\s+)?(?:func|function|def|fn)\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	goFuncRe = regexp.MustCompile(`(?m)^func\s+(?:\([^)]*\)\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	classRe  = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:public\s+)?(?:abstract\s+)?class\s+([A-Za-z_][A-Za-z0-9_]*)`)
	goTypeRe = regexp.MustCompile(`(?m)^type\s+([A-Za-z_][A-Za-z0-9_]*)\s+struct\b`)
	importRe = regexp.MustCompile(`(?m)^\s*import\s+(?:[\w*{}\s,]+\s+from\s+)?["']([^"']+)["']`)
	goImportLineRe = regexp.MustCompile(`"([^"]+)"`)
)

func (heuristicParser) Parse(path string, content []byte) (ParsedFile, error) {
	text := string(content)
	lines := strings.Split(text, "\n")
	var out ParsedFile

	seen := map[int]bool{}
	addMatch := func(loc []int, name string, kind string) {
		start := lineOf(text, loc[0])
		if seen[start] {
			return
		}
		seen[start] = true
		out.Symbols = append(out.Symbols, ParsedSymbol{
			Name:       name,
			Kind:       kind,
			StartLine:  start,
			EndLine:    matchingEnd(lines, start),
			IsExported: isExported(name),
			DocComment: precedingDocComment(lines, start),
		})
	}

	for _, loc := range goFuncRe.FindAllStringSubmatchIndex(text, -1) {
		addMatch(loc, text[loc[2]:loc[3]], "function")
	}
	for _, loc := range funcRe.FindAllStringSubmatchIndex(text, -1) {
		addMatch(loc, text[loc[2]:loc[3]], "function")
	}
	for _, loc := range classRe.FindAllStringSubmatchIndex(text, -1) {
		addMatch(loc, text[loc[2]:loc[3]], "class")
	}
	for _, loc := range goTypeRe.FindAllStringSubmatchIndex(text, -1) {
		addMatch(loc, text[loc[2]:loc[3]], "class")
	}

	if strings.HasSuffix(strings.ToLower(path), ".go") {
		inImportBlock := false
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "import (") {
				inImportBlock = true
				continue
			}
			if inImportBlock {
				if trimmed == ")" {
					inImportBlock = false
					continue
				}
				if m := goImportLineRe.FindStringSubmatch(trimmed); m != nil {
					out.Imports = append(out.Imports, ParsedImport{Source: m[1]})
				}
				continue
			}
			if strings.HasPrefix(trimmed, "import ") {
				if m := goImportLineRe.FindStringSubmatch(trimmed); m != nil {
					out.Imports = append(out.Imports, ParsedImport{Source: m[1]})
				}
			}
		}
	} else {
		for _, m := range importRe.FindAllStringSubmatch(text, -1) {
			out.Imports = append(out.Imports, ParsedImport{Source: m[1]})
		}
	}

	return out, nil
}

func lineOf(text string, byteOffset int) int {
	return strings.Count(text[:byteOffset], "\n") + 1
}

// matchingEnd is a crude brace/indent-based end-line finder: for
// brace-style source, count braces from the declaration line until they
// balance; for indent-style source (Python), walk forward until a
// dedented non-blank line. Falls back to the declaration line itself.
func matchingEnd(lines []string, start int) int {
	if start-1 >= len(lines) {
		return start
	}
	decl := lines[start-1]
	if strings.Contains(decl, "{") || (start < len(lines) && strings.TrimSpace(safeLine(lines, start)) == "{") {
		depth := strings.Count(decl, "{") - strings.Count(decl, "}")
		for i := start; i < len(lines); i++ {
			depth += strings.Count(lines[i], "{") - strings.Count(lines[i], "}")
			if depth <= 0 && i > start-1 {
				return i + 1
			}
		}
		return len(lines)
	}
	if strings.HasSuffix(strings.TrimRight(decl, " \t"), ":") {
		baseIndent := indentOf(decl)
		for i := start; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "" {
				continue
			}
			if indentOf(lines[i]) <= baseIndent {
				return i
			}
		}
		return len(lines)
	}
	return start
}

func safeLine(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}

func indentOf(s string) int {
	n := 0
	for _, r := range s {
		if r == ' ' {
			n++
		} else if r == '\t' {
			n += 4
		} else {
			break
		}
	}
	return n
}

func isExported(name string) bool {
	if name == "" {
		return false
	}
	r := name[0]
	return r >= 'A' && r <= 'Z'
}

func precedingDocComment(lines []string, start int) string {
	var doc []string
	for i := start - 2; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, "//") {
			doc = append([]string{strings.TrimSpace(strings.TrimPrefix(trimmed, "//"))}, doc...)
			continue
		}
		if strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "/**") || strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "#") {
			doc = append([]string{strings.TrimSpace(strings.Trim(trimmed, `/*"# `))}, doc...)
			continue
		}
		break
	}
	return strings.TrimSpace(strings.Join(doc, " "))
}
