package scanner

import (
	"bufio"
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
)

// importPatterns match import-style lines across the languages the scanner
// recognizes. The first submatch is the imported module path.
var importPatterns = []struct {
	re   *regexp.Regexp
	seps string
}{
	{regexp.MustCompile(`^\s*import\s+.*\bfrom\s+['"]([^'"]+)['"]`), "/"},
	{regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`), "/"},
	{regexp.MustCompile(`^\s*import\s+(?:\w+\s+)?"([^"]+)"`), "/"},
	{regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\b`), "."},
	{regexp.MustCompile(`^\s*import\s+([\w.]+)`), "."},
}

// classPattern matches class declarations in unparsed source.
var classPattern = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?class[ \t]+([A-Za-z_]\w*)`)

// extractHeuristic derives records from raw text. A file whose stem names
// an agent yields one record named after the stem; otherwise each declared
// class whose name contains "agent" yields a record.
func extractHeuristic(path string, content []byte) []Record {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var names []string
	if stem != "" && containsAgent(stem) {
		names = []string{stem}
	} else {
		names = agentClasses(content)
	}
	if len(names) == 0 {
		return nil
	}

	text := string(content)
	desc := docBetweenDelimiters(text)
	deps := scanImports(content)
	records := make([]Record, 0, len(names))
	for _, name := range names {
		records = append(records, Record{
			Name:         name,
			SourcePath:   path,
			Description:  desc,
			Dependencies: append([]string(nil), deps...),
			mode:         ModeHeuristic,
			body:         text,
		})
	}
	return records
}

// agentClasses returns the distinct class names in content that contain
// "agent", in order of appearance.
func agentClasses(content []byte) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range classPattern.FindAllSubmatch(content, -1) {
		name := string(m[1])
		if seen[name] || !containsAgent(name) {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// docBetweenDelimiters returns the trimmed text between the first two
// triple-quote delimiters, or "".
func docBetweenDelimiters(text string) string {
	const delim = `"""`
	start := strings.Index(text, delim)
	if start < 0 {
		return ""
	}
	rest := text[start+len(delim):]
	end := strings.Index(rest, delim)
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// scanImports collects the first path segment of every import-style line.
func scanImports(content []byte) []string {
	var deps []string
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		for _, p := range importPatterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			deps = addDependency(deps, firstSegment(m[1], p.seps))
			break
		}
	}
	return deps
}
