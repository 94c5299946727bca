package scanner

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// agentDefinition is the YAML frontmatter of a markdown agent definition,
// as written for .claude/agents/*.md and similar directories.
type agentDefinition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Model       string `yaml:"model"`
	Tools       any    `yaml:"tools"`
}

var frontmatterDelim = []byte("---")

// extractDefinition reads a markdown file with YAML frontmatter. Files
// without frontmatter, or whose frontmatter names no agent, fall back to
// the heuristic mode.
func extractDefinition(path string, content []byte) ([]Record, error) {
	front, body, ok := splitFrontmatter(content)
	if !ok {
		return nil, errUnparseable
	}

	var def agentDefinition
	if err := yaml.Unmarshal(front, &def); err != nil {
		return nil, errUnparseable
	}
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return nil, errUnparseable
	}

	return []Record{{
		Name:        def.Name,
		SourcePath:  path,
		Description: strings.TrimSpace(def.Description),
		mode:        ModeDefinition,
		body:        string(body),
	}}, nil
}

// splitFrontmatter separates a leading "---" delimited YAML block from the
// rest of the document.
func splitFrontmatter(content []byte) (front, body []byte, ok bool) {
	trimmed := bytes.TrimLeft(content, "\ufeff \t\r\n")
	if !bytes.HasPrefix(trimmed, frontmatterDelim) {
		return nil, nil, false
	}
	rest := trimmed[len(frontmatterDelim):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return nil, nil, false
	}
	rest = rest[nl+1:]

	end := bytes.Index(rest, []byte("\n---"))
	switch {
	case bytes.HasPrefix(rest, frontmatterDelim):
		return nil, nil, false
	case end < 0:
		return nil, nil, false
	}
	front = rest[:end]
	body = rest[end+len("\n---"):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}
	return front, body, true
}
