package scanner

import (
	"slices"
	"strings"
)

// Method is one member function of a structurally extracted agent.
type Method struct {
	Name       string   `json:"name"`
	Docstring  string   `json:"docstring"`
	Parameters []string `json:"parameters"`
}

// Record is the fact sheet extracted for one agent.
//
// Dependencies and Connections are sets; Normalize renders them as sorted,
// de-duplicated slices so the JSON form is stable across runs.
type Record struct {
	Name         string   `json:"name"`
	SourcePath   string   `json:"source_path"`
	Description  string   `json:"description"`
	Methods      []Method `json:"methods"`
	Dependencies []string `json:"dependencies"`
	Connections  []string `json:"connections"`

	// mode is the extraction strategy that produced the record.
	mode Mode
	// body is the file text kept for connection resolution. Never serialized.
	body string
}

// Mode reports which extraction strategy produced the record.
func (r Record) Mode() Mode { return r.mode }

// Normalize sorts and de-duplicates the set fields, drops the record's own
// name from them and replaces nil slices with empty ones.
func (r *Record) Normalize() {
	r.Dependencies = normalizeSet(r.Dependencies, r.Name)
	r.Connections = normalizeSet(r.Connections, r.Name)
	if r.Methods == nil {
		r.Methods = []Method{}
	}
	for i := range r.Methods {
		if r.Methods[i].Parameters == nil {
			r.Methods[i].Parameters = []string{}
		}
	}
}

func normalizeSet(in []string, self string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || v == self {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// excludedDependencies are trivial utility modules never reported as
// dependencies.
var excludedDependencies = map[string]bool{
	"os": true, "sys": true, "re": true, "json": true, "time": true,
	"typing": true, "datetime": true, "logging": true, "math": true,
	"random": true, "collections": true, "pathlib": true,
	"fmt": true, "strings": true, "errors": true, "context": true, "io": true,
}

// IsExcludedDependency reports whether name belongs to the fixed denylist.
func IsExcludedDependency(name string) bool {
	return excludedDependencies[name]
}

// containsAgent is the name test shared by every extraction mode.
func containsAgent(name string) bool {
	return strings.Contains(strings.ToLower(name), "agent")
}
