package scanner

import (
	"regexp"
)

// resolveConnections fills Connections for records that carry source text
// (heuristic and definition modes) by whole-word matching the names of
// every other known agent. Structural records keep an empty set.
func resolveConnections(records []Record) {
	if len(records) < 2 {
		return
	}

	names := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}

	patterns := make(map[string]*regexp.Regexp, len(names))
	for _, n := range names {
		patterns[n] = regexp.MustCompile(`(^|[^\w])` + regexp.QuoteMeta(n) + `($|[^\w])`)
	}

	for i := range records {
		r := &records[i]
		if r.mode == ModeStructural || r.body == "" {
			continue
		}
		for _, n := range names {
			if n == r.Name {
				continue
			}
			if patterns[n].MatchString(r.body) {
				r.Connections = append(r.Connections, n)
			}
		}
		r.Normalize()
	}
}
