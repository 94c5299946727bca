package scanner

import (
	"errors"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// ignoreDirs are directories skipped during tree walks: build outputs,
// caches, VCS and dependency directories.
var ignoreDirs = map[string]bool{
	"node_modules": true, ".git": true, "__pycache__": true,
	"vendor": true, "dist": true, "build": true, "target": true,
	".next": true, ".nuxt": true, "venv": true, ".venv": true,
	".idea": true, ".vscode": true, "coverage": true,
	".cache": true, ".tmp": true, ".terraform": true,
	".mypy_cache": true, ".pytest_cache": true, ".tox": true,
}

// recognizedExts are the source-code and structured-data extensions the
// enumerator yields.
var recognizedExts = map[string]bool{
	".py": true, ".go": true, ".js": true, ".ts": true,
	".json": true, ".yaml": true, ".yml": true, ".md": true,
}

// IsIgnoredDir reports whether a directory name is skipped during walks.
func IsIgnoredDir(name string) bool {
	return ignoreDirs[name]
}

// Recognized reports whether path has an extension the scanner inspects.
func Recognized(path string) bool {
	return recognizedExts[strings.ToLower(filepath.Ext(path))]
}

// Enumerator produces candidate files below a root directory.
type Enumerator struct {
	include []glob.Glob
	exclude []glob.Glob
	skip    map[string]bool
}

// NewEnumerator compiles the include/exclude patterns. Patterns match the
// slash-separated path relative to the scan root. skipPaths are
// directories or files never visited (the output directory, the config file).
func NewEnumerator(include, exclude, skipPaths []string) (*Enumerator, error) {
	inc, err := compileGlobs(include)
	if err != nil {
		return nil, err
	}
	exc, err := compileGlobs(exclude)
	if err != nil {
		return nil, err
	}
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}
	return &Enumerator{include: inc, exclude: exc, skip: skip}, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		m, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Join(ErrInvalidPattern, err)
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

// Files walks root in lexical order and yields every recognized regular
// file. Walk failures are yielded as (path, err) pairs and the walk goes on.
func (e *Enumerator) Files(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(path, err) {
					return fs.SkipAll
				}
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if rel == "." {
					return nil
				}
				if ignoreDirs[d.Name()] || e.skipped(path) || matchAny(e.exclude, rel) {
					return fs.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() || !Recognized(path) {
				return nil
			}
			if e.skipped(path) || matchAny(e.exclude, rel) {
				return nil
			}
			if len(e.include) > 0 && !matchAny(e.include, rel) {
				return nil
			}
			if !yield(path, nil) {
				return fs.SkipAll
			}
			return nil
		})
	}
}

func (e *Enumerator) skipped(path string) bool {
	if len(e.skip) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return e.skip[abs]
}

func matchAny(matchers []glob.Glob, rel string) bool {
	for _, m := range matchers {
		if m.Match(rel) {
			return true
		}
	}
	return false
}
