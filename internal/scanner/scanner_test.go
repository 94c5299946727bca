package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file under root, creating parent dirs.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func newTestScanner(t *testing.T, opts Options) *Scanner {
	t.Helper()
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func recordNames(records []Record) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names
}

func TestScan_EmptyDirectory(t *testing.T) {
	report, err := newTestScanner(t, Options{}).Scan(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, report.Records)
	assert.Empty(t, report.Outcomes)
}

func TestScan_NoQualifyingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.py", "def main():\n    pass\n")
	writeFile(t, dir, "notes.txt", "agent notes")

	report, err := newTestScanner(t, Options{}).Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, report.Records)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, StatusEmpty, report.Outcomes[0].Status)
}

func TestScan_PythonAgentClass(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pricing.py", "class PricingAgent:\n    def fetch(self, sku):\n        ...\n")

	report, err := newTestScanner(t, Options{}).Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, report.Records, 1)

	rec := report.Records[0]
	assert.Equal(t, "PricingAgent", rec.Name)
	assert.Equal(t, path, rec.SourcePath)
	assert.Equal(t, ModeStructural, rec.Mode())
	assert.Equal(t, []Method{{Name: "fetch", Docstring: "", Parameters: []string{"self", "sku"}}}, rec.Methods)
	assert.Empty(t, rec.Connections)
}

func TestScan_PythonClassNamePreservesCase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mixed.py", `
class my_AGENT_helper:
    """Helps."""

    def run(self, task, retries=3, *args, **kwargs):
        """Run the task.

            Indented detail.
        """
        return task

class Unrelated:
    pass
`)

	report, err := newTestScanner(t, Options{}).Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, report.Records, 1)

	rec := report.Records[0]
	assert.Equal(t, "my_AGENT_helper", rec.Name)
	assert.Equal(t, "Helps.", rec.Description)
	require.Len(t, rec.Methods, 1)
	assert.Equal(t, []string{"self", "task", "retries"}, rec.Methods[0].Parameters)
	assert.Equal(t, "Run the task.\n\nIndented detail.", rec.Methods[0].Docstring)
}

func TestScan_PythonDependenciesExcludeDenylist(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "agent.py", `import os, json
import requests.adapters
from typing import List
from langchain.llms import OpenAI
from .tools import search

class SearchAgent:
    pass
`)

	report, err := newTestScanner(t, Options{}).Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, report.Records, 1)

	deps := report.Records[0].Dependencies
	assert.Equal(t, []string{"langchain", "requests", "tools"}, deps)
	for _, d := range deps {
		assert.False(t, IsExcludedDependency(d), "excluded dependency %q leaked", d)
	}
}

func TestScan_GoAgentStruct(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "router.go", `package router

import (
	"context"
	"fmt"

	"example.com/app/billing"
)

// RouterAgent routes requests.
type RouterAgent struct{}

// Route picks a handler.
func (r *RouterAgent) Route(ctx context.Context, name string) error {
	return fmt.Errorf("no route for %s", name)
}

func (RouterAgent) Close() {}

type Config struct{}
`)

	report, err := newTestScanner(t, Options{}).Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, report.Records, 1)

	rec := report.Records[0]
	assert.Equal(t, "RouterAgent", rec.Name)
	assert.Equal(t, "RouterAgent routes requests.", rec.Description)
	assert.Equal(t, []string{"billing"}, rec.Dependencies)
	require.Len(t, rec.Methods, 2)
	assert.Equal(t, Method{Name: "Route", Docstring: "Route picks a handler.", Parameters: []string{"ctx", "name"}}, rec.Methods[0])
	assert.Equal(t, Method{Name: "Close", Docstring: "", Parameters: []string{}}, rec.Methods[1])
}

func TestScan_UnparseableFallsBackToHeuristic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken_agent.py", `"""Handles refunds."""
import stripe
import os

class Broken(:
`)

	report, err := newTestScanner(t, Options{}).Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, report.Records, 1)

	rec := report.Records[0]
	assert.Equal(t, "broken_agent", rec.Name)
	assert.Equal(t, ModeHeuristic, rec.Mode())
	assert.Equal(t, "Handles refunds.", rec.Description)
	assert.Equal(t, []string{"stripe"}, rec.Dependencies)
}

func TestScan_PythonParametersSkipSpecialKinds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "kinds.py", `
class KindsAgent:
    def kw(self, *args: int, key):
        pass

    def typed_kwargs(self, a, **opts: str):
        pass

    def bare(self, a, *, flag=False):
        pass

    def posonly(self, a, /, b, c=1):
        pass
`)

	report, err := newTestScanner(t, Options{}).Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, report.Records, 1)

	params := map[string][]string{}
	for _, m := range report.Records[0].Methods {
		params[m.Name] = m.Parameters
	}
	assert.Equal(t, []string{"self"}, params["kw"])
	assert.Equal(t, []string{"self", "a"}, params["typed_kwargs"])
	assert.Equal(t, []string{"self", "a"}, params["bare"])
	assert.Equal(t, []string{"b", "c"}, params["posonly"])
}

func TestScan_UnparseableWithoutAgentStemFindsClasses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.py", `"""Billing flows."""
import stripe

class OtherAgent(:
    pass

class Helper:
    pass
`)

	report, err := newTestScanner(t, Options{}).Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{"OtherAgent"}, recordNames(report.Records))

	rec := report.Records[0]
	assert.Equal(t, ModeHeuristic, rec.Mode())
	assert.Equal(t, "Billing flows.", rec.Description)
	assert.Equal(t, []string{"stripe"}, rec.Dependencies)
}

func TestScan_HeuristicConnections(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "alpha_agent.json", `{"delegates_to": "beta_agent", "unknown": "gamma_agent"}`)
	writeFile(t, dir, "beta_agent.yaml", "role: reviewer\n")

	report, err := newTestScanner(t, Options{}).Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha_agent", "beta_agent"}, recordNames(report.Records))
	assert.Equal(t, []string{"beta_agent"}, report.Records[0].Connections)
	assert.Empty(t, report.Records[1].Connections)
}

func TestScan_MarkdownAgentDefinition(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".claude/agents/reviewer.md", `---
name: code-reviewer
description: Reviews diffs before merge
tools: [Read, Grep]
---
Escalate security findings to security-auditor.
`)
	writeFile(t, dir, ".claude/agents/auditor.md", "---\nname: security-auditor\ndescription: Audits\n---\nbody\n")
	writeFile(t, dir, "README.md", "# Project\n")

	report, err := newTestScanner(t, Options{}).Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{"security-auditor", "code-reviewer"}, recordNames(report.Records))

	reviewer := report.Records[1]
	assert.Equal(t, ModeDefinition, reviewer.Mode())
	assert.Equal(t, "Reviews diffs before merge", reviewer.Description)
	assert.Equal(t, []string{"security-auditor"}, reviewer.Connections)
}

func TestScan_IsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/pricing.py", "import numpy\nclass PricingAgent:\n    def fetch(self, sku):\n        pass\n")
	writeFile(t, dir, "b/ops_agent.js", "const x = require('pricing_agent');\n// PricingAgent\n")
	writeFile(t, dir, "c/helper_agent.ts", "import { a } from 'lodash/fp';\n")

	s := newTestScanner(t, Options{})
	first, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	second, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, []string{"PricingAgent", "ops_agent", "helper_agent"}, recordNames(first.Records))
	assert.Equal(t, []string{"PricingAgent"}, first.Records[1].Connections)
	assert.Equal(t, []string{"lodash"}, first.Records[2].Dependencies)
}

func TestScan_SkipsIgnoredAndExcluded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "node_modules/pkg/vendor_agent.js", "")
	writeFile(t, dir, "out/agents.json", "[]")
	writeFile(t, dir, "legacy/old_agent.py", "x = 1\n")
	writeFile(t, dir, "live_agent.py", "x = 1\n")

	s := newTestScanner(t, Options{
		Exclude:   []string{"legacy/**"},
		SkipPaths: []string{filepath.Join(dir, "out")},
	})
	report, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, filepath.Join(dir, "live_agent.py"), report.Outcomes[0].Path)
}

func TestScan_IncludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/one_agent.js", "module.exports = {};\n")
	writeFile(t, dir, "scripts/two_agent.js", "module.exports = {};\n")

	s := newTestScanner(t, Options{Include: []string{"src/**"}})
	report, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"one_agent"}, recordNames(report.Records))
}

func TestScan_OversizedFileIsFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big_agent.js", "module.exports = {};\n// padding padding padding\n")
	writeFile(t, dir, "small_agent.js", "1\n")

	s := newTestScanner(t, Options{MaxFileSize: 10})
	report, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"small_agent"}, recordNames(report.Records))

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, ErrFileTooLarge)
}

func TestScan_UnreadableFileIsSkipped(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}
	dir := t.TempDir()
	locked := writeFile(t, dir, "locked_agent.js", "module.exports = {};\n")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })
	writeFile(t, dir, "open_agent.js", "module.exports = {};\n")

	report, err := newTestScanner(t, Options{}).Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"open_agent"}, recordNames(report.Records))
	require.Len(t, report.Failed(), 1)
	assert.Equal(t, locked, report.Failed()[0].Path)
}

func TestScan_InvalidRoot(t *testing.T) {
	s := newTestScanner(t, Options{})

	_, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrRootNotExist)

	file := writeFile(t, t.TempDir(), "f.py", "")
	_, err = s.Scan(context.Background(), file)
	assert.ErrorIs(t, err, ErrRootNotDir)
}

func TestScan_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_agent.py", "x = 1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScanner(t, Options{}).Scan(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(Options{Exclude: []string{"[unterminated"}})
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestRecordNormalize_DropsSelfAndSorts(t *testing.T) {
	r := Record{
		Name:         "A",
		Dependencies: []string{"z", "A", "b", "b", " "},
		Connections:  []string{"A"},
	}
	r.Normalize()
	assert.Equal(t, []string{"b", "z"}, r.Dependencies)
	assert.Equal(t, []string{}, r.Connections)
	assert.Equal(t, []Method{}, r.Methods)
}
