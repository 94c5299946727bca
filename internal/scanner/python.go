package scanner

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// extractPython parses Python source and emits one record per class whose
// name contains "agent".
func extractPython(ctx context.Context, path string, content []byte) ([]Record, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, errUnparseable
	}

	deps := pythonImports(root, content)

	var records []Record
	walkPythonClasses(root, func(class *sitter.Node) {
		nameNode := class.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		name := nameNode.Content(content)
		if !containsAgent(name) {
			return
		}
		body := class.ChildByFieldName("body")
		rec := Record{
			Name:         name,
			SourcePath:   path,
			Description:  pythonDocstring(body, content),
			Methods:      pythonMethods(body, content),
			Dependencies: append([]string(nil), deps...),
			mode:         ModeStructural,
		}
		records = append(records, rec)
	})
	return records, nil
}

// walkPythonClasses visits every class definition in document order,
// including nested and decorated classes.
func walkPythonClasses(n *sitter.Node, visit func(*sitter.Node)) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "class_definition" {
			visit(child)
		}
		walkPythonClasses(child, visit)
	}
}

// pythonMethods lists the functions defined directly in a class body.
func pythonMethods(body *sitter.Node, content []byte) []Method {
	if body == nil {
		return nil
	}
	var methods []Method
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "decorated_definition" {
			child = child.ChildByFieldName("definition")
		}
		if child == nil || child.Type() != "function_definition" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		methods = append(methods, Method{
			Name:       nameNode.Content(content),
			Docstring:  pythonDocstring(child.ChildByFieldName("body"), content),
			Parameters: pythonParameters(child.ChildByFieldName("parameters"), content),
		})
	}
	return methods
}

// pythonParameters returns the ordinary positional parameter names: those
// before a "/" marker are positional-only and dropped, and collection
// stops at *args, **kwargs or a bare "*" separator.
func pythonParameters(params *sitter.Node, content []byte) []string {
	names := []string{}
	if params == nil {
		return names
	}
	for i := 0; i < int(params.ChildCount()); i++ {
		p := params.Child(i)
		switch p.Type() {
		case "identifier":
			names = append(names, p.Content(content))
		case "typed_parameter":
			if isSplat(p) {
				return names
			}
			if id := firstNamedOfType(p, "identifier"); id != nil {
				names = append(names, id.Content(content))
			}
		case "default_parameter", "typed_default_parameter":
			if id := p.ChildByFieldName("name"); id != nil {
				names = append(names, id.Content(content))
			}
		case "/", "positional_separator":
			names = []string{}
		case "*", "list_splat_pattern", "keyword_separator", "dictionary_splat_pattern":
			return names
		}
	}
	return names
}

// isSplat reports whether a typed parameter is an annotated *args or
// **kwargs.
func isSplat(p *sitter.Node) bool {
	return firstNamedOfType(p, "list_splat_pattern") != nil ||
		firstNamedOfType(p, "dictionary_splat_pattern") != nil
}

// pythonDocstring returns the cleaned docstring of a block, or "".
func pythonDocstring(block *sitter.Node, content []byte) string {
	if block == nil || block.NamedChildCount() == 0 {
		return ""
	}
	first := block.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	return cleanDoc(unquote(str.Content(content)))
}

// pythonImports collects the first segment of every imported module.
func pythonImports(root *sitter.Node, content []byte) []string {
	var deps []string
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Type() {
		case "import_statement":
			for j := 0; j < int(stmt.NamedChildCount()); j++ {
				name := stmt.NamedChild(j)
				if name.Type() == "aliased_import" {
					name = name.ChildByFieldName("name")
				}
				if name != nil && name.Type() == "dotted_name" {
					deps = addDependency(deps, firstSegment(name.Content(content), "."))
				}
			}
		case "import_from_statement":
			if mod := stmt.ChildByFieldName("module_name"); mod != nil {
				deps = addDependency(deps, firstSegment(mod.Content(content), "."))
			}
		}
	}
	return deps
}

func firstNamedOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

// unquote strips string prefixes and quote delimiters from a literal.
func unquote(raw string) string {
	raw = strings.TrimLeft(raw, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2*len(q) {
			return raw[len(q) : len(raw)-len(q)]
		}
	}
	return raw
}

// cleanDoc trims a docstring the way Python's inspect.cleandoc does: the
// first line is stripped, common indentation is removed from the rest and
// surrounding blank lines are dropped.
func cleanDoc(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "        "), "\n")
	indent := -1
	for _, l := range lines[1:] {
		stripped := strings.TrimLeft(l, " ")
		if stripped == "" {
			continue
		}
		if n := len(l) - len(stripped); indent < 0 || n < indent {
			indent = n
		}
	}
	lines[0] = strings.TrimSpace(lines[0])
	for i := 1; i < len(lines); i++ {
		if indent > 0 && len(lines[i]) >= indent {
			lines[i] = lines[i][indent:]
		}
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n ")
}
