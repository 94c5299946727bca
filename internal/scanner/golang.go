package scanner

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// extractGo parses Go source and emits one record per struct or interface
// type whose name contains "agent". Methods are the type's method
// declarations in the same file (or the interface's method set).
func extractGo(ctx context.Context, filePath string, content []byte) ([]Record, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, errUnparseable
	}

	deps := goImports(root, content)
	methodsByType := goMethods(root, content)

	var records []Record
	for i := 0; i < int(root.NamedChildCount()); i++ {
		decl := root.NamedChild(i)
		if decl.Type() != "type_declaration" {
			continue
		}
		for j := 0; j < int(decl.NamedChildCount()); j++ {
			spec := decl.NamedChild(j)
			if spec.Type() != "type_spec" {
				continue
			}
			nameNode := spec.ChildByFieldName("name")
			typeNode := spec.ChildByFieldName("type")
			if nameNode == nil || typeNode == nil {
				continue
			}
			name := nameNode.Content(content)
			if !containsAgent(name) {
				continue
			}

			var methods []Method
			switch typeNode.Type() {
			case "struct_type":
				methods = methodsByType[name]
			case "interface_type":
				methods = goInterfaceMethods(typeNode, content)
			default:
				continue
			}

			doc := leadingComment(spec, content)
			if doc == "" {
				doc = leadingComment(decl, content)
			}
			records = append(records, Record{
				Name:         name,
				SourcePath:   filePath,
				Description:  doc,
				Methods:      methods,
				Dependencies: append([]string(nil), deps...),
				mode:         ModeStructural,
			})
		}
	}
	return records, nil
}

// goMethods groups method declarations by receiver type name, in
// document order.
func goMethods(root *sitter.Node, content []byte) map[string][]Method {
	out := make(map[string][]Method)
	for i := 0; i < int(root.NamedChildCount()); i++ {
		decl := root.NamedChild(i)
		if decl.Type() != "method_declaration" {
			continue
		}
		recv := receiverType(decl.ChildByFieldName("receiver"), content)
		nameNode := decl.ChildByFieldName("name")
		if recv == "" || nameNode == nil {
			continue
		}
		out[recv] = append(out[recv], Method{
			Name:       nameNode.Content(content),
			Docstring:  leadingComment(decl, content),
			Parameters: goParameters(decl.ChildByFieldName("parameters"), content),
		})
	}
	return out
}

// goInterfaceMethods lists the methods declared in an interface body.
func goInterfaceMethods(iface *sitter.Node, content []byte) []Method {
	var methods []Method
	for i := 0; i < int(iface.NamedChildCount()); i++ {
		elem := iface.NamedChild(i)
		if elem.Type() != "method_elem" && elem.Type() != "method_spec" {
			continue
		}
		nameNode := elem.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		methods = append(methods, Method{
			Name:       nameNode.Content(content),
			Docstring:  leadingComment(elem, content),
			Parameters: goParameters(elem.ChildByFieldName("parameters"), content),
		})
	}
	return methods
}

// receiverType returns the base type name of a method receiver, with
// pointer and type arguments stripped.
func receiverType(recv *sitter.Node, content []byte) string {
	if recv == nil {
		return ""
	}
	param := firstNamedOfType(recv, "parameter_declaration")
	if param == nil {
		return ""
	}
	typ := param.ChildByFieldName("type")
	for typ != nil {
		switch typ.Type() {
		case "pointer_type":
			typ = typ.NamedChild(0)
		case "generic_type":
			typ = typ.ChildByFieldName("type")
		case "type_identifier":
			return typ.Content(content)
		default:
			return ""
		}
	}
	return ""
}

// goParameters returns declared parameter names in order. Unnamed
// parameters contribute nothing.
func goParameters(params *sitter.Node, content []byte) []string {
	names := []string{}
	if params == nil {
		return names
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p.Type() != "parameter_declaration" && p.Type() != "variadic_parameter_declaration" {
			continue
		}
		for j := 0; j < int(p.NamedChildCount()); j++ {
			if c := p.NamedChild(j); c.Type() == "identifier" {
				names = append(names, c.Content(content))
			}
		}
	}
	return names
}

// goImports returns the last element of every imported package path.
func goImports(root *sitter.Node, content []byte) []string {
	var deps []string
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			switch c.Type() {
			case "import_spec_list":
				visit(c)
			case "import_spec":
				lit := c.ChildByFieldName("path")
				if lit == nil {
					continue
				}
				p, err := strconv.Unquote(lit.Content(content))
				if err != nil {
					continue
				}
				deps = addDependency(deps, path.Base(p))
			}
		}
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if decl := root.NamedChild(i); decl.Type() == "import_declaration" {
			visit(decl)
		}
	}
	return deps
}

// leadingComment joins the // comment lines directly above n.
func leadingComment(n *sitter.Node, content []byte) string {
	var lines []string
	row := n.StartPoint().Row
	for prev := n.PrevNamedSibling(); prev != nil && prev.Type() == "comment"; prev = prev.PrevNamedSibling() {
		if prev.EndPoint().Row+1 != row {
			break
		}
		text := prev.Content(content)
		if !strings.HasPrefix(text, "//") {
			break
		}
		lines = append([]string{strings.TrimSpace(strings.TrimPrefix(text, "//"))}, lines...)
		row = prev.StartPoint().Row
	}
	return strings.Join(lines, "\n")
}
