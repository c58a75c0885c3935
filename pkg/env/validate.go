package env

import (
	"errors"
	"fmt"
	"strings"
	"text/template/parse"
)

var (
	ErrForbiddenAction = errors.New("template contains forbidden action")
	ErrExcessiveDepth  = errors.New("template depth exceeds maximum allowed")
)

// TemplateValidator checks catalog templates before they are rendered.
type TemplateValidator struct {
	// MaxDepth limits nesting of if/with/range blocks.
	MaxDepth int
	// AllowedFunctions lists the builtins a template may call.
	AllowedFunctions map[string]bool
}

// NewTemplateValidator allows the text/template builtins except call.
func NewTemplateValidator() *TemplateValidator {
	allowed := map[string]bool{}
	for _, name := range []string{
		"and", "or", "not", "len", "index", "slice",
		"print", "printf", "println", "urlquery",
		"eq", "ne", "lt", "le", "gt", "ge",
	} {
		allowed[name] = true
	}
	return &TemplateValidator{MaxDepth: 5, AllowedFunctions: allowed}
}

var defaultValidator = NewTemplateValidator()

// ValidateTemplate checks s with the default validator.
func ValidateTemplate(s string) error {
	return defaultValidator.Validate(s)
}

// Validate reports whether s is a template the renderer can safely execute.
// Plain strings are accepted without parsing. Field access at the top level
// must go through .env.
func (v *TemplateValidator) Validate(s string) error {
	if !strings.Contains(s, "{{") {
		return nil
	}
	funcs := map[string]any{}
	for name, ok := range v.AllowedFunctions {
		if ok {
			funcs[name] = true
		}
	}
	trees, err := parse.Parse("template", s, "{{", "}}", funcs)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}
	if len(trees) > 1 {
		return fmt.Errorf("%w: define/block is not allowed", ErrForbiddenAction)
	}
	root, ok := trees["template"]
	if !ok || root.Root == nil {
		return nil
	}
	return v.walkList(root.Root, 0, true)
}

func (v *TemplateValidator) walkList(l *parse.ListNode, depth int, dotIsRoot bool) error {
	if l == nil {
		return nil
	}
	if depth > v.MaxDepth {
		return ErrExcessiveDepth
	}
	for _, n := range l.Nodes {
		if err := v.walkNode(n, depth, dotIsRoot); err != nil {
			return err
		}
	}
	return nil
}

func (v *TemplateValidator) walkNode(n parse.Node, depth int, dotIsRoot bool) error {
	switch n := n.(type) {
	case *parse.ActionNode:
		return v.walkPipe(n.Pipe, dotIsRoot)
	case *parse.IfNode:
		return v.walkBranch(&n.BranchNode, depth, dotIsRoot, dotIsRoot)
	case *parse.WithNode:
		return v.walkBranch(&n.BranchNode, depth, dotIsRoot, false)
	case *parse.RangeNode:
		return v.walkBranch(&n.BranchNode, depth, dotIsRoot, false)
	case *parse.TemplateNode:
		return fmt.Errorf("%w: template %q", ErrForbiddenAction, n.Name)
	case *parse.ListNode:
		return v.walkList(n, depth, dotIsRoot)
	}
	return nil
}

// walkBranch checks the pipeline with the outer dot and the body with inner.
func (v *TemplateValidator) walkBranch(b *parse.BranchNode, depth int, outer, inner bool) error {
	if err := v.walkPipe(b.Pipe, outer); err != nil {
		return err
	}
	if err := v.walkList(b.List, depth+1, inner); err != nil {
		return err
	}
	return v.walkList(b.ElseList, depth+1, outer)
}

func (v *TemplateValidator) walkPipe(p *parse.PipeNode, dotIsRoot bool) error {
	if p == nil {
		return nil
	}
	for _, cmd := range p.Cmds {
		for _, arg := range cmd.Args {
			if err := v.walkArg(arg, dotIsRoot); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *TemplateValidator) walkArg(arg parse.Node, dotIsRoot bool) error {
	switch a := arg.(type) {
	case *parse.IdentifierNode:
		if !v.AllowedFunctions[a.Ident] {
			return fmt.Errorf("%w: function %q", ErrForbiddenAction, a.Ident)
		}
	case *parse.FieldNode:
		if dotIsRoot && (len(a.Ident) == 0 || a.Ident[0] != "env") {
			return fmt.Errorf("%w: field %q is outside .env", ErrForbiddenAction, "."+strings.Join(a.Ident, "."))
		}
	case *parse.VariableNode:
		if len(a.Ident) > 1 && a.Ident[0] == "$" && a.Ident[1] != "env" {
			return fmt.Errorf("%w: field %q is outside .env", ErrForbiddenAction, strings.Join(a.Ident, "."))
		}
	case *parse.DotNode:
		if dotIsRoot {
			return fmt.Errorf("%w: bare dot exposes the whole context", ErrForbiddenAction)
		}
	case *parse.PipeNode:
		return v.walkPipe(a, dotIsRoot)
	case *parse.ChainNode:
		return v.walkArg(a.Node, dotIsRoot)
	}
	return nil
}
