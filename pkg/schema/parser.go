package schema

import (
	"encoding/json"
	"fmt"

	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

// Parser handles parsing of tree definitions
type Parser struct{}

// NewParser creates a new definition parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses a tree definition from JSON bytes and validates it
// structurally: known kinds, composite arity, positive loop bounds, and leaf
// references present. Validation happens exactly once, here; the built tree
// is never re-validated per tick.
func (p *Parser) Parse(definitionBytes []byte) (*Definition, error) {
	if len(definitionBytes) == 0 {
		return nil, sdkerrors.NewError(sdkerrors.CodeInvalidSchema, "definition bytes cannot be empty", nil)
	}

	var def Definition
	if err := json.Unmarshal(definitionBytes, &def); err != nil {
		return nil, sdkerrors.NewError(sdkerrors.CodeInvalidSchema, "failed to parse definition", err)
	}

	if err := p.validate(&def, "root"); err != nil {
		return nil, err
	}

	return &def, nil
}

// validate walks the definition tree depth-first, naming the offending node
// by path in every error.
func (p *Parser) validate(def *Definition, path string) error {
	if def.Kind == "" {
		return sdkerrors.NewError(sdkerrors.CodeInvalidSchema,
			fmt.Sprintf("node %q is missing a kind", path), nil)
	}
	if !IsValidKind(def.Kind) {
		return sdkerrors.NewError(sdkerrors.CodeUnknownKind,
			fmt.Sprintf("node %q has kind %q", path, def.Kind), sdkerrors.ErrUnknownKind)
	}

	switch {
	case def.Kind == KindLeaf:
		if def.Ref == "" {
			return sdkerrors.NewError(sdkerrors.CodeInvalidSchema,
				fmt.Sprintf("leaf %q is missing a ref", path), nil)
		}
		if len(def.Children) != 0 {
			return sdkerrors.NewError(sdkerrors.CodeInvalidSchema,
				fmt.Sprintf("leaf %q cannot have children", path), nil)
		}
	case def.IsDecorator():
		if len(def.Children) != 1 {
			return sdkerrors.NewError(sdkerrors.CodeInvalidSchema,
				fmt.Sprintf("decorator %q requires exactly one child, has %d", path, len(def.Children)), nil)
		}
	case def.IsComposite():
		if len(def.Children) == 0 {
			return sdkerrors.NewError(sdkerrors.CodeInvalidSchema,
				fmt.Sprintf("composite %q requires at least one child", path), sdkerrors.ErrNoChildren)
		}
	}

	if def.Kind == KindLoop && def.Iterations <= 0 {
		return sdkerrors.NewError(sdkerrors.CodeInvalidSchema,
			fmt.Sprintf("loop %q has iterations=%d", path, def.Iterations), sdkerrors.ErrInvalidIterations)
	}
	if def.Kind != KindLoop && def.Iterations != 0 {
		return sdkerrors.NewError(sdkerrors.CodeInvalidSchema,
			fmt.Sprintf("node %q of kind %q cannot set iterations", path, def.Kind), nil)
	}

	for i, child := range def.Children {
		if child == nil {
			return sdkerrors.NewError(sdkerrors.CodeInvalidSchema,
				fmt.Sprintf("node %q has a null child at index %d", path, i), sdkerrors.ErrNilChild)
		}
		if err := p.validate(child, fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}

	return nil
}
