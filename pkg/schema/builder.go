package schema

import (
	"encoding/json"
	"fmt"

	"github.com/wehubfusion/Talos/pkg/act"
	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

// LeafFactory constructs a leaf act from its definition name and raw
// configuration. Factories are registered under the ref names used by
// "leaf" definition nodes.
type LeafFactory func(name string, config json.RawMessage) (act.Act, error)

// Registry maps leaf refs to their factories.
type Registry struct {
	factories map[string]LeafFactory
}

// NewRegistry creates an empty leaf factory registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]LeafFactory)}
}

// Register binds a factory to a leaf ref. Registering the same ref twice
// replaces the earlier factory.
func (r *Registry) Register(ref string, factory LeafFactory) error {
	if ref == "" {
		return sdkerrors.NewError(sdkerrors.CodeInvalidSchema, "leaf ref cannot be empty", nil)
	}
	if factory == nil {
		return sdkerrors.NewError(sdkerrors.CodeInvalidSchema,
			fmt.Sprintf("factory for ref %q cannot be nil", ref), nil)
	}
	r.factories[ref] = factory
	return nil
}

// Lookup returns the factory registered under the given ref.
func (r *Registry) Lookup(ref string) (LeafFactory, bool) {
	factory, ok := r.factories[ref]
	return factory, ok
}

// Builder constructs act trees from validated definitions.
type Builder struct {
	registry *Registry
}

// NewBuilder creates a builder that resolves leaf refs via the given registry.
func NewBuilder(registry *Registry) *Builder {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Builder{registry: registry}
}

// Build constructs the act tree described by the definition. The definition
// is expected to have been produced by Parser.Parse; Build still surfaces the
// constructors' own validation, so a hand-built definition fails fast here
// rather than ambiguously at tick time.
func (b *Builder) Build(def *Definition) (act.Act, error) {
	if def == nil {
		return nil, sdkerrors.NewError(sdkerrors.CodeInvalidSchema, "definition cannot be nil", nil)
	}

	switch def.Kind {
	case KindLeaf:
		factory, ok := b.registry.Lookup(def.Ref)
		if !ok {
			return nil, sdkerrors.NewError(sdkerrors.CodeUnknownRef,
				fmt.Sprintf("no factory registered for ref %q", def.Ref), sdkerrors.ErrUnknownRef)
		}
		leaf, err := factory(def.Name, def.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to build leaf %q: %w", def.Ref, err)
		}
		if leaf == nil {
			return nil, sdkerrors.NewError(sdkerrors.CodeUnknownRef,
				fmt.Sprintf("factory for ref %q returned a nil act", def.Ref), nil)
		}
		return leaf, nil

	case KindIgnoreFail, KindInvert:
		if len(def.Children) != 1 {
			return nil, sdkerrors.NewError(sdkerrors.CodeInvalidSchema,
				fmt.Sprintf("decorator %q requires exactly one child, has %d", def.Kind, len(def.Children)), nil)
		}
		child, err := b.Build(def.Children[0])
		if err != nil {
			return nil, err
		}
		if def.Kind == KindIgnoreFail {
			return act.NewIgnoreFail(def.Name, child)
		}
		return act.NewInvert(def.Name, child)

	case KindSequence, KindSelect, KindParallel, KindParallelAll, KindLoop, KindForever:
		children := make([]act.Act, 0, len(def.Children))
		for _, childDef := range def.Children {
			child, err := b.Build(childDef)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		switch def.Kind {
		case KindSequence:
			return act.NewSequence(def.Name, children...)
		case KindSelect:
			return act.NewSelect(def.Name, children...)
		case KindParallel:
			return act.NewParallel(def.Name, children...)
		case KindParallelAll:
			return act.NewParallelAll(def.Name, children...)
		case KindLoop:
			return act.NewLoop(def.Name, def.Iterations, children...)
		default:
			return act.NewForever(def.Name, children...)
		}

	default:
		return nil, sdkerrors.NewError(sdkerrors.CodeUnknownKind,
			fmt.Sprintf("kind %q", def.Kind), sdkerrors.ErrUnknownKind)
	}
}

// BuildFromJSON parses, validates, and builds in one step.
func (b *Builder) BuildFromJSON(definitionBytes []byte) (act.Act, error) {
	def, err := NewParser().Parse(definitionBytes)
	if err != nil {
		return nil, err
	}
	return b.Build(def)
}
