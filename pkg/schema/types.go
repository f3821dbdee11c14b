// Package schema defines the JSON tree-definition format and the builder that
// turns validated definitions into act trees. Definitions are parsed and
// validated once, at construction time; the resulting tree is fixed-shape and
// is never re-validated during ticking.
package schema

import "encoding/json"

// Node kinds accepted in a tree definition
const (
	KindSequence    = "sequence"
	KindSelect      = "select"
	KindParallel    = "parallel"
	KindParallelAll = "parallel_all"
	KindLoop        = "loop"
	KindForever     = "forever"
	KindIgnoreFail  = "ignore_fail"
	KindInvert      = "invert"
	KindLeaf        = "leaf"
)

// Definition is one node of a JSON tree definition.
type Definition struct {
	// Kind selects the node type; one of the Kind* constants
	Kind string `json:"kind"`

	// Name is the optional display label of the node
	Name string `json:"name,omitempty"`

	// Iterations is the bound for "loop" nodes; must be positive
	Iterations int `json:"iterations,omitempty"`

	// Ref names the registered leaf factory for "leaf" nodes
	Ref string `json:"ref,omitempty"`

	// Config is the leaf-specific configuration passed to the factory as raw JSON
	Config json.RawMessage `json:"config,omitempty"`

	// Children are the ordered child definitions of a composite node
	Children []*Definition `json:"children,omitempty"`
}

// IsComposite returns true for kinds that require at least one child.
func (d *Definition) IsComposite() bool {
	switch d.Kind {
	case KindSequence, KindSelect, KindParallel, KindParallelAll, KindLoop, KindForever:
		return true
	}
	return false
}

// IsDecorator returns true for kinds that require exactly one child.
func (d *Definition) IsDecorator() bool {
	return d.Kind == KindIgnoreFail || d.Kind == KindInvert
}

// IsValidKind returns true if the kind names a known node type.
func IsValidKind(kind string) bool {
	switch kind {
	case KindSequence, KindSelect, KindParallel, KindParallelAll,
		KindLoop, KindForever, KindIgnoreFail, KindInvert, KindLeaf:
		return true
	}
	return false
}
