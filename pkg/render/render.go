// Package render produces a plain-text representation of an act tree for
// diagnostics. Rendering walks the tree read-only through Name and Children
// and has no effect on scheduling.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/wehubfusion/Talos/pkg/act"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.English)

// Fprint writes the ASCII representation of the act tree rooted at root.
// Each child is printed as an indented "--> name" line, four spaces per
// nesting level. Unnamed nodes fall back to a title-cased kind label.
func Fprint(w io.Writer, root act.Act) error {
	if root == nil {
		return fmt.Errorf("root act cannot be nil")
	}
	if _, err := fmt.Fprintln(w, Label(root)); err != nil {
		return err
	}
	return fprintChildren(w, root, 0)
}

// Sprint returns the ASCII representation of the act tree rooted at root.
func Sprint(root act.Act) string {
	var sb strings.Builder
	// strings.Builder never returns a write error
	_ = Fprint(&sb, root)
	return sb.String()
}

// Label returns the display label for a node: its name, or a title-cased
// kind label when the node is unnamed.
func Label(a act.Act) string {
	if name := a.Name(); name != "" {
		return name
	}
	return titler.String(kindOf(a))
}

func fprintChildren(w io.Writer, parent act.Act, indent int) error {
	for _, child := range parent.Children() {
		if _, err := fmt.Fprintf(w, "%s --> %s\n", strings.Repeat("    ", indent), Label(child)); err != nil {
			return err
		}
		if len(child.Children()) > 0 {
			if err := fprintChildren(w, child, indent+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func kindOf(a act.Act) string {
	switch a.(type) {
	case *act.Sequence:
		return "sequence"
	case *act.Select:
		return "select"
	case *act.Parallel:
		return "parallel"
	case *act.ParallelAll:
		return "parallel all"
	case *act.Loop:
		return "loop"
	case *act.Wrap:
		return "wrap"
	case *act.IgnoreFail:
		return "ignore fail"
	case *act.Invert:
		return "invert"
	default:
		return "act"
	}
}
