package objgraph

import (
	"fmt"

	"github.com/tarantool/go-objgraph/node"
)

// Validate checks the structure of data without materializing anything:
// every slot must hold a non-primitive node, every embedded node must be a
// primitive or a ref, and every ref must point at an existing slot.
func Validate(data node.PersistentData) error {
	if err := validateEmbedded(data.Root, len(data.Objects)); err != nil {
		return fmt.Errorf("root: %w", err)
	}

	for index, slot := range data.Objects {
		if slot.IsPrimitive() || slot.IsRef() {
			return errNoObject(index, "slot holds a "+slot.Kind.String()+" node")
		}

		for _, child := range slot.Children() {
			if err := validateEmbedded(child, len(data.Objects)); err != nil {
				return fmt.Errorf("slot %d: %w", index, err)
			}
		}
	}

	return nil
}

func validateEmbedded(n node.Node, slots int) error {
	switch {
	case n.IsPrimitive():
		return nil
	case !n.IsRef():
		return errEmbeddedComposite(n.Kind)
	case n.Index < 0 || n.Index >= slots:
		return UnresolvedReferenceError{Index: n.Index, Missing: true}
	default:
		return nil
	}
}
