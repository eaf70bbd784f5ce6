// Package imprinttree stores (imprint, value) pairs by splitting each
// newly inserted imprint against existing entries into intersection/
// A-only/B-only parts, building a tree whose paths are the shared
// prefixes of recorded imprints. Lookup on a fresh value walks the tree
// using package matcher, so its cost tracks the overlap between imprints
// rather than the total number stored.
package imprinttree

import (
	"fmt"

	"github.com/mpyw/depmemo/internal/imprint"
	"github.com/mpyw/depmemo/internal/matcher"
)

// node is one interior point of the tree: the imprint delta additional to
// what its ancestors already asserted, an optional stored value, and
// further-specialized children.
type node struct {
	imp      *imprint.Imprint
	value    any
	hasValue bool
	children []*node
}

// Tree is a forest of nodes rooted at package level; spec.md calls this
// the ImprintTreeMap.
type Tree struct {
	roots []*node
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{}
}

// Insert records that a value matching imp maps to value. Re-inserting an
// imprint identical to one already present overwrites the stored value
// without otherwise changing the tree's shape.
func (t *Tree) Insert(imp *imprint.Imprint, value any) {
	t.roots = insertInto(t.roots, imp, value)
}

func insertInto(roots []*node, imp *imprint.Imprint, value any) []*node {
	for idx, root := range roots {
		i, aOnly, bOnly := split(root.imp, imp)
		if i == nil {
			continue
		}

		replacement := &node{imp: i}

		if aOnly != nil {
			root.imp = aOnly
			replacement.children = append(replacement.children, root)
		} else {
			// root's entire delta is absorbed into the intersection: its
			// existing specializations become children of the intersection
			// node, the level bOnly is inserted into below, rather than being nested
			// inside a redundant same-imprint wrapper. A wrapper would match
			// trivially whenever the parent does and, being visited before
			// the new specialization, would fall back to root's own value
			// (when none of root's *own* children matched) without ever
			// trying the new, equally-specific sibling - shadowing it.
			replacement.children = append(replacement.children, root.children...)
			if root.hasValue {
				replacement.value = root.value
				replacement.hasValue = true
			}
		}

		if bOnly != nil {
			// Insert the remainder among the intersection node's children the
			// same way, so an imprint identical to one already stored below
			// this root overwrites it instead of becoming a shadowed duplicate.
			replacement.children = insertInto(replacement.children, bOnly, value)
		} else {
			replacement.value = value
			replacement.hasValue = true
		}

		roots[idx] = replacement
		return roots
	}

	return append(roots, &node{imp: imp, value: value, hasValue: true})
}

// Lookup returns the value recorded for the first imprint chain compatible
// with obj, or ErrNoMatch if none is.
func (t *Tree) Lookup(obj any) (any, error) {
	if value, ok := lookupIn(t.roots, obj); ok {
		return value, nil
	}
	return nil, fmt.Errorf("%w", ErrNoMatch)
}

// lookupIn implements the preference rule: when both a node's own value
// and one of its children match, the child wins, since it represents a
// more specific pattern. A node's value is the catch-all for inputs that
// share its prefix but don't specialize further.
func lookupIn(nodes []*node, obj any) (any, bool) {
	for _, n := range nodes {
		if !matcher.Match(n.imp, obj) {
			continue
		}
		if value, ok := lookupIn(n.children, obj); ok {
			return value, true
		}
		if n.hasValue {
			return n.value, true
		}
		// n matched but neither a child nor n itself resolves to a value:
		// n is a pure intersection node whose specializations don't cover
		// obj. Keep scanning remaining siblings rather than failing here.
	}
	return nil, false
}
