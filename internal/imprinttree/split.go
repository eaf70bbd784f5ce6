package imprinttree

import (
	"slices"

	"github.com/mpyw/depmemo/internal/imprint"
)

// split partitions two imprints into their intersection i and the parts
// that are only in a or only in b. Any of the three may be nil: i is nil
// when the two imprints share no observations at all; a remainder is nil
// when the other side fully subsumes it.
//
// This is the central subroutine the ImprintTreeMap uses to factor shared
// prefixes out of the entries it stores, so lookup cost tracks the overlap
// between imprints rather than their total count.
func split(a, b *imprint.Imprint) (i, aOnly, bOnly *imprint.Imprint) {
	i = imprint.New()
	aOnly = imprint.New()
	bOnly = imprint.New()

	splitCtor(a, b, i, aOnly, bOnly)
	splitOwnKeys(a, b, i, aOnly, bOnly)
	splitHas(a, b, i, aOnly, bOnly)
	splitRead(a, b, i, aOnly, bOnly)

	return elideIfEmpty(i), elideIfEmpty(aOnly), elideIfEmpty(bOnly)
}

func elideIfEmpty(im *imprint.Imprint) *imprint.Imprint {
	if imprint.IsEmpty(im) {
		return nil
	}
	return im
}

func splitCtor(a, b, i, aOnly, bOnly *imprint.Imprint) {
	if a.Ctor != nil && b.Ctor != nil && a.Ctor.Equal(b.Ctor) {
		i.SetCtor(a.Ctor)
		return
	}
	if a.Ctor != nil {
		aOnly.SetCtor(a.Ctor)
	}
	if b.Ctor != nil {
		bOnly.SetCtor(b.Ctor)
	}
}

// splitOwnKeys treats ownKeys as atomic: either both sides recorded the
// identical ordered sequence, in which case it moves wholesale to the
// intersection, or each side keeps its own (never split key-by-key).
func splitOwnKeys(a, b, i, aOnly, bOnly *imprint.Imprint) {
	switch {
	case a.OwnKeys != nil && b.OwnKeys != nil && slices.Equal(a.OwnKeys, b.OwnKeys):
		i.SetOwnKeys(a.OwnKeys)
	default:
		if a.OwnKeys != nil {
			aOnly.SetOwnKeys(a.OwnKeys)
		}
		if b.OwnKeys != nil {
			bOnly.SetOwnKeys(b.OwnKeys)
		}
	}
}

func splitHas(a, b, i, aOnly, bOnly *imprint.Imprint) {
	for k, av := range a.Has {
		if bv, ok := b.Has[k]; ok {
			if av == bv {
				i.SetHas(k, av)
			} else {
				aOnly.SetHas(k, av)
				bOnly.SetHas(k, bv)
			}
		} else {
			aOnly.SetHas(k, av)
		}
	}
	for k, bv := range b.Has {
		if _, ok := a.Has[k]; !ok {
			bOnly.SetHas(k, bv)
		}
	}
}

func splitRead(a, b, i, aOnly, bOnly *imprint.Imprint) {
	for k, av := range a.Read {
		bv, ok := b.Read[k]
		if !ok {
			aOnly.SetRead(k, av)
			continue
		}
		switch {
		case av.IsNested && bv.IsNested:
			subI, subA, subB := split(av.Nested, bv.Nested)
			if subI != nil {
				i.SetRead(k, imprint.NewNestedEntry(subI))
			}
			if subA != nil {
				aOnly.SetRead(k, imprint.NewNestedEntry(subA))
			}
			if subB != nil {
				bOnly.SetRead(k, imprint.NewNestedEntry(subB))
			}
		case !av.IsNested && !bv.IsNested && imprint.PrimitiveEqual(av.Primitive, bv.Primitive):
			i.SetRead(k, av)
		default:
			aOnly.SetRead(k, av)
			bOnly.SetRead(k, bv)
		}
	}
	for k, bv := range b.Read {
		if _, ok := a.Read[k]; !ok {
			bOnly.SetRead(k, bv)
		}
	}
}
