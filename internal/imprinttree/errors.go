package imprinttree

import "errors"

// ErrNoMatch is returned by Lookup when no stored entry is compatible with
// the given object. It is ordinary control flow for a caching layer: it
// means "cache miss", not "something went wrong".
var ErrNoMatch = errors.New("imprinttree: no entry matches the given value")
