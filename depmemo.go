// Package depmemo memoizes calls keyed not by their raw arguments, but by
// the pattern of property accesses a call actually performs against them.
//
// # Problem
//
// Conventional memoization hashes or deep-compares arguments before
// deciding whether a cached result applies. That forces a choice: compare
// by identity (misses whenever an equivalent-but-distinct value arrives)
// or compare by full structural equality (expensive, and wrong whenever
// the call only reads a fragment of a large argument).
//
//	cache[argsHash(cfg)] = expensiveCompute(cfg) // recomputes on every new *Config,
//	                                              // even if only cfg.Timeout was read
//
// # Solution
//
// Trace what a call actually reads from its arguments the first time it
// runs, and record that as an Imprint rather than a snapshot. A later call
// with different arguments reuses the cached result whenever its
// arguments are compatible with that Imprint - whenever repeating the
// same reads against them would observe the same values - not only when
// the arguments are equal:
//
//	view, finalize, _ := depmemo.Trace(cfg)
//	result := expensiveCompute(view) // reads cfg only through the *View
//	imprint := finalize()
//	tree.Insert(imprint, result)
//	// ...later, a *Config that merely agrees on the fields actually read:
//	if cached, err := tree.Lookup(otherCfg); err == nil {
//	    return cached
//	}
//
// # This package
//
// Trace wraps an argument in an interception layer that records every
// read, existence probe, and key enumeration into an Imprint tree. Match
// decides whether a fresh value is compatible with a previously recorded
// Imprint. Tree stores many (Imprint, value) pairs, factoring their shared
// prefixes so lookup cost tracks overlap rather than the number of
// entries stored.
//
// Most callers should prefer the higher-level github.com/mpyw/depmemo/memoize
// package, which wraps these three primitives into a drop-in memoizing
// cache with TTL and concurrent-call coalescing. This package is for
// callers who need the tracing and matching primitives directly.
package depmemo

import (
	"github.com/mpyw/depmemo/internal/explain"
	"github.com/mpyw/depmemo/internal/imprint"
	"github.com/mpyw/depmemo/internal/imprinttree"
	"github.com/mpyw/depmemo/internal/matcher"
	"github.com/mpyw/depmemo/internal/tracer"
)

// Accessible lets a type take full control of what tracing it means:
// implement Get/Has/Keys directly instead of relying on the reflect-based
// fallback for structs and maps.
type Accessible = tracer.Accessible

// Imprint is the recursive record of property-access observations made
// against one traced value.
type Imprint = imprint.Imprint

// View is the interception handle returned by Trace.
type View = tracer.View

// Tree stores (Imprint, value) pairs and looks values up by compatibility
// rather than equality. The zero value is not usable; use NewTree.
type Tree = imprinttree.Tree

// Report describes why a Lookup missed - which single recorded observation
// disagreed with the candidate object.
type Report = explain.Report

// ErrInvalidTarget is returned by Trace when root cannot be traced: nil,
// or neither an Accessible, a struct, a map, nor a pointer to either.
var ErrInvalidTarget = tracer.ErrInvalidTarget

// ErrUnsupported is returned by a View's write-shaped methods; tracing
// models read-only access only.
var ErrUnsupported = tracer.ErrUnsupported

// ErrNoMatch is returned by a Tree's Lookup when no stored entry is
// compatible with the given value.
var ErrNoMatch = imprinttree.ErrNoMatch

// Trace wraps root in a read-only interception layer and returns a View
// over it plus a finalize function. Call finalize exactly once, after the
// traced call returns, to obtain the recorded Imprint and permanently stop
// further recording.
func Trace(root any) (view *View, finalize func() *Imprint, err error) {
	return tracer.Trace(root)
}

// Match reports whether obj is compatible with imp: whether repeating the
// reads imp records against obj would observe the same primitives and
// shape. A nil imp matches any object.
func Match(imp *Imprint, obj any) bool {
	return matcher.Match(imp, obj)
}

// Explain reports why obj does not match imp, or nil if it does.
func Explain(imp *Imprint, obj any) *Report {
	return explain.Explain(imp, obj)
}

// NewTree returns an empty Tree.
func NewTree() *Tree {
	return imprinttree.New()
}
