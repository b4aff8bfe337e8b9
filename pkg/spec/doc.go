// Package spec models dependency expressions.
//
// A dependency expression is a tree of [Node] values: all-of groups, any-of
// groups, flag conditionals, named set references, blocks, labels and
// [PackageConstraint] leaves. Trees come from [Parse] or are built directly
// with [All], [Any] and [MustParseConstraint].
//
// # Walking
//
// [Walker] traverses a tree and hands the interesting nodes to a [Visitor]:
//
//	w := &spec.Walker{Sets: registry, Warn: func(err error) { log.Warn(err) }}
//	err := w.Walk(tree, visitor)
//
// Conditionals are expanded when their condition is met (or, with TakeAll,
// when their flag is not locked). Named sets are resolved through the
// [SetRegistry]; a set that is unknown, or that is reached again while it is
// being expanded, is reported through Warn and skipped. Labels apply to the
// siblings that follow them in the same group, and the walker passes the
// labels in scope to the visitor in a [Context].
package spec
