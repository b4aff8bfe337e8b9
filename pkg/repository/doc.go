// Package repository provides the package universe the resolver queries.
//
// A universe answers two questions: which packages exist under a name
// ([Universe.Find], installed, installable or both, ordered by version) and
// why a package may not be selected ([Universe.Masks]). [Database] is an
// in-memory implementation that also acts as a [spec.SetRegistry] and a
// source of [Destination] values. Databases are usually populated from a
// TOML file with [LoadTOML]:
//
//	[settings]
//	accept_keywords = ["amd64"]
//
//	[[package]]
//	id = "dev-libs/glib-2.40.0::gentoo"
//	slot = "2"
//	keywords = ["amd64"]
//	depend = ">=dev-libs/libffi-3"
//
//	[[installed]]
//	id = "dev-libs/libffi-3.0.13"
//
//	[sets]
//	world = "dev-libs/glib"
//
// [NewCachedUniverse] memoises queries against any universe with an LRU
// cache, which is useful when one database serves many resolutions.
package repository
