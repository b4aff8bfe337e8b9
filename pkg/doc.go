// Package pkg provides the core libraries of deplist, a dependency resolver
// for source-based package managers.
//
// # Overview
//
// deplist turns a set of targets (package atoms, dependency expressions and
// named sets) into an ordered merge list: every package to install, in an
// order that satisfies build-time dependencies, together with the blocks,
// masked packages and already-installed entries that explain the result.
// The pkg directory is organized as follows:
//
//  1. [version], [spec] - Versions, package atoms and dependency expressions
//  2. [repository] - Package universes, installed packages, masks and sets
//  3. [deplist] - The resolver and the merge list it builds
//  4. [dag], [render], [io] - Plan graphs, DOT/SVG rendering, plan files
//  5. [cache], [archive], [config] - Infrastructure around resolution
//  6. [pipeline] - Orchestration (resolve → graph → render)
//
// # Architecture
//
// The typical data flow through deplist:
//
//	repository TOML
//	      ↓
//	[repository] Database (packages, masks, sets)
//	      ↓
//	[spec] parsed targets → [deplist] DepList.Add
//	      ↓
//	[deplist] Plan (merge list snapshot)
//	      ↓
//	[dag] graph → [render/nodelink] DOT/SVG, [io] JSON/YAML
//
// # Quick Start
//
//	db, _ := repository.LoadTOML("repo.toml")
//	d, _ := deplist.New(db, db, deplist.DefaultOptions())
//
//	target, _ := spec.Parse(">=app-editors/vim-9.0", spec.ParseOptions{})
//	if err := d.Add(ctx, target); err != nil {
//	    // errors.GetCode(err) tells why, e.g. ALL_MASKED
//	}
//	for _, e := range d.Plan().Entries {
//	    fmt.Println(e.Kind, e.Package)
//	}
//
// The [pipeline] package wraps these steps with caching and is shared by
// the CLI and the HTTP API.
package pkg
