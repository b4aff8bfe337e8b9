// Package deplist resolves dependency trees into an ordered installation
// list.
//
// # Overview
//
// A [DepList] is built from a [repository.Universe] holding installed and
// installable packages, and a set of [Options] describing the policy. Each
// call to [DepList.Add] resolves one target tree and inserts the selected
// packages so that every package comes after the dependencies it needs at
// build time:
//
//	list, err := deplist.New(db, db, deplist.Options{})
//	err = list.Add(ctx, spec.MustParse("app-misc/editor", spec.ParseOptions{}))
//	for e := range list.All() {
//	    fmt.Println(e.Kind, e)
//	}
//
// Adds are transactional. A failed add leaves the list, including the tags
// on existing entries, exactly as it was, so a caller may add targets one by
// one and skip those that fail.
//
// # Entries
//
// Besides packages to install, the list records installed packages that are
// kept ([KindAlreadyInstalled]), virtual names provided by other entries,
// suggestions, and two kinds of error entries: installed packages blocked by
// an entry ([KindBlock]) and masked packages selected by overriding their
// masks ([KindMasked]). A list holding error entries reports
// [DepList.HasErrors] and should be shown to the user rather than executed.
//
// # Dependency Phases
//
// Build dependencies go before their package, post dependencies after it.
// Run dependencies go before when possible and after otherwise. The
// disposition of each phase is set separately for installed and
// uninstalled packages, see [Deps]. Phase labels inside a dependency tree
// move the leaves that follow them to another phase.
//
// # Selection
//
// For a package constraint the resolver reuses a matching entry when there
// is one, and otherwise picks the highest visible version. An installed
// package of the same slot is kept when the policy prefers it; see
// [Upgrade], [Reinstall] and [ReinstallSCM]. Any-of groups prefer a child
// that is already satisfied, then a child naming an installed package, then
// the first child that resolves.
//
// # Plans
//
// [DepList.Plan] snapshots the list for export, and [Plan.Graph] rebuilds
// the reasons behind the order as a [dag.DAG].
package deplist
