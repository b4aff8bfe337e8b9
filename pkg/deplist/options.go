package deplist

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/repository"
)

// Every policy type below reserves its zero value for "not set". Unset
// fields take the documented default in [Options.WithDefaults].

// Reinstall controls reinstalling packages that are already installed.
type Reinstall int

const (
	ReinstallNever Reinstall = iota + 1
	ReinstallAlways
	ReinstallIfUseChanged
)

// ReinstallSCM controls reinstalling live packages at the same version.
type ReinstallSCM int

const (
	ReinstallSCMNever ReinstallSCM = iota + 1
	ReinstallSCMAlways
	ReinstallSCMDaily
	ReinstallSCMWeekly
)

// TargetType says whether targets name packages or sets.
type TargetType int

const (
	TargetPackage TargetType = iota + 1
	TargetSet
)

// Upgrade controls upgrading installed dependencies.
type Upgrade int

const (
	UpgradeAlways Upgrade = iota + 1
	UpgradeAsNeeded
)

// Downgrade controls selecting a version lower than the installed one.
type Downgrade int

const (
	DowngradeAsNeeded Downgrade = iota + 1
	DowngradeWarning
	DowngradeError
)

// NewSlots controls whether an installed package in another slot can
// satisfy a dependency.
type NewSlots int

const (
	NewSlotsAlways NewSlots = iota + 1
	NewSlotsAsNeeded
)

// FallBack controls falling back to an installed package when nothing
// installable is visible.
type FallBack int

const (
	FallBackAsNeededExceptTargets FallBack = iota + 1
	FallBackAsNeeded
	FallBackNever
)

// Deps is the disposition of one dependency phase.
type Deps int

const (
	// DepsDiscard ignores the dependencies.
	DepsDiscard Deps = iota + 1
	// DepsPre places the dependencies before the package and fails if that
	// is impossible.
	DepsPre
	// DepsPreOrPost tries DepsPre and falls back to DepsPost.
	DepsPreOrPost
	// DepsPost places the dependencies after the package.
	DepsPost
	// DepsTryPost is DepsPost that ignores failures.
	DepsTryPost
)

// Suggested controls suggested dependencies.
type Suggested int

const (
	SuggestedShow Suggested = iota + 1
	SuggestedDiscard
	SuggestedInstall
)

// Circular controls circular dependencies.
type Circular int

const (
	CircularError Circular = iota + 1
	CircularDiscard
	CircularDiscardSilently
)

// Use controls how flag conditionals in dependencies are evaluated.
type Use int

const (
	// UseStandard follows the flag state recorded for the package.
	UseStandard Use = iota + 1
	// UseTakeAll follows every conditional whose flag is not locked.
	UseTakeAll
)

// Blocks controls blockers that match installed or pending packages.
type Blocks int

const (
	BlocksAccumulate Blocks = iota + 1
	BlocksError
	BlocksDiscard
	BlocksDiscardCompletely
)

// OverrideMask is one kind of mask the resolver may override.
type OverrideMask uint8

const (
	OverrideLicenses OverrideMask = 1 << iota
	OverrideTildeKeywords
	OverrideUnkeyworded
	OverrideRepositoryMasks
	OverrideProfileMasks
)

// OverrideMasks is a set of [OverrideMask] values.
type OverrideMasks uint8

// overrideOrder is the order in which masks are widened.
var overrideOrder = []OverrideMask{
	OverrideLicenses,
	OverrideTildeKeywords,
	OverrideUnkeyworded,
	OverrideRepositoryMasks,
	OverrideProfileMasks,
}

var overrideNames = map[OverrideMask]string{
	OverrideLicenses:        "licenses",
	OverrideTildeKeywords:   "tilde_keywords",
	OverrideUnkeyworded:     "unkeyworded",
	OverrideRepositoryMasks: "repository_masks",
	OverrideProfileMasks:    "profile_masks",
}

const allOverrides = OverrideMasks(OverrideLicenses | OverrideTildeKeywords | OverrideUnkeyworded |
	OverrideRepositoryMasks | OverrideProfileMasks)

func (m OverrideMask) String() string { return overrideNames[m] }

// MaskKind is the repository mask kind the override applies to.
func (m OverrideMask) MaskKind() repository.MaskKind {
	switch m {
	case OverrideLicenses:
		return repository.MaskLicense
	case OverrideTildeKeywords:
		return repository.MaskTildeKeyword
	case OverrideUnkeyworded:
		return repository.MaskUnkeyworded
	case OverrideRepositoryMasks:
		return repository.MaskRepository
	case OverrideProfileMasks:
		return repository.MaskProfile
	}
	panic(fmt.Sprintf("deplist: unknown override mask %d", m))
}

// Overrides builds a set from masks.
func Overrides(masks ...OverrideMask) OverrideMasks {
	var s OverrideMasks
	for _, m := range masks {
		s = s.With(m)
	}
	return s
}

// Has reports whether m is in the set.
func (s OverrideMasks) Has(m OverrideMask) bool { return s&OverrideMasks(m) != 0 }

// With returns the set with m added.
func (s OverrideMasks) With(m OverrideMask) OverrideMasks { return s | OverrideMasks(m) }

// Empty reports whether the set is empty.
func (s OverrideMasks) Empty() bool { return s == 0 }

// List returns the masks in the set in widening order.
func (s OverrideMasks) List() []OverrideMask {
	var out []OverrideMask
	for _, m := range overrideOrder {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

// String returns the masks as a comma-separated list.
func (s OverrideMasks) String() string {
	names := make([]string, 0, len(overrideOrder))
	for _, m := range s.List() {
		names = append(names, m.String())
	}
	return strings.Join(names, ",")
}

// ParseOverrideMasks parses a comma-separated list of mask names. An empty
// string or "none" gives the empty set.
func ParseOverrideMasks(s string) (OverrideMasks, error) {
	var out OverrideMasks
	if s == "" || s == "none" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		found := false
		for m, name := range overrideNames {
			if name == part {
				out = out.With(m)
				found = true
				break
			}
		}
		if !found {
			return 0, errors.New(errors.ErrCodeMalformedOptions, "override_masks: unknown mask %q", part)
		}
	}
	return out, nil
}

// =============================================================================
// Options
// =============================================================================

// Options is the full policy surface of a resolution. Options is a value
// type; a DepList works on its own copy.
//
// Fields are listed in canonical order, which is also the order accepted by
// [PositionalOptions].
type Options struct {
	Reinstall                Reinstall
	ReinstallSCM             ReinstallSCM
	TargetType               TargetType
	Upgrade                  Upgrade
	Downgrade                Downgrade
	NewSlots                 NewSlots
	FallBack                 FallBack
	InstalledDepsPre         Deps
	InstalledDepsRuntime     Deps
	InstalledDepsPost        Deps
	UninstalledDepsPre       Deps
	UninstalledDepsRuntime   Deps
	UninstalledDepsPost      Deps
	UninstalledDepsSuggested Deps
	Suggested                Suggested
	Circular                 Circular
	Use                      Use
	Blocks                   Blocks
	DependencyTags           bool
	OverrideMasks            OverrideMasks
}

// DefaultOptions returns the default policy.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults returns a copy with unset fields replaced by their defaults.
func (o Options) WithDefaults() Options {
	setDefault(&o.Reinstall, ReinstallNever)
	setDefault(&o.ReinstallSCM, ReinstallSCMNever)
	setDefault(&o.TargetType, TargetPackage)
	setDefault(&o.Upgrade, UpgradeAlways)
	setDefault(&o.Downgrade, DowngradeAsNeeded)
	setDefault(&o.NewSlots, NewSlotsAlways)
	setDefault(&o.FallBack, FallBackAsNeededExceptTargets)
	setDefault(&o.InstalledDepsPre, DepsDiscard)
	setDefault(&o.InstalledDepsRuntime, DepsTryPost)
	setDefault(&o.InstalledDepsPost, DepsTryPost)
	setDefault(&o.UninstalledDepsPre, DepsPre)
	setDefault(&o.UninstalledDepsRuntime, DepsPreOrPost)
	setDefault(&o.UninstalledDepsPost, DepsPost)
	setDefault(&o.UninstalledDepsSuggested, DepsTryPost)
	setDefault(&o.Suggested, SuggestedShow)
	setDefault(&o.Circular, CircularError)
	setDefault(&o.Use, UseStandard)
	setDefault(&o.Blocks, BlocksAccumulate)
	return o
}

func setDefault[E ~int](field *E, def E) {
	if *field == 0 {
		*field = def
	}
}

// Validate reports fields holding values outside their declared range.
// Unset fields are rejected; call [Options.WithDefaults] first.
func (o Options) Validate() error {
	for _, f := range o.fields() {
		if !f.valid() {
			return errors.New(errors.ErrCodeMalformedOptions, "%s: invalid value %d", f.name, f.get())
		}
	}
	if o.OverrideMasks&^allOverrides != 0 {
		return errors.New(errors.ErrCodeMalformedOptions, "override_masks: invalid value %d", o.OverrideMasks)
	}
	return nil
}

// NewOptions fills unset fields of o with defaults and validates the result.
func NewOptions(o Options) (Options, error) {
	o = o.WithDefaults()
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// MustOptions is like [NewOptions] but panics on error.
func MustOptions(o Options) Options {
	o, err := NewOptions(o)
	if err != nil {
		panic(err)
	}
	return o
}

// ParseOptions builds options from field names and textual values, such as
// {"circular": "discard", "override_masks": "licenses,unkeyworded"}.
// Missing fields take defaults. Unknown names or values fail with
// MALFORMED_OPTIONS.
func ParseOptions(values map[string]string) (Options, error) {
	var o Options
	byName := make(map[string]field)
	for _, f := range o.fields() {
		byName[f.name] = f
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := o.set(byName, k, values[k]); err != nil {
			return Options{}, err
		}
	}
	return NewOptions(o)
}

// PositionalOptions builds options from exactly one value per field, in the
// order of [FieldNames].
func PositionalOptions(values ...string) (Options, error) {
	names := FieldNames()
	if len(values) != len(names) {
		return Options{}, errors.New(errors.ErrCodeMalformedOptions,
			"expected %d positional values, got %d", len(names), len(values))
	}
	var o Options
	byName := make(map[string]field)
	for _, f := range o.fields() {
		byName[f.name] = f
	}
	for i, v := range values {
		if err := o.set(byName, names[i], v); err != nil {
			return Options{}, err
		}
	}
	return NewOptions(o)
}

// FieldNames returns the option names in canonical order.
func FieldNames() []string {
	var o Options
	names := make([]string, 0, 20)
	for _, f := range o.fields() {
		names = append(names, f.name)
	}
	return append(names, "dependency_tags", "override_masks")
}

// Map returns every option as name/value text, the inverse of
// [ParseOptions].
func (o Options) Map() map[string]string {
	out := make(map[string]string, 20)
	for _, f := range o.fields() {
		out[f.name] = f.text()
	}
	out["dependency_tags"] = fmt.Sprint(o.DependencyTags)
	out["override_masks"] = o.OverrideMasks.String()
	return out
}

// String renders the options as "name=value" pairs in canonical order.
func (o Options) String() string {
	m := o.Map()
	parts := make([]string, 0, len(m))
	for _, name := range FieldNames() {
		parts = append(parts, name+"="+m[name])
	}
	return strings.Join(parts, " ")
}

func (o *Options) set(byName map[string]field, name, value string) error {
	value = strings.TrimSpace(value)
	switch name {
	case "dependency_tags":
		switch value {
		case "true", "1", "yes":
			o.DependencyTags = true
		case "false", "0", "no", "":
			o.DependencyTags = false
		default:
			return errors.New(errors.ErrCodeMalformedOptions, "dependency_tags: invalid value %q", value)
		}
		return nil
	case "override_masks":
		m, err := ParseOverrideMasks(value)
		if err != nil {
			return err
		}
		o.OverrideMasks = m
		return nil
	}
	f, ok := byName[name]
	if !ok {
		return errors.New(errors.ErrCodeMalformedOptions, "unknown option %q", name)
	}
	i := slices.Index(f.names, value)
	if i < 0 {
		return errors.New(errors.ErrCodeMalformedOptions, "%s: invalid value %q (want one of %s)",
			name, value, strings.Join(f.names, ", "))
	}
	f.put(i + 1)
	return nil
}

// field gives uniform access to one enumerated option.
type field struct {
	name  string
	names []string
	get   func() int
	put   func(int)
}

func (f field) valid() bool { v := f.get(); return v >= 1 && v <= len(f.names) }

func (f field) text() string {
	if !f.valid() {
		return "unset"
	}
	return f.names[f.get()-1]
}

func enumField[E ~int](name string, p *E, names []string) field {
	return field{
		name:  name,
		names: names,
		get:   func() int { return int(*p) },
		put:   func(v int) { *p = E(v) },
	}
}

var (
	reinstallNames    = []string{"never", "always", "if_use_changed"}
	reinstallSCMNames = []string{"never", "always", "daily", "weekly"}
	targetTypeNames   = []string{"package", "set"}
	upgradeNames      = []string{"always", "as_needed"}
	downgradeNames    = []string{"as_needed", "warning", "error"}
	newSlotsNames     = []string{"always", "as_needed"}
	fallBackNames     = []string{"as_needed_except_targets", "as_needed", "never"}
	depsNames         = []string{"discard", "pre", "pre_or_post", "post", "try_post"}
	suggestedNames    = []string{"show", "discard", "install"}
	circularNames     = []string{"error", "discard", "discard_silently"}
	useNames          = []string{"standard", "take_all"}
	blocksNames       = []string{"accumulate", "error", "discard", "discard_completely"}
)

// fields lists the enumerated options in canonical order.
func (o *Options) fields() []field {
	return []field{
		enumField("reinstall", &o.Reinstall, reinstallNames),
		enumField("reinstall_scm", &o.ReinstallSCM, reinstallSCMNames),
		enumField("target_type", &o.TargetType, targetTypeNames),
		enumField("upgrade", &o.Upgrade, upgradeNames),
		enumField("downgrade", &o.Downgrade, downgradeNames),
		enumField("new_slots", &o.NewSlots, newSlotsNames),
		enumField("fall_back", &o.FallBack, fallBackNames),
		enumField("installed_deps_pre", &o.InstalledDepsPre, depsNames),
		enumField("installed_deps_runtime", &o.InstalledDepsRuntime, depsNames),
		enumField("installed_deps_post", &o.InstalledDepsPost, depsNames),
		enumField("uninstalled_deps_pre", &o.UninstalledDepsPre, depsNames),
		enumField("uninstalled_deps_runtime", &o.UninstalledDepsRuntime, depsNames),
		enumField("uninstalled_deps_post", &o.UninstalledDepsPost, depsNames),
		enumField("uninstalled_deps_suggested", &o.UninstalledDepsSuggested, depsNames),
		enumField("suggested", &o.Suggested, suggestedNames),
		enumField("circular", &o.Circular, circularNames),
		enumField("use", &o.Use, useNames),
		enumField("blocks", &o.Blocks, blocksNames),
	}
}

func enumString(names []string, v int) string {
	if v >= 1 && v <= len(names) {
		return names[v-1]
	}
	return "unset"
}

func (r Reinstall) String() string    { return enumString(reinstallNames, int(r)) }
func (r ReinstallSCM) String() string { return enumString(reinstallSCMNames, int(r)) }
func (t TargetType) String() string   { return enumString(targetTypeNames, int(t)) }
func (u Upgrade) String() string      { return enumString(upgradeNames, int(u)) }
func (d Downgrade) String() string    { return enumString(downgradeNames, int(d)) }
func (n NewSlots) String() string     { return enumString(newSlotsNames, int(n)) }
func (f FallBack) String() string     { return enumString(fallBackNames, int(f)) }
func (d Deps) String() string         { return enumString(depsNames, int(d)) }
func (s Suggested) String() string    { return enumString(suggestedNames, int(s)) }
func (c Circular) String() string     { return enumString(circularNames, int(c)) }
func (u Use) String() string          { return enumString(useNames, int(u)) }
func (b Blocks) String() string       { return enumString(blocksNames, int(b)) }
