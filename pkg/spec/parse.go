package spec

import (
	"strings"

	"github.com/matzehuels/deplist/pkg/errors"
)

// ParseOptions controls how conditionals are evaluated while parsing.
type ParseOptions struct {
	// Enabled reports whether a flag is enabled for the package owning the
	// expression. Nil treats every flag as disabled.
	Enabled func(flag string) bool
	// Locked reports whether a flag's state is fixed by profile (forced or
	// masked). Nil treats every flag as unlocked.
	Locked func(flag string) bool
}

// Parse parses a whitespace-separated dependency expression into a tree
// rooted at an *AllOf.
//
// Grammar:
//
//	expr     := item*
//	item     := "||" "(" expr ")"
//	          | ["!"] flag "?" "(" expr ")"
//	          | "(" expr ")"
//	          | "!" constraint | "!!" constraint
//	          | "@" setname
//	          | label ":"
//	          | constraint
func Parse(text string, opts ParseOptions) (*AllOf, error) {
	p := &parser{tokens: strings.Fields(text), opts: opts}
	children, err := p.parseSeq(false)
	if err != nil {
		return nil, err
	}
	return &AllOf{Children: children}, nil
}

// MustParse is like [Parse] but panics on error. It is intended for tests.
func MustParse(text string, opts ParseOptions) *AllOf {
	n, err := Parse(text, opts)
	if err != nil {
		panic(err)
	}
	return n
}

type parser struct {
	tokens []string
	pos    int
	opts   ParseOptions
}

func (p *parser) next() (string, bool) {
	if p.pos >= len(p.tokens) {
		return "", false
	}
	t := p.tokens[p.pos]
	p.pos++
	return t, true
}

func (p *parser) expectOpen(after string) error {
	t, ok := p.next()
	if !ok || t != "(" {
		return errors.New(errors.ErrCodeInvalidSpec, "expected '(' after %q", after)
	}
	return nil
}

func (p *parser) parseSeq(nested bool) ([]Node, error) {
	var out []Node
	for {
		t, ok := p.next()
		if !ok {
			if nested {
				return nil, errors.New(errors.ErrCodeInvalidSpec, "unbalanced '(': missing ')'")
			}
			return out, nil
		}

		switch {
		case t == ")":
			if !nested {
				return nil, errors.New(errors.ErrCodeInvalidSpec, "unexpected ')'")
			}
			return out, nil

		case t == "(":
			children, err := p.parseSeq(true)
			if err != nil {
				return nil, err
			}
			out = append(out, &AllOf{Children: children})

		case t == "||":
			if err := p.expectOpen(t); err != nil {
				return nil, err
			}
			children, err := p.parseSeq(true)
			if err != nil {
				return nil, err
			}
			out = append(out, &AnyOf{Children: children})

		case strings.HasSuffix(t, "?"):
			n, err := p.parseConditional(t)
			if err != nil {
				return nil, err
			}
			out = append(out, n)

		case strings.HasPrefix(t, "@"):
			name := t[1:]
			if err := errors.ValidateSetName(name); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "invalid set reference %q", t)
			}
			out = append(out, &NamedSet{Name: name})

		case strings.HasPrefix(t, "!"):
			strong := strings.HasPrefix(t, "!!")
			c, err := ParseConstraint(strings.TrimLeft(t, "!"))
			if err != nil {
				return nil, err
			}
			out = append(out, &Block{Blocked: c, Strong: strong})

		case strings.HasSuffix(t, ":") && !strings.Contains(t, "/"):
			l, err := parseLabel(t)
			if err != nil {
				return nil, err
			}
			out = append(out, l)

		default:
			c, err := ParseConstraint(t)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
}

func (p *parser) parseConditional(t string) (Node, error) {
	flag := strings.TrimSuffix(t, "?")
	inverse := strings.HasPrefix(flag, "!")
	flag = strings.TrimPrefix(flag, "!")
	if flag == "" {
		return nil, errors.New(errors.ErrCodeInvalidSpec, "empty flag in %q", t)
	}
	if err := p.expectOpen(t); err != nil {
		return nil, err
	}
	children, err := p.parseSeq(true)
	if err != nil {
		return nil, err
	}

	enabled := p.opts.Enabled != nil && p.opts.Enabled(flag)
	locked := p.opts.Locked != nil && p.opts.Locked(flag)
	return &Conditional{
		Flag:     flag,
		Inverse:  inverse,
		Met:      enabled != inverse,
		Locked:   locked,
		Children: children,
	}, nil
}

func parseLabel(t string) (*Label, error) {
	body := strings.TrimSuffix(t, ":")
	if fetchLabels[body] {
		return &Label{Fetch: body}, nil
	}
	l := &Label{}
	for _, name := range strings.Split(body, "+") {
		ph, ok := ParsePhase(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidSpec, "unknown label %q", t)
		}
		l.Phases = append(l.Phases, ph)
	}
	return l, nil
}
