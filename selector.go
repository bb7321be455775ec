package sway

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSelector is returned by ParseSelector for malformed input.
var ErrInvalidSelector = errors.New("sway: invalid selector")

// attrMatch is one [key] or [key=value] clause. key is stored without a
// leading "data-", so [data-active] and [active] both read Data("active").
type attrMatch struct {
	key      string
	value    string
	hasValue bool
}

// compound is a run of simple selectors that must all match one node,
// e.g. ".slide[data-active=true]".
type compound struct {
	name    string
	classes []string
	attrs   []attrMatch
}

func (c compound) matches(n *Node) bool {
	if c.name != "" && n.Name != c.name {
		return false
	}
	for _, cl := range c.classes {
		if !n.HasClass(cl) {
			return false
		}
	}
	for _, a := range c.attrs {
		v, ok := n.Data(a.key)
		if !ok || (a.hasValue && v != a.value) {
			return false
		}
	}
	return true
}

// Selector is a small CSS-like node matcher supporting #name, .class,
// [attr], [attr=value], compounds of those and comma-separated groups.
// Descendant combinators are not supported; use Closest to test ancestry.
//
// The zero Selector matches every node.
type Selector struct {
	src    string
	groups []compound
}

// ParseSelector compiles src.
func ParseSelector(src string) (Selector, error) {
	src = strings.TrimSpace(src)
	if src == "" || src == "*" {
		return Selector{src: src}, nil
	}
	var sel Selector
	sel.src = src
	for _, part := range strings.Split(src, ",") {
		c, err := parseCompound(strings.TrimSpace(part))
		if err != nil {
			return Selector{}, fmt.Errorf("%w %q: %v", ErrInvalidSelector, src, err)
		}
		sel.groups = append(sel.groups, c)
	}
	return sel, nil
}

// MustSelector is like ParseSelector but panics on error. Intended for
// package-level selector literals.
func MustSelector(src string) Selector {
	sel, err := ParseSelector(src)
	if err != nil {
		panic(err)
	}
	return sel
}

// String returns the source text.
func (s Selector) String() string {
	return s.src
}

// MatchesAll reports whether the selector is the universal selector.
func (s Selector) MatchesAll() bool {
	return len(s.groups) == 0
}

// Matches reports whether n itself matches.
func (s Selector) Matches(n *Node) bool {
	if n == nil {
		return false
	}
	if len(s.groups) == 0 {
		return true
	}
	for _, g := range s.groups {
		if g.matches(n) {
			return true
		}
	}
	return false
}

// Closest returns the nearest node, starting at n and walking up through its
// ancestors, that matches. Returns nil if none does.
func (s Selector) Closest(n *Node) *Node {
	for p := n; p != nil; p = p.Parent {
		if s.Matches(p) {
			return p
		}
	}
	return nil
}

func parseCompound(src string) (compound, error) {
	var c compound
	if src == "" {
		return c, errors.New("empty group")
	}
	i := 0
	for i < len(src) {
		switch src[i] {
		case '#', '.':
			j := i + 1
			for j < len(src) && isIdentByte(src[j]) {
				j++
			}
			if j == i+1 {
				return c, fmt.Errorf("missing identifier at offset %d", i)
			}
			ident := src[i+1 : j]
			if src[i] == '#' {
				if c.name != "" {
					return c, errors.New("more than one #name")
				}
				c.name = ident
			} else {
				c.classes = append(c.classes, ident)
			}
			i = j
		case '[':
			end := strings.IndexByte(src[i:], ']')
			if end < 0 {
				return c, errors.New("unterminated [")
			}
			body := src[i+1 : i+end]
			a, err := parseAttr(body)
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, a)
			i += end + 1
		default:
			return c, fmt.Errorf("unexpected %q at offset %d", src[i], i)
		}
	}
	return c, nil
}

func parseAttr(body string) (attrMatch, error) {
	key, value, hasValue := strings.Cut(body, "=")
	key = strings.TrimPrefix(strings.TrimSpace(key), "data-")
	if key == "" {
		return attrMatch{}, errors.New("empty attribute name")
	}
	for i := 0; i < len(key); i++ {
		if !isIdentByte(key[i]) {
			return attrMatch{}, fmt.Errorf("bad attribute name %q", key)
		}
	}
	value = strings.Trim(strings.TrimSpace(value), `"'`)
	return attrMatch{key: key, value: value, hasValue: hasValue}, nil
}

func isIdentByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}
