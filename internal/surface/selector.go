package surface

import (
	"fmt"
	"strings"
)

// Selector is a small CSS-like matcher: `kind`, `.class`, `[data-key]`,
// `[data-key=value]`, `*`, compounds of those, and comma separated groups.
// Combinators are not supported.
type Selector struct {
	source string
	groups []compound
}

type compound struct {
	kind    string
	classes []string
	attrs   []attrMatch
}

type attrMatch struct {
	key      string
	value    string
	hasValue bool
}

// ParseSelector parses a selector list.
func ParseSelector(source string) (Selector, error) {
	sel := Selector{source: strings.TrimSpace(source)}
	if sel.source == "" {
		return sel, fmt.Errorf("empty selector")
	}
	for _, part := range strings.Split(sel.source, ",") {
		c, err := parseCompound(strings.TrimSpace(part))
		if err != nil {
			return Selector{}, fmt.Errorf("selector %q: %w", source, err)
		}
		sel.groups = append(sel.groups, c)
	}
	return sel, nil
}

// MustParseSelector panics on invalid input; meant for package-level values.
func MustParseSelector(source string) Selector {
	sel, err := ParseSelector(source)
	if err != nil {
		panic(err)
	}
	return sel
}

func parseCompound(s string) (compound, error) {
	var c compound
	if s == "" {
		return c, fmt.Errorf("empty compound")
	}
	i := 0
	if s[0] == '*' {
		i = 1
	} else if isIdent(s[0]) {
		j := scanIdent(s, 0)
		c.kind = s[:j]
		i = j
	}
	for i < len(s) {
		switch s[i] {
		case '.':
			j := scanIdent(s, i+1)
			if j == i+1 {
				return c, fmt.Errorf("missing class name at %d", i)
			}
			c.classes = append(c.classes, s[i+1:j])
			i = j
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return c, fmt.Errorf("unterminated attribute at %d", i)
			}
			body := s[i+1 : i+end]
			key, value, hasValue := strings.Cut(body, "=")
			key = strings.TrimPrefix(strings.TrimSpace(key), "data-")
			if key == "" {
				return c, fmt.Errorf("missing attribute name at %d", i)
			}
			value = strings.Trim(strings.TrimSpace(value), `"'`)
			c.attrs = append(c.attrs, attrMatch{key: key, value: value, hasValue: hasValue})
			i += end + 1
		default:
			return c, fmt.Errorf("unexpected %q at %d", s[i], i)
		}
	}
	return c, nil
}

func isIdent(b byte) bool {
	return b == '-' || b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func scanIdent(s string, i int) int {
	for i < len(s) && isIdent(s[i]) {
		i++
	}
	return i
}

func (s Selector) String() string {
	return s.source
}

// Empty reports whether the selector matches nothing.
func (s Selector) Empty() bool {
	return len(s.groups) == 0
}

// Match reports whether n satisfies any group.
func (s Selector) Match(n *Node) bool {
	if n == nil {
		return false
	}
	for _, c := range s.groups {
		if c.match(n) {
			return true
		}
	}
	return false
}

// Closest returns the nearest inclusive ancestor of n matching the selector.
func (s Selector) Closest(n *Node) *Node {
	if s.Empty() {
		return nil
	}
	for cur := n; cur != nil; cur = cur.parent {
		if s.Match(cur) {
			return cur
		}
	}
	return nil
}

func (c compound) match(n *Node) bool {
	if c.kind != "" && c.kind != n.Kind {
		return false
	}
	for _, class := range c.classes {
		if !n.HasClass(class) {
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
