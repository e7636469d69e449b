// Package stream defines the categories a console event can belong to.
//
// A [Class] is a bitmask so subscribers can select any combination of
// categories they care about. [None] and [All] are combinators rather than
// categories of their own: no event is ever classified as None or All.
package stream

import (
	"fmt"
	"math/bits"
	"strings"
)

// Class is a set of console event categories.
type Class uint8

// Individual categories. Values are stable and match the order in which the
// categories are listed by [Classes].
const (
	Output Class = 1 << iota
	Verbose
	Warning
	Error
	Debug
)

// Combinators.
const (
	None Class = 0
	All        = Output | Verbose | Warning | Error | Debug
)

var names = []struct {
	class Class
	name  string
}{
	{Output, "output"},
	{Verbose, "verbose"},
	{Warning, "warning"},
	{Error, "error"},
	{Debug, "debug"},
}

// Classes returns every individual category in declaration order.
func Classes() []Class {
	out := make([]Class, 0, len(names))
	for _, n := range names {
		out = append(out, n.class)
	}
	return out
}

// Has reports whether every category in other is also in c.
// Has(None) is always true.
func (c Class) Has(other Class) bool {
	return c&other == other
}

// Single reports whether c is exactly one category.
func (c Class) Single() bool {
	return c&^All == 0 && bits.OnesCount8(uint8(c)) == 1
}

// String returns "none", "all", or the member names joined with "|".
func (c Class) String() string {
	switch c {
	case None:
		return "none"
	case All:
		return "all"
	}

	var parts []string
	for _, n := range names {
		if c&n.class != 0 {
			parts = append(parts, n.name)
		}
	}
	if rest := c &^ All; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%02x", uint8(rest)))
	}
	return strings.Join(parts, "|")
}

// Parse converts a comma or pipe separated list of category names into a
// Class. Names are case-insensitive, "all" and "none" are accepted, and
// plural spellings ("errors", "warnings") are tolerated.
func Parse(s string) (Class, error) {
	var c Class
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '|' || r == ' '
	})
	if len(fields) == 0 {
		return None, fmt.Errorf("empty stream class")
	}

	for _, f := range fields {
		name := strings.ToLower(strings.TrimSpace(f))
		switch name {
		case "all":
			c |= All
			continue
		case "none":
			continue
		}

		found := false
		for _, n := range names {
			if name == n.name || name == n.name+"s" {
				c |= n.class
				found = true
				break
			}
		}
		if !found {
			return None, fmt.Errorf("unknown stream class %q (valid: %s)", f, strings.Join(ValidNames(), ", "))
		}
	}
	return c, nil
}

// MustParse is like Parse but panics on error. Intended for constants in tests
// and defaults.
func MustParse(s string) Class {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ValidNames lists the accepted names, combinators included.
func ValidNames() []string {
	out := []string{"all", "none"}
	for _, n := range names {
		out = append(out, n.name)
	}
	return out
}

// Set implements pflag.Value so a Class can be bound directly to a flag.
func (c *Class) Set(s string) error {
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Type implements pflag.Value.
func (c *Class) Type() string {
	return "streams"
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Class) UnmarshalText(text []byte) error {
	return c.Set(string(text))
}
