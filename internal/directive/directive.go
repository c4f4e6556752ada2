// Package directive resolves per-column replacement directives.
//
// A directive tells the generator how the string values of a column are
// rendered in generated code: as plain string literals, as constants of a
// named type, or as calls to a function returning a named type.
package directive

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// Arg is one entry of a directive list: either a name-value pair or a named
// list of nested arguments.
type Arg struct {
	Name  string
	Value string
	Sub   []Arg
}

// Mode is the kind of replacement applied to a column.
type Mode uint8

const (
	// None renders the raw string literal.
	None Mode = iota
	// Type renders a constant of the target type.
	Type
	// Function renders a call to a function returning the target type.
	Function
)

func (m Mode) String() string {
	switch m {
	case Type:
		return "type"
	case Function:
		return "fn"
	default:
		return "none"
	}
}

// TypeRef names a Go type, optionally qualified by its import path.
type TypeRef struct {
	Path string
	Name string
}

// ParseTypeRef splits "github.com/x/y/pkg.Type" into its import path and type
// name. A reference without a dot is a type of the generated package.
func ParseTypeRef(s string) TypeRef {
	s = strings.TrimSpace(s)
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return TypeRef{Name: s}
	}
	return TypeRef{Path: s[:i], Name: s[i+1:]}
}

// IsZero reports whether the reference names no type.
func (t TypeRef) IsZero() bool { return t.Name == "" }

func (t TypeRef) String() string {
	if t.Path == "" {
		return t.Name
	}
	return t.Path + "." + t.Name
}

// Replacement is the resolved directive for a single column.
type Replacement struct {
	Mode Mode
	// Type is the rendered type. It is zero for a Function replacement that
	// never received a type.
	Type TypeRef
	// Func is the function name for Function replacements.
	Func string
}

// Resolved reports whether the replacement carries everything needed for
// rendering.
func (r Replacement) Resolved() bool {
	return r.Mode == None || !r.Type.IsZero()
}

// Resolve looks up the directive for column in args. Entries match on the
// column name as written, its snake_case form or its CamelCase form. The first
// matching entry that yields a replacement wins.
func Resolve(column string, args []Arg) Replacement {
	names := []string{column, inflect.Underscore(column), inflect.Camelize(column)}
	for _, arg := range args {
		if !matches(arg.Name, names) {
			continue
		}
		if arg.Sub == nil {
			if arg.Value != "" {
				return Replacement{Mode: Type, Type: ParseTypeRef(arg.Value)}
			}
			continue
		}
		if r, ok := fold(arg.Sub); ok {
			return r
		}
	}
	return Replacement{}
}

// fold combines the nested "type" and "fn" entries in order. "fn" seen
// before "type" stays unresolved until the type arrives.
func fold(sub []Arg) (Replacement, bool) {
	var (
		acc   Replacement
		found bool
	)
	for _, a := range sub {
		if a.Value == "" {
			continue
		}
		switch a.Name {
		case "type":
			t := ParseTypeRef(a.Value)
			if acc.Mode == Function && acc.Type.IsZero() {
				acc.Type = t
			} else {
				acc = Replacement{Mode: Type, Type: t}
			}
			found = true
		case "fn":
			if acc.Mode == Type {
				acc = Replacement{Mode: Function, Type: acc.Type, Func: a.Value}
			} else {
				acc = Replacement{Mode: Function, Func: a.Value}
			}
			found = true
		}
	}
	return acc, found
}

func matches(name string, candidates []string) bool {
	for _, c := range candidates {
		if name == c {
			return true
		}
	}
	return false
}
