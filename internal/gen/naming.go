package gen

import (
	"fmt"
	"go/token"
	"path"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tordrt/symbols/internal/directive"
)

// words splits s into words at runs of non-alphanumeric characters and at
// case changes ("fooBar", "HTTPServer").
func words(s string) []string {
	var (
		out []string
		cur []rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 && unicode.IsUpper(r) {
			prev := cur[len(cur)-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				(unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1])) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// pascal converts a free-form value into PascalCase: "super mario-64" => "SuperMario64".
func pascal(s string) string {
	caser := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(caser.String(w))
	}
	return b.String()
}

// variantName joins the PascalCase form of every key component with "_".
func variantName(prefix string, key []string) (string, error) {
	parts := make([]string, len(key))
	for i, k := range key {
		parts[i] = pascal(k)
		if parts[i] == "" {
			return "", fmt.Errorf("key value %q yields an empty identifier", k)
		}
	}
	name := prefix + strings.Join(parts, "_")
	if !isIdent(name) {
		return "", fmt.Errorf("key %q yields invalid identifier %q", strings.Join(key, ", "), name)
	}
	return name, nil
}

// isIdent reports whether name can be declared in Go source.
func isIdent(name string) bool {
	return token.IsIdentifier(name) && name != "_"
}

// methodName returns the accessor name of a column: "release_year" => "ReleaseYear".
func methodName(column string) string {
	return inflect.Camelize(column)
}

// constructorName returns the lookup function name for a set of key columns:
// Game, [rank name] => GameByRankAndName.
func constructorName(enum string, columns []string) string {
	snake := make([]string, len(columns))
	for i, c := range columns {
		snake[i] = inflect.Underscore(c)
	}
	return enum + "By" + inflect.Camelize(strings.Join(snake, "_and_"))
}

// Result names of optional accessors and full-key constructors.
const (
	resultValue = "v"
	resultOK    = "ok"
)

// reserved returns the names generated function bodies may refer to besides
// their own parameters: named results, predeclared identifiers, the fmt and
// math packages and whatever a replacement renders.
func reserved(replace []directive.Replacement) map[string]bool {
	names := map[string]bool{
		resultValue: true,
		resultOK:    true,
		"fmt":       true,
		"math":      true,
		"int":       true,
		"panic":     true,
		"true":      true,
		"nil":       true,
	}
	for _, r := range replace {
		if r.Type.Path != "" {
			names[path.Base(r.Type.Path)] = true
		} else if r.Type.Name != "" {
			names[r.Type.Name] = true
		}
		if r.Func != "" {
			names[r.Func] = true
		}
	}
	return names
}

// paramName returns a parameter name for a column that is neither a Go
// keyword nor one of the taken names.
func paramName(column string, taken map[string]bool) string {
	name := inflect.CamelizeDownFirst(column)
	if token.Lookup(name).IsKeyword() || taken[name] {
		return "_" + name
	}
	return name
}

// receiver returns the receiver name for methods of typ: its lowercased
// initial, or the first two letters when the initial is taken.
func receiver(typ string, taken map[string]bool) string {
	rs := []rune(typ)
	candidates := []string{strings.ToLower(string(rs[:1]))}
	if len(rs) > 1 {
		candidates = append(candidates, strings.ToLower(string(rs[:2])))
	}
	candidates = append(candidates, "e", "x")
	for _, c := range candidates {
		if isIdent(c) && !token.Lookup(c).IsKeyword() && !taken[c] {
			return c
		}
	}
	name := "_" + candidates[0]
	for taken[name] {
		name = "_" + name
	}
	return name
}
