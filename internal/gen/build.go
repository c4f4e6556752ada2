package gen

import (
	"fmt"

	"github.com/tordrt/symbols/internal/directive"
	"github.com/tordrt/symbols/internal/schema"
)

// MaxKeyColumns bounds the primary key arity. Lookup constructors are
// generated for every non-empty subset of the key, 2^k-1 of them.
const MaxKeyColumns = 6

// Options configures how a row set is turned into an enumeration.
type Options struct {
	// Enum is the generated type name. Defaults to the PascalCase table name.
	Enum string
	// Package is the package clause of the generated file.
	Package string
	// Header is an optional comment placed above the package clause.
	Header string
	// VariantPrefix is prepended to every derived variant name.
	VariantPrefix string
	// Predeclared variants are declared ahead of the derived ones.
	Predeclared []string
	// Directives holds the replacement directives of the table.
	Directives []directive.Arg
}

// Variant is one constant of the generated enumeration.
type Variant struct {
	Name string
	// Key holds the primary key values of the row behind the variant. It is
	// nil for predeclared variants.
	Key []string
}

// Enum is the in-memory model of a generated file.
type Enum struct {
	Name    string
	Package string
	Header  string
	Table   schema.Table

	Variants     []Variant
	Accessors    []*Accessor
	Constructors []*Constructor

	// Key is the column id of a single-column primary key, -1 when the key
	// spans several columns.
	Key int
	// Receiver names the receiver of generated methods.
	Receiver string
}

// Single reports whether the primary key has exactly one column.
func (e *Enum) Single() bool { return e.Key >= 0 }

// ValuesFunc returns the name of the function listing every variant.
func (e *Enum) ValuesFunc() string { return e.Name + "Values" }

// ParseFunc returns the name of the reverse string conversion.
func (e *Enum) ParseFunc() string { return "Parse" + e.Name }

// Column returns the column with the given id.
func (e *Enum) Column(id int) schema.Column { return e.Table.Columns[id] }

// builder accumulates the enumeration while rows are visited in order.
type builder struct {
	enum    *Enum
	keys    []int
	replace []directive.Replacement
	names   map[string]string
	// taken holds the names function bodies refer to, which receivers and
	// parameters must not shadow.
	taken map[string]bool
}

// Build derives the enumeration model of rs. Rows are visited in order, which
// fixes the order of variants, switch cases and lookup results.
func Build(rs *schema.RowSet, opts Options) (*Enum, error) {
	table := rs.Table
	if opts.Package == "" {
		return nil, NewConfigError("package", nil, "package name is required")
	}
	if !isIdent(opts.Package) {
		return nil, NewConfigError("package", opts.Package, "invalid package name")
	}
	name := opts.Enum
	if name == "" {
		name = pascal(table.Name)
	}
	if !isIdent(name) {
		return nil, NewConfigError("enum", name, "invalid enum name")
	}

	keys, err := table.KeyColumns()
	if err != nil {
		return nil, NewSchemaError(table.Name, "", "resolve primary key", err)
	}
	switch {
	case len(keys) == 0:
		return nil, NewSchemaError(table.Name, "", "table has no primary key", nil)
	case len(keys) > MaxKeyColumns:
		return nil, NewSchemaError(table.Name, "", fmt.Sprintf("primary key has %d columns, at most %d are supported", len(keys), MaxKeyColumns), nil)
	}

	b := &builder{
		enum: &Enum{
			Name:    name,
			Package: opts.Package,
			Header:  opts.Header,
			Table:   table,
			Key:     -1,
		},
		keys:    keys,
		replace: make([]directive.Replacement, len(table.Columns)),
		names:   make(map[string]string),
	}
	if len(keys) == 1 {
		b.enum.Key = keys[0]
	}
	if err := b.resolve(opts.Directives); err != nil {
		return nil, err
	}
	b.taken = reserved(b.replace)
	b.enum.Receiver = receiver(name, b.taken)
	if err := b.declare(opts.Predeclared); err != nil {
		return nil, err
	}
	b.accessors()
	if len(keys) > 1 {
		b.constructors()
	}
	for i, row := range rs.Rows {
		if err := b.add(i, row, opts.VariantPrefix); err != nil {
			return nil, err
		}
	}
	if err := b.checkNames(); err != nil {
		return nil, err
	}
	return b.enum, nil
}

// resolve looks up the replacement of every string column. A function
// replacement without a type cannot be rendered.
func (b *builder) resolve(args []directive.Arg) error {
	for i, c := range b.enum.Table.Columns {
		if c.Kind != schema.KindString {
			continue
		}
		r := directive.Resolve(c.Name, args)
		if !r.Resolved() {
			return NewConfigError("replace."+c.Name, r.Func, "missing parameter type for field "+c.Name)
		}
		b.replace[i] = r
	}
	return nil
}

func (b *builder) declare(predeclared []string) error {
	for _, name := range predeclared {
		if !isIdent(name) {
			return NewConfigError("predeclared", name, "invalid variant name")
		}
		if err := b.claim(name, "variant"); err != nil {
			return NewConfigError("predeclared", name, err.Error())
		}
		b.enum.Variants = append(b.enum.Variants, Variant{Name: name})
	}
	return nil
}

// add records one row: its variant, its accessor entries and its constructor
// buckets.
func (b *builder) add(n int, row schema.Row, prefix string) error {
	table := b.enum.Table
	if len(row) != len(table.Columns) {
		return NewSchemaError(table.Name, "", fmt.Sprintf("row %d has %d values, want %d", n, len(row), len(table.Columns)), nil)
	}
	key := make([]string, len(b.keys))
	for i, id := range b.keys {
		v := row[id]
		if !v.Valid || v.Kind != schema.KindString {
			return NewSchemaError(table.Name, table.Columns[id].Name, fmt.Sprintf("unrecognized value type %s in row %d, primary key values must be strings", describeValue(v), n), nil)
		}
		key[i] = v.Str
	}
	for i, r := range b.replace {
		v := row[i]
		if r.Mode != directive.Type || !v.Valid {
			continue
		}
		if pascal(v.Str) == "" {
			return NewSchemaError(table.Name, table.Columns[i].Name, fmt.Sprintf("value %q in row %d yields no %s constant", v.Str, n, r.Type.Name), nil)
		}
	}
	name, err := variantName(prefix, key)
	if err != nil {
		return NewSchemaError(table.Name, "", "derive variant name", err)
	}
	if err := b.claim(name, "variant"); err != nil {
		return NewSchemaError(table.Name, "", fmt.Sprintf("row %d", n), err)
	}
	variant := len(b.enum.Variants)
	b.enum.Variants = append(b.enum.Variants, Variant{Name: name, Key: key})

	for _, a := range b.enum.Accessors {
		a.add(variant, row[a.Column])
	}
	for _, c := range b.enum.Constructors {
		c.add(variant, row)
	}
	return nil
}

// claim reserves a package level identifier.
func (b *builder) claim(name, what string) error {
	if prev, ok := b.names[name]; ok {
		return fmt.Errorf("%s %s collides with %s of the same name", what, name, prev)
	}
	b.names[name] = what
	return nil
}

// checkNames verifies that generated functions, methods and the type itself
// do not collide with variants or with each other.
func (b *builder) checkNames() error {
	e := b.enum
	top := []struct{ name, what string }{
		{e.Name, "type"},
		{e.ValuesFunc(), "function"},
	}
	if e.Single() {
		top = append(top, struct{ name, what string }{e.ParseFunc(), "function"})
	}
	for _, c := range e.Constructors {
		top = append(top, struct{ name, what string }{c.Name, "constructor"})
	}
	for _, t := range top {
		if err := b.claim(t.name, t.what); err != nil {
			return NewSchemaError(e.Table.Name, "", "generated names", err)
		}
	}
	for _, c := range e.Constructors {
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			col := e.Column(p.Column).Name
			if prev, ok := params[p.Name]; ok {
				return NewSchemaError(e.Table.Name, col, fmt.Sprintf("parameter %s of %s collides with the parameter of column %s", p.Name, c.Name, prev), nil)
			}
			params[p.Name] = col
		}
	}

	methods := make(map[string]string)
	if e.Single() {
		methods["String"] = e.Column(e.Key).Name
	}
	for _, a := range e.Accessors {
		col := e.Column(a.Column).Name
		if !isIdent(a.Name) {
			return NewSchemaError(e.Table.Name, col, fmt.Sprintf("accessor name %q is not a valid identifier", a.Name), nil)
		}
		if prev, ok := methods[a.Name]; ok {
			return NewSchemaError(e.Table.Name, col, fmt.Sprintf("accessor %s collides with the accessor of column %s", a.Name, prev), nil)
		}
		methods[a.Name] = col
	}
	return nil
}

func describeValue(v schema.Value) string {
	if !v.Valid {
		return "null"
	}
	return v.Kind.String()
}
