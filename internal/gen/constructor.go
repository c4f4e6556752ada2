package gen

import (
	"strings"

	"github.com/tordrt/symbols/internal/directive"
	"github.com/tordrt/symbols/internal/schema"
)

// Constructor is a lookup function from the values of a subset of the key
// columns to the matching variants.
type Constructor struct {
	// Columns holds the column ids of the subset in key order.
	Columns []int
	Name    string
	Params  []Param
	// Full is set when the subset covers the whole key. The function then
	// returns at most one variant.
	Full    bool
	Buckets []Bucket

	index map[string]int
}

// Param is a constructor parameter.
type Param struct {
	Name   string
	Column int
	Type   ValueType
}

// Bucket groups the variants sharing the same subset values, in row order.
type Bucket struct {
	Key      []Literal
	Variants []int
}

// Unique reports whether the bucket holds exactly one variant.
func (b Bucket) Unique() bool { return len(b.Variants) == 1 }

// combinations returns every non-empty subset of ids, by size and then in
// the order of ids.
func combinations(ids []int) [][]int {
	var out [][]int
	for size := 1; size <= len(ids); size++ {
		combine(ids, size, nil, &out)
	}
	return out
}

func combine(ids []int, size int, prefix []int, out *[][]int) {
	if len(prefix) == size {
		*out = append(*out, append([]int(nil), prefix...))
		return
	}
	for i := range ids {
		combine(ids[i+1:], size, append(prefix, ids[i]), out)
	}
}

// constructors creates one constructor per key subset. Parameters use the
// replacement type only for type replacements, other values are matched as
// plain strings.
func (b *builder) constructors() {
	for _, subset := range combinations(b.keys) {
		names := make([]string, len(subset))
		params := make([]Param, len(subset))
		for i, id := range subset {
			col := b.enum.Table.Columns[id]
			names[i] = col.Name
			typ := ValueType{Kind: schema.KindString}
			if r := b.replace[id]; r.Mode == directive.Type {
				typ.Replace = r
			}
			params[i] = Param{
				Name:   paramName(col.Name, b.taken),
				Column: id,
				Type:   typ,
			}
		}
		b.enum.Constructors = append(b.enum.Constructors, &Constructor{
			Columns: subset,
			Name:    constructorName(b.enum.Name, names),
			Params:  params,
			Full:    len(subset) == len(b.keys),
			index:   make(map[string]int),
		})
	}
}

func (c *Constructor) add(variant int, row schema.Row) {
	key := make([]Literal, len(c.Params))
	texts := make([]string, len(c.Params))
	for i, p := range c.Params {
		key[i] = p.Type.literal(row[p.Column])
		texts[i] = key[i].Text
	}
	id := strings.Join(texts, ", ")
	n, ok := c.index[id]
	if !ok {
		n = len(c.Buckets)
		c.index[id] = n
		c.Buckets = append(c.Buckets, Bucket{Key: key})
	}
	c.Buckets[n].Variants = append(c.Buckets[n].Variants, variant)
}
