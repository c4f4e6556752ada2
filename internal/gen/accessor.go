package gen

import (
	"math"
	"path"
	"strconv"

	"github.com/dave/jennifer/jen"

	"github.com/tordrt/symbols/internal/directive"
	"github.com/tordrt/symbols/internal/schema"
)

// ValueType is the Go type of rendered column values.
type ValueType struct {
	Kind    schema.Kind
	Replace directive.Replacement
}

// Code returns the type expression.
func (t ValueType) Code() *jen.Statement {
	if t.Replace.Mode != directive.None {
		return jen.Qual(t.Replace.Type.Path, t.Replace.Type.Name)
	}
	switch t.Kind {
	case schema.KindBool:
		return jen.Bool()
	case schema.KindInt8:
		return jen.Int8()
	case schema.KindInt16:
		return jen.Int16()
	case schema.KindInt32:
		return jen.Int32()
	case schema.KindInt64:
		return jen.Int64()
	case schema.KindUint8:
		return jen.Uint8()
	case schema.KindUint16:
		return jen.Uint16()
	case schema.KindUint32:
		return jen.Uint32()
	case schema.KindUint64:
		return jen.Uint64()
	case schema.KindFloat32:
		return jen.Float32()
	case schema.KindFloat64:
		return jen.Float64()
	default:
		return jen.String()
	}
}

// String returns the type as written in the generated file.
func (t ValueType) String() string {
	if t.Replace.Mode != directive.None {
		return qualified(t.Replace.Type.Path, t.Replace.Type.Name)
	}
	return t.Kind.String()
}

// Literal is a rendered value.
type Literal struct {
	// Text is the Go source form of the value. Equal texts denote equal values.
	Text string
	code func() jen.Code
}

// Code returns the value expression.
func (l Literal) Code() jen.Code { return l.code() }

// literal renders a present value of the type.
func (t ValueType) literal(v schema.Value) Literal {
	switch {
	case t.Kind == schema.KindString:
		return t.stringLiteral(v.Str)
	case t.Kind == schema.KindBool:
		b := v.Bool
		return Literal{Text: strconv.FormatBool(b), code: func() jen.Code { return jen.Lit(b) }}
	case t.Kind.IsSigned():
		return raw(strconv.FormatInt(v.Int, 10))
	case t.Kind.IsUnsigned():
		return raw(strconv.FormatUint(v.Uint, 10))
	case t.Kind.IsFloat():
		return floatLiteral(v.Float, t.Kind.Bits())
	}
	return raw("nil")
}

func (t ValueType) stringLiteral(s string) Literal {
	ref := t.Replace.Type
	switch t.Replace.Mode {
	case directive.Type:
		name := ref.Name + pascal(s)
		return Literal{
			Text: qualified(ref.Path, name),
			code: func() jen.Code { return jen.Qual(ref.Path, name) },
		}
	case directive.Function:
		fn := t.Replace.Func
		return Literal{
			Text: qualified(ref.Path, fn) + "(" + strconv.Quote(s) + ")",
			code: func() jen.Code { return jen.Qual(ref.Path, fn).Call(jen.Lit(s)) },
		}
	default:
		return Literal{Text: strconv.Quote(s), code: func() jen.Code { return jen.Lit(s) }}
	}
}

func floatLiteral(f float64, bits int) Literal {
	switch {
	case math.IsNaN(f):
		return Literal{Text: "math.NaN()", code: func() jen.Code { return jen.Qual("math", "NaN").Call() }}
	case math.IsInf(f, 0):
		sign := 1
		if f < 0 {
			sign = -1
		}
		return Literal{
			Text: "math.Inf(" + strconv.Itoa(sign) + ")",
			code: func() jen.Code { return jen.Qual("math", "Inf").Call(jen.Lit(sign)) },
		}
	}
	return raw(strconv.FormatFloat(f, 'g', -1, bits))
}

// raw renders numeric text as an untyped constant so it takes the declared
// type of the surrounding expression.
func raw(text string) Literal {
	return Literal{Text: text, code: func() jen.Code { return jen.Op(text) }}
}

func qualified(pkgPath, name string) string {
	if pkgPath == "" {
		return name
	}
	return path.Base(pkgPath) + "." + name
}

// Accessor is a generated method returning a column value per variant.
type Accessor struct {
	// Column is the column id within the table.
	Column int
	Name   string
	Type   ValueType
	// Partial is set once a row lacks a value. The method then reports
	// presence alongside the value.
	Partial bool
	Entries []Entry
}

// Entry is the value of one variant.
type Entry struct {
	Variant int
	Value   Literal
}

func (a *Accessor) add(variant int, v schema.Value) {
	if !v.Valid {
		a.Partial = true
		return
	}
	a.Entries = append(a.Entries, Entry{Variant: variant, Value: a.Type.literal(v)})
}

// accessors creates one accessor per column of a supported kind. With a
// single key column, the key accessor would repeat String unless the key is
// replaced.
func (b *builder) accessors() {
	for i, c := range b.enum.Table.Columns {
		if !c.Kind.Supported() {
			continue
		}
		if b.enum.Key == i && b.replace[i].Mode == directive.None {
			continue
		}
		b.enum.Accessors = append(b.enum.Accessors, &Accessor{
			Column: i,
			Name:   methodName(c.Name),
			Type:   ValueType{Kind: c.Kind, Replace: b.replace[i]},
		})
	}
}
