package gen

import (
	"bytes"
	"io"

	"github.com/dave/jennifer/jen"
)

// File assembles the generated source file of e.
func (e *Enum) File() *jen.File {
	f := jen.NewFile(e.Package)
	f.HeaderComment("Code generated by symbols from table " + e.Table.Name + ". DO NOT EDIT.")
	if e.Header != "" {
		f.HeaderComment(e.Header)
	}
	e.genType(f)
	if e.Single() {
		e.genString(f)
		e.genParse(f)
	}
	for _, a := range e.Accessors {
		e.genAccessor(f, a)
	}
	for _, c := range e.Constructors {
		e.genConstructor(f, c)
	}
	return f
}

// Render writes the formatted source of e to w. Nothing is written when
// rendering fails.
func (e *Enum) Render(w io.Writer) error {
	var buf bytes.Buffer
	if err := e.File().Render(&buf); err != nil {
		return NewGenerationError("render", "", "format "+e.Name, err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return NewGenerationError("write", "", "write "+e.Name, err)
	}
	return nil
}

// Source returns the formatted source of e.
func (e *Enum) Source() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Enum) variant(i int) *jen.Statement { return jen.Id(e.Variants[i].Name) }

func (e *Enum) genType(f *jen.File) {
	f.Commentf("%s enumerates the rows of table %s.", e.Name, e.Table.Name)
	f.Type().Id(e.Name).Int()

	f.Const().DefsFunc(func(defs *jen.Group) {
		for i, v := range e.Variants {
			if i == 0 {
				defs.Id(v.Name).Id(e.Name).Op("=").Iota()
				continue
			}
			defs.Id(v.Name)
		}
	})

	f.Commentf("%s returns all values of %s in declaration order.", e.ValuesFunc(), e.Name)
	f.Func().Id(e.ValuesFunc()).Params().Index().Id(e.Name).Block(
		jen.Return(jen.Index().Id(e.Name).ValuesFunc(func(vals *jen.Group) {
			for i := range e.Variants {
				vals.Add(e.variant(i))
			}
		})),
	)
}

// genString emits the key accessor of a single-column key.
func (e *Enum) genString(f *jen.File) {
	r := e.Receiver
	f.Commentf("String returns the %s value of the row behind %s.", e.Column(e.Key).Name, r)
	f.Func().Params(jen.Id(r).Id(e.Name)).Id("String").Params().String().BlockFunc(func(body *jen.Group) {
		body.Switch(jen.Id(r)).BlockFunc(func(sw *jen.Group) {
			for i, v := range e.Variants {
				if v.Key == nil {
					continue
				}
				sw.Case(e.variant(i)).Block(jen.Return(jen.Lit(v.Key[0])))
			}
		})
		body.Return(jen.Qual("fmt", "Sprintf").Call(jen.Lit(e.Name+"(%d)"), jen.Int().Call(jen.Id(r))))
	})
}

func (e *Enum) genParse(f *jen.File) {
	f.Commentf("%s returns the %s whose %s is s.", e.ParseFunc(), e.Name, e.Column(e.Key).Name)
	f.Func().Id(e.ParseFunc()).Params(jen.Id("s").String()).Params(jen.Id(e.Name), jen.Error()).BlockFunc(func(body *jen.Group) {
		body.Switch(jen.Id("s")).BlockFunc(func(sw *jen.Group) {
			for i, v := range e.Variants {
				if v.Key == nil {
					continue
				}
				sw.Case(jen.Lit(v.Key[0])).Block(jen.Return(e.variant(i), jen.Nil()))
			}
		})
		body.Return(jen.Lit(0), jen.Qual("fmt", "Errorf").Call(jen.Lit("unknown "+e.Name+" %q"), jen.Id("s")))
	})
}

func (e *Enum) genAccessor(f *jen.File, a *Accessor) {
	r := e.Receiver
	col := e.Column(a.Column).Name
	if !a.Partial {
		f.Commentf("%s returns the %s value of the row behind %s.", a.Name, col, r)
	} else {
		f.Commentf("%s returns the %s value of the row behind %s, if it has one.", a.Name, col, r)
	}
	fn := f.Func().Params(jen.Id(r).Id(e.Name)).Id(a.Name).Params()
	if !a.Partial {
		fn.Add(a.Type.Code()).BlockFunc(func(body *jen.Group) {
			body.Switch(jen.Id(r)).BlockFunc(func(sw *jen.Group) {
				for _, en := range a.Entries {
					sw.Case(e.variant(en.Variant)).Block(jen.Return(en.Value.Code()))
				}
			})
			body.Panic(jen.Qual("fmt", "Sprintf").Call(jen.Lit("invalid "+e.Name+" %d"), jen.Int().Call(jen.Id(r))))
		})
		return
	}
	fn.Params(jen.Id(resultValue).Add(a.Type.Code()), jen.Id(resultOK).Bool()).BlockFunc(func(body *jen.Group) {
		if len(a.Entries) > 0 {
			body.Switch(jen.Id(r)).BlockFunc(func(sw *jen.Group) {
				for _, en := range a.Entries {
					sw.Case(e.variant(en.Variant)).Block(jen.Return(en.Value.Code(), jen.True()))
				}
			})
		}
		body.Return()
	})
}

func (e *Enum) genConstructor(f *jen.File, c *Constructor) {
	if c.Full {
		f.Commentf("%s returns the %s identified by its full key.", c.Name, e.Name)
	} else {
		f.Commentf("%s returns the %s values matching the given key columns, in row order.", c.Name, e.Name)
	}
	params := make([]jen.Code, len(c.Params))
	for i, p := range c.Params {
		params[i] = jen.Id(p.Name).Add(p.Type.Code())
	}
	fn := f.Func().Id(c.Name).Params(params...)
	if c.Full {
		fn.Params(jen.Id(resultValue).Id(e.Name), jen.Id(resultOK).Bool())
	} else {
		fn.Index().Id(e.Name)
	}
	fn.BlockFunc(func(body *jen.Group) {
		var sw *jen.Statement
		if len(c.Params) == 1 {
			sw = jen.Switch(jen.Id(c.Params[0].Name))
		} else {
			sw = jen.Switch()
		}
		body.Add(sw.BlockFunc(func(cases *jen.Group) {
			for _, bk := range c.Buckets {
				if c.Full && !bk.Unique() {
					continue
				}
				cases.Case(c.match(bk)).BlockFunc(func(g *jen.Group) {
					if c.Full {
						g.Return(e.variant(bk.Variants[0]), jen.True())
						return
					}
					g.Return(jen.Index().Id(e.Name).ValuesFunc(func(vals *jen.Group) {
						for _, v := range bk.Variants {
							vals.Add(e.variant(v))
						}
					}))
				})
			}
		}))
		if c.Full {
			body.Return()
		} else {
			body.Return(jen.Nil())
		}
	})
}

// match returns the case expression selecting bk.
func (c *Constructor) match(bk Bucket) jen.Code {
	if len(c.Params) == 1 {
		return bk.Key[0].Code()
	}
	cond := jen.Id(c.Params[0].Name).Op("==").Add(bk.Key[0].Code())
	for i, p := range c.Params[1:] {
		cond.Op("&&").Id(p.Name).Op("==").Add(bk.Key[i+1].Code())
	}
	return cond
}
