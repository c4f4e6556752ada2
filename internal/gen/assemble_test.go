package gen

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/symbols/internal/directive"
	"github.com/tordrt/symbols/internal/schema"
)

// stubs stands in for the hand-written code a generated file depends on.
type stubs struct {
	// local is declared in the generated package itself.
	local string
	// imports maps import paths to package sources.
	imports map[string]string
}

// stubImporter type-checks stub packages and reads everything else from the
// standard library sources.
type stubImporter struct {
	fset    *token.FileSet
	std     types.Importer
	imports map[string]string
}

func (s stubImporter) Import(path string) (*types.Package, error) {
	src, ok := s.imports[path]
	if !ok {
		return s.std.Import(path)
	}
	f, err := parser.ParseFile(s.fset, path+"/stub.go", src, 0)
	if err != nil {
		return nil, err
	}
	conf := types.Config{Importer: s}
	return conf.Check(path, s.fset, []*ast.File{f}, nil)
}

// parseSource parses and type-checks generated code together with st.
func parseSource(t *testing.T, src []byte, st stubs) *ast.File {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "gen.go", src, parser.ParseComments)
	require.NoError(t, err, "generated source:\n%s", src)

	files := []*ast.File{f}
	if st.local != "" {
		local, err := parser.ParseFile(fset, "local.go", "package "+f.Name.Name+"\n\n"+st.local, 0)
		require.NoError(t, err)
		files = append(files, local)
	}
	conf := types.Config{Importer: stubImporter{
		fset:    fset,
		std:     importer.ForCompiler(fset, "source", nil),
		imports: st.imports,
	}}
	_, err = conf.Check(f.Name.Name, fset, files, nil)
	require.NoError(t, err, "generated source:\n%s", src)
	return f
}

// funcNames lists the functions and methods of f in declaration order.
func funcNames(f *ast.File) []string {
	var names []string
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			names = append(names, fn.Name.Name)
		}
	}
	return names
}

func findFunc(t *testing.T, f *ast.File, name string) *ast.FuncDecl {
	t.Helper()
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok && fn.Name.Name == name {
			return fn
		}
	}
	t.Fatalf("function %s not found", name)
	return nil
}

// results flattens returned expressions, composite literals into their
// elements.
func results(exprs []ast.Expr) []string {
	var out []string
	for _, e := range exprs {
		if lit, ok := e.(*ast.CompositeLit); ok {
			for _, el := range lit.Elts {
				out = append(out, types.ExprString(el))
			}
			continue
		}
		out = append(out, types.ExprString(e))
	}
	return out
}

// switchCases maps every case of the switch in function name to what it
// returns.
func switchCases(t *testing.T, f *ast.File, name string) map[string][]string {
	t.Helper()
	out := make(map[string][]string)
	ast.Inspect(findFunc(t, f, name).Body, func(n ast.Node) bool {
		cc, ok := n.(*ast.CaseClause)
		if !ok {
			return true
		}
		require.Len(t, cc.List, 1)
		require.Len(t, cc.Body, 1)
		ret, ok := cc.Body[0].(*ast.ReturnStmt)
		require.True(t, ok, "case of %s does not return", name)
		out[types.ExprString(cc.List[0])] = results(ret.Results)
		return false
	})
	return out
}

// finalReturn returns what the last statement of function name returns.
func finalReturn(t *testing.T, f *ast.File, name string) []string {
	t.Helper()
	body := findFunc(t, f, name).Body.List
	require.NotEmpty(t, body)
	ret, ok := body[len(body)-1].(*ast.ReturnStmt)
	require.True(t, ok, "%s does not end with a return", name)
	return results(ret.Results)
}

var kindStubs = stubs{local: "type Kind int\n\nfunc ParseKind(s string) Kind { return 0 }\n"}

var medalStubs = stubs{local: "type Medal int\n\nconst (\n\tMedalGold Medal = iota\n\tMedalSilver\n)\n"}

var kindPackage = stubs{imports: map[string]string{
	"example.com/game/kind": "package kind\n\ntype Kind int\n\nconst (\n\tKindDefault Kind = iota\n\tKindCustom\n)\n",
}}

func render(t *testing.T, rs *schema.RowSet, opts Options) string {
	t.Helper()
	e, err := Build(rs, opts)
	require.NoError(t, err)
	src, err := e.Source()
	require.NoError(t, err)
	return string(src)
}

func TestRenderSingleKey(t *testing.T) {
	src := render(t, gamesRowSet(), Options{Package: "games", Header: "Edit symbols.yaml instead.", Directives: kindDirective()})

	f := parseSource(t, []byte(src), kindStubs)
	assert.Equal(t, []string{"GamesValues", "String", "ParseGames", "Kind", "Year", "Rating"}, funcNames(f))

	for _, want := range []string{
		"// Code generated by symbols from table games. DO NOT EDIT.",
		"// Edit symbols.yaml instead.",
		"package games",
		"type Games int",
		"SuperMario Games = iota",
		"return []Games{SuperMario, Zelda}",
		"func (g Games) String() string {",
		`return "Super Mario"`,
		"func ParseGames(s string) (Games, error) {",
		`case "Zelda":`,
		"return Zelda, nil",
		`return 0, fmt.Errorf("unknown Games %q", s)`,
		"func (g Games) Kind() Kind {",
		`return ParseKind("default")`,
		"func (g Games) Year() int32 {",
		"return 1986",
		`panic(fmt.Sprintf("invalid Games %d", int(g)))`,
		"func (g Games) Rating() (v float64, ok bool) {",
		"return 9.5, true",
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "ReleasedAt")
}

func TestRenderQualifiedReplacement(t *testing.T) {
	args := []directive.Arg{{Name: "kind", Value: "example.com/game/kind.Kind"}}
	src := render(t, gamesRowSet(), Options{Enum: "Game", Package: "games", Directives: args})
	parseSource(t, []byte(src), kindPackage)

	assert.Contains(t, src, `"example.com/game/kind"`)
	assert.Contains(t, src, "func (g Game) Kind() kind.Kind {")
	assert.Contains(t, src, "return kind.KindCustom")
}

func TestRenderEmptyPartialAccessor(t *testing.T) {
	rs := gamesRowSet()
	for _, row := range rs.Rows {
		row[3] = schema.Null(schema.KindFloat64)
	}
	src := render(t, rs, Options{Package: "games"})
	parseSource(t, []byte(src), stubs{})
	assert.Contains(t, src, "func (g Games) Rating() (v float64, ok bool) {\n\treturn\n}")
}

func TestRenderMultiKey(t *testing.T) {
	src := render(t, rankedRowSet(), Options{Enum: "Ranked", Package: "ranked"})

	f := parseSource(t, []byte(src), stubs{})
	assert.Equal(t, []string{
		"RankedValues",
		"Name", "Rank", "Score",
		"RankedByRank", "RankedByName", "RankedByRankAndName",
	}, funcNames(f))

	for _, want := range []string{
		"Gold_A Ranked = iota",
		"func RankedByName(name string) []Ranked {",
		`case "a":`,
		"return []Ranked{Gold_A, Silver_A}",
		"return nil",
		"func RankedByRankAndName(rank string, name string) (v Ranked, ok bool) {",
		`case rank == "silver" && name == "a":`,
		"return Silver_A, true",
		"func (r Ranked) Score() uint16 {",
		"return 30",
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "ParseRanked")
	assert.NotContains(t, src, "String()")
}

func TestRenderTypedConstructorParams(t *testing.T) {
	args := []directive.Arg{{Name: "rank", Value: "Medal"}}
	src := render(t, rankedRowSet(), Options{Enum: "Ranked", Package: "ranked", Directives: args})
	parseSource(t, []byte(src), medalStubs)

	assert.Contains(t, src, "func RankedByRank(rank Medal) []Ranked {")
	assert.Contains(t, src, "case MedalGold:")
	assert.Contains(t, src, `case rank == MedalSilver && name == "a":`)
	assert.Contains(t, src, "func (r Ranked) Rank() Medal {")
}

func TestRenderIdempotent(t *testing.T) {
	opts := Options{Enum: "Ranked", Package: "ranked", Directives: []directive.Arg{{Name: "rank", Value: "Medal"}}}
	first := render(t, rankedRowSet(), opts)
	second := render(t, rankedRowSet(), opts)
	assert.Equal(t, first, second)
}

func TestRenderNoRows(t *testing.T) {
	rs := gamesRowSet()
	rs.Rows = nil
	src := render(t, rs, Options{Package: "games"})
	f := parseSource(t, []byte(src), stubs{})
	assert.Contains(t, funcNames(f), "ParseGames")
	assert.Empty(t, finalReturn(t, f, "GamesValues"))
}

func TestRenderStringParseRoundTrip(t *testing.T) {
	rs := gamesRowSet()
	e, err := Build(rs, Options{Package: "games", Predeclared: []string{"Unknown"}})
	require.NoError(t, err)
	src, err := e.Source()
	require.NoError(t, err)
	f := parseSource(t, src, stubs{})

	str := switchCases(t, f, "String")
	parse := switchCases(t, f, "ParseGames")
	assert.Len(t, str, len(rs.Rows))
	assert.Len(t, parse, len(rs.Rows))
	for _, v := range e.Variants {
		if v.Key == nil {
			assert.NotContains(t, str, v.Name, "predeclared variants have no key")
			continue
		}
		lit := str[v.Name]
		require.Equal(t, []string{strconv.Quote(v.Key[0])}, lit)
		assert.Equal(t, []string{v.Name, "nil"}, parse[lit[0]], "Parse(String(%s))", v.Name)
	}
	assert.Equal(t, []string{"Unknown", "SuperMario", "Zelda"}, finalReturn(t, f, "GamesValues"))
}

func TestRenderOptionalAccessorMatchesNulls(t *testing.T) {
	rs := gamesRowSet()
	rs.Rows = append(rs.Rows, schema.Row{
		schema.String("Metroid"), schema.String("custom"), schema.Int(schema.KindInt32, 1986),
		schema.Float(schema.KindFloat64, 8), schema.Null(schema.KindUnsupported),
	})
	f := parseSource(t, []byte(render(t, rs, Options{Package: "games"})), stubs{})

	cases := switchCases(t, f, "Rating")
	want := make(map[string][]string)
	for _, row := range rs.Rows {
		if row[3].Valid {
			want[pascal(row[0].Str)] = []string{strconv.FormatFloat(row[3].Float, 'g', -1, 64), "true"}
		}
	}
	assert.Equal(t, want, cases)
	assert.Empty(t, finalReturn(t, f, "Rating"), "null rows fall through to the zero results")

	// Total accessors cover every row.
	assert.Len(t, switchCases(t, f, "Year"), len(rs.Rows))
}

func TestRenderLookupSequences(t *testing.T) {
	rs := rankedRowSet()
	f := parseSource(t, []byte(render(t, rs, Options{Enum: "Ranked", Package: "ranked"})), stubs{})

	names := []string{"Gold_A", "Gold_B", "Silver_A"}
	byName := make(map[string][]string)
	byRank := make(map[string][]string)
	full := make(map[string][]string)
	for i, row := range rs.Rows {
		name, rank := strconv.Quote(row[0].Str), strconv.Quote(row[1].Str)
		byName[name] = append(byName[name], names[i])
		byRank[rank] = append(byRank[rank], names[i])
		full["rank == "+rank+" && name == "+name] = []string{names[i], "true"}
	}

	assert.Equal(t, byName, switchCases(t, f, "RankedByName"))
	assert.Equal(t, byRank, switchCases(t, f, "RankedByRank"))
	assert.Equal(t, full, switchCases(t, f, "RankedByRankAndName"))
	assert.Equal(t, []string{"nil"}, finalReturn(t, f, "RankedByName"))
	assert.Empty(t, finalReturn(t, f, "RankedByRankAndName"))
	assert.Equal(t, names, finalReturn(t, f, "RankedValues"))
}

func TestRenderReceiverAvoidsResultNames(t *testing.T) {
	rs := &schema.RowSet{
		Table: schema.Table{
			Name: "vehicles",
			Columns: []schema.Column{
				{Name: "code", Kind: schema.KindString},
				{Name: "wheels", Kind: schema.KindInt32, Nullable: true},
			},
			PrimaryKey: []string{"code"},
		},
		Rows: []schema.Row{
			{schema.String("car"), schema.Int(schema.KindInt32, 4)},
			{schema.String("sled"), schema.Null(schema.KindInt32)},
		},
	}
	src := render(t, rs, Options{Package: "fleet"})
	f := parseSource(t, []byte(src), stubs{})

	assert.Contains(t, src, "func (ve Vehicles) Wheels() (v int32, ok bool) {")
	assert.Contains(t, src, "func (ve Vehicles) String() string {")
	assert.Equal(t, map[string][]string{"Car": {"4", "true"}}, switchCases(t, f, "Wheels"))
}

func TestRenderKeyColumnsNamedLikeResults(t *testing.T) {
	rs := &schema.RowSet{
		Table: schema.Table{
			Name: "flags",
			Columns: []schema.Column{
				{Name: "v", Kind: schema.KindString},
				{Name: "ok", Kind: schema.KindString},
				{Name: "label", Kind: schema.KindString, Nullable: true},
			},
			PrimaryKey: []string{"v", "ok"},
		},
		Rows: []schema.Row{
			{schema.String("a"), schema.String("yes"), schema.String("first")},
			{schema.String("a"), schema.String("no"), schema.Null(schema.KindString)},
		},
	}
	src := render(t, rs, Options{Package: "flags"})
	f := parseSource(t, []byte(src), stubs{})

	assert.Contains(t, src, "func FlagsByVAndOk(_v string, _ok string) (v Flags, ok bool) {")
	assert.Contains(t, src, "func FlagsByOk(_ok string) []Flags {")
	assert.Contains(t, src, "func (f Flags) Label() (v string, ok bool) {")
	assert.Equal(t, map[string][]string{
		`_v == "a" && _ok == "yes"`: {"A_Yes", "true"},
		`_v == "a" && _ok == "no"`:  {"A_No", "true"},
	}, switchCases(t, f, "FlagsByVAndOk"))
}
