package formatter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/symbols/internal/gen"
	"github.com/tordrt/symbols/internal/schema"
)

func buildEnums(t *testing.T) []*gen.Enum {
	t.Helper()
	colors := &schema.RowSet{
		Table: schema.Table{
			Name: "colors",
			Columns: []schema.Column{
				{Name: "name", Kind: schema.KindString},
				{Name: "hex", Kind: schema.KindString, Nullable: true},
			},
			PrimaryKey: []string{"name"},
		},
		Rows: []schema.Row{
			{schema.String("red"), schema.String("#f00")},
			{schema.String("blue"), schema.Null(schema.KindString)},
		},
	}
	ranked := &schema.RowSet{
		Table: schema.Table{
			Name: "ranked",
			Columns: []schema.Column{
				{Name: "rank", Kind: schema.KindString},
				{Name: "name", Kind: schema.KindString},
				{Name: "score", Kind: schema.KindUint16},
			},
			PrimaryKey: []string{"rank", "name"},
		},
		Rows: []schema.Row{
			{schema.String("gold"), schema.String("a"), schema.Uint(schema.KindUint16, 10)},
			{schema.String("silver"), schema.String("a"), schema.Uint(schema.KindUint16, 20)},
		},
	}

	var enums []*gen.Enum
	for _, rs := range []*schema.RowSet{colors, ranked} {
		e, err := gen.Build(rs, gen.Options{Package: "symbols"})
		require.NoError(t, err)
		enums = append(enums, e)
	}
	return enums
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter(&buf).Format(buildEnums(t)))
	out := buf.String()

	assert.Contains(t, out, "ENUM Colors (table colors, PK: name)")
	assert.Contains(t, out, "VARIANTS (2): Red, Blue")
	assert.Contains(t, out, "    String() string\n")
	assert.Contains(t, out, "    Hex() (string, bool)\n")
	assert.Contains(t, out, "    ParseColors(s string) (Colors, error)\n")

	assert.Contains(t, out, "ENUM Ranked (table ranked, PK: rank, name)")
	assert.Contains(t, out, "    Score() uint16\n")
	assert.Contains(t, out, "    RankedByRank(rank string) []Ranked\n")
	assert.Contains(t, out, "    RankedByRankAndName(rank string, name string) (Ranked, bool)\n")
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownFormatter(&buf).Format(buildEnums(t)))
	out := buf.String()

	assert.Contains(t, out, "# Symbols\n")
	assert.Contains(t, out, "## Colors\n")
	assert.Contains(t, out, "Generated from table `colors`, keyed by `name`.")
	assert.Contains(t, out, "- `Red`: [\"red\"]\n")
	assert.Contains(t, out, "- `Hex() (string, bool)`, hex, optional, 1 of 2 variants\n")
	assert.Contains(t, out, "### Conversion")
	assert.Contains(t, out, "keyed by `rank`, `name`.")
	assert.Contains(t, out, "- `Score() uint16`, score, total\n")
	assert.Contains(t, out, "- `RankedByName(name string) []Ranked`, 1 keys\n")
}

func TestMultiFileFormatter(t *testing.T) {
	for _, format := range []string{formatText, formatMarkdown} {
		t.Run(format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			f, err := New(format, nil, dir)
			require.NoError(t, err)
			require.NoError(t, f.Format(buildEnums(t)))

			ext := ".txt"
			if format == formatMarkdown {
				ext = ".md"
			}
			overview, err := os.ReadFile(filepath.Join(dir, "_overview"+ext))
			require.NoError(t, err)
			assert.Contains(t, string(overview), "colors")
			assert.Contains(t, string(overview), "ranked")

			for _, table := range []string{"colors", "ranked"} {
				_, err := os.Stat(filepath.Join(dir, table+ext))
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewUnsupportedFormat(t *testing.T) {
	_, err := New("json", &bytes.Buffer{}, "")
	assert.ErrorContains(t, err, "unsupported format")
}
