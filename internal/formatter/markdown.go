package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/symbols/internal/gen"
)

// MarkdownFormatter formats enumerations as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes every enumeration in markdown format
func (f *MarkdownFormatter) Format(enums []*gen.Enum) error {
	_, _ = fmt.Fprintln(f.writer, "# Symbols")
	_, _ = fmt.Fprintln(f.writer)

	for _, e := range enums {
		f.FormatEnum(e)
	}
	return nil
}

// FormatEnum formats a single enumeration (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatEnum(e *gen.Enum) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", e.Name)
	_, _ = fmt.Fprintf(f.writer, "Generated from table `%s`, keyed by %s.\n\n", e.Table.Name, f.formatKey(e))

	_, _ = fmt.Fprintln(f.writer, "### Variants")
	_, _ = fmt.Fprintln(f.writer)
	for _, v := range e.Variants {
		if v.Key == nil {
			_, _ = fmt.Fprintf(f.writer, "- `%s` (predeclared)\n", v.Name)
			continue
		}
		_, _ = fmt.Fprintf(f.writer, "- `%s`: %q\n", v.Name, v.Key)
	}
	_, _ = fmt.Fprintln(f.writer)

	_, _ = fmt.Fprintln(f.writer, "### Accessors")
	_, _ = fmt.Fprintln(f.writer)
	if e.Single() {
		_, _ = fmt.Fprintf(f.writer, "- `String() string`, %s\n", e.Column(e.Key).Name)
	}
	for _, a := range e.Accessors {
		status := "total"
		if a.Partial {
			status = fmt.Sprintf("optional, %d of %d variants", len(a.Entries), len(e.Variants))
		}
		_, _ = fmt.Fprintf(f.writer, "- `%s`, %s, %s\n", accessorSignature(a), e.Column(a.Column).Name, status)
	}
	_, _ = fmt.Fprintln(f.writer)

	if e.Single() {
		_, _ = fmt.Fprintln(f.writer, "### Conversion")
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintf(f.writer, "- `%s(s string) (%s, error)`\n\n", e.ParseFunc(), e.Name)
	}

	if len(e.Constructors) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Constructors")
		_, _ = fmt.Fprintln(f.writer)
		for _, c := range e.Constructors {
			_, _ = fmt.Fprintf(f.writer, "- `%s`, %d keys\n", constructorSignature(e, c), len(c.Buckets))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
}

func (f *MarkdownFormatter) formatKey(e *gen.Enum) string {
	key := ""
	for i, name := range e.Table.PrimaryKey {
		if i > 0 {
			key += ", "
		}
		key += "`" + name + "`"
	}
	return key
}
