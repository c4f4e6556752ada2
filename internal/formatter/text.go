package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/symbols/internal/gen"
)

// Formatter describes planned enumerations.
type Formatter interface {
	Format(enums []*gen.Enum) error
}

// TextFormatter formats enumerations as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes every enumeration in compact text format
func (f *TextFormatter) Format(enums []*gen.Enum) error {
	for i, e := range enums {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between enums
		}
		f.formatEnum(e)
	}
	return nil
}

func (f *TextFormatter) formatEnum(e *gen.Enum) {
	_, _ = fmt.Fprintf(f.writer, "ENUM %s (table %s, PK: %s)\n", e.Name, e.Table.Name, strings.Join(e.Table.PrimaryKey, ", "))
	_, _ = fmt.Fprintf(f.writer, "  VARIANTS (%d): %s\n", len(e.Variants), strings.Join(variantNames(e), ", "))

	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintln(f.writer, "  METHODS:")
	if e.Single() {
		_, _ = fmt.Fprintf(f.writer, "    String() string\n")
	}
	for _, a := range e.Accessors {
		_, _ = fmt.Fprintf(f.writer, "    %s\n", accessorSignature(a))
	}

	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintln(f.writer, "  FUNCTIONS:")
	_, _ = fmt.Fprintf(f.writer, "    %s() []%s\n", e.ValuesFunc(), e.Name)
	if e.Single() {
		_, _ = fmt.Fprintf(f.writer, "    %s(s string) (%s, error)\n", e.ParseFunc(), e.Name)
	}
	for _, c := range e.Constructors {
		_, _ = fmt.Fprintf(f.writer, "    %s\n", constructorSignature(e, c))
	}
}

func variantNames(e *gen.Enum) []string {
	names := make([]string, len(e.Variants))
	for i, v := range e.Variants {
		names[i] = v.Name
	}
	return names
}

// accessorSignature renders the Go signature of an accessor method.
func accessorSignature(a *gen.Accessor) string {
	if a.Partial {
		return fmt.Sprintf("%s() (%s, bool)", a.Name, a.Type)
	}
	return fmt.Sprintf("%s() %s", a.Name, a.Type)
}

// constructorSignature renders the Go signature of a lookup constructor.
func constructorSignature(e *gen.Enum, c *gen.Constructor) string {
	params := make([]string, len(c.Params))
	for i, p := range c.Params {
		params[i] = p.Name + " " + p.Type.String()
	}
	result := "[]" + e.Name
	if c.Full {
		result = "(" + e.Name + ", bool)"
	}
	return fmt.Sprintf("%s(%s) %s", c.Name, strings.Join(params, ", "), result)
}
