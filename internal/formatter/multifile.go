package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/tordrt/symbols/internal/gen"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// MultiFileFormatter writes one description file per enumeration plus an
// overview into a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the enumerations to multiple files
func (f *MultiFileFormatter) Format(enums []*gen.Enum) error {
	if err := os.MkdirAll(f.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(enums); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, e := range enums {
		if err := f.writeEnumFile(e); err != nil {
			return fmt.Errorf("failed to write description of %s: %w", e.Table.Name, err)
		}
	}

	return nil
}

// writeOverview lists every table with its enumeration, sorted by table name
func (f *MultiFileFormatter) writeOverview(enums []*gen.Enum) error {
	file, err := os.Create(filepath.Join(f.OutputDir, "_overview"+f.getFileExtension()))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	sorted := make([]*gen.Enum, len(enums))
	copy(sorted, enums)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Table.Name < sorted[j].Table.Name
	})

	if f.OutputFormat == formatMarkdown {
		_, _ = fmt.Fprintf(file, "# Symbols Overview\n\n")
		_, _ = fmt.Fprintf(file, "Each table has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
		for _, e := range sorted {
			_, _ = fmt.Fprintf(file, "- **%s** → `%s` (%d variants)\n", e.Table.Name, e.Name, len(e.Variants))
		}
		return nil
	}

	_, _ = fmt.Fprintf(file, "SYMBOLS OVERVIEW\n")
	_, _ = fmt.Fprintf(file, "Each table has a file: <table_name>%s\n\n", f.getFileExtension())
	for _, e := range sorted {
		_, _ = fmt.Fprintf(file, "%s -> %s (%d variants)\n", e.Table.Name, e.Name, len(e.Variants))
	}
	return nil
}

// writeEnumFile writes a single enumeration to its own file
func (f *MultiFileFormatter) writeEnumFile(e *gen.Enum) error {
	file, err := os.Create(filepath.Join(f.OutputDir, e.Table.Name+f.getFileExtension()))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == formatMarkdown {
		NewMarkdownFormatter(file).FormatEnum(e)
		return nil
	}
	NewTextFormatter(file).formatEnum(e)
	return nil
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".txt"
}

// New returns the formatter for format writing to w, or a multi-file
// formatter when dir is set.
func New(format string, w io.Writer, dir string) (Formatter, error) {
	if format != formatText && format != formatMarkdown {
		return nil, fmt.Errorf("unsupported format %q (want %s or %s)", format, formatText, formatMarkdown)
	}
	if dir != "" {
		return NewMultiFileFormatter(dir, format), nil
	}
	if format == formatMarkdown {
		return NewMarkdownFormatter(w), nil
	}
	return NewTextFormatter(w), nil
}
