package symbols

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/symbols/internal/db"
	"github.com/tordrt/symbols/internal/directive"
	"github.com/tordrt/symbols/internal/gen"
)

// DefaultConfigFile is the config file read when none is given.
const DefaultConfigFile = "symbols.yaml"

// Config is the content of a symbols.yaml file.
//
//	package: games
//	tables:
//	  - table: games
//	    filter: released
//	    replace:
//	      kind: {fn: ParseKind, type: Kind}
type Config struct {
	// Package is the package clause of every generated file.
	Package string `yaml:"package"`
	// Header is placed as a comment above the package clause.
	Header string        `yaml:"header,omitempty"`
	Tables []TableConfig `yaml:"tables"`

	// Dir is the directory the config was read from. Relative outputs are
	// resolved against it.
	Dir string `yaml:"-"`
}

// TableConfig describes the enumeration generated from one table.
type TableConfig struct {
	Table         string     `yaml:"table"`
	Enum          string     `yaml:"enum,omitempty"`
	Output        string     `yaml:"output,omitempty"`
	Filter        string     `yaml:"filter,omitempty"`
	Schema        string     `yaml:"schema,omitempty"`
	VariantPrefix string     `yaml:"variant_prefix,omitempty"`
	Predeclared   []string   `yaml:"predeclared,omitempty"`
	Replace       Directives `yaml:"replace,omitempty"`
}

// Directives is the ordered replace mapping of a table.
type Directives []directive.Arg

// UnmarshalYAML keeps the mapping order. Each entry is either
// `column: Type` or `column: {type: Type, fn: Func}`.
func (d *Directives) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: replace must be a mapping", node.Line)
	}
	args := make(Directives, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		arg, err := directiveArg(node.Content[i], node.Content[i+1])
		if err != nil {
			return err
		}
		args = append(args, arg)
	}
	*d = args
	return nil
}

func directiveArg(key, value *yaml.Node) (directive.Arg, error) {
	arg := directive.Arg{Name: key.Value}
	switch value.Kind {
	case yaml.ScalarNode:
		arg.Value = value.Value
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			k, v := value.Content[i], value.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return arg, fmt.Errorf("line %d: replace.%s.%s must be a string", v.Line, key.Value, k.Value)
			}
			arg.Sub = append(arg.Sub, directive.Arg{Name: k.Value, Value: v.Value})
		}
	default:
		return arg, fmt.Errorf("line %d: replace.%s must be a type name or a mapping", value.Line, key.Value)
	}
	return arg, nil
}

// LoadConfig reads and validates the config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig decodes a config document and applies defaults.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Package == "" {
		return nil, gen.NewConfigError("package", nil, "package name is required")
	}
	for i := range cfg.Tables {
		t := &cfg.Tables[i]
		if t.Table == "" {
			return nil, gen.NewConfigError(fmt.Sprintf("tables[%d].table", i), nil, "missing table")
		}
		if t.Output == "" {
			t.Output = t.Table + "_symbols.go"
		}
		if t.Filter == "" {
			t.Filter = db.DefaultFilter
		}
	}
	return &cfg, nil
}

// Select returns the entries of the named tables, in the given order. No
// names selects every table.
func (c *Config) Select(names []string) ([]TableConfig, error) {
	if len(names) == 0 {
		return c.Tables, nil
	}
	selected := make([]TableConfig, 0, len(names))
	for _, name := range names {
		t, ok := c.lookup(name)
		if !ok {
			return nil, gen.NewConfigError("table", name, "unrecognized table")
		}
		selected = append(selected, t)
	}
	return selected, nil
}

func (c *Config) lookup(name string) (TableConfig, bool) {
	for _, t := range c.Tables {
		if t.Table == name {
			return t, true
		}
	}
	return TableConfig{}, false
}

// OutputPath returns where the file of t is written.
func (c *Config) OutputPath(t TableConfig) string {
	if filepath.IsAbs(t.Output) || c.Dir == "" {
		return t.Output
	}
	return filepath.Join(c.Dir, t.Output)
}

// options converts a table entry to generator options.
func (c *Config) options(t TableConfig) gen.Options {
	return gen.Options{
		Enum:          t.Enum,
		Package:       c.Package,
		Header:        c.Header,
		VariantPrefix: t.VariantPrefix,
		Predeclared:   t.Predeclared,
		Directives:    t.Replace,
	}
}
