package schema

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Definition is the YAML form of a Schema.
type Definition struct {
	Indexes []IndexDefinition `yaml:"indexes"`
}

// IndexDefinition is the YAML form of an Index.
type IndexDefinition struct {
	Name   string            `yaml:"name"`
	Fields []FieldDefinition `yaml:"fields"`
}

// FieldDefinition is the YAML form of a Field.
type FieldDefinition struct {
	Name       string                       `yaml:"name"`
	Type       string                       `yaml:"type"` // identifier, text, number, boolean, date, object, typed
	Multiple   bool                         `yaml:"multiple"`
	Searchable *bool                        `yaml:"searchable"` // default: true
	Fields     []FieldDefinition            `yaml:"fields"`     // object only
	Types      map[string][]FieldDefinition `yaml:"types"`      // typed only
}

var envVarRegex = regexp.MustCompile(`\$\{[^}]+\}`)

// Load reads a YAML schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema %s", path)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "schema %s", path)
	}
	return s, nil
}

// Parse builds a Schema from YAML. References of the form ${VAR} or ${VAR:-default}
// are substituted from the environment before parsing.
func Parse(data []byte) (*Schema, error) {
	var def Definition
	if err := yaml.Unmarshal(expandEnvVars(data), &def); err != nil {
		return nil, errors.Wrap(err, "failed to parse schema")
	}
	return def.Build()
}

// Build converts the definition into a validated Schema.
func (d Definition) Build() (*Schema, error) {
	indexes := make([]*Index, 0, len(d.Indexes))
	for _, id := range d.Indexes {
		fields, err := buildFields(id.Fields)
		if err != nil {
			return nil, errors.Wrapf(err, "index %q", id.Name)
		}

		idx, err := NewIndex(id.Name, fields...)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}
	return NewSchema(indexes...)
}

func buildFields(defs []FieldDefinition) ([]Field, error) {
	fields := make([]Field, 0, len(defs))
	for _, fd := range defs {
		f, err := fd.build()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func (fd FieldDefinition) build() (Field, error) {
	var opts []FieldOption
	if fd.Multiple {
		opts = append(opts, Multiple())
	}
	if fd.Searchable != nil && !*fd.Searchable {
		opts = append(opts, NotSearchable())
	}

	switch strings.ToLower(fd.Type) {
	case string(TypeIdentifier):
		if len(opts) > 0 {
			return nil, errors.Wrapf(ErrInvalidSchema, "identifier field %q takes no options", fd.Name)
		}
		return Identifier(fd.Name), nil
	case string(TypeText), "":
		return Text(fd.Name, opts...), nil
	case string(TypeNumber):
		return Number(fd.Name, opts...), nil
	case string(TypeBoolean):
		return Boolean(fd.Name, opts...), nil
	case string(TypeDate):
		return Date(fd.Name, opts...), nil
	case "object":
		sub, err := buildFields(fd.Fields)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", fd.Name)
		}
		return Object(fd.Name, sub, opts...), nil
	case "typed":
		types := make(map[string][]Field, len(fd.Types))
		for tag, defs := range fd.Types {
			sub, err := buildFields(defs)
			if err != nil {
				return nil, errors.Wrapf(err, "field %q type %q", fd.Name, tag)
			}
			types[tag] = sub
		}
		return Typed(fd.Name, types, opts...), nil
	default:
		return nil, errors.Wrapf(ErrInvalidSchema, "unknown type %q for field %q", fd.Type, fd.Name)
	}
}

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
