package model

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type modelFile struct {
	FieldTypes []*FieldType `yaml:"fieldTypes"`
	Entities   []*Entity    `yaml:"entities"`
}

// Load reads a model file and, when fieldTypesPath is set, a separate field
// type file whose definitions override those of the model file.
func Load(path, fieldTypesPath string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", path, err)
	}
	if fieldTypesPath == "" {
		return m, nil
	}
	data, err = os.ReadFile(fieldTypesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read field type file: %w", err)
	}
	types, err := ParseFieldTypes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse field type file %s: %w", fieldTypesPath, err)
	}
	for name, ft := range types {
		m.FieldTypes[name] = ft
	}
	return m, nil
}

// Parse decodes a YAML model document.
func Parse(data []byte) (*Model, error) {
	var f modelFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	types, err := indexFieldTypes(f.FieldTypes)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(f.Entities))
	for _, e := range f.Entities {
		if e.Name == "" {
			return nil, fmt.Errorf("entity without a name")
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("duplicate entity %q", e.Name)
		}
		seen[e.Name] = true
		e.normalize()
	}
	return &Model{FieldTypes: types, Entities: f.Entities}, nil
}

// ParseFieldTypes decodes a YAML document holding a "fieldTypes" list.
func ParseFieldTypes(data []byte) (FieldTypes, error) {
	var f struct {
		FieldTypes []*FieldType `yaml:"fieldTypes"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return indexFieldTypes(f.FieldTypes)
}

func indexFieldTypes(list []*FieldType) (FieldTypes, error) {
	types := make(FieldTypes, len(list))
	for _, ft := range list {
		if ft.Type == "" || ft.SQLType == "" {
			return nil, fmt.Errorf("field type requires both type and sqlType: %+v", *ft)
		}
		if _, dup := types[ft.Type]; dup {
			return nil, fmt.Errorf("duplicate field type %q", ft.Type)
		}
		types[ft.Type] = ft
	}
	return types, nil
}
