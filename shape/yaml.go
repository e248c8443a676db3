package shape

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML builds a shape from a YAML shape document:
//
//	type: struct
//	title: User
//	fields:
//	  - name: name
//	    type: string
//	  - name: age
//	    type: u8
//	  - name: tags
//	    type: array
//	    items: {type: string}
//	  - name: nickname
//	    type: string
//	    optional: true
//
// type accepts every Kind name plus the aliases boolean, integer (i64),
// number (f64) and object (struct). Maps take their element under values.
// Records parsed this way decode into map[string]any.
func ParseYAML(data []byte) (*Shape, error) {
	var d shapeDoc
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("shape: %w", err)
	}
	s, err := d.build("$")
	if err != nil {
		return nil, fmt.Errorf("shape: %w", err)
	}
	return s, nil
}

type shapeDoc struct {
	Type     string     `yaml:"type"`
	Title    string     `yaml:"title"`
	Name     string     `yaml:"name"`
	Optional bool       `yaml:"optional"`
	Items    *shapeDoc  `yaml:"items"`
	Values   *shapeDoc  `yaml:"values"`
	Fields   []shapeDoc `yaml:"fields"`
}

var kindAliases = map[string]Kind{
	"boolean": KindBool,
	"integer": KindInt64,
	"number":  KindFloat64,
	"object":  KindStruct,
}

func (d *shapeDoc) build(at string) (*Shape, error) {
	if d.Type == "" {
		return nil, fmt.Errorf("%s: type is required", at)
	}
	k, ok := ParseKind(d.Type)
	if !ok {
		if k, ok = kindAliases[d.Type]; !ok {
			return nil, fmt.Errorf("%s: unknown type %q", at, d.Type)
		}
	}
	s, err := d.buildKind(k, at)
	if err != nil {
		return nil, err
	}
	if d.Optional && s.Kind != KindOptional {
		s = Optional(s)
	}
	return s, nil
}

func (d *shapeDoc) buildKind(k Kind, at string) (*Shape, error) {
	switch k {
	case KindArray, KindOptional:
		if d.Items == nil {
			return nil, fmt.Errorf("%s: %s needs items", at, k)
		}
		elem, err := d.Items.build(at + ".items")
		if err != nil {
			return nil, err
		}
		if k == KindArray {
			return Array(elem), nil
		}
		return Optional(elem), nil
	case KindMap:
		if d.Values == nil {
			return nil, fmt.Errorf("%s: map needs values", at)
		}
		elem, err := d.Values.build(at + ".values")
		if err != nil {
			return nil, err
		}
		return Map(elem), nil
	case KindStruct:
		fields := make([]Field, 0, len(d.Fields))
		seen := make(map[string]struct{}, len(d.Fields))
		for i := range d.Fields {
			fd := &d.Fields[i]
			fat := fmt.Sprintf("%s.fields[%d]", at, i)
			if fd.Name == "" {
				return nil, errors.New(fat + ": name is required")
			}
			if _, dup := seen[fd.Name]; dup {
				return nil, fmt.Errorf("%s: duplicate field %q", fat, fd.Name)
			}
			seen[fd.Name] = struct{}{}
			fs, err := fd.build(fat)
			if err != nil {
				return nil, err
			}
			fields = append(fields, F(fd.Name, fs))
		}
		title := d.Title
		if title == "" {
			title = "struct"
		}
		return Object(title, fields...), nil
	case KindTime:
		return Time(), nil
	}
	return &Shape{Kind: k, Type: scalarTypes[k]}, nil
}
