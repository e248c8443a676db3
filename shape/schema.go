package shape

import (
	"encoding/json"
	"strconv"

	"github.com/invopop/jsonschema"
)

const draft = "https://json-schema.org/draft/2020-12/schema"

// JSONSchema projects s onto a JSON Schema (draft 2020-12) accepting the same
// documents the decoder accepts. Integer kinds carry their range as
// minimum/maximum, optional fields are nullable and not required, unknown
// members are allowed. Recursive records are emitted under $defs.
func JSONSchema(s *Shape) *jsonschema.Schema {
	p := projector{active: map[*Shape]bool{}, refs: map[*Shape]string{}, defs: jsonschema.Definitions{}}
	root := p.schema(s)
	root.Version = draft
	if len(p.defs) > 0 {
		root.Definitions = p.defs
	}
	return root
}

type projector struct {
	active map[*Shape]bool
	refs   map[*Shape]string
	defs   jsonschema.Definitions
}

func (p *projector) schema(s *Shape) *jsonschema.Schema {
	switch s.Kind {
	case KindAny:
		return &jsonschema.Schema{}
	case KindBool:
		return &jsonschema.Schema{Type: "boolean"}
	case KindString:
		return &jsonschema.Schema{Type: "string"}
	case KindFloat32, KindFloat64:
		return &jsonschema.Schema{Type: "number"}
	case KindTime:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	case KindArray:
		return &jsonschema.Schema{Type: "array", Items: p.schema(s.Elem)}
	case KindMap:
		return &jsonschema.Schema{Type: "object", AdditionalProperties: p.schema(s.Elem)}
	case KindOptional:
		return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{p.schema(s.Elem), {Type: "null"}}}
	case KindStruct:
		return p.record(s)
	}
	if lo, hi, ok := s.Range(); ok {
		return &jsonschema.Schema{Type: "integer", Minimum: json.Number(lo), Maximum: json.Number(hi)}
	}
	return &jsonschema.Schema{}
}

func (p *projector) record(s *Shape) *jsonschema.Schema {
	if p.active[s] {
		return &jsonschema.Schema{Ref: "#/$defs/" + p.defName(s)}
	}
	p.active[s] = true
	out := &jsonschema.Schema{Type: "object", Title: s.TypeName(), Properties: jsonschema.NewProperties()}
	for _, f := range s.Fields {
		out.Properties.Set(f.Name, p.schema(f.Shape))
		if !f.Optional() {
			out.Required = append(out.Required, f.Name)
		}
	}
	delete(p.active, s)
	if name, ok := p.refs[s]; ok {
		p.defs[name] = out
		return &jsonschema.Schema{Ref: "#/$defs/" + name}
	}
	return out
}

func (p *projector) defName(s *Shape) string {
	if name, ok := p.refs[s]; ok {
		return name
	}
	name := s.TypeName()
	for i := 2; ; i++ {
		if _, taken := p.defs[name]; !taken && !p.refTaken(name) {
			break
		}
		name = s.TypeName() + "_" + strconv.Itoa(i)
	}
	p.refs[s] = name
	return name
}

func (p *projector) refTaken(name string) bool {
	for _, n := range p.refs {
		if n == name {
			return true
		}
	}
	return false
}
