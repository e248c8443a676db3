// Package yaml converts a single YAML document into a value tree so that YAML
// payloads go through the same decoder as JSON ones.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	eng "github.com/reoring/serdify/internal/engine"
	"github.com/reoring/serdify/value"
)

// Name identifies the driver in logs and CLI flags.
const Name = "yaml"

// CodeAliasExpansion marks a document whose aliases expand far beyond its
// own size.
const CodeAliasExpansion = "alias_expansion"

// Error is a YAML failure with the position reported by the parser. Line and
// Column are 1-based; 0 means unknown.
type Error struct {
	Code   string // "" for parser errors, otherwise an engine code
	Line   int
	Column int
	Msg    string
	Path   string
	Key    string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("yaml: line %d: %s", e.Line, e.Msg)
	}
	return "yaml: " + e.Msg
}

// Options tune Parse.
type Options struct {
	MaxDepth      int // <= 0 disables the check
	RejectDupKeys bool
}

// Parse decodes exactly one YAML document. Mapping keys must be scalars; a
// repeated key replaces the earlier value unless RejectDupKeys is set.
func Parse(data []byte, opt Options) (*value.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Code: eng.CodeEmpty, Msg: "EOF while parsing a value"}
		}
		return nil, parserError(err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); err == nil {
		return nil, &Error{Code: eng.CodeTrailing, Line: extra.Line, Column: extra.Column, Msg: "more than one document"}
	} else if !errors.Is(err, io.EOF) {
		return nil, parserError(err)
	}
	c := converter{
		opt:    opt,
		memo:   map[*yaml.Node]converted{},
		active: map[*yaml.Node]bool{},
	}
	v, _, err := c.node(&root, "", 0)
	return v, err
}

var lineRe = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

func parserError(err error) error {
	msg := err.Error()
	if m := lineRe.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return &Error{Line: line, Msg: m[2]}
	}
	return &Error{Msg: strings.TrimPrefix(msg, "yaml: ")}
}

// Alias expansion limits, as yaml.v3 applies them when decoding into Go
// values: past 1000 nodes, the share of nodes reached through aliases may not
// exceed a ratio that shrinks from 0.99 to 0.10 as the document grows.
const (
	aliasRatioRangeLow  = 400000
	aliasRatioRangeHigh = 4000000
)

func allowedAliasRatio(total int) float64 {
	switch {
	case total <= aliasRatioRangeLow:
		return 0.99
	case total >= aliasRatioRangeHigh:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(total-aliasRatioRangeLow)/float64(aliasRatioRangeHigh-aliasRatioRangeLow))
	}
}

// converted is the value of an anchored node together with its expanded
// size and container height, so later aliases reuse it without walking it.
type converted struct {
	v      *value.Node
	size   int
	height int
}

type converter struct {
	opt    Options
	memo   map[*yaml.Node]converted
	active map[*yaml.Node]bool

	total   int // nodes in the expanded document
	aliased int // nodes reached through aliases
}

func (c *converter) node(n *yaml.Node, path string, depth int) (*value.Node, converted, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			c.total++
			return value.Null(), converted{size: 1}, nil
		}
		return c.node(n.Content[0], path, depth)
	case yaml.AliasNode:
		return c.alias(n, path, depth)
	}
	if n.Anchor != "" {
		c.active[n] = true
		defer delete(c.active, n)
	}
	v, st, err := c.convert(n, path, depth)
	if err != nil {
		return nil, converted{}, err
	}
	st.v = v
	if n.Anchor != "" {
		c.memo[n] = st
	}
	return v, st, nil
}

func (c *converter) alias(n *yaml.Node, path string, depth int) (*value.Node, converted, error) {
	target := n.Alias
	if c.active[target] {
		return nil, converted{}, &Error{
			Line: n.Line, Column: n.Column, Path: path,
			Msg: "alias *" + n.Value + " refers to an enclosing anchor",
		}
	}
	st, ok := c.memo[target]
	if !ok {
		return c.node(target, path, depth)
	}
	if c.opt.MaxDepth > 0 && depth+st.height > c.opt.MaxDepth {
		return nil, converted{}, &Error{
			Code: eng.CodeMaxDepth, Line: n.Line, Column: n.Column, Path: path,
			Msg: "maximum nesting depth of " + strconv.Itoa(c.opt.MaxDepth) + " exceeded",
		}
	}
	c.total += st.size
	c.aliased += st.size
	if c.aliased > 100 && c.total > 1000 && float64(c.aliased)/float64(c.total) > allowedAliasRatio(c.total) {
		return nil, converted{}, &Error{
			Code: CodeAliasExpansion, Line: n.Line, Column: n.Column, Path: path,
			Msg: "document contains excessive aliasing",
		}
	}
	return st.v, st, nil
}

func (c *converter) convert(n *yaml.Node, path string, depth int) (*value.Node, converted, error) {
	c.total++
	if n.Kind != yaml.MappingNode && n.Kind != yaml.SequenceNode {
		v, err := scalar(n)
		return v, converted{size: 1}, err
	}
	depth++
	if c.opt.MaxDepth > 0 && depth > c.opt.MaxDepth {
		return nil, converted{}, &Error{
			Code: eng.CodeMaxDepth, Line: n.Line, Column: n.Column, Path: path,
			Msg: "maximum nesting depth of " + strconv.Itoa(c.opt.MaxDepth) + " exceeded",
		}
	}
	st := converted{size: 1, height: 1}
	add := func(child converted) {
		st.size += child.size
		st.height = max(st.height, child.height+1)
	}
	if n.Kind == yaml.SequenceNode {
		items := make([]*value.Node, 0, len(n.Content))
		for i, it := range n.Content {
			v, cs, err := c.node(it, eng.JoinPointer(path, strconv.Itoa(i)), depth)
			if err != nil {
				return nil, converted{}, err
			}
			add(cs)
			items = append(items, v)
		}
		return value.Arr(items...), st, nil
	}
	members := make([]value.Member, 0, len(n.Content)/2)
	seen := make(map[string]struct{}, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if k.Kind == yaml.AliasNode {
			k = k.Alias
		}
		if k.Kind != yaml.ScalarNode {
			return nil, converted{}, &Error{Line: k.Line, Column: k.Column, Msg: "mapping key must be a scalar"}
		}
		if _, dup := seen[k.Value]; dup && c.opt.RejectDupKeys {
			return nil, converted{}, &Error{
				Code: eng.CodeDuplicateKey, Line: k.Line, Column: k.Column,
				Path: eng.JoinPointer(path, k.Value), Key: k.Value,
				Msg: "key '" + k.Value + "' duplicated",
			}
		}
		seen[k.Value] = struct{}{}
		v, cs, err := c.node(n.Content[i+1], eng.JoinPointer(path, k.Value), depth)
		if err != nil {
			return nil, converted{}, err
		}
		add(cs)
		members = append(members, value.M(k.Value, v))
	}
	return value.Obj(members...), st, nil
}

func scalar(n *yaml.Node) (*value.Node, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, &Error{Line: n.Line, Column: n.Column, Msg: err.Error()}
		}
		return value.Bool(b), nil
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return value.Int(i), nil
		}
		if u, err := strconv.ParseUint(n.Value, 0, 64); err == nil {
			return value.Num(strconv.FormatUint(u, 10)), nil
		}
		return value.Num(n.Value), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, &Error{Line: n.Line, Column: n.Column, Msg: err.Error()}
		}
		return value.Float(f), nil
	default:
		return value.Str(n.Value), nil
	}
}
