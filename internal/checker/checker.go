// Package checker validates files against a shape and reports one problem
// document per failing input. It backs the check command.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/itchyny/gojq"
	"golang.org/x/sync/errgroup"

	serdify "github.com/reoring/serdify"
	"github.com/reoring/serdify/shape"
	"github.com/reoring/serdify/value"
)

// Options configure a Checker.
type Options struct {
	Shape   *shape.Shape
	Select  string // jq expression; each output is checked on its own
	Decode  serdify.DecodeOpt
	Workers int // files checked concurrently; <= 0 means 1
	Logger  *slog.Logger
}

// Result is the outcome for one document, or one selected value of it.
type Result struct {
	File    string         `json:"file"`
	Index   *int           `json:"index,omitempty"`
	OK      bool           `json:"ok"`
	Problem *serdify.Error `json:"problem,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Checker is safe for concurrent use.
type Checker struct {
	opt   Options
	query *gojq.Code
	log   *slog.Logger
}

// New compiles the selection and returns a Checker.
func New(opt Options) (*Checker, error) {
	if opt.Shape == nil {
		return nil, fmt.Errorf("checker: shape is required")
	}
	c := &Checker{opt: opt, log: opt.Logger}
	if c.log == nil {
		c.log = slog.Default()
	}
	if opt.Select != "" {
		q, err := gojq.Parse(opt.Select)
		if err != nil {
			return nil, fmt.Errorf("invalid jq expression: %w", err)
		}
		code, err := gojq.Compile(q)
		if err != nil {
			return nil, fmt.Errorf("failed to compile jq expression: %w", err)
		}
		c.query = code
	}
	return c, nil
}

// CheckFiles reads and checks files with up to Workers goroutines. Results
// keep the order of files. Read failures are reported in Result.Error; the
// returned error is only set when ctx is cancelled. JSON files are subject to
// Decode.MaxBytes.
func (c *Checker) CheckFiles(ctx context.Context, files []string) ([]Result, error) {
	per := make([][]Result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.opt.Workers, 1))

	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			per[i] = c.checkFile(ctx, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Result
	for _, rs := range per {
		out = append(out, rs...)
	}
	return out, nil
}

func (c *Checker) checkFile(ctx context.Context, name string) []Result {
	if IsYAML(name) {
		data, err := os.ReadFile(name)
		if err != nil {
			return []Result{{File: name, Error: err.Error()}}
		}
		return c.Check(ctx, name, data)
	}
	f, err := os.Open(name)
	if err != nil {
		return []Result{{File: name, Error: err.Error()}}
	}
	defer f.Close()
	opt := c.decodeOpt(name)
	n, err := serdify.ParseReader(f, opt)
	if err != nil {
		return []Result{failure(name, nil, err)}
	}
	return c.evaluate(ctx, name, n, opt)
}

func (c *Checker) decodeOpt(name string) serdify.DecodeOpt {
	opt := c.opt.Decode
	opt.Instance = name
	if opt.Logger == nil {
		opt.Logger = c.log
	}
	return opt
}

// Check validates one document. Files ending in .yaml or .yml are read as
// YAML, everything else as JSON.
func (c *Checker) Check(ctx context.Context, name string, data []byte) []Result {
	opt := c.decodeOpt(name)
	var (
		n   *value.Node
		err error
	)
	if IsYAML(name) {
		n, err = serdify.ParseYAML(data, opt)
	} else {
		n, err = serdify.Parse(data, opt)
	}
	if err != nil {
		return []Result{failure(name, nil, err)}
	}
	return c.evaluate(ctx, name, n, opt)
}

func (c *Checker) evaluate(ctx context.Context, name string, n *value.Node, opt serdify.DecodeOpt) []Result {
	if c.query == nil {
		return []Result{c.decode(name, nil, n, opt)}
	}
	return c.selected(ctx, name, n, opt)
}

func (c *Checker) selected(ctx context.Context, name string, n *value.Node, opt serdify.DecodeOpt) []Result {
	var out []Result
	iter := c.query.RunWithContext(ctx, n.Interface())
	for i := 0; ; i++ {
		v, ok := iter.Next()
		if !ok {
			break
		}
		idx := i
		if err, isErr := v.(error); isErr {
			out = append(out, Result{File: name, Index: &idx, Error: err.Error()})
			continue
		}
		raw, err := gojson.Marshal(v)
		if err != nil {
			out = append(out, Result{File: name, Index: &idx, Error: err.Error()})
			continue
		}
		sel := opt
		sel.Instance = fmt.Sprintf("%s[%d]", name, idx)
		sn, err := serdify.Parse(raw, sel)
		if err != nil {
			out = append(out, failure(name, &idx, err))
			continue
		}
		out = append(out, c.decode(name, &idx, sn, sel))
	}
	c.log.Debug("checker: selection done", "file", name, "results", len(out))
	return out
}

func (c *Checker) decode(name string, idx *int, n *value.Node, opt serdify.DecodeOpt) Result {
	if _, err := serdify.Decode(n, c.opt.Shape, opt); err != nil {
		return failure(name, idx, err)
	}
	return Result{File: name, Index: idx, OK: true}
}

func failure(name string, idx *int, err error) Result {
	if e, ok := serdify.AsError(err); ok {
		return Result{File: name, Index: idx, Problem: e}
	}
	return Result{File: name, Index: idx, Error: err.Error()}
}

// IsYAML reports whether name has a YAML extension.
func IsYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Failed reports whether any result is not OK.
func Failed(rs []Result) bool {
	for _, r := range rs {
		if !r.OK {
			return true
		}
	}
	return false
}
