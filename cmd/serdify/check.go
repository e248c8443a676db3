package main

import (
	"fmt"
	"io"
	"os"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	serdify "github.com/reoring/serdify"
	"github.com/reoring/serdify/internal/checker"
	"github.com/reoring/serdify/shape"
	"github.com/reoring/serdify/source/gojson"
)

type checkCmd struct {
	Shape            string   `help:"Shape document (YAML)." short:"s" required:"" type:"existingfile"`
	Select           string   `help:"jq expression; each output is checked on its own." short:"q"`
	Format           string   `help:"Output format." short:"o" default:"json" enum:"json,yaml"`
	Driver           string   `help:"JSON driver." default:"std" enum:"std,gojson" env:"SERDIFY_DRIVER"`
	MaxDepth         int      `help:"Maximum nesting depth; negative disables the check." default:"128"`
	MaxBytes         int64    `help:"Reject inputs larger than this many bytes; 0 means unlimited."`
	RejectDuplicates bool     `help:"Treat repeated object keys as a syntax error."`
	Workers          int      `help:"Files checked concurrently." default:"4"`
	Files            []string `arg:"" help:"JSON or YAML files." type:"existingfile"`
}

func (c *checkCmd) Run(e *env) error {
	s, err := loadShape(c.Shape)
	if err != nil {
		return err
	}
	opt := serdify.DecodeOpt{MaxDepth: c.MaxDepth, MaxBytes: c.MaxBytes, Logger: e.logger}
	if c.RejectDuplicates {
		opt.OnDuplicateKey = serdify.DuplicateReject
	}
	if c.Driver == "gojson" {
		opt.Driver = gojson.Driver()
	}

	chk, err := checker.New(checker.Options{
		Shape:   s,
		Select:  c.Select,
		Decode:  opt,
		Workers: c.Workers,
		Logger:  e.logger,
	})
	if err != nil {
		return err
	}
	results, err := chk.CheckFiles(e.ctx, c.Files)
	if err != nil {
		return err
	}
	e.logger.Info("check finished", "files", len(c.Files), "results", len(results))

	if err := writeResults(e.out, c.Format, results); err != nil {
		return err
	}
	if checker.Failed(results) {
		return errFailed
	}
	return nil
}

func loadShape(path string) (*shape.Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shape: %w", err)
	}
	return shape.ParseYAML(data)
}

func writeResults(w io.Writer, format string, results []checker.Result) error {
	if results == nil {
		results = []checker.Result{}
	}
	body, err := j.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	if format == "yaml" {
		// JSON is valid YAML; going through a node keeps the key order.
		var doc yaml.Node
		if err := yaml.Unmarshal(body, &doc); err != nil {
			return err
		}
		out, err := yaml.Marshal(&doc)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", body)
	return err
}
