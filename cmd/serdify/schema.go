package main

import (
	"fmt"

	j "github.com/goccy/go-json"

	"github.com/reoring/serdify/shape"
)

type schemaCmd struct {
	Shape string `arg:"" help:"Shape document (YAML)." type:"existingfile"`
}

func (c *schemaCmd) Run(e *env) error {
	s, err := loadShape(c.Shape)
	if err != nil {
		return err
	}
	body, err := j.MarshalIndent(shape.JSONSchema(s), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(e.out, "%s\n", body)
	return err
}
