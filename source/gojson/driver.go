package gojson

import (
	serdify "github.com/reoring/serdify"
)

// Driver returns a serdify.JSONDriver backed by goccy/go-json.
func Driver() serdify.JSONDriver { return driver{} }

type driver struct{}

func (driver) NewBytes(b []byte) serdify.Source { return NewBytes(b) }
func (driver) Name() string                     { return Name }
