package serdify

import (
	"log/slog"
	"net/http"

	"github.com/reoring/serdify/i18n"
	"github.com/reoring/serdify/shape"
)

// DuplicateKeyPolicy controls objects that repeat a key.
type DuplicateKeyPolicy int

const (
	DuplicateLastWins DuplicateKeyPolicy = iota // the last occurrence wins
	DuplicateReject                             // report a syntax error
)

// DefaultMaxDepth bounds container nesting when DecodeOpt.MaxDepth is zero.
const DefaultMaxDepth = 128

// DecodeOpt bundles decoding options. Entry points take it variadically and
// use the last value passed; zero fields mean the default.
type DecodeOpt struct {
	MaxDepth       int   // nested containers allowed; 0 means DefaultMaxDepth, < 0 disables
	MaxBytes       int64 // FromReader only; 0 means unlimited
	OnDuplicateKey DuplicateKeyPolicy
	Driver         JSONDriver // nil means the global driver
	Logger         *slog.Logger
	Translator     i18n.Translator
	Status         int    // status of validation and syntax errors; 0 means 400
	Instance       string // copied into Error.Instance
	Naming         shape.Naming
}

type config struct {
	maxDepth int
	maxBytes int64
	dup      DuplicateKeyPolicy
	driver   JSONDriver
	logger   *slog.Logger
	tr       i18n.Translator
	status   int
	instance string
	naming   shape.Naming
}

func resolve(opts []DecodeOpt) config {
	var o DecodeOpt
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	c := config{
		maxDepth: o.MaxDepth,
		maxBytes: o.MaxBytes,
		dup:      o.OnDuplicateKey,
		driver:   o.Driver,
		logger:   o.Logger,
		tr:       o.Translator,
		status:   o.Status,
		instance: o.Instance,
		naming:   o.Naming,
	}
	switch {
	case c.maxDepth == 0:
		c.maxDepth = DefaultMaxDepth
	case c.maxDepth < 0:
		c.maxDepth = 0
	}
	if c.driver == nil {
		c.driver = getJSONDriver()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.tr == nil {
		c.tr = i18n.Current()
	}
	if c.status == 0 {
		c.status = http.StatusBadRequest
	}
	return c
}
