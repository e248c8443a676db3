package serdify

import (
	"sync"

	eng "github.com/reoring/serdify/internal/engine"
	jsonsrc "github.com/reoring/serdify/source/json"
)

// Source is a stream of JSON tokens produced by a driver.
type Source = eng.TokenSource

// Token is one element of a Source.
type Token = eng.Token

// TokenKind enumerates token kinds.
type TokenKind = eng.Kind

const (
	TokenBeginObject = eng.KindBeginObject
	TokenEndObject   = eng.KindEndObject
	TokenBeginArray  = eng.KindBeginArray
	TokenEndArray    = eng.KindEndArray
	TokenKey         = eng.KindKey
	TokenString      = eng.KindString
	TokenNumber      = eng.KindNumber
	TokenBool        = eng.KindBool
	TokenNull        = eng.KindNull
)

// SyntaxError is the form drivers report parser failures in. Offset is the
// byte position of the offending input, -1 when unknown.
type SyntaxError = eng.SyntaxError

// JSONDriver turns JSON text into a Source. The default is based on
// encoding/json; source/gojson provides a goccy/go-json driver.
type JSONDriver interface {
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = defaultJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the encoding/json driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = defaultJSONDriver{}
	jsonDriverMu.Unlock()
}

// CurrentJSONDriver returns the global driver.
func CurrentJSONDriver() JSONDriver { return getJSONDriver() }

func getJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

type defaultJSONDriver struct{}

func (defaultJSONDriver) NewBytes(b []byte) Source { return jsonsrc.NewBytes(b) }
func (defaultJSONDriver) Name() string             { return jsonsrc.Name }

// DefaultJSONDriver returns the encoding/json driver.
func DefaultJSONDriver() JSONDriver { return defaultJSONDriver{} }
