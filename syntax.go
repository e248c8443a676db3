package serdify

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	eng "github.com/reoring/serdify/internal/engine"
	"github.com/reoring/serdify/i18n"
	yamlsrc "github.com/reoring/serdify/source/yaml"
)

// SyntaxCategory classifies a parser failure.
type SyntaxCategory int

const (
	SyntaxOther SyntaxCategory = iota
	SyntaxEOF
	SyntaxTrailingComma
	SyntaxInvalidEscape
	SyntaxControlCharacter
	SyntaxSurrogate
	SyntaxExpected
	SyntaxDuplicateKey
	SyntaxNumber
	SyntaxMissingValue
	SyntaxTrailingCharacters
)

var syntaxKeys = map[SyntaxCategory]string{
	SyntaxOther:              i18n.SyntaxOther,
	SyntaxEOF:                i18n.SyntaxEOF,
	SyntaxTrailingComma:      i18n.SyntaxTrailingComma,
	SyntaxInvalidEscape:      i18n.SyntaxInvalidEscape,
	SyntaxControlCharacter:   i18n.SyntaxControlChar,
	SyntaxSurrogate:          i18n.SyntaxSurrogate,
	SyntaxExpected:           i18n.SyntaxExpected,
	SyntaxDuplicateKey:       i18n.SyntaxDuplicateKey,
	SyntaxNumber:             i18n.SyntaxNumber,
	SyntaxMissingValue:       i18n.SyntaxMissingValue,
	SyntaxTrailingCharacters: i18n.SyntaxTrailing,
}

// Diagnostic is a classified syntax failure. Line and Column are 1-based; the
// column counts runes.
type Diagnostic struct {
	Category SyntaxCategory
	Line     int
	Column   int
	Message  string // the parser's own message
	Key      string // duplicated key, SyntaxDuplicateKey only

	yaml bool
}

// Sentence renders the diagnostic as one human-readable sentence.
func (d Diagnostic) Sentence(tr i18n.Translator) string {
	line, col := strconv.Itoa(d.Line), strconv.Itoa(d.Column)
	switch d.Category {
	case SyntaxDuplicateKey:
		return tr.Message(i18n.SyntaxDuplicateKey, line, col, d.Key)
	case SyntaxOther:
		if d.yaml {
			return tr.Message(i18n.SyntaxYAML, line, d.Message)
		}
		return tr.Message(i18n.SyntaxOther, line, col, d.Message)
	case SyntaxExpected:
		return tr.Message(syntaxKeys[d.Category], line, col, d.Message)
	}
	return tr.Message(syntaxKeys[d.Category], line, col)
}

// diagnoseJSON classifies err, raised while parsing data, into a Diagnostic.
func diagnoseJSON(data []byte, err error) Diagnostic {
	var ie *eng.IssueError
	if errors.As(err, &ie) && ie.Code == eng.CodeDuplicateKey {
		line, col := lineCol(data, ie.Offset)
		return Diagnostic{Category: SyntaxDuplicateKey, Line: line, Column: col, Message: ie.Message, Key: ie.Key}
	}
	var se *eng.SyntaxError
	if !errors.As(err, &se) {
		line, col := lineCol(data, -1)
		return Diagnostic{Category: SyntaxOther, Line: line, Column: col, Message: err.Error()}
	}
	off := se.Offset
	if off < 0 || off > int64(len(data)) {
		off = int64(len(data))
	}
	line, col := lineCol(data, off)
	d := Diagnostic{Line: line, Column: col, Message: strings.TrimPrefix(se.Msg, "json: ")}
	switch se.Code {
	case eng.CodeEmpty, eng.CodeEOF:
		d.Category = SyntaxEOF
		return d
	case eng.CodeTrailing:
		d.Category = SyntaxTrailingCharacters
		return d
	}
	d.Category = classifyMessage(d.Message, data, off)
	return d
}

// classifyMessage maps a parser message to a category by the phrases
// encoding/json and goccy/go-json use. Trailing commas and missing values are
// both reported as an unexpected character, so the bytes before the offending
// one decide between them.
func classifyMessage(msg string, data []byte, off int64) SyntaxCategory {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "unexpected end"):
		return SyntaxEOF
	case strings.Contains(m, "surrogate"):
		return SyntaxSurrogate
	case strings.Contains(m, "escape"):
		return SyntaxInvalidEscape
	case strings.Contains(m, "in string literal"), strings.Contains(m, "control character"):
		return SyntaxControlCharacter
	case strings.Contains(m, "numeric literal"), strings.Contains(m, "number"):
		return SyntaxNumber
	case strings.Contains(m, "after top-level value"):
		return SyntaxTrailingCharacters
	case strings.Contains(m, "duplicate"):
		return SyntaxDuplicateKey
	}
	if leadingZero(data, off) {
		return SyntaxNumber
	}
	if off < int64(len(data)) {
		prev := prevSignificant(data, off)
		switch c := data[off]; {
		case (c == ']' || c == '}') && prev == ',':
			return SyntaxTrailingComma
		case (c == ',' || c == '}' || c == ']') && (prev == ':' || prev == ',' || prev == '['):
			return SyntaxMissingValue
		}
	}
	return SyntaxExpected
}

// leadingZero reports a digit directly after a number literal that starts
// with 0, such as 01 or -01. The parsers end the literal at the 0 and then
// complain about the digit as an unexpected character.
func leadingZero(data []byte, off int64) bool {
	if off < 1 || off >= int64(len(data)) || data[off-1] != '0' || !isDigit(data[off]) {
		return false
	}
	if off < 2 {
		return true
	}
	switch c := data[off-2]; {
	case isDigit(c), c == '.', c == 'e', c == 'E', c == '+':
		return false
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func prevSignificant(data []byte, off int64) byte {
	for i := off - 1; i >= 0; i-- {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return data[i]
	}
	return 0
}

// lineCol converts a byte offset into a 1-based line and rune column. A
// negative offset means the end of data.
func lineCol(data []byte, off int64) (int, int) {
	if off < 0 || off > int64(len(data)) {
		off = int64(len(data))
	}
	head := data[:off]
	line := bytes.Count(head, []byte{'\n'}) + 1
	start := bytes.LastIndexByte(head, '\n') + 1
	return line, utf8.RuneCount(head[start:]) + 1
}

// diagnoseYAML classifies a failure of the YAML front end.
func diagnoseYAML(err error) Diagnostic {
	var ye *yamlsrc.Error
	if !errors.As(err, &ye) {
		return Diagnostic{Category: SyntaxOther, Line: 1, Column: 1, Message: err.Error(), yaml: true}
	}
	d := Diagnostic{Line: max(ye.Line, 1), Column: max(ye.Column, 1), Message: ye.Msg, Key: ye.Key, yaml: true}
	switch ye.Code {
	case eng.CodeEmpty:
		d.Category = SyntaxEOF
	case eng.CodeTrailing:
		d.Category = SyntaxTrailingCharacters
	case eng.CodeDuplicateKey:
		d.Category = SyntaxDuplicateKey
	default:
		d.Category = SyntaxOther
	}
	return d
}
