package serdify

import (
	"errors"
	"net/http"
	"strconv"

	eng "github.com/reoring/serdify/internal/engine"
	"github.com/reoring/serdify/i18n"
	yamlsrc "github.com/reoring/serdify/source/yaml"
	"github.com/reoring/serdify/value"
)

// parseJSON runs the driver and the enforcement wrapper over data and builds
// the value tree. Failures come back as a syntax or depth *Error.
func (c *config) parseJSON(data []byte) (*value.Node, *Error) {
	src := eng.WrapWithEnforcement(c.driver.NewBytes(data), eng.EnforceOptions{
		OnDuplicate: c.engineDup(),
		MaxDepth:    c.maxDepth,
	})
	n, err := eng.BuildDocument(src)
	if err == nil {
		return n, nil
	}
	var ie *eng.IssueError
	if errors.As(err, &ie) && ie.Code == eng.CodeMaxDepth {
		return nil, c.depthError("#" + ie.Path)
	}
	return nil, c.syntaxError(diagnoseJSON(data, err))
}

func (c *config) parseYAML(data []byte) (*value.Node, *Error) {
	n, err := yamlsrc.Parse(data, yamlsrc.Options{
		MaxDepth:      c.maxDepth,
		RejectDupKeys: c.dup == DuplicateReject,
	})
	if err == nil {
		return n, nil
	}
	var ye *yamlsrc.Error
	if errors.As(err, &ye) {
		switch ye.Code {
		case eng.CodeMaxDepth:
			return nil, c.depthError("#" + ye.Path)
		case yamlsrc.CodeAliasExpansion:
			detail := c.tr.Message(i18n.DetailAliasExpansion, strconv.Itoa(ye.Line))
			return nil, c.finish(newError(KindTooLarge, c.tr, i18n.TitleAliasExpansion, detail, http.StatusRequestEntityTooLarge))
		}
	}
	return nil, c.syntaxError(diagnoseYAML(err))
}

func (c *config) engineDup() eng.DuplicateStrictness {
	if c.dup == DuplicateReject {
		return eng.DupError
	}
	return eng.DupIgnore
}

func (c *config) finish(e *Error) *Error {
	e.Instance = c.instance
	return e
}

func (c *config) syntaxError(d Diagnostic) *Error {
	return c.finish(newError(KindSyntax, c.tr, i18n.TitleSyntax, d.Sentence(c.tr), c.status))
}

func (c *config) depthError(pointer string) *Error {
	detail := c.tr.Message(i18n.DetailDepth, strconv.Itoa(c.maxDepth), pointer)
	return c.finish(newError(KindDepth, c.tr, i18n.TitleDepth, detail, c.status))
}

func (c *config) tooLargeError() *Error {
	detail := c.tr.Message(i18n.DetailTooLarge, strconv.FormatInt(c.maxBytes, 10))
	return c.finish(newError(KindTooLarge, c.tr, i18n.TitleTooLarge, detail, http.StatusRequestEntityTooLarge))
}

func (c *config) conversionError() *Error {
	return c.finish(newError(KindConversion, c.tr, i18n.TitleConversion, c.tr.Message(i18n.DetailConversion), c.status))
}

func (c *config) validationError(params []InvalidParam) *Error {
	col := &Collector{errors: params}
	return c.finish(col.intoError(c.tr, c.status))
}
