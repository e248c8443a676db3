// Package i18n holds the message catalogue used for problem titles, error
// reasons and syntax sentences.
package i18n

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator renders the message for key. Arguments are pre-formatted strings
// so numbers are never regrouped by locale.
type Translator interface {
	Message(key string, args ...string) string
}

// Message keys.
const (
	TitleValidation  = "title.validation"
	TitleSyntax      = "title.syntax"
	TitleDepth       = "title.depth"
	TitleTooLarge    = "title.too_large"
	TitleConversion  = "title.conversion"
	DetailConversion = "detail.conversion"
	DetailDepth      = "detail.depth"
	DetailTooLarge   = "detail.too_large"

	TitleAliasExpansion  = "title.alias_expansion"
	DetailAliasExpansion = "detail.alias_expansion"

	ReasonType    = "reason.type"
	ReasonRange   = "reason.range"
	ReasonMissing = "reason.missing"
	ReasonTime    = "reason.time"

	SyntaxEOF           = "syntax.eof"
	SyntaxTrailingComma = "syntax.trailing_comma"
	SyntaxInvalidEscape = "syntax.invalid_escape"
	SyntaxControlChar   = "syntax.control_char"
	SyntaxSurrogate     = "syntax.surrogate"
	SyntaxExpected      = "syntax.expected"
	SyntaxDuplicateKey  = "syntax.duplicate_key"
	SyntaxNumber        = "syntax.number"
	SyntaxMissingValue  = "syntax.missing_value"
	SyntaxTrailing      = "syntax.trailing"
	SyntaxOther         = "syntax.other"
	SyntaxYAML          = "syntax.yaml"
)

// Syntax sentences take line and column as their first two arguments, except
// the YAML one which only knows the line.
var english = map[string]string{
	TitleValidation:  "Your request parameters didn't validate.",
	TitleSyntax:      "JSON parsing error",
	TitleDepth:       "Nesting too deep",
	TitleTooLarge:    "Request body too large",
	TitleConversion:  "Deserialization failed",
	DetailConversion: "Type validation errors",
	DetailDepth:      "Nesting depth exceeds the limit of %[1]s at %[2]s",
	DetailTooLarge:   "Request body exceeds the limit of %[1]s bytes",

	TitleAliasExpansion:  "Document expands too far",
	DetailAliasExpansion: "YAML aliases at line %[1]s expand the document far beyond its size",

	ReasonType:    "Expected %[1]s, got %[2]s",
	ReasonRange:   "Value %[1]s is out of range for type %[2]s. Expected range: %[3]s to %[4]s",
	ReasonMissing: "missing required field",
	ReasonTime:    "Invalid date-time value %[1]q, expected RFC 3339",

	SyntaxEOF:           "Unexpected end of input at line %[1]s, column %[2]s: the JSON document is incomplete.",
	SyntaxTrailingComma: "Trailing comma at line %[1]s, column %[2]s: remove the comma before the closing bracket.",
	SyntaxInvalidEscape: "Invalid escape sequence at line %[1]s, column %[2]s: use a valid JSON escape such as \\n or \\uXXXX.",
	SyntaxControlChar:   "Unescaped control character at line %[1]s, column %[2]s: control characters must be escaped inside strings.",
	SyntaxSurrogate:     "Invalid unicode surrogate at line %[1]s, column %[2]s.",
	SyntaxExpected:      "Unexpected token at line %[1]s, column %[2]s: %[3]s.",
	SyntaxDuplicateKey:  "Duplicate key %[3]q at line %[1]s, column %[2]s.",
	SyntaxNumber:        "Invalid number at line %[1]s, column %[2]s.",
	SyntaxMissingValue:  "Missing value at line %[1]s, column %[2]s: a value is required after ':' or ','.",
	SyntaxTrailing:      "Unexpected characters after the JSON value at line %[1]s, column %[2]s.",
	SyntaxOther:         "JSON syntax error at line %[1]s, column %[2]s: %[3]s",
	SyntaxYAML:          "YAML syntax error at line %[1]s: %[2]s",
}

var japanese = map[string]string{
	TitleValidation:  "リクエストパラメータの検証に失敗しました。",
	TitleSyntax:      "JSON 解析エラー",
	TitleDepth:       "ネストが深すぎます",
	TitleTooLarge:    "リクエストボディが大きすぎます",
	TitleConversion:  "デシリアライズに失敗しました",
	DetailConversion: "型の検証エラー",
	DetailDepth:      "%[2]s でネストの上限 %[1]s を超えました",
	DetailTooLarge:   "リクエストボディが上限 %[1]s バイトを超えています",

	TitleAliasExpansion:  "ドキュメントの展開が大きすぎます",
	DetailAliasExpansion: "%[1]s 行の YAML エイリアスがドキュメントを大きく膨張させます",

	ReasonType:    "%[1]s が必要ですが %[2]s でした",
	ReasonRange:   "値 %[1]s は型 %[2]s の範囲外です。許容範囲: %[3]s から %[4]s",
	ReasonMissing: "必須フィールドがありません",
	ReasonTime:    "日時の値 %[1]q が不正です (RFC 3339 形式が必要です)",

	SyntaxEOF:           "%[1]s 行 %[2]s 列で入力が終了しました: JSON が不完全です。",
	SyntaxTrailingComma: "%[1]s 行 %[2]s 列に末尾のカンマがあります: 閉じ括弧の前のカンマを削除してください。",
	SyntaxInvalidEscape: "%[1]s 行 %[2]s 列のエスケープシーケンスが不正です。",
	SyntaxControlChar:   "%[1]s 行 %[2]s 列にエスケープされていない制御文字があります。",
	SyntaxSurrogate:     "%[1]s 行 %[2]s 列のサロゲートペアが不正です。",
	SyntaxExpected:      "%[1]s 行 %[2]s 列に予期しないトークンがあります: %[3]s。",
	SyntaxDuplicateKey:  "%[1]s 行 %[2]s 列でキー %[3]q が重複しています。",
	SyntaxNumber:        "%[1]s 行 %[2]s 列の数値が不正です。",
	SyntaxMissingValue:  "%[1]s 行 %[2]s 列に値がありません: ':' または ',' の後には値が必要です。",
	SyntaxTrailing:      "%[1]s 行 %[2]s 列: JSON の値の後に余分な文字があります。",
	SyntaxOther:         "%[1]s 行 %[2]s 列で JSON 構文エラー: %[3]s",
	SyntaxYAML:          "%[1]s 行で YAML 構文エラー: %[2]s",
}

var builtin = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range english {
		if err := b.SetString(language.English, key, msg); err != nil {
			panic(err)
		}
	}
	for key, msg := range japanese {
		if err := b.SetString(language.Japanese, key, msg); err != nil {
			panic(err)
		}
	}
	return b
}()

// catalogTranslator renders built-in messages through an x/text printer.
type catalogTranslator struct {
	printer *message.Printer
}

// New returns the built-in Translator for lang ("en" or "ja"); other
// languages fall back to English.
func New(lang string) Translator {
	tag := language.English
	if t, err := language.Parse(lang); err == nil {
		if base, _ := t.Base(); base.String() == "ja" {
			tag = language.Japanese
		}
	}
	return catalogTranslator{printer: message.NewPrinter(tag, message.Catalog(builtin))}
}

func (t catalogTranslator) Message(key string, args ...string) string {
	if _, ok := english[key]; !ok {
		return key
	}
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a
	}
	return t.printer.Sprintf(key, vals...)
}

var (
	mu                sync.RWMutex
	currentTranslator = New("en")
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	tr := New(lang)
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation; nil restores the
// English catalogue.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = New("en")
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// Current returns the Translator in effect.
func Current() Translator {
	mu.RLock()
	defer mu.RUnlock()
	return currentTranslator
}

// T renders key with the current Translator.
func T(key string, args ...string) string { return Current().Message(key, args...) }
