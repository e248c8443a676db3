package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	t.Cleanup(func() { SetLanguage("en") })

	assert.Equal(t, "Your request parameters didn't validate.", T(TitleValidation))
	assert.Equal(t,
		"Value 256 is out of range for type u8. Expected range: 0 to 255",
		T(ReasonRange, "256", "u8", "0", "255"))

	SetLanguage("ja")
	msg := T(ReasonRange, "256", "u8", "0", "255")
	assert.NotEqual(t, "Value 256 is out of range for type u8. Expected range: 0 to 255", msg)
	assert.Contains(t, msg, "256")
	assert.Contains(t, msg, "u8")
}

func TestTranslator_NumbersAreNotRegrouped(t *testing.T) {
	tr := New("en")
	assert.Equal(t,
		"Value 18446744073709551616 is out of range for type u64. Expected range: 0 to 18446744073709551615",
		tr.Message(ReasonRange, "18446744073709551616", "u64", "0", "18446744073709551615"))
}

func TestTranslator_SyntaxSentences(t *testing.T) {
	tr := New("en")
	assert.Equal(t,
		"Trailing comma at line 1, column 28: remove the comma before the closing bracket.",
		tr.Message(SyntaxTrailingComma, "1", "28"))
	assert.Equal(t,
		"JSON syntax error at line 2, column 3: boom",
		tr.Message(SyntaxOther, "2", "3", "boom"))
}

func TestTranslator_UnknownKeyAndFallback(t *testing.T) {
	assert.Equal(t, "no.such.key", New("en").Message("no.such.key", "x"))
	assert.Equal(t, "JSON parsing error", New("fr").Message(TitleSyntax))
	assert.Equal(t, "JSON parsing error", New("").Message(TitleSyntax))
}

type upper struct{}

func (upper) Message(key string, _ ...string) string { return "X:" + key }

func TestSetTranslator(t *testing.T) {
	t.Cleanup(func() { SetTranslator(nil) })

	SetTranslator(upper{})
	assert.Equal(t, "X:"+TitleSyntax, T(TitleSyntax))

	SetTranslator(nil)
	assert.Equal(t, "JSON parsing error", T(TitleSyntax))
}
