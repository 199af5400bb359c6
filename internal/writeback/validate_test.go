package writeback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidTSX(t *testing.T) {
	src := []byte(`import Link from "next/link";

export default function Page() {
  return <Link href="/officer/cleaning/request">Request</Link>;
}
`)
	err := Validate(src, "page.tsx")
	assert.NoError(t, err)
}

func TestValidate_TemplateHref(t *testing.T) {
	src := []byte("export default function Page({ id }: { id: string }) {\n" +
		"  return <a href={`/adviser/evaluation/${id}/rate`}>Rate</a>;\n" +
		"}\n")
	err := Validate(src, "page.tsx")
	assert.NoError(t, err)
}

func TestValidate_BrokenTSX(t *testing.T) {
	src := []byte(`export default function Page() {
  return <div>
// missing closing tag and brace
`)
	err := Validate(src, "page.tsx")
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "page.tsx", ve.FilePath)
	assert.Contains(t, ve.Message, "AST")
}

func TestValidate_ValidJS(t *testing.T) {
	src := []byte(`function hello() { return "world"; }`)
	err := Validate(src, "test.js")
	assert.NoError(t, err)
}

func TestValidate_UnknownExtension_PassThrough(t *testing.T) {
	// Unknown extensions should pass through without error
	src := []byte(`this is not valid code in any language {{{`)
	err := Validate(src, "test.txt")
	assert.NoError(t, err)
}

func TestValidate_EmptyContent(t *testing.T) {
	err := Validate([]byte{}, "page.tsx")
	assert.NoError(t, err)
}

func TestLanguageForPath(t *testing.T) {
	assert.NotNil(t, LanguageForPath("a/page.tsx"))
	assert.NotNil(t, LanguageForPath("a/util.ts"))
	assert.NotNil(t, LanguageForPath("a/old.jsx"))
	assert.Nil(t, LanguageForPath("a/style.css"))
}

func TestValidationError_Error(t *testing.T) {
	e := &ValidationError{FilePath: "page.tsx", Line: 2, Column: 4, Message: "syntax error in AST"}
	assert.Equal(t, "page.tsx:3:5: syntax error in AST", e.Error())
}
