package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder_Build(t *testing.T) {
	base := NewStd("csv download failed")
	err := New(base).
		Component("drivestore").
		Category(CategoryDriveAPI).
		Context("file_id", "abc123").
		Build()

	assert.Equal(t, "csv download failed", err.Error())
	assert.Equal(t, CategoryDriveAPI, err.Category)
	assert.Equal(t, "drivestore", err.GetComponent())

	v, ok := err.GetContext("file_id")
	require.True(t, ok)
	assert.Equal(t, "abc123", v)
}

func TestErrorBuilder_DefaultCategory(t *testing.T) {
	err := Newf("unexpected row count: %d", 42).Build()
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Equal(t, "unexpected row count: 42", err.Error())
}

func TestEnhancedError_Unwrap(t *testing.T) {
	sentinel := NewStd("not found")
	wrapped := New(fmt.Errorf("resolving photo: %w", sentinel)).
		Category(CategoryNotFound).
		Build()

	assert.True(t, Is(wrapped, sentinel))
}

func TestEnhancedError_IsMatchesCategory(t *testing.T) {
	a := Newf("a").Category(CategoryImageFetch).Build()
	b := Newf("b").Category(CategoryImageFetch).Build()
	c := Newf("c").Category(CategoryNetwork).Build()

	assert.True(t, Is(a, b))
	assert.False(t, Is(a, c))
}

func TestGetCategory(t *testing.T) {
	err := Newf("bad date column").Category(CategoryFileParsing).Build()
	assert.Equal(t, CategoryFileParsing, GetCategory(err))
	assert.Equal(t, CategoryGeneric, GetCategory(NewStd("plain")))
}
