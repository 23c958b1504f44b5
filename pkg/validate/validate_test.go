// pkg/validate/validate_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test extension normalization, offer id and path validation

package validate_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/validate"
)

func TestNormalizeExtension_Identity(t *testing.T) {
	// Already-normalized input from the supported set maps to itself.
	for _, ext := range validate.SupportedExtensions() {
		normalized, err := validate.NormalizeExtension("." + ext)
		require.NoError(t, err, ext)
		assert.Equal(t, "."+ext, normalized)

		// Idempotent: normalizing the output changes nothing.
		again, err := validate.NormalizeExtension(normalized)
		require.NoError(t, err)
		assert.Equal(t, normalized, again)
	}
}

func TestNormalizeExtension_CaseAndDot(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"md", ".md"},
		{".md", ".md"},
		{"MD", ".md"},
		{".MD", ".md"},
		{"  .Md ", ".md"},
	}
	for _, tt := range tests {
		got, err := validate.NormalizeExtension(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	// Uppercase of every supported extension folds to the normalized form.
	for _, ext := range validate.SupportedExtensions() {
		got, err := validate.NormalizeExtension(strings.ToUpper(ext))
		require.NoError(t, err)
		assert.Equal(t, "."+ext, got)
	}
}

func TestNormalizeExtension_Rejections(t *testing.T) {
	for _, in := range []string{"", ".", "exe", ".docx", ".m d", ".tar.gz", "..md"} {
		_, err := validate.NormalizeExtension(in)
		require.Error(t, err, in)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidExtension), in)
	}
}

func TestValidateOfferID(t *testing.T) {
	valid := []string{"a", "marked", "my-editor", "note_app2", strings.Repeat("a", 32)}
	for _, id := range valid {
		assert.NoError(t, validate.ValidateOfferID(id), id)
	}

	invalid := []string{"", "A", "1note", "-dash", "has space", strings.Repeat("a", 33), "UPPER"}
	for _, id := range invalid {
		err := validate.ValidateOfferID(id)
		require.Error(t, err, id)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidOfferID), id)
	}

	// Reserved words match the pattern but are refused anyway.
	for _, id := range []string{"all", "none", "sync", "help", "slap", "chop"} {
		err := validate.ValidateOfferID(id)
		require.Error(t, err, id)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidOfferID), id)
	}
}

func TestValidateApplicationPath(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, validate.ValidateApplicationPath(dir))

	err := validate.ValidateApplicationPath("relative/path")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath))

	err = validate.ValidateApplicationPath(filepath.Join(dir, "missing.app"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAppNotFound))

	err = validate.ValidateApplicationPath("")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath))
}
