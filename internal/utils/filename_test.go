package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoredImageName(t *testing.T) {
	name, err := StoredImageName("../../etc/My Photo.PNG")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(name, "my-photo-"), name)
	assert.True(t, strings.HasSuffix(name, ".png"), name)
	assert.NoError(t, ValidateStoredName(name))

	other, err := StoredImageName("../../etc/My Photo.PNG")
	require.NoError(t, err)
	assert.NotEqual(t, name, other, "same client name never collides")
}

func TestStoredImageNameWindowsPathAndEmptyStem(t *testing.T) {
	name, err := StoredImageName(`C:\Users\bob\.jpg`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "image-"), name)
}

func TestStoredImageNameRejectsNonImages(t *testing.T) {
	for _, n := range []string{"script.sh", "noext", "page.html"} {
		_, err := StoredImageName(n)
		assert.ErrorIs(t, err, ErrUnsupportedImage, n)
	}
}

func TestValidateStoredName(t *testing.T) {
	for _, bad := range []string{"", ".", "..", "../secret.png", "a/b.png", `a\b.png`, "x..png"} {
		assert.ErrorIs(t, ValidateStoredName(bad), ErrUnsafeFilename, bad)
	}
	assert.NoError(t, ValidateStoredName("diagram-1f2e.png"))
}
