package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_SetGetDelete(t *testing.T) {
	t.Setenv(EnvToken, "")
	c := Credentials{Dir: filepath.Join(t.TempDir(), ".issuetracker")}

	ti, err := c.Get()
	require.NoError(t, err)
	assert.Nil(t, ti)

	require.NoError(t, c.Set("  shpat_abc123  ", "demo.myshopify.com"))
	info, err := os.Stat(filepath.Join(c.Dir, credFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	ti, err = c.Get()
	require.NoError(t, err)
	require.NotNil(t, ti)
	assert.Equal(t, "shpat_abc123", ti.Token)
	assert.Equal(t, SourceFile, ti.Source)
	assert.Equal(t, "demo.myshopify.com", ti.ShopDomain)

	require.NoError(t, c.Delete())
	require.NoError(t, c.Delete())
	ti, err = c.Get()
	require.NoError(t, err)
	assert.Nil(t, ti)
}

func TestCredentials_EnvWins(t *testing.T) {
	c := Credentials{Dir: t.TempDir()}
	t.Setenv(EnvToken, "")
	require.NoError(t, c.Set("from-file", ""))
	t.Setenv(EnvToken, "from-env")

	ti, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, "from-env", ti.Token)
	assert.Equal(t, SourceEnv, ti.Source)
}

func TestCredentials_EmptyToken(t *testing.T) {
	t.Parallel()
	c := Credentials{Dir: t.TempDir()}
	assert.Error(t, c.Set("   ", ""))
}

func TestMask(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "shpat_...cdef", Mask("shpat_0123456789abcdef"))
	assert.Equal(t, "****", Mask("abcd"))
}
