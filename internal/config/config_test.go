package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/issuetracker/internal/shopify"
)

// These tests touch process env and the working directory, so no t.Parallel.

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "2025-10", cfg.APIVersion)
	assert.Equal(t, "com_my_app_issues", cfg.Metafield.Namespace)
	assert.Equal(t, "issues_list", cfg.Metafield.Key)
	assert.Equal(t, BackendShopify, cfg.Store.Backend)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, shopify.DefaultAPIVersion, cfg.APIVersion)
	assert.Equal(t, shopify.DefaultNamespace, cfg.Metafield.Namespace)
	assert.Equal(t, shopify.DefaultKey, cfg.Metafield.Key)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ISSUETRACKER_STORE_BACKEND", "file")
	t.Setenv("ISSUETRACKER_METAFIELD_KEY", "other")
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "demo.myshopify.com")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, "other", cfg.Metafield.Key)
	assert.Equal(t, "demo.myshopify.com", cfg.ShopDomain)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	yaml := "shop_domain: file.myshopify.com\nstore:\n  backend: file\n  path: /tmp/x.json\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "issuetracker.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "file.myshopify.com", cfg.ShopDomain)
	assert.Equal(t, "/tmp/x.json", cfg.Store.Path)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	// register for cleanup; godotenv never overrides variables already set
	t.Setenv("ISSUETRACKER_ENDPOINT", "")
	require.NoError(t, os.Unsetenv("ISSUETRACKER_ENDPOINT"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ISSUETRACKER_ENDPOINT=http://localhost:8089/admin/api/2025-10/graphql.json\n"), 0o644))

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8089/admin/api/2025-10/graphql.json", cfg.Endpoint)
}

func TestValidate_Backend(t *testing.T) {
	cfg := &Config{}
	cfg.Store.Backend = "redis"
	cfg.Metafield.Namespace, cfg.Metafield.Key = "ns", "k"
	assert.ErrorContains(t, cfg.Validate(), "store.backend")
}
