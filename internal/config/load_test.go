package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipegen/internal/config"
	"github.com/vk/pipegen/internal/hclsource"
	"github.com/vk/pipegen/internal/yamlsource"
)

func TestSources_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte("pipeline \"A\" {\n  stage \"X\" {}\n}\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("pipeline: B\nstages: [Y]\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("docs"), 0o600))

	s := config.NewSources(hclsource.NewLoader(), yamlsource.NewLoader())
	assert.Equal(t, []string{".hcl", ".yaml", ".yml"}, s.Extensions())
	assert.True(t, s.Supports("x.YAML"))
	assert.False(t, s.Supports("x.json"))

	sources, err := s.Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "A", sources[0].Trees[0].Name)
	assert.Equal(t, "B", sources[1].Trees[0].Name)
}

func TestSources_Errors(t *testing.T) {
	dir := t.TempDir()
	s := config.NewSources(hclsource.NewLoader())

	sources, err := s.Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, sources)

	_, err = s.LoadFile(context.Background(), filepath.Join(dir, "x.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no loader for file")

	bad := filepath.Join(dir, "bad.hcl")
	require.NoError(t, os.WriteFile(bad, []byte("pipeline \"A\" {"), 0o600))
	_, err = s.Load(context.Background(), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load schema file")
}
