// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowrail/shadowrail/internal/config"
)

func TestDetectApplicationInfo(t *testing.T) {
	tests := []struct {
		name       string
		appContent string
		wantTitle  string
	}{
		{
			name: "simple module",
			appContent: `require_relative "boot"

module Blog
  class Application < Rails::Application
  end
end
`,
			wantTitle: "Blog API",
		},
		{
			name: "camel case module",
			appContent: `module BlogApi
  class Application < Rails::Application
  end
end
`,
			wantTitle: "Blog Api API",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configDir := filepath.Join(tmpDir, "config")
			require.NoError(t, os.MkdirAll(configDir, 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(configDir, "application.rb"), []byte(tt.appContent), 0o644))

			info := detectApplicationInfo(tmpDir)

			assert.Equal(t, tt.wantTitle, info.Title)
		})
	}
}

func TestDetectApplicationInfo_NoApplicationRb(t *testing.T) {
	tmpDir := t.TempDir()

	info := detectApplicationInfo(tmpDir)

	assert.Empty(t, info.Title)
}

func TestCamelToWords(t *testing.T) {
	assert.Equal(t, "Blog Api", camelToWords("BlogApi"))
	assert.Equal(t, "Blog", camelToWords("Blog"))
	assert.Equal(t, "", camelToWords(""))
}

func TestIsRailsRoot(t *testing.T) {
	tmpDir := t.TempDir()
	assert.False(t, isRailsRoot(tmpDir))

	configDir := filepath.Join(tmpDir, "config")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "routes.rb"), []byte("Rails.application.routes.draw do\nend\n"), 0o644))
	assert.True(t, isRailsRoot(tmpDir))
}

func TestBuildConfigYAML(t *testing.T) {
	cfg := config.Default()
	cfg.Output = "openapi.yaml"
	cfg.Format = "yaml"

	yaml := buildConfigYAML(cfg)

	assert.Contains(t, yaml, "# shadowrail configuration file")
	assert.Contains(t, yaml, "output: openapi.yaml")
	assert.Contains(t, yaml, "inheritanceDepth: 3")
}
