package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqlwall/internal/config"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name     string
		existing string // content of a pre-existing sqlwall.yaml
		args     []string
		wantErr  bool
	}{
		{
			name: "init empty directory",
		},
		{
			name:     "init existing config without force",
			existing: "existing",
			wantErr:  true,
		},
		{
			name:     "init existing config with force",
			existing: "existing",
			args:     []string{"--force"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "policy")
			path := filepath.Join(dir, config.ConfigFileName)
			if tt.existing != "" {
				require.NoError(t, os.MkdirAll(dir, 0o750))
				require.NoError(t, os.WriteFile(path, []byte(tt.existing), 0o600))
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(append([]string{dir}, tt.args...))

			err := cmd.Execute()
			if tt.wantErr {
				require.Error(t, err)
				content, _ := os.ReadFile(path)
				assert.Equal(t, tt.existing, string(content), "existing file must be kept")
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "sqlwall policy initialized!")

			// The written file holds the defaults and loads back unchanged.
			content, err := os.ReadFile(path)
			require.NoError(t, err)
			var written config.Config
			require.NoError(t, yaml.Unmarshal(content, &written))
			assert.Equal(t, config.Default().Policy(), written.Policy())

			loaded, err := config.Load(path, nil)
			require.NoError(t, err)
			assert.Equal(t, config.Default().Policy(), loaded.Policy())
			assert.Equal(t, path, loaded.Source)
		})
	}
}
