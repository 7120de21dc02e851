package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqlwall/internal/config"
)

const configHeader = `# sqlwall policy.
#
# Every key can be overridden with an SQLWALL_<KEY> environment variable.
# Some keys also have a --<key> flag (underscores become dashes). List values
# given that way are comma separated.
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default sqlwall.yaml",
		Long: `Write sqlwall.yaml holding the built-in policy, so that it can be edited.

The file lists every key with its default value.`,
		Example: `  # Initialize in current directory
  sqlwall init

  # Initialize in another directory
  sqlwall init deploy/

  # Overwrite an existing file
  sqlwall init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			r := NewCommandContext(cmd).Renderer

			path, err := writeDefaultConfig(dir, force)
			if err != nil {
				return err
			}

			r.StatusLine(path, "success", "")
			r.Println("")
			r.Success("sqlwall policy initialized!")
			r.Println("")
			r.Println("Next steps:")
			r.Println("  1. Review the policy in " + config.ConfigFileName)
			r.Println("  2. Run 'sqlwall checks' to see the enabled checks")
			r.Println("  3. Run 'sqlwall check \"<sql>\"' or 'sqlwall serve'")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func writeDefaultConfig(dir string, force bool) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists. Use --force to overwrite", path)
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config.Default()); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
