package config

import (
	"fmt"
	"slices"
)

// OutputFormats lists the valid values of the output setting.
var OutputFormats = []string{"auto", "text", "json", "markdown"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.Output) {
		return fmt.Errorf("invalid output %q: must be one of %v", c.Output, OutputFormats)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	for _, name := range append(slices.Clone(c.DenyTables), c.PermitTables...) {
		if !validTableName(name) {
			return fmt.Errorf("invalid table name %q", name)
		}
	}
	for _, entry := range c.UpdateCheckColumns {
		if _, _, ok := splitColumn(entry); !ok {
			return fmt.Errorf("invalid update check column %q: want table.column", entry)
		}
	}
	return nil
}
