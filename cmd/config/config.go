// Package configcmd implements the config command.
package configcmd

import (
	"fmt"
	"io"

	"fjacquet/gradefill/cmd/root"
	"fjacquet/gradefill/internal/config"

	"github.com/spf13/cobra"
)

// Cmd represents the config command
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		return Run(c.GetConfig(), cmd.OutOrStdout())
	},
}

// Run writes cfg to out. The Gemini API key is never printed.
func Run(cfg *config.Config, out io.Writer) error {
	data, err := cfg.ToYAML()
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}
