// Package convert implements the convert command.
package convert

import (
	"context"
	"fmt"
	"io"

	"fjacquet/gradefill/cmd/common"
	"fjacquet/gradefill/cmd/root"
	"fjacquet/gradefill/internal/docconv"
	"fjacquet/gradefill/internal/logging"

	"github.com/spf13/cobra"
)

var directory string

// Cmd represents the convert command
var Cmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert every .doc report in a directory to .docx",
	Long: `Convert the .doc files directly inside a directory to .docx with LibreOffice.
Each .doc is removed once its .docx exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		conv := c.GetConverter()
		if err := conv.Available(); err != nil {
			return err
		}
		return Run(cmd.Context(), conv, directory, c.GetLogger(), cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&directory, "directory", "d", "", "Directory holding the .doc reports")
	_ = Cmd.MarkFlagRequired("directory")
}

// Run converts the .doc files of dir and prints the outcome.
func Run(ctx context.Context, conv docconv.Converter, dir string, logger logging.Logger, out io.Writer) error {
	if err := common.RequireDirectory("directory", dir); err != nil {
		return err
	}

	converted, failed, err := docconv.ConvertDirectory(ctx, conv, dir, logger)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Converted %d file(s)\n", len(converted))
	if len(failed) > 0 {
		_, _ = fmt.Fprintf(out, "Failed: %d file(s)\n", len(failed))
		for name, err := range failed {
			_, _ = fmt.Fprintf(out, "  %s: %v\n", name, err)
		}
		return fmt.Errorf("%d file(s) could not be converted", len(failed))
	}
	return nil
}
