// Package extract implements the extract command.
package extract

import (
	"context"
	"fmt"
	"io"

	"fjacquet/gradefill/cmd/common"
	"fjacquet/gradefill/cmd/root"
	"fjacquet/gradefill/internal/container"

	"github.com/spf13/cobra"
)

var (
	gradesPath string
	outputPath string
)

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the grades found in a grade table as CSV",
	Long: `Extract the student id, name and grade columns from a grade table and write
them as CSV, to check what fill would use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		return Run(cmd.Context(), c, gradesPath, outputPath, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&gradesPath, "grades", "g", "", "Grade table (PDF, XLSX or CSV)")
	Cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output CSV file (default: stdout)")
	_ = Cmd.MarkFlagRequired("grades")
}

// Run writes the grade records of gradesPath to output, or to stdout.
func Run(ctx context.Context, c *container.Container, gradesPath, output string, stdout io.Writer) error {
	if err := common.RequireFile("grades", gradesPath); err != nil {
		return err
	}

	records, err := c.GetRunner().Extract(ctx, gradesPath)
	if err != nil {
		return err
	}

	w, err := common.OpenOutput(output, stdout)
	if err != nil {
		return err
	}
	defer common.CloseOutput(w, c.GetLogger())

	return c.GetReportGenerator().WriteGrades(w, records)
}
