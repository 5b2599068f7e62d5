// Package fill implements the fill command, the main batch run.
package fill

import (
	"context"
	"fmt"
	"io"
	"time"

	"fjacquet/gradefill/cmd/common"
	"fjacquet/gradefill/cmd/root"
	"fjacquet/gradefill/internal/batch"
	"fjacquet/gradefill/internal/container"
	"fjacquet/gradefill/internal/dateutils"

	"github.com/spf13/cobra"
)

// Flags are the options of the fill command.
type Flags struct {
	Grades    string
	Directory string
	Signature string
	Date      string
	Summary   string
	DryRun    bool
	Validate  bool
}

var flags Flags

// Cmd represents the fill command
var Cmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill every report in a directory with grades from a grade table",
	Long: `Extract grades from the grade table, match each student to the report whose
file name contains the student's name, and write the grade, a comment, the
signature image and the date into the report. .doc reports are converted to
.docx first.

Students without a report, reports without a student and reports that could
not be filled are listed at the end. The exit status is 1 when any report
failed.`,
	Example: `  gradefill fill -g 成绩表.pdf -d reports/ -s signature.png
  gradefill fill -g grades.xlsx -d reports/ -s sign.jpg --dry-run -o summary.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		return Run(cmd.Context(), c, flags, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&flags.Grades, "grades", "g", "", "Grade table (PDF, XLSX or CSV)")
	Cmd.Flags().StringVarP(&flags.Directory, "directory", "d", "", "Directory holding the reports")
	Cmd.Flags().StringVarP(&flags.Signature, "signature", "s", "", "Signature image (PNG, JPEG, GIF or BMP)")
	Cmd.Flags().StringVar(&flags.Date, "date", "", "Date written into the reports (default: today, e.g. 2024-06-01)")
	Cmd.Flags().StringVarP(&flags.Summary, "summary", "o", "", "Write a summary of the run to this file (JSON for .json, CSV otherwise)")
	Cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Check every report without converting or saving")
	Cmd.Flags().BoolVarP(&flags.Validate, "validate", "v", false, "Check report templates before filling")
	_ = Cmd.MarkFlagRequired("grades")
	_ = Cmd.MarkFlagRequired("directory")
	_ = Cmd.MarkFlagRequired("signature")
}

// Run executes a fill run and prints its summary to out.
func Run(ctx context.Context, c *container.Container, f Flags, out io.Writer) error {
	if err := common.RequireFile("grades", f.Grades); err != nil {
		return err
	}
	if err := common.RequireDirectory("directory", f.Directory); err != nil {
		return err
	}
	if err := common.RequireFile("signature", f.Signature); err != nil {
		return err
	}

	date, err := dateutils.FillDate(f.Date, time.Now)
	if err != nil {
		return fmt.Errorf("--date: %w", err)
	}

	summary, err := c.GetRunner().Run(ctx, batch.Options{
		GradesPath:    f.Grades,
		ReportsDir:    f.Directory,
		SignaturePath: f.Signature,
		Date:          date,
		DryRun:        f.DryRun,
		Validate:      f.Validate,
	})
	if err != nil {
		return err
	}

	reporter := c.GetReportGenerator()
	reporter.PrintSummary(out, summary)
	if f.Summary != "" {
		if err := reporter.WriteSummaryFile(f.Summary, summary); err != nil {
			return err
		}
	}

	if summary.HasFailures() {
		return common.ErrReportsFailed
	}
	return nil
}
