// Package inspect implements the inspect command.
package inspect

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fjacquet/gradefill/cmd/common"
	"fjacquet/gradefill/cmd/root"
	"fjacquet/gradefill/internal/container"
	"fjacquet/gradefill/internal/docx"
	"fjacquet/gradefill/internal/filler"

	"github.com/spf13/cobra"
)

var (
	reportPath string
	showText   bool
)

// Cmd represents the inspect command
var Cmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show which fill blanks a report contains",
	Long: `Read a .docx report without modifying it and list the grade marker,
signature label, hint, date blank and empty paragraphs found in its tables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		return Run(container.Markers(c.GetConfig()), reportPath, showText, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&reportPath, "report", "r", "", "Report to inspect (.docx)")
	Cmd.Flags().BoolVarP(&showText, "text", "t", false, "Also print every paragraph of the report")
	_ = Cmd.MarkFlagRequired("report")
}

// Run prints the template check of path to out, followed by the paragraph
// texts when withText is set.
func Run(markers filler.Markers, path string, withText bool, out io.Writer) error {
	if err := common.RequireFile("report", path); err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".doc") {
		return fmt.Errorf("%s is a .doc file, convert it first with 'gradefill convert'", path)
	}

	check, err := filler.CheckTemplate(path, markers)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Report: %s\n", check.Path)
	_, _ = fmt.Fprintf(out, "  grade marker:    %s\n", yesNo(check.GradeMarker))
	_, _ = fmt.Fprintf(out, "  signature label: %s\n", yesNo(check.SignatureLabel))
	_, _ = fmt.Fprintf(out, "  hint:            %s\n", yesNo(check.Hint))
	_, _ = fmt.Fprintf(out, "  date blank:      %s\n", yesNo(check.DateBlank))
	_, _ = fmt.Fprintf(out, "  blank paragraph: %s\n", yesNo(check.BlankParagraph))
	_, _ = fmt.Fprintf(out, "  drawings:        %d\n", check.Drawings)
	if check.Fillable() {
		_, _ = fmt.Fprintln(out, "Fillable: yes")
	} else {
		_, _ = fmt.Fprintf(out, "Fillable: no (missing %s)\n", strings.Join(check.Missing(), ", "))
	}

	if !withText {
		return nil
	}
	texts, err := docx.ReadTexts(path)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "Text:")
	for _, text := range texts {
		_, _ = fmt.Fprintf(out, "  %q\n", text)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
