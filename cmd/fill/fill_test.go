package fill

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/gradefill/cmd/common"
	"fjacquet/gradefill/internal/config"
	"fjacquet/gradefill/internal/container"
	"fjacquet/gradefill/internal/docx"
	"fjacquet/gradefill/internal/docx/docxtest"
	"fjacquet/gradefill/internal/filler"
	"fjacquet/gradefill/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	cfg, err := config.InitializeConfig("")
	require.NoError(t, err)
	c, err := container.NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)
	return c
}

type fixture struct {
	grades    string
	reports   string
	signature string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		grades:    filepath.Join(dir, "grades.csv"),
		reports:   filepath.Join(dir, "reports"),
		signature: filepath.Join(dir, "sign.png"),
	}
	require.NoError(t, os.WriteFile(f.grades, []byte("序号,学号,姓名,实习报告\n1,2021001,张三,88\n2,2021002,李四,72\n"), 0o600))
	require.NoError(t, os.Mkdir(f.reports, 0o750))
	docxtest.PNG(t, f.signature, 90, 30)

	m := filler.DefaultMarkers()
	docxtest.Write(t, filepath.Join(f.reports, "张三-实习报告.docx"), docxtest.Table(docxtest.Row(docxtest.Cell(
		docxtest.P(m.GradeMarker),
		docxtest.P(m.Hint),
		docxtest.P(m.SignatureLabel),
		docxtest.P(m.DateBlank),
	))))
	return f
}

func TestRun(t *testing.T) {
	c := newContainer(t)
	f := newFixture(t)
	summaryPath := filepath.Join(t.TempDir(), "summary.csv")

	var out bytes.Buffer
	err := Run(context.Background(), c, Flags{
		Grades:    f.grades,
		Directory: f.reports,
		Signature: f.signature,
		Date:      "2024-06-01",
		Summary:   summaryPath,
	}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "2 student(s), 1 report(s) filled, 0 failed")
	assert.Contains(t, out.String(), "Unmatched students:\n  2021002 李四")

	texts, err := docx.ReadTexts(filepath.Join(f.reports, "张三-实习报告.docx"))
	require.NoError(t, err)
	assert.Contains(t, texts, "综合成绩评定（百分制或五级制）：  88  ")
	assert.Contains(t, texts, "2024年06月01日")
	assert.Contains(t, texts, "实习报告内容优秀，体现了较强的专业素养和实践能力。")

	data, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "张三-实习报告.docx,2021001,张三,88")
}

func TestRun_DryRunLeavesReportUntouched(t *testing.T) {
	c := newContainer(t)
	f := newFixture(t)
	path := filepath.Join(f.reports, "张三-实习报告.docx")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	var out bytes.Buffer
	err = Run(context.Background(), c, Flags{
		Grades:    f.grades,
		Directory: f.reports,
		Signature: f.signature,
		DryRun:    true,
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "1 checked (dry run)")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRun_FailedReport(t *testing.T) {
	c := newContainer(t)
	f := newFixture(t)
	docxtest.Write(t, filepath.Join(f.reports, "李四.docx"), docxtest.P("没有空白"))

	var out bytes.Buffer
	err := Run(context.Background(), c, Flags{
		Grades:    f.grades,
		Directory: f.reports,
		Signature: f.signature,
	}, &out)
	require.ErrorIs(t, err, common.ErrReportsFailed)
	assert.Contains(t, out.String(), "Failed reports:\n  李四.docx")
}

func TestRun_JSONSummary(t *testing.T) {
	c := newContainer(t)
	f := newFixture(t)
	summaryPath := filepath.Join(t.TempDir(), "summary.json")

	err := Run(context.Background(), c, Flags{
		Grades:    f.grades,
		Directory: f.reports,
		Signature: f.signature,
		Summary:   summaryPath,
	}, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	var decoded struct {
		Outcomes []struct {
			Report string `json:"report"`
		} `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Outcomes, 1)
	assert.Equal(t, "张三-实习报告.docx", decoded.Outcomes[0].Report)
}

func TestRun_InvalidFlags(t *testing.T) {
	c := newContainer(t)
	f := newFixture(t)

	tests := []struct {
		name    string
		flags   Flags
		wantErr string
	}{
		{
			name:    "missing grades",
			flags:   Flags{Directory: f.reports, Signature: f.signature},
			wantErr: "--grades is required",
		},
		{
			name:    "missing directory",
			flags:   Flags{Grades: f.grades, Directory: filepath.Join(f.reports, "none"), Signature: f.signature},
			wantErr: "directory not found",
		},
		{
			name:    "missing signature",
			flags:   Flags{Grades: f.grades, Directory: f.reports, Signature: "nope.png"},
			wantErr: "--signature: file not found",
		},
		{
			name:    "bad date",
			flags:   Flags{Grades: f.grades, Directory: f.reports, Signature: f.signature, Date: "June 1st"},
			wantErr: "--date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Run(context.Background(), c, tt.flags, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCmdFlags(t *testing.T) {
	for _, name := range []string{"grades", "directory", "signature", "date", "summary", "dry-run", "validate"} {
		assert.NotNil(t, Cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "g", Cmd.Flags().Lookup("grades").Shorthand)
	assert.Equal(t, "o", Cmd.Flags().Lookup("summary").Shorthand)
}
