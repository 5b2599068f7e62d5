package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/gradefill/internal/logging"
	"fjacquet/gradefill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary(t *testing.T) *models.Summary {
	t.Helper()
	zhang, err := models.NewGradeRecord("2021001", "张三", "85")
	require.NoError(t, err)
	sun, err := models.NewGradeRecord("2021005", "孙七", "66")
	require.NoError(t, err)

	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	return &models.Summary{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		Records:    []models.GradeRecord{zhang, sun},
		Outcomes: []models.ReportOutcome{
			{Report: "张三.docx", StudentID: "2021001", Student: "张三", Grade: "85", Comment: "好", Status: models.StatusFilled},
			{Report: "赵六.docx", StudentID: "2021004", Student: "赵六", Grade: "75", Status: models.StatusFailed, Reason: "missing grade"},
		},
		UnmatchedStudents:  []models.GradeRecord{sun},
		UnprocessedReports: []string{"说明.docx"},
		FailedReports:      []string{"赵六.docx"},
	}
}

func TestGenerateReport_CSV(t *testing.T) {
	g := NewReportGenerator(';', logging.NewMockLogger())

	data, err := g.GenerateReport(sampleSummary(t), "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "report;student_id;student;grade;comment;status;reason", lines[0])
	assert.Equal(t, "张三.docx;2021001;张三;85;好;filled;", lines[1])
	assert.Equal(t, "赵六.docx;2021004;赵六;75;;failed;missing grade", lines[2])
}

func TestGenerateReport_JSON(t *testing.T) {
	g := NewReportGenerator(0, logging.NewMockLogger())

	data, err := g.GenerateReport(sampleSummary(t), "json")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Len(t, decoded["outcomes"], 2)
	assert.Equal(t, []interface{}{"赵六.docx"}, decoded["failed_reports"])
}

func TestGenerateReport_UnsupportedFormat(t *testing.T) {
	g := NewReportGenerator(',', logging.NewMockLogger())
	_, err := g.GenerateReport(sampleSummary(t), "xml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}

func TestWriteSummaryFile(t *testing.T) {
	logger := logging.NewMockLogger()
	g := NewReportGenerator(',', logger)
	path := filepath.Join(t.TempDir(), "out", "summary.csv")

	require.NoError(t, g.WriteSummaryFile(path, sampleSummary(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "report,student_id,student,grade,comment,status,reason\n"))
	assert.True(t, logger.HasEntry("INFO", "Summary written"))
}

func TestWriteSummaryFile_JSON(t *testing.T) {
	g := NewReportGenerator(',', logging.NewMockLogger())
	path := filepath.Join(t.TempDir(), "summary.JSON")

	require.NoError(t, g.WriteSummaryFile(path, sampleSummary(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
}

func TestSummaryFormat(t *testing.T) {
	assert.Equal(t, "json", SummaryFormat("out/summary.json"))
	assert.Equal(t, "csv", SummaryFormat("out/summary.csv"))
	assert.Equal(t, "csv", SummaryFormat("summary"))
}

func TestWriteGrades(t *testing.T) {
	g := NewReportGenerator(',', logging.NewMockLogger())
	summary := sampleSummary(t)

	var buf bytes.Buffer
	require.NoError(t, g.WriteGrades(&buf, summary.Records))
	assert.Equal(t, "student_id,name,grade\n2021001,张三,85\n2021005,孙七,66\n", buf.String())
}

func TestPrintSummary(t *testing.T) {
	g := NewReportGenerator(',', logging.NewMockLogger())

	var buf bytes.Buffer
	g.PrintSummary(&buf, sampleSummary(t))
	out := buf.String()

	assert.Contains(t, out, "Run run-1: 2 student(s), 1 report(s) filled, 1 failed\n")
	assert.Contains(t, out, "Unmatched students:\n  2021005 孙七\n")
	assert.Contains(t, out, "Unprocessed reports:\n  说明.docx\n")
	assert.Contains(t, out, "Failed reports:\n  赵六.docx\n")
	assert.NotContains(t, out, "dry run")

	buf.Reset()
	g.PrintSummary(&buf, &models.Summary{RunID: "r", Outcomes: []models.ReportOutcome{{Status: models.StatusDryRun}}})
	assert.Equal(t, "Run r: 0 student(s), 0 report(s) filled, 0 failed, 1 checked (dry run)\n", buf.String())
}
