package gradetable

import (
	"testing"

	"fjacquet/gradefill/internal/logging"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrades(t *testing.T) {
	tables := []Table{
		{
			{"2023-2024学年 生产实习成绩单"},
			{"序号", "学号", "姓名", "实习日志", "实习报告", "总评"},
			{"1", "2021001", " 张三 ", "80", "85", "83"},
			{"2", "2021002", "李  四", "70", "92.5", "88"},
			{"3", "2021003", "王五", "60", "缺考", "0"},
			{"4", "2021004", "赵六"},
		},
		{
			// Second page: header is not repeated, mapping carries over.
			{"5", "2021005", "孙七", "90", "\n78 ", "80"},
		},
	}

	logger := logging.NewMockLogger()
	result := ParseGrades(tables, DefaultKeywords, logger)

	require.True(t, result.HeaderFound())
	assert.Equal(t, map[string]int{colStudentID: 1, colName: 2, colGrade: 4}, result.Columns)

	require.Len(t, result.Records, 3)
	assert.Equal(t, "2021001", result.Records[0].StudentID)
	assert.Equal(t, "张三", result.Records[0].Name)
	assert.Equal(t, "85", result.Records[0].Grade)
	assert.Equal(t, "李四", result.Records[1].Name)
	assert.Equal(t, "92.5", result.Records[1].Grade)
	assert.Equal(t, "孙七", result.Records[2].Name)
	assert.Equal(t, "78", result.Records[2].Grade)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, 4, result.Issues[0].Row)
	assert.True(t, logger.HasEntry("WARN", "Invalid grade format"))
}

func TestParseGrades_FullWidthDigits(t *testing.T) {
	tables := []Table{{
		{"学号", "姓名", "实习报告"},
		{"２０２１００１", "张三", "８５"},
		{"2021002", "李四", "９２．５分"},
	}}

	result := ParseGrades(tables, DefaultKeywords, logging.NewMockLogger())

	require.Len(t, result.Records, 2)
	assert.Equal(t, "2021001", result.Records[0].StudentID)
	assert.Equal(t, "85", result.Records[0].Grade)
	assert.True(t, result.Records[0].Score.Equal(decimal.NewFromInt(85)))
	assert.Equal(t, "92.5分", result.Records[1].Grade)
	assert.True(t, result.Records[1].Score.Equal(decimal.RequireFromString("92.5")))
	assert.Empty(t, result.Issues)
}

func TestParseGrades_HeaderKeywordPriority(t *testing.T) {
	// A cell mentioning both 学号 and 姓名 is the id column; the later 姓名
	// cell defines the name column.
	tables := []Table{{
		{"学号/姓名", "姓 名", "实习报告成绩"},
		{"2021001", "张三", "88"},
	}}

	result := ParseGrades(tables, DefaultKeywords, logging.NewMockLogger())

	assert.Equal(t, map[string]int{colStudentID: 0, colName: 1, colGrade: 2}, result.Columns)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "张三", result.Records[0].Name)
}

func TestParseGrades_PartialHeaderSkipsRows(t *testing.T) {
	tables := []Table{{
		{"姓名", "备注"},
		{"张三", "85"},
	}}

	result := ParseGrades(tables, DefaultKeywords, logging.NewMockLogger())

	assert.True(t, result.HeaderFound())
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Issues)
}

func TestParseGrades_NoHeader(t *testing.T) {
	logger := logging.NewMockLogger()
	result := ParseGrades([]Table{{{"a", "b"}, {"1", "2"}}}, DefaultKeywords, logger)

	assert.False(t, result.HeaderFound())
	assert.Empty(t, result.Records)
	assert.True(t, logger.HasEntry("WARN", "No header row found in grade table"))
}

func TestParseGrades_CustomKeywords(t *testing.T) {
	kw := Keywords{StudentID: "Matricule", Name: "Nom", Grade: "Note"}
	tables := []Table{{
		{"Matricule", "Nom", "Note"},
		{"S1", "Dupont", "14"},
	}}

	result := ParseGrades(tables, kw, logging.NewMockLogger())

	require.Len(t, result.Records, 1)
	assert.Equal(t, "Dupont", result.Records[0].Name)
	assert.Equal(t, "14", result.Records[0].Score.String())
}
