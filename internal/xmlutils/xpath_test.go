package xmlutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:body>` +
	`<w:p><w:r><w:t>实习报告</w:t></w:r></w:p>` +
	`<w:tbl><w:tr><w:tc>` +
	`<w:p><w:r><w:t>综合成绩评定</w:t></w:r><w:r><w:t xml:space="preserve">：  85  </w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>指导教师手写签名：</w:t></w:r><w:r><w:drawing/></w:r></w:p>` +
	`</w:tc></w:tr></w:tbl>` +
	`</w:body></w:document>`

func TestParse(t *testing.T) {
	t.Run("parses valid XML", func(t *testing.T) {
		root, err := Parse(strings.NewReader(wordXML))
		require.NoError(t, err)
		assert.NotNil(t, root)
	})

	t.Run("returns error for invalid XML", func(t *testing.T) {
		_, err := Parse(strings.NewReader("<invalid><unclosed>"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse XML")
	})
}

func TestExtractFromXML(t *testing.T) {
	root, err := Parse(strings.NewReader(wordXML))
	require.NoError(t, err)

	t.Run("extracts body paragraphs", func(t *testing.T) {
		values, err := ExtractFromXML(root, XPathBodyParagraph)
		require.NoError(t, err)
		assert.Equal(t, []string{"实习报告"}, values)
	})

	t.Run("returns empty for no matches", func(t *testing.T) {
		values, err := ExtractFromXML(root, "//nonexistent")
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("returns error for invalid xpath", func(t *testing.T) {
		_, err := ExtractFromXML(root, "[invalid xpath")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to compile XPath")
	})
}

func TestNodesAndJoinText(t *testing.T) {
	root, err := Parse(strings.NewReader(wordXML))
	require.NoError(t, err)

	tables, err := Nodes(root, XPathTable)
	require.NoError(t, err)
	require.Len(t, tables, 1)

	paragraphs, err := Nodes(tables[0], XPathCellParagraph)
	require.NoError(t, err)
	require.Len(t, paragraphs, 2)

	text, err := JoinText(paragraphs[0], XPathText)
	require.NoError(t, err)
	assert.Equal(t, "综合成绩评定：  85  ", text)

	drawings, err := Nodes(root, XPathDrawing)
	require.NoError(t, err)
	assert.Len(t, drawings, 1)

	_, err = Nodes(root, "[bad")
	assert.Error(t, err)
}
