package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatChinese(t *testing.T) {
	assert.Equal(t, "2024年06月01日", FormatChinese(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2023年12月25日", FormatChinese(time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC)))
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-06-01", "2024年06月01日", "2024/06/01", "2024.06.01", "20240601", "2024年6月1日", " 2024-06-01 "} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2024-06-01", got.Format(DateLayoutISO), in)
	}

	_, err := ParseDate("June 1st")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestFillDate(t *testing.T) {
	fixed := time.Date(2024, 7, 8, 12, 0, 0, 0, time.Local)
	clock := func() time.Time { return fixed }

	got, err := FillDate("", clock)
	require.NoError(t, err)
	assert.Equal(t, fixed, got)

	got, err = FillDate("2024-01-15", clock)
	require.NoError(t, err)
	assert.Equal(t, "2024年01月15日", FormatChinese(got))

	_, err = FillDate("nonsense", clock)
	assert.Error(t, err)
}
