package bedmod

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// row builds one 18-column modkit BED line.
func row(chrom string, start, end int64, typ, total, mod string) string {
	cols := make([]string, 18)
	for i := range cols {
		cols[i] = "."
	}
	cols[colChrom] = chrom
	cols[colStart] = fmt.Sprintf("%d", start)
	cols[colEnd] = fmt.Sprintf("%d", end)
	cols[colType] = typ
	cols[colTotal] = total
	cols[colMod] = mod
	return strings.Join(cols, "\t")
}

func TestChunkReader_FiltersType(t *testing.T) {
	input := strings.Join([]string{
		row("chr1", 100, 101, "m", "20", "5"),
		row("chr1", 200, 201, "h", "30", "10"),
		row("chr1", 300, 301, "m", "10", "2"),
	}, "\n")

	r := NewChunkReaderFromReader(strings.NewReader(input), 0)
	chunk, err := r.Next()
	require.NoError(t, err)
	require.Len(t, chunk, 2, "non-m rows dropped")
	assert.Equal(t, int64(100), chunk[0].Start)
	assert.Equal(t, int64(300), chunk[1].Start)
	assert.Equal(t, int64(3), r.Rows(), "all data rows counted")
}

func TestChunkReader_LenientCoercion(t *testing.T) {
	input := strings.Join([]string{
		row("chr1", 100, 101, "m", "nan", "x"),
		"chr1\tbad\t201\tm", // short row, still type m
	}, "\n")

	r := NewChunkReaderFromReader(strings.NewReader(input), 0)
	chunk, err := r.Next()
	require.NoError(t, err)
	require.Len(t, chunk, 2)

	assert.Equal(t, float64(0), chunk[0].Total)
	assert.Equal(t, float64(0), chunk[0].Mod)

	assert.Equal(t, int64(0), chunk[1].Start, "non-numeric coordinate coerced to 0")
	assert.Equal(t, int64(201), chunk[1].End)
	assert.Equal(t, float64(0), chunk[1].Total, "missing column coerced to 0")
}

func TestChunkReader_Chunking(t *testing.T) {
	var lines []string
	for i := 0; i < 5; i++ {
		lines = append(lines, row("chr1", int64(i*10), int64(i*10+1), "m", "1", "1"))
	}
	r := NewChunkReaderFromReader(strings.NewReader(strings.Join(lines, "\n")), 2)

	var sizes []int
	for {
		chunk, err := r.Next()
		require.NoError(t, err)
		if chunk == nil {
			break
		}
		sizes = append(sizes, len(chunk))
	}
	assert.Equal(t, []int{2, 2, 1}, sizes)
}

func TestChunkReader_SkipsComments(t *testing.T) {
	input := "# header\n" + row("chr1", 1, 2, "m", "4", "2") + "\n"
	r := NewChunkReaderFromReader(strings.NewReader(input), 0)
	chunk, err := r.Next()
	require.NoError(t, err)
	assert.Len(t, chunk, 1)
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.bed")
	content := row("chr1", 100, 101, "m", "20", "5") + "\n" +
		row("chr1", 200, 201, "x", "20", "5") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, float64(5), table.Records[0].Mod)
	assert.Equal(t, float64(20), table.Records[0].Total)
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "absent.bed"))
	assert.Error(t, err)
}
