// Package bedmod streams modification-calling BED tables.
package bedmod

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultChunkSize is the number of rows read per chunk.
const DefaultChunkSize = 500_000

// Column indices in the 18-column modkit BED layout. Only chrom, start,
// end, type, total ("all") and modified ("mod") counts are consumed.
const (
	colChrom = 0
	colStart = 1
	colEnd   = 2
	colType  = 3
	colTotal = 9
	colMod   = 11
)

// Record is one observed modification site.
type Record struct {
	Chrom string
	Start int64
	End   int64
	Mod   float64
	Total float64
}

// ChunkReader streams a modification table in fixed-size chunks of rows,
// keeping only methylation records (type "m"). Malformed numeric fields are
// coerced to zero rather than rejected.
type ChunkReader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	chunkSize  int
	rows       int64
	done       bool
}

// NewChunkReader creates a chunked reader over the given file. A chunkSize
// of 0 or less selects DefaultChunkSize. Supports gzipped input.
func NewChunkReader(path string, chunkSize int) (*ChunkReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bed file: %w", err)
	}

	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	r := &ChunkReader{file: file, chunkSize: chunkSize}

	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read bed header: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek bed file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = bufio.NewReader(file)
	}

	return r, nil
}

// NewChunkReaderFromReader creates a chunked reader over an io.Reader.
func NewChunkReaderFromReader(rd io.Reader, chunkSize int) *ChunkReader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkReader{reader: bufio.NewReader(rd), chunkSize: chunkSize}
}

// Next returns the next chunk of records, at most chunkSize rows.
// Returns nil, nil after the stream is exhausted.
func (r *ChunkReader) Next() ([]Record, error) {
	if r.done {
		return nil, nil
	}

	chunk := make([]Record, 0, r.chunkSize)
	for len(chunk) < r.chunkSize {
		line, err := r.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read bed line: %w", err)
		}
		atEOF := err == io.EOF

		line = strings.TrimRight(line, "\r\n")
		if line != "" && !strings.HasPrefix(line, "#") {
			r.rows++
			if rec, ok := parseRecord(line); ok {
				chunk = append(chunk, rec)
			}
		}

		if atEOF {
			r.done = true
			break
		}
	}

	if len(chunk) == 0 && r.done {
		return nil, nil
	}
	return chunk, nil
}

// parseRecord parses one row, returning ok=false for rows that are not
// methylation calls. Numeric fields degrade to zero when unparseable.
func parseRecord(line string) (Record, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) <= colType || fields[colType] != "m" {
		return Record{}, false
	}

	return Record{
		Chrom: fields[colChrom],
		Start: coerceInt(fields, colStart),
		End:   coerceInt(fields, colEnd),
		Mod:   coerceFloat(fields, colMod),
		Total: coerceFloat(fields, colTotal),
	}, true
}

func coerceInt(fields []string, i int) int64 {
	if i >= len(fields) {
		return 0
	}
	v, err := strconv.ParseInt(fields[i], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func coerceFloat(fields []string, i int) float64 {
	if i >= len(fields) {
		return 0
	}
	v, err := strconv.ParseFloat(fields[i], 64)
	if err != nil {
		return 0
	}
	return v
}

// Rows returns the number of data rows seen so far, including rows filtered
// out by the type check.
func (r *ChunkReader) Rows() int64 {
	return r.rows
}

// Close closes the reader and underlying file.
func (r *ChunkReader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Table is a fully resident modification dataset, used by single-gene
// queries. At most one Table is kept loaded at a time by the application.
type Table struct {
	Records []Record
}

// LoadTable reads an entire modification table into memory.
func LoadTable(path string) (*Table, error) {
	r, err := NewChunkReader(path, DefaultChunkSize)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	t := &Table{}
	for {
		chunk, err := r.Next()
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			break
		}
		t.Records = append(t.Records, chunk...)
	}
	return t, nil
}

// Len returns the number of retained methylation records.
func (t *Table) Len() int {
	return len(t.Records)
}
