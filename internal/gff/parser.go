// Package gff provides GFF feature table parsing functionality.
package gff

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Feature represents a parsed GFF line. Type is lowercased so callers can
// compare feature types case-insensitively.
type Feature struct {
	Chrom      string
	Source     string
	Type       string
	Start      int64
	End        int64
	Score      string
	Strand     string
	Phase      string
	Attributes map[string]string
}

// Parser reads features from a GFF file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	skipped    int
}

// NewParser creates a new GFF parser for the given file.
// Supports both plain and gzipped (.gff.gz) files.
func NewParser(path string) (*Parser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gff file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic number (0x1f, 0x8b)
	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read gff header: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek gff file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader.
func NewParserFromReader(r io.Reader) *Parser {
	return &Parser{reader: bufio.NewReader(r)}
}

// Next reads the next feature from the file.
// Returns nil, nil when there are no more features.
// Malformed rows (wrong column count, non-numeric coordinates) are skipped,
// not returned as errors; SkippedLines reports how many were dropped.
func (p *Parser) Next() (*Feature, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read gff line: %w", err)
		}
		atEOF := err == io.EOF

		line = strings.TrimRight(line, "\r\n")
		if line != "" || !atEOF {
			p.lineNumber++
		}
		if line != "" && !strings.HasPrefix(line, "#") {
			feat, perr := p.parseLine(line)
			if perr != nil {
				p.skipped++
				if atEOF {
					return nil, nil
				}
				continue
			}
			return feat, nil
		}

		if atEOF {
			return nil, nil
		}
	}
}

// parseLine parses a single 9-column GFF data line.
func (p *Parser) parseLine(line string) (*Feature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 9 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected 9 columns, found %d", len(fields)),
		}
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid start: %s", fields[3]),
		}
	}

	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid end: %s", fields[4]),
		}
	}

	return &Feature{
		Chrom:      fields[0],
		Source:     fields[1],
		Type:       strings.ToLower(fields[2]),
		Start:      start,
		End:        end,
		Score:      fields[5],
		Strand:     fields[6],
		Phase:      fields[7],
		Attributes: ParseAttributes(fields[8]),
	}, nil
}

// SkippedLines returns the number of malformed rows dropped so far.
func (p *Parser) SkippedLines() int {
	return p.skipped
}

// LineNumber returns the current data line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseAttributes parses the GFF attribute column.
// Format: key=value;key=value;...
func ParseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)
	for _, part := range strings.Split(attrStr, ";") {
		idx := strings.Index(part, "=")
		if idx == -1 {
			continue
		}
		attrs[part[:idx]] = part[idx+1:]
	}
	return attrs
}

// GeneID derives a stable gene identifier from a gene feature's attributes,
// preferring ID, then gene_id, then Name, falling back to a synthetic
// "{chrom}_{start}_{end}" identifier.
func (f *Feature) GeneID() string {
	for _, key := range []string{"ID", "gene_id", "Name"} {
		if v := f.Attributes[key]; v != "" {
			return v
		}
	}
	return fmt.Sprintf("%s_%d_%d", f.Chrom, f.Start, f.End)
}

// ParseError represents an error during GFF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gff parse error at line %d: %s", e.Line, e.Message)
}
