package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat marks a file extension the importer cannot parse.
// Callers surface it to the user; it is a file-level failure.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Parser turns an uploaded file into a sequence of row mappings. Parsing is
// all-or-nothing: any failure aborts before a single record is written.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// ParseFile dispatches on the file extension. Supported: .csv, .txt
// (comma- or tab-delimited, auto-detected) and .xlsx. The original filename
// is used only for dispatch, never for path construction.
func (p *Parser) ParseFile(path string) ([]Row, error) {
	ext := strings.ToLower(filepath.Ext(path))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	switch ext {
	case ".csv":
		return p.parseDelimited(f, ',')
	case ".txt":
		return p.parseDelimitedAutoDetect(f)
	case ".xlsx":
		return p.parseWorkbook(f)
	default:
		return nil, fmt.Errorf("%s: %w (use CSV, Excel or tab-delimited text)", filepath.Base(path), ErrUnsupportedFormat)
	}
}

func (p *Parser) parseDelimitedAutoDetect(f io.ReadSeeker) ([]Row, error) {
	// Delimiter is detected from the first line: a tab anywhere means TSV.
	br := bufio.NewReader(f)
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	comma := ','
	if strings.Contains(first, "\t") {
		comma = '\t'
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return p.parseDelimited(f, comma)
}

func (p *Parser) parseDelimited(r io.Reader, comma rune) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // allow ragged rows
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil // empty file, zero rows
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	line := 1
	for {
		rec, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if row, ok := buildRow(header, rec); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (p *Parser) parseWorkbook(r io.Reader) ([]Row, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	records, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for _, rec := range records[1:] {
		if row, ok := buildRow(header, rec); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// buildRow zips a record against the header. Rows shorter than the header get
// Missing cells for the tail. Fully empty rows are dropped.
func buildRow(header, rec []string) (Row, bool) {
	row := make(Row, len(header))
	any := false
	for i, col := range header {
		if col == "" {
			continue
		}
		var cell Cell
		if i < len(rec) {
			cell = newCell(rec[i])
		}
		if cell.Present {
			any = true
		}
		row[col] = cell
	}
	return row, any
}
