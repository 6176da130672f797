package files

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"stockpulse/internal/inventory"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrSheetNotFound is returned when no worksheet holds a usable grid
	ErrSheetNotFound = errors.New("no worksheet with inventory data")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadOptions tunes how a grid is read
type LoadOptions struct {
	// Sheet selects an xlsx worksheet by name; empty picks the first sheet
	// with at least the structural header rows.
	Sheet string
	// Delimiter forces the csv separator; zero sniffs it from the first line.
	Delimiter rune
}

// LoadGrid reads an inventory export from disk
func LoadGrid(path string, opts LoadOptions) ([][]string, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadGrid(f, format, opts)
}

// ReadGrid reads an inventory export of the given format. The structural
// header rows are kept as read; later rows whose cells are all blank are
// dropped.
func ReadGrid(r io.Reader, format Format, opts LoadOptions) ([][]string, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(r, opts.Sheet)
	case FormatCSV:
		rows, err = readCSV(r, opts.Delimiter)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return dropBlankRows(rows), nil
}

func readXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet != "" {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, ErrSheetNotFound)
		}
		return rows, nil
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if len(rows) >= inventory.HeaderRows {
			return rows, nil
		}
	}
	return nil, ErrSheetNotFound
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if delimiter == 0 {
		delimiter = sniffDelimiter(data)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}

// sniffDelimiter picks the most frequent of ',', ';' and tab on the first line
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t'} {
		if n := bytes.Count(line, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func dropBlankRows(rows [][]string) [][]string {
	if len(rows) <= inventory.HeaderRows {
		return rows
	}
	out := append(rows[:0:0], rows[:inventory.HeaderRows]...)
	for _, row := range rows[inventory.HeaderRows:] {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
