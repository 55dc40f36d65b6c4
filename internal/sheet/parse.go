package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"CancelDash/internal/config"
	"CancelDash/internal/pipeline"
)

// maxXLSRows bounds ReadAllCells on legacy workbooks.
const maxXLSRows = 1000000

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrEmptySheet        = errors.New("worksheet is empty")
)

// Allowed reports whether filename has an extension Parse understands.
func Allowed(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range config.AllowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Parse reads the first worksheet of an uploaded report. The format is chosen
// from the file extension.
func Parse(filename string, r io.Reader) (pipeline.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return pipeline.RawTable{}, fmt.Errorf("failed to read upload: %w", err)
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = parseExcel(data)
	case ".xls":
		rows, err = parseXLS(data)
	case ".csv":
		rows, err = parseCSV(data)
	default:
		return pipeline.RawTable{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return pipeline.RawTable{}, err
	}
	if len(rows) == 0 {
		return pipeline.RawTable{}, ErrEmptySheet
	}
	return pipeline.RawTable{Header: rows[0], Records: rows[1:]}, nil
}

// parseExcel returns raw cell values so amounts and dates are not run through
// the workbook's display formats.
func parseExcel(data []byte) ([][]string, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer xl.Close()

	sheetName := xl.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("no worksheet found")
	}
	rows, err := xl.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func parseXLS(data []byte) ([][]string, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}
	if book.NumSheets() == 0 {
		return nil, errors.New("no worksheet found")
	}
	return book.ReadAllCells(maxXLSRows), nil
}

// parseCSV accepts UTF-8 (with or without BOM), UTF-16 with BOM, and falls
// back to Windows-1252 for anything that is not valid UTF-8. The delimiter is
// whichever of ';' and ',' appears more often in the header line.
func parseCSV(data []byte) ([][]string, error) {
	var decoder transform.Transformer
	if utf8.Valid(data) || bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		decoder = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	} else {
		decoder = charmap.Windows1252.NewDecoder()
	}
	decoded, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode csv: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.Comma = detectDelimiter(decoded)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}

func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
