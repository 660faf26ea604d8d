package converter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nconklindev/sheetview/internal/types"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	// DelimiterSniffLimit is how many bytes of the first line are inspected to pick a CSV delimiter.
	DelimiterSniffLimit = 4096

	emptyHeader = "__EMPTY"
)

var (
	// ErrDecode marks every failure to turn file bytes into a table.
	ErrDecode = errors.New("decode failed")

	// ErrLegacyWorkbook is returned for binary BIFF (.xls 97-2003) workbooks.
	ErrLegacyWorkbook = errors.New("legacy binary Excel workbooks are not supported")

	// ErrBinaryContent is returned when bytes that are not a workbook contain NUL bytes.
	ErrBinaryContent = errors.New("content is neither a workbook nor delimited text")
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

var supportedExtensions = map[string]bool{
	".csv":  true,
	".xls":  true,
	".xlsx": true,
}

var supportedMIMETypes = map[string]bool{
	"text/csv":                 true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// DecodeError reports which file failed to decode.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// DecodeFunc turns file bytes into a table. Decode is the production implementation.
type DecodeFunc func(name string, data []byte) (*types.FileData, error)

// IsSupported reports whether a file should be offered to the decoder,
// judged by extension or MIME type.
func IsSupported(name, mimeType string) bool {
	if supportedMIMETypes[strings.ToLower(strings.TrimSpace(mimeType))] {
		return true
	}
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Decode sniffs the content and decodes it as an XLSX workbook or delimited text.
// The first row becomes the header row.
func Decode(name string, data []byte) (*types.FileData, error) {
	var (
		fd  *types.FileData
		err error
	)

	switch {
	case bytes.HasPrefix(data, zipMagic):
		fd, err = readXLSXData(data)
	case bytes.HasPrefix(data, oleMagic):
		err = ErrLegacyWorkbook
	default:
		fd, err = readCSVData(data)
	}

	if err != nil {
		return nil, &DecodeError{Name: name, Err: err}
	}
	return fd, nil
}

func readCSVData(data []byte) (*types.FileData, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, ErrBinaryContent
	}
	if !utf8.Valid(data) {
		// Excel on Windows saves CSV in the ANSI codepage.
		decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder()))
		if err != nil {
			return nil, err
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	grid := make([][]types.Value, 0, len(records))
	for _, record := range records {
		row := make([]types.Value, len(record))
		for i, cell := range record {
			row[i] = InferValue(cell)
		}
		grid = append(grid, row)
	}

	return buildFileData(records, grid), nil
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab in the first line.
func sniffDelimiter(data []byte) rune {
	line := data
	if len(line) > DelimiterSniffLimit {
		line = line[:DelimiterSniffLimit]
	}
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func readXLSXData(data []byte) (*types.FileData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return &types.FileData{}, nil
	}

	formatted, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	sr := &sheetReader{f: f, sheet: sheetName, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		sr.date1904 = *props.Date1904
	}

	grid := make([][]types.Value, len(raw))
	for i, rawRow := range raw {
		row := make([]types.Value, len(rawRow))
		for j, rawCell := range rawRow {
			text := rawCell
			if i < len(formatted) && j < len(formatted[i]) {
				text = formatted[i][j]
			}
			row[j] = sr.cellValue(j+1, i+1, rawCell, text)
		}
		grid[i] = row
	}

	return buildFileData(formatted, grid), nil
}

type sheetReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func (sr *sheetReader) cellValue(col, row int, raw, text string) types.Value {
	if raw == "" && text == "" {
		return types.Null()
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return InferValue(text)
	}
	cellType, err := sr.f.GetCellType(sr.sheet, cell)
	if err != nil {
		return InferValue(text)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return types.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return types.Date(t)
		}
		return InferValue(text)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return InferValue(text)
		}
		if sr.isDateCell(cell) {
			if t, err := excelize.ExcelDateToTime(n, sr.date1904); err == nil {
				return types.Date(t)
			}
		}
		return types.Number(n)
	default:
		if text == "" {
			return types.Null()
		}
		return types.String(text)
	}
}

func (sr *sheetReader) isDateCell(cell string) bool {
	idx, err := sr.f.GetCellStyle(sr.sheet, cell)
	if err != nil || idx == 0 {
		return false
	}
	if isDate, ok := sr.dateStyles[idx]; ok {
		return isDate
	}

	isDate := false
	if style, err := sr.f.GetStyle(idx); err == nil && style != nil {
		isDate = isDateNumFmt(style.NumFmt)
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	sr.dateStyles[idx] = isDate
	return isDate
}

// isDateNumFmt reports whether a built-in number format id renders a date or time.
func isDateNumFmt(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

var formatNoise = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

// isDateFormatCode reports whether a custom number format code contains date or time tokens.
func isDateFormatCode(code string) bool {
	code = strings.ToLower(formatNoise.ReplaceAllString(code, ""))
	if code == "" || code == "general" {
		return false
	}
	if strings.ContainsAny(code, "yd") {
		return true
	}
	return strings.Contains(code, ":") && strings.ContainsAny(code, "hms")
}

// buildFileData takes the header from the first non-blank row and keeps the
// remaining non-blank rows. The column count is the widest row in the sheet.
func buildFileData(text [][]string, grid [][]types.Value) *types.FileData {
	start := -1
	for i, row := range grid {
		if !isBlank(row) {
			start = i
			break
		}
	}
	if start == -1 {
		return &types.FileData{}
	}

	width := 0
	for _, row := range grid[start:] {
		if len(row) > width {
			width = len(row)
		}
	}

	rawHeaders := make([]string, width)
	if start < len(text) {
		copy(rawHeaders, text[start])
	}
	headers := uniqueHeaders(rawHeaders)

	rows := make([]types.Row, 0, len(grid)-start-1)
	for _, cells := range grid[start+1:] {
		if isBlank(cells) {
			continue
		}
		row := make(types.Row, width)
		copy(row, cells)
		rows = append(rows, row)
	}

	return &types.FileData{Headers: headers, Rows: rows}
}

func isBlank(row []types.Value) bool {
	for _, v := range row {
		if !v.IsNull() {
			return false
		}
	}
	return true
}

// uniqueHeaders names empty headers __EMPTY and suffixes repeats with _1, _2, ...
func uniqueHeaders(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	counts := make(map[string]int)
	out := make([]string, len(raw))

	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = emptyHeader
		}
		name := h
		if seen[name] {
			n := counts[h]
			for {
				n++
				candidate := fmt.Sprintf("%s_%d", h, n)
				if !seen[candidate] {
					name = candidate
					break
				}
			}
			counts[h] = n
		}
		seen[name] = true
		out[i] = name
	}
	return out
}
