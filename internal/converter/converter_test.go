package converter

import (
	"errors"
	"testing"
	"time"

	"github.com/nconklindev/sheetview/internal/types"

	"github.com/xuri/excelize/v2"
)

func TestInferValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected types.Value
	}{
		{"Empty", "", types.Null()},
		{"Whitespace stays string", "  ", types.String("  ")},
		{"Integer", "42", types.Number(42)},
		{"Decimal", "1.5", types.Number(1.5)},
		{"Signed exponent", "-2e3", types.Number(-2000)},
		{"Leading dot", ".5", types.Number(0.5)},
		{"Padded number", " 7 ", types.Number(7)},
		{"NaN is text", "NaN", types.String("NaN")},
		{"Hex is text", "0x10", types.String("0x10")},
		{"Overflow is text", "1e999", types.String("1e999")},
		{"True", "TRUE", types.Bool(true)},
		{"False", "false", types.Bool(false)},
		{"ISO date", "2024-03-05", types.Date(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))},
		{"Date time", "2024-03-05 10:30", types.Date(time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC))},
		{"US date", "03/05/2024", types.Date(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))},
		{"Text", "Alice", types.String("Alice")},
		{"Mixed", "1.5h", types.String("1.5h")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferValue(tt.input)
			if !got.Equal(tt.expected) {
				t.Errorf("InferValue(%q) = %v (%s); want %v (%s)", tt.input, got, got.Kind(), tt.expected, tt.expected.Kind())
			}
		})
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		mime     string
		expected bool
	}{
		{"CSV extension", "data.csv", "", true},
		{"Upper case extension", "DATA.XLSX", "", true},
		{"Legacy extension", "old.xls", "", true},
		{"MIME only", "export", "text/csv", true},
		{"Excel MIME", "blob", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true},
		{"Text file", "notes.txt", "text/plain", false},
		{"No extension", "README", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSupported(tt.file, tt.mime); got != tt.expected {
				t.Errorf("IsSupported(%q, %q) = %v; want %v", tt.file, tt.mime, got, tt.expected)
			}
		})
	}
}

func TestDecodeCSV(t *testing.T) {
	input := "\xEF\xBB\xBFName,Hours,Active,Start\n" +
		"Alice,1.5,true,2024-01-02\n" +
		",,,\n" +
		"Bob,,FALSE\n"

	fd, err := Decode("hours.csv", []byte(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	expectedHeaders := []string{"Name", "Hours", "Active", "Start"}
	if len(fd.Headers) != len(expectedHeaders) {
		t.Fatalf("Expected %d headers, got %v", len(expectedHeaders), fd.Headers)
	}
	for i, h := range expectedHeaders {
		if fd.Headers[i] != h {
			t.Errorf("Header %d: expected %s, got %s", i, h, fd.Headers[i])
		}
	}

	if len(fd.Rows) != 2 {
		t.Fatalf("Expected 2 rows (blank row skipped), got %d", len(fd.Rows))
	}

	alice := fd.Rows[0]
	if !alice[1].Equal(types.Number(1.5)) {
		t.Errorf("Hours = %v; want 1.5", alice[1])
	}
	if !alice[2].Equal(types.Bool(true)) {
		t.Errorf("Active = %v; want true", alice[2])
	}
	if alice[3].Kind() != types.KindDate {
		t.Errorf("Start kind = %s; want date", alice[3].Kind())
	}

	bob := fd.Rows[1]
	if len(bob) != 4 {
		t.Fatalf("Expected short row padded to 4 cells, got %d", len(bob))
	}
	if !bob[1].IsNull() || !bob[3].IsNull() {
		t.Errorf("Expected missing cells to be null, got %v", bob)
	}
}

func TestDecodeCSVWindows1252(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []string
	}{
		{"Latin letters", []byte("Name,City\nJos\xe9,Z\xfcrich\n"), []string{"José", "Zürich"}},
		{"Euro sign", []byte("Item;Price\nCaf\xe9;\x803\n"), []string{"Café", "€3"}},
		{"Valid UTF-8 untouched", []byte("Name,City\nJosé,Zürich\n"), []string{"José", "Zürich"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd, err := Decode("export.csv", tt.input)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if len(fd.Rows) != 1 {
				t.Fatalf("Expected 1 row, got %d", len(fd.Rows))
			}
			for i, want := range tt.expected {
				if got := fd.Rows[0][i]; !got.Equal(types.String(want)) {
					t.Errorf("Cell %d = %q; want %q", i, got.Display(), want)
				}
			}
		})
	}
}

func TestDecodeCSVHeaders(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"Duplicates and blanks", "A,A,,\n1,2,3,4\n", []string{"A", "A_1", "__EMPTY", "__EMPTY_1"}},
		{"Wider data row", "A\n1,2\n", []string{"A", "__EMPTY"}},
		{"Semicolon delimiter", "A;B;C\n1;2;3\n", []string{"A", "B", "C"}},
		{"Tab delimiter", "A\tB\n1\t2\n", []string{"A", "B"}},
		{"Empty file", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd, err := Decode("test.csv", []byte(tt.input))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if len(fd.Headers) != len(tt.expected) {
				t.Fatalf("Headers = %v; want %v", fd.Headers, tt.expected)
			}
			for i := range tt.expected {
				if fd.Headers[i] != tt.expected[i] {
					t.Errorf("Headers = %v; want %v", fd.Headers, tt.expected)
				}
			}
		})
	}
}

func TestDecodeFailures(t *testing.T) {
	tests := []struct {
		name   string
		input  []byte
		target error
	}{
		{"Unterminated quote", []byte("A,B\n\"open,1\n"), ErrDecode},
		{"Binary garbage", []byte{0x01, 0x00, 0xFF, 0x10}, ErrBinaryContent},
		{"Legacy workbook", append(append([]byte(nil), oleMagic...), 0x00, 0x01), ErrLegacyWorkbook},
		{"Corrupt zip", []byte("PK\x03\x04not really a zip"), ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode("broken.xlsx", tt.input)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("error %v does not match %v", err, tt.target)
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) || decodeErr.Name != "broken.xlsx" {
				t.Errorf("expected DecodeError naming the file, got %v", err)
			}
		})
	}
}

func TestDecodeXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	cells := map[string]any{
		"A1": "Name", "B1": "Score", "C1": "Active", "D1": "Joined",
		"A2": "Alice", "B2": 9.5, "C2": true, "D2": 45292,
		"A3": "Bob", "B3": 7, "C3": false,
	}
	for cell, v := range cells {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatal(err)
		}
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellStyle(sheet, "D2", "D2", dateStyle); err != nil {
		t.Fatal(err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	fd, err := Decode("people.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(fd.Headers) != 4 || fd.Headers[3] != "Joined" {
		t.Fatalf("Headers = %v", fd.Headers)
	}
	if len(fd.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(fd.Rows))
	}

	alice := fd.Rows[0]
	if !alice[0].Equal(types.String("Alice")) {
		t.Errorf("Name = %v", alice[0])
	}
	if !alice[1].Equal(types.Number(9.5)) {
		t.Errorf("Score = %v; want 9.5", alice[1])
	}
	if !alice[2].Equal(types.Bool(true)) {
		t.Errorf("Active = %v; want true", alice[2])
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !alice[3].Equal(types.Date(want)) {
		t.Errorf("Joined = %v (%s); want %v", alice[3], alice[3].Kind(), want)
	}

	bob := fd.Rows[1]
	if !bob[2].Equal(types.Bool(false)) {
		t.Errorf("Active = %v; want false", bob[2])
	}
	if !bob[3].IsNull() {
		t.Errorf("Joined = %v; want null", bob[3])
	}
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code     string
		expected bool
	}{
		{"yyyy-mm-dd", true},
		{"[$-409]mmm d, yyyy", true},
		{"h:mm:ss", true},
		{"0.00", false},
		{"#,##0", false},
		{`0.0 "days"`, false},
		{"General", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := isDateFormatCode(tt.code); got != tt.expected {
				t.Errorf("isDateFormatCode(%q) = %v; want %v", tt.code, got, tt.expected)
			}
		})
	}
}
