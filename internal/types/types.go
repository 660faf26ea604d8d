package types

import (
	"fmt"
	"time"
)

// FileID identifies a loaded file by name and modification time.
type FileID string

// NewFileID builds the identity used to de-duplicate loaded files.
func NewFileID(name string, modTime time.Time) FileID {
	return FileID(fmt.Sprintf("%s-%d", name, modTime.UnixMilli()))
}

// FileInfo describes the source file a Dataset was decoded from.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ID returns the file identity.
func (fi FileInfo) ID() FileID {
	return NewFileID(fi.Name, fi.ModTime)
}

// Row holds one cell per dataset column, indexed by column position.
type Row []Value

// FileData is what a decoder produces: the header row and the typed data rows.
type FileData struct {
	Headers []string
	Rows    []Row
}

// Dataset is the immutable decoded content of one file.
type Dataset struct {
	ID      FileID
	Name    string
	Size    int64
	ModTime time.Time
	Columns []string
	Rows    []Row

	index map[string]int
}

// NewDataset builds a Dataset. Rows shorter than the column list are padded
// with nulls and longer rows are truncated, so every row has one cell per column.
func NewDataset(info FileInfo, columns []string, rows []Row) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c)
		}
		index[c] = i
	}

	normalized := make([]Row, len(rows))
	for i, r := range rows {
		row := make(Row, len(columns))
		copy(row, r)
		normalized[i] = row
	}

	return &Dataset{
		ID:      info.ID(),
		Name:    info.Name,
		Size:    info.Size,
		ModTime: info.ModTime,
		Columns: append([]string(nil), columns...),
		Rows:    normalized,
		index:   index,
	}, nil
}

// ColumnIndex returns the position of a column, or false for unknown names.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// HasColumn reports whether name is one of the dataset's columns.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Cell returns the value of column name in row. Unknown columns read as null.
func (d *Dataset) Cell(row Row, name string) Value {
	i, ok := d.index[name]
	if !ok || i >= len(row) {
		return Null()
	}
	return row[i]
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}
