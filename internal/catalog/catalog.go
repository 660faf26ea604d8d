// Package catalog holds the set of loaded files and merges new decode results
// into it.
package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/nconklindev/sheetview/internal/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrUnsupportedFileType rejects a batch in which no file is CSV or Excel.
var ErrUnsupportedFileType = errors.New("no supported files found")

// Source is one file offered for loading.
type Source struct {
	Name     string
	Size     int64
	ModTime  time.Time
	MIMEType string
	Read     func() ([]byte, error)
}

// Info returns the identity fields of the source.
func (s Source) Info() types.FileInfo {
	return types.FileInfo{Name: s.Name, Size: s.Size, ModTime: s.ModTime}
}

// FromPath describes a file on disk. The content is read lazily.
func FromPath(path string) (Source, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Source{}, err
	}
	if st.IsDir() {
		return Source{}, fmt.Errorf("%s is a directory", path)
	}
	return Source{
		Name:     filepath.Base(path),
		Size:     st.Size(),
		ModTime:  st.ModTime(),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Read:     func() ([]byte, error) { return os.ReadFile(path) },
	}, nil
}

// SortField orders the file list.
type SortField int

const (
	SortByName SortField = iota
	SortBySize
	SortByRows
)

func (f SortField) String() string {
	switch f {
	case SortBySize:
		return "size"
	case SortByRows:
		return "rows"
	}
	return "name"
}

// Catalog is the ordered set of loaded datasets plus the current selection.
// It is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	datasets []*types.Dataset
	byID     map[types.FileID]*types.Dataset
	selected types.FileID

	log logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Catalog {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Catalog{
		byID: make(map[types.FileID]*types.Dataset),
		log:  log,
	}
}

// Merge adds datasets whose identity is not loaded yet and returns the ones
// that were added. Merging a known identity is a no-op. When nothing is
// selected, the first added dataset becomes the selection.
func (c *Catalog) Merge(datasets ...*types.Dataset) []*types.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()

	var added []*types.Dataset
	for _, ds := range datasets {
		if ds == nil {
			continue
		}
		if _, dup := c.byID[ds.ID]; dup {
			c.log.WithField("file", ds.Name).Debug("file already loaded")
			continue
		}
		c.byID[ds.ID] = ds
		c.datasets = append(c.datasets, ds)
		added = append(added, ds)
		c.log.WithFields(logrus.Fields{
			"file":    ds.Name,
			"rows":    ds.RowCount(),
			"columns": len(ds.Columns),
		}).Info("file loaded")
	}

	if c.selected == "" && len(added) > 0 {
		c.selected = added[0].ID
	}
	return added
}

// Remove drops the given files and reports how many were removed. If the
// selected file is removed, the first remaining file is selected.
func (c *Catalog) Remove(ids ...types.FileID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	drop := make(map[types.FileID]bool, len(ids))
	for _, id := range ids {
		if _, ok := c.byID[id]; ok {
			drop[id] = true
			delete(c.byID, id)
		}
	}
	if len(drop) == 0 {
		return 0
	}
	c.datasets = slices.DeleteFunc(c.datasets, func(ds *types.Dataset) bool { return drop[ds.ID] })

	if drop[c.selected] {
		c.selected = ""
		if len(c.datasets) > 0 {
			c.selected = c.datasets[0].ID
		}
	}
	c.log.WithField("count", len(drop)).Info("files removed")
	return len(drop)
}

// Select makes id the current file. Unknown ids are ignored.
func (c *Catalog) Select(id types.FileID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[id]; !ok {
		return false
	}
	c.selected = id
	return true
}

// Selected returns the current file, or nil when nothing is loaded.
func (c *Catalog) Selected() *types.Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[c.selected]
}

func (c *Catalog) Get(id types.FileID) (*types.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.byID[id]
	return ds, ok
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.datasets)
}

// Datasets returns the loaded files in load order.
func (c *Catalog) Datasets() []*types.Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.datasets)
}

// List returns the loaded files sorted by field. Names use locale-aware
// ordering; ties keep load order.
func (c *Catalog) List(field SortField, descending bool) []*types.Dataset {
	list := c.Datasets()
	coll := collate.New(language.Und, collate.IgnoreCase)

	compare := func(a, b *types.Dataset) int {
		switch field {
		case SortBySize:
			return cmp.Compare(a.Size, b.Size)
		case SortByRows:
			return cmp.Compare(a.RowCount(), b.RowCount())
		}
		return coll.CompareString(a.Name, b.Name)
	}
	slices.SortStableFunc(list, func(a, b *types.Dataset) int {
		if descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return list
}
