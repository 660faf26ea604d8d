package catalog

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/nconklindev/sheetview/internal/converter"
	"github.com/nconklindev/sheetview/internal/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// LoadOptions controls a batch load.
type LoadOptions struct {
	// Strict discards the whole batch when any file fails to decode.
	Strict bool
	// Parallel caps concurrent decodes; zero means one per CPU.
	Parallel int
	// Progress receives the fraction of files finished. Sends never block.
	Progress chan<- float64
}

// BatchResult summarizes a batch load.
type BatchResult struct {
	// Added are the datasets merged into the catalog, in submission order.
	Added []*types.Dataset
	// Duplicates counts decoded files whose identity was already loaded.
	Duplicates int
	// Skipped names the files dropped for being neither CSV nor Excel.
	Skipped []string
	// Failed names the files that did not decode.
	Failed []string
}

// LoadBatch decodes sources concurrently and merges the results.
//
// Unsupported files are dropped; if none remain the batch fails with
// ErrUnsupportedFileType and the catalog is untouched. Decoded files are
// merged in submission order regardless of completion order, so loading the
// same batch twice, or the same file twice within a batch, adds it once.
// Decode failures are joined into the returned error. Without Strict the
// successfully decoded files are still merged; with Strict nothing is.
func (c *Catalog) LoadBatch(ctx context.Context, sources []Source, decode converter.DecodeFunc, opts LoadOptions) (BatchResult, error) {
	var (
		res   BatchResult
		valid []Source
	)
	for _, src := range sources {
		if converter.IsSupported(src.Name, src.MIMEType) {
			valid = append(valid, src)
			continue
		}
		res.Skipped = append(res.Skipped, src.Name)
	}
	if len(valid) == 0 {
		c.log.WithField("files", len(sources)).Warn("batch has no supported files")
		return res, ErrUnsupportedFileType
	}

	limit := opts.Parallel
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	datasets := make([]*types.Dataset, len(valid))
	errs := make([]error, len(valid))
	var finished atomic.Int64

	for i, src := range valid {
		g.Go(func() error {
			defer reportProgress(opts.Progress, &finished, len(valid))

			if err := gctx.Err(); err != nil {
				errs[i] = fmt.Errorf("%s: %w", src.Name, err)
				return nil
			}
			ds, err := load(src, decode)
			if err != nil {
				errs[i] = err
				if opts.Strict {
					return err
				}
				return nil
			}
			datasets[i] = ds
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			res.Failed = append(res.Failed, valid[i].Name)
			c.log.WithFields(logrus.Fields{"file": valid[i].Name, "error": err}).Error("decode failed")
		}
	}
	err := errors.Join(errs...)
	if err != nil && opts.Strict {
		return res, err
	}

	decoded := 0
	for _, ds := range datasets {
		if ds != nil {
			decoded++
		}
	}
	res.Added = c.Merge(datasets...)
	res.Duplicates = decoded - len(res.Added)
	return res, err
}

func load(src Source, decode converter.DecodeFunc) (*types.Dataset, error) {
	if src.Read == nil {
		return nil, &converter.DecodeError{Name: src.Name, Err: errors.New("no content")}
	}
	data, err := src.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name, err)
	}
	fd, err := decode(src.Name, data)
	if err != nil {
		return nil, err
	}
	if fd == nil {
		fd = &types.FileData{}
	}
	ds, err := types.NewDataset(src.Info(), fd.Headers, fd.Rows)
	if err != nil {
		return nil, &converter.DecodeError{Name: src.Name, Err: err}
	}
	return ds, nil
}

func reportProgress(ch chan<- float64, finished *atomic.Int64, total int) {
	n := finished.Add(1)
	if ch == nil {
		return
	}
	select {
	case ch <- float64(n) / float64(total):
	default:
	}
}
