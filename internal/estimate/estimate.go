// Package estimate counts what a scan would visit before running it, so
// callers can warn about very large trees.
package estimate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"dirscope/internal/ignore"
	"dirscope/pkg/logger"
)

// Options tunes the estimator
type Options struct {
	// Concurrency bounds the number of top-level directories walked at once.
	// Zero uses GOMAXPROCS.
	Concurrency int
}

// Report is the outcome of an estimate
type Report struct {
	Files    int64
	Folders  int64
	Bytes    int64
	Skipped  int64
	Errors   int64
	Duration time.Duration
}

// Exceeds reports whether the counted bytes are above limit. A limit of
// zero or less never triggers.
func (r Report) Exceeds(limit int64) bool {
	return limit > 0 && r.Bytes > limit
}

func (r Report) String() string {
	return fmt.Sprintf("%s files, %s folders, %s",
		humanize.Comma(r.Files), humanize.Comma(r.Folders), humanize.Bytes(uint64(r.Bytes)))
}

type counters struct {
	files, folders, bytes, skipped, errors atomic.Int64
}

// Run walks root in parallel, one goroutine per top-level directory, and
// counts entries that set does not exclude. Unreadable entries are counted
// as errors. Only a failure to list root itself or a cancelled context is
// returned as an error.
func Run(ctx context.Context, root string, set *ignore.Set, opts Options) (Report, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Report{}, fmt.Errorf("failed to get absolute path: %w", err)
	}
	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read root directory: %w", err)
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var c counters
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, entry := range entries {
		rel := entry.Name()
		abs := filepath.Join(absRoot, rel)

		if entry.Type()&fs.ModeSymlink != 0 {
			continue
		}
		if set.Excluded(rel, entry.IsDir()) {
			c.skipped.Add(1)
			continue
		}
		if !entry.IsDir() {
			countFile(entry, &c)
			continue
		}

		c.folders.Add(1)
		g.Go(func() error {
			return walk(gctx, absRoot, abs, set, &c)
		})
	}

	err = g.Wait()
	report := Report{
		Files:    c.files.Load(),
		Folders:  c.folders.Load(),
		Bytes:    c.bytes.Load(),
		Skipped:  c.skipped.Load(),
		Errors:   c.errors.Load(),
		Duration: time.Since(start),
	}
	if err != nil {
		return report, err
	}

	logger.Logger.WithFields(map[string]interface{}{
		"root":     absRoot,
		"files":    report.Files,
		"folders":  report.Folders,
		"bytes":    report.Bytes,
		"duration": report.Duration.String(),
	}).Debug("Estimate complete")
	return report, nil
}

func walk(ctx context.Context, absRoot, dir string, set *ignore.Set, c *counters) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			logger.Logger.WithError(err).WithField("path", p).Debug("Estimate skipped unreadable entry")
			c.errors.Add(1)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == dir {
			return nil
		}

		rel, relErr := filepath.Rel(absRoot, p)
		if relErr != nil {
			c.errors.Add(1)
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if set.Excluded(rel, d.IsDir()) {
			c.skipped.Add(1)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			c.folders.Add(1)
			return nil
		}
		countFile(d, c)
		return nil
	})
}

func countFile(d fs.DirEntry, c *counters) {
	if !d.Type().IsRegular() {
		return
	}
	info, err := d.Info()
	if err != nil {
		c.errors.Add(1)
		return
	}
	c.files.Add(1)
	c.bytes.Add(info.Size())
}
