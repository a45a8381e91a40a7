package dataset

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"cpdh-retrieval/internal/cpdh"
	"cpdh-retrieval/pkg/geometry"
)

// Tracer extracts the ordered boundary points of the shape in an image file.
type Tracer interface {
	Trace(path string) ([]geometry.PointInt, error)
}

// FileError records a file that was skipped during construction.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Construct builds one data set per point count from image files. Each file
// is traced once and described at every count.
//
// A file that cannot be traced or described is logged, reported in the
// returned FileErrors and skipped; the others are still added. If ctx is
// cancelled the partial data sets are discarded and ctx.Err() is returned.
func Construct(ctx context.Context, tracer Tracer, files []string, counts []int, opts ...Option) (map[int]*Dataset, []FileError, error) {
	if len(counts) == 0 {
		return nil, nil, fmt.Errorf("construct: no point counts")
	}
	o := newOptions(opts)

	sets := make(map[int]*Dataset, len(counts))
	for _, n := range counts {
		sets[n] = New(n)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		skipped []FileError
		done    int
	)
	sem := make(chan struct{}, o.workers)

	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(path string) {
			defer wg.Done()
			defer func() { <-sem }()

			err := addFile(ctx, tracer, path, counts, sets)

			mu.Lock()
			defer mu.Unlock()
			if err != nil && ctx.Err() == nil {
				log.Printf("Skipping %s: %v", path, err)
				skipped = append(skipped, FileError{Path: path, Err: err})
			}
			done++
			if o.progress != nil {
				o.progress(done, len(files))
			}
		}(path)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Path < skipped[j].Path })
	return sets, skipped, nil
}

// addFile traces path and adds its descriptors to every data set. Nothing is
// added unless all point counts succeed.
func addFile(ctx context.Context, tracer Tracer, path string, counts []int, sets map[int]*Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	contour, err := tracer.Trace(path)
	if err != nil {
		return err
	}

	id := filepath.Base(path)
	descriptors := make([]*cpdh.Descriptor, len(counts))
	for i, n := range counts {
		d, err := cpdh.Build(id, contour, n)
		if err != nil {
			return err
		}
		descriptors[i] = d
	}
	for i, n := range counts {
		if err := sets[n].Put(descriptors[i]); err != nil {
			return err
		}
	}
	return nil
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true,
}

// ListImages returns the image files directly inside dir, ordered by group
// (case-insensitive) and then by the number after the last '-'.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.SliceStable(names, func(i, j int) bool { return imageLess(names[i], names[j]) })

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

func imageLess(a, b string) bool {
	ga, gb := strings.ToLower(GroupOf(a)), strings.ToLower(GroupOf(b))
	if ga != gb {
		return ga < gb
	}
	pa, okA := position(a)
	pb, okB := position(b)
	switch {
	case okA && okB && pa != pb:
		return pa < pb
	case okA != okB:
		return okA
	}
	return a < b
}

// position parses the number between the last '-' and the extension.
func position(name string) (int, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	i := strings.LastIndexByte(stem, '-')
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(stem[i+1:])
	return n, err == nil
}
