package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cpdh-retrieval/internal/cpdh"
)

// FileName returns the path of the data set file for numPoints inside dir,
// named "<dir> data set <numPoints>.txt" after the directory.
func FileName(dir string, numPoints int) string {
	name := filepath.Base(filepath.Clean(dir))
	return filepath.Join(dir, fmt.Sprintf("%s data set %d.txt", name, numPoints))
}

// Load reads a data set written by WriteTo.
//
// Two layouts are accepted. The paired layout alternates an ID line and a
// histogram line. The data-only layout has one histogram per line; its
// records get IDs "<group>-<n>" and all go into group, so a data set written
// back with WriteTo keeps its grouping. Blank lines are ignored.
//
// Every record must sum to numPoints; numPoints <= 0 takes the count from
// the first record. Any bad record fails the whole load.
func Load(r io.Reader, numPoints int, group string) (*Dataset, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			lines = append(lines, l)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data set: %w", err)
	}

	if len(lines) > 0 && numPoints <= 0 {
		// Peek at the first histogram to learn the point count.
		first := lines[0]
		if _, err := cpdh.ParseHistogram(first); err != nil && len(lines) > 1 {
			first = lines[1]
		}
		if h, err := cpdh.ParseHistogram(first); err == nil {
			numPoints = h.Sum()
		}
	}
	ds := New(numPoints)

	// A file whose first line is all integers is data-only, even when that
	// line is malformed.
	if len(lines) > 0 && numericLine(lines[0]) {
		for i, l := range lines {
			h, err := cpdh.ParseHistogram(l)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i+1, err)
			}
			d := cpdh.FromHistogram(group+"-"+strconv.Itoa(i+1), h)
			if err := ds.PutInGroup(group, d); err != nil {
				return nil, err
			}
		}
		return ds, nil
	}

	if len(lines)%2 != 0 {
		return nil, fmt.Errorf("%w: %q has no histogram line", cpdh.ErrCorruptRecord, lines[len(lines)-1])
	}
	for i := 0; i < len(lines); i += 2 {
		id := lines[i]
		if numericLine(id) {
			return nil, fmt.Errorf("%w: line %d is data, expected an ID", cpdh.ErrCorruptRecord, i+1)
		}
		h, err := cpdh.ParseHistogram(lines[i+1])
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", id, err)
		}
		if err := ds.Put(cpdh.FromHistogram(id, h)); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// numericLine reports whether every field of l is an integer.
func numericLine(l string) bool {
	fields := strings.Fields(l)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if _, err := strconv.Atoi(f); err != nil {
			return false
		}
	}
	return true
}

// LoadFile reads a data set file. Data-only records are grouped under the
// file name without extension.
func LoadFile(path string, numPoints int) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data set: %w", err)
	}
	defer f.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ds, err := Load(f, numPoints, stem)
	if err != nil {
		return nil, fmt.Errorf("data set %s is corrupted: %w", path, err)
	}
	return ds, nil
}

// WriteTo writes the data set in the paired layout, groups and members in
// sorted order.
func (ds *Dataset) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, group := range ds.Groups() {
		for _, d := range ds.Members(group) {
			c, err := fmt.Fprintf(bw, "%s\n%s\n", d.ID(), d.Histogram().Line())
			n += int64(c)
			if err != nil {
				return n, fmt.Errorf("failed to write data set: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("failed to write data set: %w", err)
	}
	return n, nil
}

// SaveFile writes the data set to path through a temporary file, so a
// failed save leaves any previous file intact.
func (ds *Dataset) SaveFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dataset-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := ds.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace data set: %w", err)
	}
	return nil
}

// LoadAll loads the data set file of every point count in counts from dir.
// Counts without a file are left out of the result.
func LoadAll(dir string, counts []int) (map[int]*Dataset, error) {
	sets := make(map[int]*Dataset, len(counts))
	for _, n := range counts {
		path := FileName(dir, n)
		ds, err := LoadFile(path, n)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Printf("No %d point data set in %s", n, dir)
				continue
			}
			return nil, err
		}
		sets[n] = ds
	}
	return sets, nil
}

// SaveAll writes every data set to its file in dir.
func SaveAll(dir string, sets map[int]*Dataset) error {
	for n, ds := range sets {
		if err := ds.SaveFile(FileName(dir, n)); err != nil {
			return fmt.Errorf("failed to save %d point data set: %w", n, err)
		}
	}
	return nil
}
