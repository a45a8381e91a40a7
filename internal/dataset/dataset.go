// Package dataset stores labelled CPDH descriptors by group and retrieves
// the group closest to a query shape.
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"cpdh-retrieval/internal/cpdh"
)

// ErrEmptyDataset is returned when matching against a dataset with nothing
// to compare to.
var ErrEmptyDataset = errors.New("empty dataset")

// Dataset maps group names to sets of descriptors that were all built with
// the same point count. It is safe for concurrent use. The zero value is an
// empty dataset for descriptors of 0 points; use New to pick the count.
type Dataset struct {
	mu        sync.RWMutex
	numPoints int
	groups    map[string]map[cpdh.Key]*cpdh.Descriptor
	count     int
}

// New creates an empty dataset for descriptors of numPoints points.
func New(numPoints int) *Dataset {
	return &Dataset{
		numPoints: numPoints,
		groups:    make(map[string]map[cpdh.Key]*cpdh.Descriptor),
	}
}

// GroupOf returns the group a descriptor ID belongs to: the part of the base
// name before the first '-' ("apple-12.gif" is in "apple"). A name without
// '-' is its own group, minus its extension.
func GroupOf(id string) string {
	base := filepath.Base(id)
	if i := strings.IndexByte(base, '-'); i >= 0 {
		return base[:i]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// NumPoints returns the point count every member was built with.
func (ds *Dataset) NumPoints() int {
	return ds.numPoints
}

// Put adds d to the group named by its ID. Adding a descriptor equal to an
// existing member (same ID and histogram) leaves the dataset unchanged.
func (ds *Dataset) Put(d *cpdh.Descriptor) error {
	if d == nil {
		return fmt.Errorf("put: nil descriptor")
	}
	return ds.PutInGroup(GroupOf(d.ID()), d)
}

// PutInGroup adds d to group regardless of its ID.
func (ds *Dataset) PutInGroup(group string, d *cpdh.Descriptor) error {
	if d == nil {
		return fmt.Errorf("put: nil descriptor")
	}
	if d.NumPoints() != ds.numPoints {
		return fmt.Errorf("put %s: %w: descriptor has %d points, dataset %d",
			d.ID(), cpdh.ErrPointCountMismatch, d.NumPoints(), ds.numPoints)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.groups == nil {
		ds.groups = make(map[string]map[cpdh.Key]*cpdh.Descriptor)
	}
	members, ok := ds.groups[group]
	if !ok {
		members = make(map[cpdh.Key]*cpdh.Descriptor)
		ds.groups[group] = members
	}
	key := d.Key()
	if _, dup := members[key]; !dup {
		members[key] = d
		ds.count++
	}
	return nil
}

// Contains reports whether any group holds a descriptor equal to d.
func (ds *Dataset) Contains(d *cpdh.Descriptor) bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	key := d.Key()
	for _, members := range ds.groups {
		if _, ok := members[key]; ok {
			return true
		}
	}
	return false
}

// ContainsInGroup reports whether group holds a descriptor equal to d.
func (ds *Dataset) ContainsInGroup(d *cpdh.Descriptor, group string) bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	_, ok := ds.groups[group][d.Key()]
	return ok
}

// IsEmpty reports whether the dataset has no descriptors.
func (ds *Dataset) IsEmpty() bool {
	return ds.NumDescriptors() == 0
}

// NumCategories returns the number of groups.
func (ds *Dataset) NumCategories() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return len(ds.groups)
}

// NumDescriptors returns the number of distinct descriptors over all groups.
func (ds *Dataset) NumDescriptors() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.count
}

// Groups returns the group names in sorted order.
func (ds *Dataset) Groups() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	names := make([]string, 0, len(ds.groups))
	for name := range ds.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Members returns the descriptors of group sorted by ID, then by histogram
// text for equal IDs.
func (ds *Dataset) Members(group string) []*cpdh.Descriptor {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return sortedMembers(ds.groups[group])
}

// snapshot copies the group structure so matching can run without the lock.
func (ds *Dataset) snapshot() map[string][]*cpdh.Descriptor {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	out := make(map[string][]*cpdh.Descriptor, len(ds.groups))
	for name, members := range ds.groups {
		out[name] = sortedMembers(members)
	}
	return out
}

func sortedMembers(members map[cpdh.Key]*cpdh.Descriptor) []*cpdh.Descriptor {
	out := make([]*cpdh.Descriptor, 0, len(members))
	for _, d := range members {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID() != out[j].ID() {
			return out[i].ID() < out[j].ID()
		}
		return out[i].Histogram().Line() < out[j].Histogram().Line()
	})
	return out
}
