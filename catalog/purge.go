package catalog

import (
	"log/slog"
)

// PurgeResult summarizes what a maintenance pass removed.
type PurgeResult struct {
	FilesDeleted         int
	IndexEntriesRemoved  int
	CloudIndexesAdjusted int
}

// Purge removes every stored object whose name matches the predicate,
// then re-derives the global index and all cloud indexes via Rebuild.
// Files go first, rebuild second: if the process dies in between, the
// index briefly over-reports, but a rebuild alone restores consistency.
// Patching the indexes incrementally could instead leave them pointing at
// files that no longer exist.
func (c *Catalog) Purge(matches func(name string) bool) (PurgeResult, error) {
	var result PurgeResult

	names, err := c.Store.List()
	if err != nil {
		return result, err
	}

	removed := make(map[string]struct{})
	for _, name := range names {
		if !matches(name) {
			continue
		}
		err := c.Store.DeleteObject(name)
		if err != nil {
			return result, err
		}
		slog.Info("purged object", "name", name)
		removed[name] = struct{}{}
		result.FilesDeleted++
	}

	for name := range c.index.Objects {
		if _, ok := removed[name]; ok {
			result.IndexEntriesRemoved++
		}
	}

	memberCounts := func() (map[string]int, error) {
		files, err := c.cloudIndexFiles()
		if err != nil {
			return nil, err
		}
		counts := make(map[string]int, len(files))
		for _, file := range files {
			var ci CloudIndex
			err := readJSONFile(file, &ci)
			if err != nil {
				continue
			}
			counts[file] = len(ci.Objects)
		}
		return counts, nil
	}

	before, err := memberCounts()
	if err != nil {
		return result, err
	}
	err = c.Rebuild()
	if err != nil {
		return result, err
	}
	after, err := memberCounts()
	if err != nil {
		return result, err
	}
	for file, count := range before {
		if after[file] != count {
			result.CloudIndexesAdjusted++
		}
	}
	return result, nil
}
