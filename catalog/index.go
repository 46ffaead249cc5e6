package catalog

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"sfcatalog/lib/textutil"
)

// Catalog ties the object store, the global index and the per-cloud
// indexes together under one root directory:
//
//	<root>/index.json            global index
//	<root>/objects/<A>/<Name>.json  object documents
//	<root>/clouds/<slug>.json    cloud indexes
//
// The global index is loaded once on Open, mutated in memory, and flushed
// atomically at well-defined checkpoints. It is never rebuilt from scratch
// on load: a run restricted to one cloud must leave every other cloud's
// entries untouched.
type Catalog struct {
	Root    string
	Version string
	Store   Store

	index  *GlobalIndex
	clouds map[string]*CloudIndex
	dirty  map[string]struct{}
}

// Open loads the catalog rooted at dir. A missing index is not an error;
// it simply means the catalog is empty so far.
func Open(root, version string) (*Catalog, error) {
	c := &Catalog{
		Root:    root,
		Version: version,
		Store:   NewStore(filepath.Join(root, "objects")),
		clouds:  make(map[string]*CloudIndex),
		dirty:   make(map[string]struct{}),
	}

	var idx GlobalIndex
	err := readJSONFile(c.IndexPath(), &idx)
	if os.IsNotExist(err) {
		idx = GlobalIndex{Version: version}
	} else if err != nil {
		return nil, err
	}
	if idx.Objects == nil {
		idx.Objects = make(map[string]IndexEntry)
	}
	if idx.Clouds == nil {
		idx.Clouds = make(map[string]CloudSummary)
	}
	c.index = &idx
	return c, nil
}

func (c *Catalog) IndexPath() string {
	return filepath.Join(c.Root, "index.json")
}

func (c *Catalog) cloudsDir() string {
	return filepath.Join(c.Root, "clouds")
}

// CloudIndexPath returns the on-disk path of a cloud's index document.
func (c *Catalog) CloudIndexPath(cloud string) string {
	return filepath.Join(c.cloudsDir(), textutil.Slug(cloud)+".json")
}

// Index exposes the loaded global index.
func (c *Catalog) Index() *GlobalIndex {
	return c.index
}

// Upsert runs the admit-merge-write-index transition for one fetched
// record: it merges with any stored record, persists the result, and
// refreshes the global index entry and cloud memberships. The index entry
// is recomputed from the merged record that was just written, never copied
// from the raw fetch result, so the index cannot drift from the file.
//
// Nothing is flushed here; call Flush to persist the index state.
func (c *Catalog) Upsert(incoming ObjectRecord) (ObjectRecord, error) {
	if incoming.Name == "" {
		return ObjectRecord{}, fmt.Errorf("refusing to upsert a record with no name")
	}

	existing, err := c.Store.ReadObject(incoming.Name)
	if err != nil {
		return ObjectRecord{}, fmt.Errorf("read %s: %w", incoming.Name, err)
	}
	merged := Merge(existing, incoming)
	err = c.Store.WriteObject(merged)
	if err != nil {
		return ObjectRecord{}, fmt.Errorf("write %s: %w", merged.Name, err)
	}

	entry := c.entryFor(merged)
	if prev, ok := c.index.Objects[merged.Name]; ok {
		// enrichment captured by earlier runs survives a poorer refresh
		fillEmpty(&entry, prev)
		entry.FieldCount = len(merged.Properties)
	}
	c.index.Objects[merged.Name] = entry

	for _, cloud := range merged.Clouds {
		err = c.addToCloud(cloud, merged.Name)
		if err != nil {
			return ObjectRecord{}, err
		}
	}
	return merged, nil
}

// EnrichEntry layers optional index-only enrichment (key prefix, label,
// icon) onto an existing entry. Fields the entry already carries win;
// enrichment only fills gaps.
func (c *Catalog) EnrichEntry(name string, enrichment IndexEntry) {
	entry, ok := c.index.Objects[name]
	if !ok {
		return
	}
	fillEmpty(&entry, enrichment)
	c.index.Objects[name] = entry
}

// entryFor derives a fresh index entry from a just-written record.
func (c *Catalog) entryFor(record ObjectRecord) IndexEntry {
	cloud := record.Module
	if cloud == "" && len(record.Clouds) > 0 {
		cloud = record.Clouds[0]
	}
	return IndexEntry{
		Cloud:       cloud,
		Clouds:      slices.Clone(record.Clouds),
		File:        c.Store.PathFor(record.Name),
		Description: record.Description,
		FieldCount:  len(record.Properties),
		SourceURL:   record.SourceURL,
		AccessRules: slices.Clone(record.AccessRules),
	}
}

// cloudIndex loads (or starts) the index document for a cloud.
func (c *Catalog) cloudIndex(cloud string) (*CloudIndex, error) {
	slug := textutil.Slug(cloud)
	if ci, ok := c.clouds[slug]; ok {
		return ci, nil
	}

	var ci CloudIndex
	err := readJSONFile(c.CloudIndexPath(cloud), &ci)
	if os.IsNotExist(err) {
		ci = CloudIndex{Cloud: cloud}
	} else if err != nil {
		return nil, err
	}
	c.clouds[slug] = &ci
	return &ci, nil
}

func (c *Catalog) addToCloud(cloud, name string) error {
	ci, err := c.cloudIndex(cloud)
	if err != nil {
		return err
	}
	if slices.Contains(ci.Objects, name) {
		return nil
	}
	ci.Objects = append(ci.Objects, name)
	slices.Sort(ci.Objects)
	ci.ObjectCount = len(ci.Objects)
	c.dirty[textutil.Slug(cloud)] = struct{}{}
	return nil
}

// Flush writes every touched cloud index, refreshes the cloud summaries
// and totals of the global index, and persists the index atomically.
func (c *Catalog) Flush() error {
	for slug := range c.dirty {
		ci := c.clouds[slug]
		err := writeJSONFile(filepath.Join(c.cloudsDir(), slug+".json"), ci)
		if err != nil {
			return err
		}
		summary := CloudSummary{
			Cloud:       ci.Cloud,
			FileName:    path.Join("clouds", slug+".json"),
			Description: ci.Description,
			ObjectCount: ci.ObjectCount,
		}
		if prev, ok := c.index.Clouds[slug]; ok {
			fillEmpty(&summary, prev)
			summary.ObjectCount = ci.ObjectCount
		}
		c.index.Clouds[slug] = summary
		delete(c.dirty, slug)
	}

	c.index.Generated = time.Now().UTC().Truncate(time.Second)
	if c.Version != "" {
		c.index.Version = c.Version
	}
	c.index.TotalObjects = len(c.index.Objects)
	c.index.TotalClouds = len(c.index.Clouds)
	return writeJSONFile(c.IndexPath(), c.index)
}

// cloudIndexFiles lists every cloud index document currently on disk.
func (c *Catalog) cloudIndexFiles() ([]string, error) {
	entries, err := os.ReadDir(c.cloudsDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(c.cloudsDir(), entry.Name()))
	}
	slices.Sort(files)
	return files, nil
}
