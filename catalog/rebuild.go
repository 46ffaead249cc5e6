package catalog

import (
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"sfcatalog/lib/textutil"
)

// Rebuild re-derives the global index and every cloud index purely from
// the object store, the safety net for any detected drift. Enrichment the
// store does not carry (keyPrefix, label, icon, cloud descriptions, emoji)
// is salvaged from the previous index and cloud index documents rather
// than lost. Running it twice in a row produces no further changes.
func (c *Catalog) Rebuild() error {
	names, err := c.Store.List()
	if err != nil {
		return err
	}

	previous := c.index
	rebuilt := &GlobalIndex{
		Version: c.Version,
		Objects: make(map[string]IndexEntry, len(names)),
		Clouds:  make(map[string]CloudSummary),
	}
	if rebuilt.Version == "" {
		rebuilt.Version = previous.Version
	}

	// cloud descriptions survive via the on-disk cloud index documents,
	// even for clouds that end up with no members this pass
	members := make(map[string][]string)
	cloudNames := make(map[string]string)
	cloudFiles, err := c.cloudIndexFiles()
	if err != nil {
		return err
	}
	descriptions := make(map[string]string)
	for _, file := range cloudFiles {
		var ci CloudIndex
		err := readJSONFile(file, &ci)
		if err != nil {
			slog.Warn("skipping unreadable cloud index", "file", file, "err", err)
			continue
		}
		slug := strings.TrimSuffix(filepath.Base(file), ".json")
		descriptions[slug] = ci.Description
		cloudNames[slug] = ci.Cloud
		members[slug] = nil
	}

	for _, name := range names {
		record, err := c.Store.ReadObject(name)
		if err != nil {
			return fmt.Errorf("rebuild: %w", err)
		}
		if record == nil {
			continue
		}

		entry := c.entryFor(*record)
		if prev, ok := previous.Objects[name]; ok {
			fillEmpty(&entry, prev)
			entry.FieldCount = len(record.Properties)
		}
		rebuilt.Objects[name] = entry

		for _, cloud := range record.Clouds {
			slug := textutil.Slug(cloud)
			members[slug] = append(members[slug], name)
			cloudNames[slug] = cloud
		}
	}

	clouds := make(map[string]*CloudIndex, len(members))
	for slug, names := range members {
		if names == nil {
			names = []string{}
		}
		ci := &CloudIndex{
			Cloud:       cloudNames[slug],
			Description: descriptions[slug],
			ObjectCount: len(names),
			Objects:     names,
		}
		err := writeJSONFile(filepath.Join(c.cloudsDir(), slug+".json"), ci)
		if err != nil {
			return err
		}
		clouds[slug] = ci

		summary := CloudSummary{
			Cloud:       ci.Cloud,
			FileName:    path.Join("clouds", slug+".json"),
			Description: ci.Description,
			ObjectCount: ci.ObjectCount,
		}
		if prev, ok := previous.Clouds[slug]; ok {
			fillEmpty(&summary, prev)
			summary.ObjectCount = ci.ObjectCount
		}
		rebuilt.Clouds[slug] = summary
	}

	rebuilt.Generated = time.Now().UTC().Truncate(time.Second)
	rebuilt.TotalObjects = len(rebuilt.Objects)
	rebuilt.TotalClouds = len(rebuilt.Clouds)

	c.index = rebuilt
	c.clouds = clouds
	c.dirty = make(map[string]struct{})
	return writeJSONFile(c.IndexPath(), rebuilt)
}
