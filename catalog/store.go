package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Store is the sharded per-object document store: one JSON file per object
// name under a directory named by the upper-cased first letter of the name.
// It is the system of record; the global index and cloud indexes are
// derived from it.
//
// There is no locking. The pipeline is a single sequential process and
// concurrent invocations against the same root are unsupported.
type Store struct {
	// Root is the objects directory, e.g. "data/objects".
	Root string
}

func NewStore(root string) Store {
	return Store{Root: root}
}

// shardFor selects the shard directory for an object name. An empty name
// never maps to a stored document; it gets a shard of its own so lookups
// with one stay safe misses instead of panics.
func shardFor(name string) string {
	if name == "" {
		return "_"
	}
	return strings.ToUpper(name[:1])
}

// PathFor returns the document path for an object name, relative to the
// store root's parent: the slash-separated form the index records in its
// File field.
func (s Store) PathFor(name string) string {
	return path.Join(filepath.Base(s.Root), shardFor(name), name+".json")
}

func (s Store) absPathFor(name string) string {
	return filepath.Join(s.Root, shardFor(name), name+".json")
}

// ReadObject loads a record, or returns nil if the object is not stored.
func (s Store) ReadObject(name string) (*ObjectRecord, error) {
	raw, err := os.ReadFile(s.absPathFor(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var envelope map[string]ObjectRecord
	err = json.Unmarshal(raw, &envelope)
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", s.absPathFor(name), err)
	}
	record, ok := envelope[name]
	if !ok {
		return nil, fmt.Errorf("document %s is missing its %q entry", s.absPathFor(name), name)
	}
	if record.Name == "" {
		record.Name = name
	}
	return &record, nil
}

// WriteObject persists a record, whole-file, atomically (write to a temp
// file, then rename). The document keeps the single-entry envelope shape
// { "<Name>": record } that downstream readers expect.
func (s Store) WriteObject(record ObjectRecord) error {
	if record.Name == "" {
		return fmt.Errorf("refusing to write a record with no name")
	}
	return writeJSONFile(s.absPathFor(record.Name), map[string]ObjectRecord{
		record.Name: record,
	})
}

// DeleteObject removes a record's document. Deleting an absent object is
// not an error.
func (s Store) DeleteObject(name string) error {
	err := os.Remove(s.absPathFor(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List walks every shard and returns the stored object names, sorted.
func (s Store) List() ([]string, error) {
	shards, err := os.ReadDir(s.Root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(s.Root, shard.Name()))
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	slices.Sort(names)
	return names, nil
}

// writeJSONFile writes 2-space-indented JSON atomically via a sibling temp
// file and rename, creating parent directories as needed.
func writeJSONFile(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')

	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(raw)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readJSONFile(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	err = json.Unmarshal(raw, v)
	if err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}
