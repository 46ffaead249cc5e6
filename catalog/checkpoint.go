package catalog

import (
	"os"
	"path/filepath"
)

const checkpointFile = "progress.json"

// CheckpointPath is where pipeline progress lives inside the catalog root.
func (c *Catalog) CheckpointPath() string {
	return filepath.Join(c.Root, checkpointFile)
}

// ReadCheckpoint loads the progress checkpoint of an interrupted run, or
// nil when there is none.
func (c *Catalog) ReadCheckpoint() (*Checkpoint, error) {
	var cp Checkpoint
	err := readJSONFile(c.CheckpointPath(), &cp)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

// WriteCheckpoint persists progress so an interrupted run can resume.
func (c *Catalog) WriteCheckpoint(cp Checkpoint) error {
	return writeJSONFile(c.CheckpointPath(), cp)
}

// ClearCheckpoint removes the checkpoint after a fully completed run.
func (c *Catalog) ClearCheckpoint() error {
	err := os.Remove(c.CheckpointPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
