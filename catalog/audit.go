package catalog

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

// AuditFinding is one detected inconsistency between the store, the
// global index and the cloud indexes.
type AuditFinding struct {
	Kind    string
	Name    string
	Detail  string
	Suggest string
}

const (
	FindingMissingFile     = "index references missing file"
	FindingUnindexedFile   = "stored object has no index entry"
	FindingFieldCountDrift = "fieldCount differs from stored properties"
	FindingCountMismatch   = "cloud objectCount differs from member list"
	FindingUnknownMember   = "cloud member missing from global index"
)

// AuditReport is the outcome of a consistency audit. Findings are reports,
// not errors: the pipeline never fails on them, and Rebuild fixes all of
// them.
type AuditReport struct {
	StoredObjects  int
	IndexedObjects int
	CloudIndexes   int
	Findings       []AuditFinding
}

func (r AuditReport) Clean() bool {
	return len(r.Findings) == 0
}

// Audit cross-checks the three representations of the catalog without
// modifying anything.
func (c *Catalog) Audit() (AuditReport, error) {
	var report AuditReport

	stored, err := c.Store.List()
	if err != nil {
		return report, err
	}
	storedSet := make(map[string]struct{}, len(stored))
	for _, name := range stored {
		storedSet[name] = struct{}{}
	}
	report.StoredObjects = len(stored)
	report.IndexedObjects = len(c.index.Objects)

	indexed := make([]string, 0, len(c.index.Objects))
	for name := range c.index.Objects {
		indexed = append(indexed, name)
	}
	slices.Sort(indexed)

	for _, name := range indexed {
		entry := c.index.Objects[name]
		if _, ok := storedSet[name]; !ok {
			report.Findings = append(report.Findings, AuditFinding{
				Kind:    FindingMissingFile,
				Name:    name,
				Detail:  entry.File,
				Suggest: closestName(name, stored),
			})
			continue
		}
		record, err := c.Store.ReadObject(name)
		if err != nil {
			return report, err
		}
		if record == nil {
			continue
		}
		if entry.FieldCount != len(record.Properties) {
			report.Findings = append(report.Findings, AuditFinding{
				Kind:   FindingFieldCountDrift,
				Name:   name,
				Detail: entry.File,
			})
		}
	}

	for _, name := range stored {
		if _, ok := c.index.Objects[name]; !ok {
			report.Findings = append(report.Findings, AuditFinding{
				Kind:    FindingUnindexedFile,
				Name:    name,
				Detail:  c.Store.PathFor(name),
				Suggest: closestName(name, indexed),
			})
		}
	}

	files, err := c.cloudIndexFiles()
	if err != nil {
		return report, err
	}
	report.CloudIndexes = len(files)
	for _, file := range files {
		var ci CloudIndex
		err := readJSONFile(file, &ci)
		if err != nil {
			return report, err
		}
		slug := strings.TrimSuffix(filepath.Base(file), ".json")
		if ci.ObjectCount != len(ci.Objects) {
			report.Findings = append(report.Findings, AuditFinding{
				Kind:   FindingCountMismatch,
				Name:   ci.Cloud,
				Detail: slug + ".json",
			})
		}
		for _, member := range ci.Objects {
			if _, ok := c.index.Objects[member]; !ok {
				report.Findings = append(report.Findings, AuditFinding{
					Kind:    FindingUnknownMember,
					Name:    member,
					Detail:  slug + ".json",
					Suggest: closestName(member, indexed),
				})
			}
		}
	}
	return report, nil
}

// closestName suggests the most similar known name for a dangling
// reference, usually a rename that only landed on one side of the catalog.
func closestName(name string, known []string) string {
	best := ""
	bestScore := 0.0
	for _, candidate := range known {
		if candidate == name {
			continue
		}
		score := matchr.JaroWinkler(name, candidate, false)
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	if bestScore < 0.85 {
		return ""
	}
	return best
}
