package catalog

import "time"

// FieldDescriptor describes a single property of an object.
//
// Type and Description come from both the documentation scrape and the
// describe API; everything else is enrichment that only the describe API
// supplies. Enrichment attributes use pointers (or omitempty slices) so
// that "not provided" is distinguishable from "provided as false/zero",
// which is what lets Merge keep enrichment monotonic.
type FieldDescriptor struct {
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Format      string   `json:"format,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	RefObject   string   `json:"x-object,omitempty"`
	RefObjects  []string `json:"x-objects,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
	Nullable    *bool    `json:"nullable,omitempty"`
	ReadOnly    *bool    `json:"readOnly,omitempty"`
	Unique      *bool    `json:"unique,omitempty"`
	ExternalID  *bool    `json:"externalId,omitempty"`
	AutoNumber  *bool    `json:"autoNumber,omitempty"`
}

// ObjectRecord is one entity type in the catalog, keyed by Name.
type ObjectRecord struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description,omitempty"`
	Module      string                     `json:"module,omitempty"`
	Clouds      []string                   `json:"clouds,omitempty"`
	SourceURL   string                     `json:"sourceUrl,omitempty"`
	AccessRules []string                   `json:"accessRules,omitempty"`
	Properties  map[string]FieldDescriptor `json:"properties,omitempty"`
}

// IndexEntry is one row of the global index. File points at the object's
// document inside the store, FieldCount mirrors len(Properties) of that
// document. KeyPrefix, Label, Icon and the like are enrichment that only
// some sources provide and must survive every refresh and rebuild.
type IndexEntry struct {
	Cloud       string   `json:"cloud"`
	Clouds      []string `json:"clouds,omitempty"`
	File        string   `json:"file"`
	Description string   `json:"description,omitempty"`
	FieldCount  int      `json:"fieldCount"`
	KeyPrefix   string   `json:"keyPrefix,omitempty"`
	Label       string   `json:"label,omitempty"`
	SourceURL   string   `json:"sourceUrl,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	AccessRules []string `json:"accessRules,omitempty"`
}

// CloudSummary is the per-cloud row embedded in the global index, keyed by
// the cloud's file slug.
type CloudSummary struct {
	Cloud       string `json:"cloud"`
	FileName    string `json:"fileName"`
	Description string `json:"description,omitempty"`
	ObjectCount int    `json:"objectCount"`
	Emoji       string `json:"emoji,omitempty"`
	IconFile    string `json:"iconFile,omitempty"`
}

// GlobalIndex is the single document mapping every object name to its
// location and summary metadata. It is a cache over the object store and
// the cloud indexes: everything in it must be re-derivable from those.
type GlobalIndex struct {
	Generated    time.Time               `json:"generated"`
	Version      string                  `json:"version"`
	TotalObjects int                     `json:"totalObjects"`
	TotalClouds  int                     `json:"totalClouds"`
	Objects      map[string]IndexEntry   `json:"objects"`
	Clouds       map[string]CloudSummary `json:"clouds,omitempty"`
}

// CloudIndex is the standalone per-cloud document: the sorted member list
// plus its count.
type CloudIndex struct {
	Cloud       string   `json:"cloud"`
	Description string   `json:"description,omitempty"`
	ObjectCount int      `json:"objectCount"`
	Objects     []string `json:"objects"`
}

// Checkpoint records pipeline progress so an interrupted run can resume.
// Resumption is at-least-once; that is safe because Merge is idempotent.
type Checkpoint struct {
	LastProcessedIndex  int       `json:"lastProcessedIndex"`
	LastProcessedObject string    `json:"lastProcessedObject"`
	TotalObjects        int       `json:"totalObjects"`
	StartedAt           time.Time `json:"startedAt"`
	LastUpdatedAt       time.Time `json:"lastUpdatedAt"`
	ProcessedCount      int       `json:"processedCount"`
}
