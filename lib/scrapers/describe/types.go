package describe

import (
	"sfcatalog/catalog"
)

// ObjectDescribe is the wire shape of a per-object describe response,
// trimmed down to what the catalog keeps.
type ObjectDescribe struct {
	Name      string          `json:"name"`
	Label     string          `json:"label"`
	KeyPrefix string          `json:"keyPrefix"`
	Custom    bool            `json:"custom"`
	Fields    []FieldDescribe `json:"fields"`
}

type FieldDescribe struct {
	Name           string          `json:"name"`
	Label          string          `json:"label"`
	Type           string          `json:"type"`
	Length         int             `json:"length"`
	InlineHelpText string          `json:"inlineHelpText"`
	Nillable       bool            `json:"nillable"`
	Unique         bool            `json:"unique"`
	ExternalID     bool            `json:"externalId"`
	AutoNumber     bool            `json:"autoNumber"`
	Calculated     bool            `json:"calculated"`
	Createable     bool            `json:"createable"`
	Updateable     bool            `json:"updateable"`
	ReferenceTo    []string        `json:"referenceTo"`
	PicklistValues []PicklistValue `json:"picklistValues"`
}

type PicklistValue struct {
	Value  string `json:"value"`
	Active bool   `json:"active"`
}

// ToRecord shapes a describe response into a catalog record carrying the
// full enrichment tier. The merge layer guarantees a later doc-only
// refresh cannot strip any of it again.
func (d ObjectDescribe) ToRecord() catalog.ObjectRecord {
	properties := make(map[string]catalog.FieldDescriptor, len(d.Fields))
	for _, field := range d.Fields {
		properties[field.Name] = field.toDescriptor()
	}
	return catalog.ObjectRecord{
		Name:       d.Name,
		Properties: properties,
	}
}

func (f FieldDescribe) toDescriptor() catalog.FieldDescriptor {
	desc := catalog.FieldDescriptor{
		Type:        catalog.Normalize(f.Type),
		Description: f.InlineHelpText,
		Format:      catalog.FormatFor(f.Type),
		Nullable:    ptr(f.Nillable),
		ReadOnly:    ptr(f.Calculated || (!f.Createable && !f.Updateable)),
		Unique:      ptr(f.Unique),
		ExternalID:  ptr(f.ExternalID),
		AutoNumber:  ptr(f.AutoNumber),
	}
	if f.Length > 0 {
		desc.MaxLength = ptr(f.Length)
	}

	for _, value := range f.PicklistValues {
		if value.Active {
			desc.Enum = append(desc.Enum, value.Value)
		}
	}
	switch len(f.ReferenceTo) {
	case 0:
	case 1:
		desc.RefObject = f.ReferenceTo[0]
	default:
		desc.RefObjects = f.ReferenceTo
	}
	return desc
}

func ptr[T any](v T) *T {
	return &v
}
