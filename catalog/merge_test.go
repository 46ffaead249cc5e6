package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func TestMergeFirstSeen(t *testing.T) {
	incoming := ObjectRecord{
		Name:   "Account",
		Module: "Core Salesforce",
		Properties: map[string]FieldDescriptor{
			"Name": {Type: TypeString, Description: "Name"},
		},
	}

	merged := Merge(nil, incoming)
	require.Equal(t, "Account", merged.Name)
	require.Equal(t, []string{"Core Salesforce"}, merged.Clouds)
	require.Len(t, merged.Properties, 1)
}

func TestMergeIdempotent(t *testing.T) {
	existing := ObjectRecord{
		Name:        "Account",
		Description: "Represents an account.",
		Module:      "Core Salesforce",
		Clouds:      []string{"Core Salesforce"},
		Properties: map[string]FieldDescriptor{
			"Name":     {Type: TypeString, Description: "Name"},
			"Industry": {Type: TypeString, Enum: []string{"Agriculture", "Banking"}},
		},
	}
	incoming := ObjectRecord{
		Name:   "Account",
		Module: "Sales Cloud",
		Properties: map[string]FieldDescriptor{
			"Industry": {Type: TypeString, Description: "The industry."},
			"Website":  {Type: TypeString, Format: "uri"},
		},
	}

	once := Merge(&existing, incoming)
	twice := Merge(&once, incoming)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("merge is not idempotent:\n%s", diff)
	}
}

func TestMergeKeepsExistingFields(t *testing.T) {
	existing := ObjectRecord{
		Name: "Contact",
		Properties: map[string]FieldDescriptor{
			"Email": {Type: TypeString, Format: "email"},
			"Phone": {Type: TypeString, Format: "phone"},
		},
	}
	incoming := ObjectRecord{
		Name: "Contact",
		Properties: map[string]FieldDescriptor{
			"Email": {Type: TypeString, Description: "The contact's email."},
		},
	}

	merged := Merge(&existing, incoming)
	require.Len(t, merged.Properties, 2)
	require.Equal(t, "phone", merged.Properties["Phone"].Format)
	// the refreshed field keeps its old format and gains a description
	require.Equal(t, "email", merged.Properties["Email"].Format)
	require.Equal(t, "The contact's email.", merged.Properties["Email"].Description)
}

func TestMergeDoesNotEraseEnrichment(t *testing.T) {
	existing := ObjectRecord{
		Name: "Case",
		Properties: map[string]FieldDescriptor{
			"Status": {
				Type:       TypeString,
				Enum:       []string{"New", "Working", "Closed"},
				MaxLength:  intPtr(40),
				Nullable:   boolPtr(false),
				ReadOnly:   boolPtr(false),
				Unique:     boolPtr(false),
				ExternalID: boolPtr(false),
			},
		},
	}
	// a plain docs scrape carries none of the enrichment attributes
	incoming := ObjectRecord{
		Name: "Case",
		Properties: map[string]FieldDescriptor{
			"Status": {Type: TypeString, Description: "The case status."},
		},
	}

	merged := Merge(&existing, incoming)
	status := merged.Properties["Status"]
	require.Equal(t, []string{"New", "Working", "Closed"}, status.Enum)
	require.NotNil(t, status.MaxLength)
	require.Equal(t, 40, *status.MaxLength)
	require.NotNil(t, status.Nullable)
	require.False(t, *status.Nullable)
	require.Equal(t, "The case status.", status.Description)
}

func TestMergeEmptyIncomingPropertiesKeepExisting(t *testing.T) {
	existing := ObjectRecord{
		Name: "Lead",
		Properties: map[string]FieldDescriptor{
			"Company": {Type: TypeString},
		},
	}
	// a scrape that failed to find a field table must not wipe the record
	incoming := ObjectRecord{Name: "Lead", Description: "Represents a lead."}

	merged := Merge(&existing, incoming)
	require.Len(t, merged.Properties, 1)
	require.Equal(t, "Represents a lead.", merged.Description)
}

func TestMergeEmptyValuesDoNotOverwrite(t *testing.T) {
	existing := ObjectRecord{
		Name:        "Opportunity",
		Description: "Represents an opportunity.",
		SourceURL:   "https://example.com/opportunity",
		Module:      "Sales Cloud",
		Clouds:      []string{"Sales Cloud"},
	}
	incoming := ObjectRecord{Name: "Opportunity"}

	merged := Merge(&existing, incoming)
	require.Equal(t, existing.Description, merged.Description)
	require.Equal(t, existing.SourceURL, merged.SourceURL)
	require.Equal(t, existing.Module, merged.Module)
	require.Equal(t, existing.Clouds, merged.Clouds)
}

func TestMergeCloudsUnionSorted(t *testing.T) {
	existing := ObjectRecord{
		Name:   "Account",
		Module: "Core Salesforce",
		Clouds: []string{"Core Salesforce"},
	}
	incoming := ObjectRecord{
		Name:   "Account",
		Module: "Sales Cloud",
		Clouds: []string{"Service Cloud"},
	}

	merged := Merge(&existing, incoming)
	require.Equal(t, []string{"Core Salesforce", "Sales Cloud", "Service Cloud"}, merged.Clouds)
}
