package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	require.Equal(t, "core-salesforce", Slug("Core Salesforce"))
	require.Equal(t, "sales-cloud", Slug("  Sales Cloud  "))
	require.Equal(t, "b2b-commerce", Slug("B2B Commerce"))
	require.Equal(t, "field-service-fsl", Slug("Field Service (FSL)"))
	require.Equal(t, "", Slug("  "))
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "coresalesforce", NormalizeName(" Core  Salesforce\n"))
	require.Equal(t, "account", NormalizeName("Account"))
}

func TestMatchName(t *testing.T) {
	require.True(t, MatchName("Core Salesforce", []string{"salesforce"}))
	require.False(t, MatchName("Marketing Cloud", []string{"salesforce"}))
}
