package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterAdmitsPlainObjects(t *testing.T) {
	filter := DefaultFilter()
	require.True(t, filter.Admit("Account"))
	require.True(t, filter.Admit("OpportunityLineItem"))
}

func TestFilterRejectsSyntheticSuffixes(t *testing.T) {
	filter := DefaultFilter()
	require.False(t, filter.Admit("AccountHistory"))
	require.False(t, filter.Admit("AccountShare"))
	require.False(t, filter.Admit("AccountFeed"))
	require.False(t, filter.Admit("AccountChangeEvent"))
}

func TestFilterSuffixMatchIsCaseSensitive(t *testing.T) {
	// exact-suffix, case-sensitive matching is a documented convention;
	// "history" in lower case is not a synthetic object marker
	filter := DefaultFilter()
	require.True(t, filter.Admit("Accounthistory"))
}

func TestFilterCustomObjects(t *testing.T) {
	filter := DefaultFilter()
	require.False(t, filter.Admit("Invoice__c"))

	filter.ExcludeCustom = false
	require.True(t, filter.Admit("Invoice__c"))
}

func TestFilterExcludesIsComplement(t *testing.T) {
	filter := DefaultFilter()
	require.True(t, filter.Excludes("AccountHistory"))
	require.False(t, filter.Excludes("Account"))
}
