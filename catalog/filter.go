package catalog

import "strings"

// customMarker appears in every custom object and custom field API name.
const customMarker = "__"

// DefaultExcludedSuffixes covers the synthetic objects Salesforce derives
// from every concrete one. They triple the catalog size while adding no
// schema information of their own.
var DefaultExcludedSuffixes = []string{"History", "Event", "Feed", "Share"}

// Filter decides whether a candidate object is admitted into the catalog.
// It runs before any detail fetch, and the same predicate drives the purge
// maintenance pass over an existing store.
type Filter struct {
	ExcludeCustom    bool
	ExcludedSuffixes []string
}

func DefaultFilter() Filter {
	return Filter{
		ExcludeCustom:    true,
		ExcludedSuffixes: DefaultExcludedSuffixes,
	}
}

// Admit reports whether the named object should enter the catalog.
//
// Suffix matching is case-sensitive and exact on purpose: it is the
// long-standing convention of the store, and changing it changes which
// records get purged. Do not fold case here.
func (f Filter) Admit(name string) bool {
	if f.ExcludeCustom && strings.Contains(name, customMarker) {
		return false
	}
	for _, suffix := range f.ExcludedSuffixes {
		if suffix != "" && strings.HasSuffix(name, suffix) {
			return false
		}
	}
	return true
}

// Excludes is the purge-side complement of Admit.
func (f Filter) Excludes(name string) bool {
	return !f.Admit(name)
}
