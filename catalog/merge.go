package catalog

import (
	"slices"

	"dario.cat/mergo"
)

// fillEmpty copies src's values into dst wherever dst holds a zero value.
// mergo only fails on mismatched or non-struct arguments, which the type
// parameter rules out.
func fillEmpty[T any](dst *T, src T) {
	_ = mergo.Merge(dst, src)
}

// Merge reconciles a freshly fetched record with the previously stored one
// under an additive-only policy: incoming values win only when they are
// concretely provided, and nothing that already exists is ever dropped.
// The documentation scrape and the describe API populate different subsets
// of the shape, so the same record is typically merged from both over time
// and must come out richer each pass, never poorer.
//
// Merging the same incoming record twice produces the same result as
// merging it once, which is what makes interrupted runs safe to resume.
func Merge(existing *ObjectRecord, incoming ObjectRecord) ObjectRecord {
	if existing == nil {
		merged := incoming
		merged.Clouds = cloudUnion(nil, incoming.Clouds, incoming.Module)
		merged.Properties = mergeProperties(nil, incoming.Properties)
		return merged
	}

	merged := incoming
	merged.Clouds = nil
	merged.Properties = nil

	base := *existing
	base.Clouds = nil
	base.Properties = nil
	fillEmpty(&merged, base)

	merged.Clouds = cloudUnion(existing.Clouds, incoming.Clouds, incoming.Module)
	merged.Clouds = cloudUnion(merged.Clouds, nil, existing.Module)
	merged.Properties = mergeProperties(existing.Properties, incoming.Properties)
	return merged
}

// mergeProperties unions the two property maps. For a field present in
// both, incoming attributes overwrite only where concretely provided; an
// incoming descriptor can add or replace attributes but never blank one
// out. An entirely absent incoming map keeps the existing one untouched,
// so a scrape that failed to find a field table cannot wipe a record.
func mergeProperties(existing, incoming map[string]FieldDescriptor) map[string]FieldDescriptor {
	if len(incoming) == 0 {
		return cloneProperties(existing)
	}
	merged := cloneProperties(existing)
	if merged == nil {
		merged = make(map[string]FieldDescriptor, len(incoming))
	}
	for name, inc := range incoming {
		if prev, ok := merged[name]; ok {
			fillEmpty(&inc, prev)
		}
		merged[name] = inc
	}
	return merged
}

func cloneProperties(props map[string]FieldDescriptor) map[string]FieldDescriptor {
	if props == nil {
		return nil
	}
	cloned := make(map[string]FieldDescriptor, len(props))
	for name, desc := range props {
		cloned[name] = desc
	}
	return cloned
}

// cloudUnion produces the sorted, deduplicated union of the given cloud
// sets plus any extra single cloud (typically the owning module). Sorting
// keeps the persisted form deterministic.
func cloudUnion(existing, incoming []string, extra string) []string {
	set := make(map[string]struct{}, len(existing)+len(incoming)+1)
	for _, c := range existing {
		if c != "" {
			set[c] = struct{}{}
		}
	}
	for _, c := range incoming {
		if c != "" {
			set[c] = struct{}{}
		}
	}
	if extra != "" {
		set[extra] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	union := make([]string, 0, len(set))
	for c := range set {
		union = append(union, c)
	}
	slices.Sort(union)
	return union
}
