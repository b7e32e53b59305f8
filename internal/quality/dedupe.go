package quality

import "github.com/scrypster/folio/pkg/types"

// Deduplicate returns a copy of s in which every collection keeps only the
// first occurrence of each id. References are left untouched, so the result
// may still contain broken references. Deduplicate is idempotent.
func Deduplicate(s types.Snapshot) types.Snapshot {
	return types.Snapshot{
		Companies:    firstByID(s.Companies, func(c types.Company) string { return c.ID }),
		Technologies: firstByID(s.Technologies, func(t types.Technology) string { return t.ID }),
		Modules:      firstByID(s.Modules, func(m types.Module) string { return m.ID }),
		Projects:     firstByID(s.Projects, func(p types.Project) string { return p.ID }),
		Integrations: firstByID(s.Integrations, func(i types.Integration) string { return i.ID }),
	}
}

func firstByID[T any](items []T, id func(T) string) []T {
	out := make([]T, 0, len(items))
	seen := make(idSet, len(items))
	for _, item := range items {
		key := id(item)
		if seen.has(key) {
			continue
		}
		seen.add(key)
		out = append(out, item)
	}
	return out
}
