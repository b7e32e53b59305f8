// Package merge combines a base snapshot (the seed data checked into the
// repository) with an overlay (the records exported from the admin store).
package merge

import "github.com/scrypster/folio/pkg/types"

// Summary counts what the overlay changed, per entity kind.
type Summary struct {
	Added    map[types.EntityKind]int `json:"added"`
	Replaced map[types.EntityKind]int `json:"replaced"`
}

// Total returns the number of added and replaced entities.
func (s Summary) Total() int {
	n := 0
	for _, v := range s.Added {
		n += v
	}
	for _, v := range s.Replaced {
		n += v
	}
	return n
}

// Merge overlays one snapshot onto another. Per collection, an overlay
// entity replaces the base entity with the same id in place and new ids
// are appended in overlay order. Base order is preserved. Duplicate ids
// within either input collapse to one entity at the first position,
// carrying the last value seen.
func Merge(base, overlay types.Snapshot) (types.Snapshot, Summary) {
	sum := Summary{
		Added:    make(map[types.EntityKind]int, len(types.EntityKinds)),
		Replaced: make(map[types.EntityKind]int, len(types.EntityKinds)),
	}
	out := types.Snapshot{
		Companies: mergeByID(base.Companies, overlay.Companies, types.KindCompany, &sum,
			func(c types.Company) string { return c.ID }),
		Technologies: mergeByID(base.Technologies, overlay.Technologies, types.KindTechnology, &sum,
			func(t types.Technology) string { return t.ID }),
		Modules: mergeByID(base.Modules, overlay.Modules, types.KindModule, &sum,
			func(m types.Module) string { return m.ID }),
		Projects: mergeByID(base.Projects, overlay.Projects, types.KindProject, &sum,
			func(p types.Project) string { return p.ID }),
		Integrations: mergeByID(base.Integrations, overlay.Integrations, types.KindIntegration, &sum,
			func(i types.Integration) string { return i.ID }),
	}
	return out, sum
}

func mergeByID[T any](base, overlay []T, kind types.EntityKind, sum *Summary, id func(T) string) []T {
	out := make([]T, 0, len(base)+len(overlay))
	pos := make(map[string]int, len(base)+len(overlay))

	for _, item := range base {
		key := id(item)
		if i, ok := pos[key]; ok {
			out[i] = item
			continue
		}
		pos[key] = len(out)
		out = append(out, item)
	}

	fromBase := len(out)
	replaced := make(map[string]bool)
	for _, item := range overlay {
		key := id(item)
		if i, ok := pos[key]; ok {
			out[i] = item
			if i < fromBase && !replaced[key] {
				replaced[key] = true
				sum.Replaced[kind]++
			}
			continue
		}
		pos[key] = len(out)
		out = append(out, item)
		sum.Added[kind]++
	}
	return out
}
