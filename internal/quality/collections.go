package quality

import "github.com/scrypster/folio/pkg/types"

// collections maps each entity kind to its id extractor, in the fixed
// processing order used for duplicate detection and entity counts.
var collections = []struct {
	kind types.EntityKind
	ids  func(types.Snapshot) []string
}{
	{types.KindCompany, companyIDs},
	{types.KindTechnology, technologyIDs},
	{types.KindModule, moduleIDs},
	{types.KindProject, projectIDs},
	{types.KindIntegration, integrationIDs},
}

func companyIDs(s types.Snapshot) []string {
	return ids(s.Companies, func(c types.Company) string { return c.ID })
}

func technologyIDs(s types.Snapshot) []string {
	return ids(s.Technologies, func(t types.Technology) string { return t.ID })
}

func moduleIDs(s types.Snapshot) []string {
	return ids(s.Modules, func(m types.Module) string { return m.ID })
}

func projectIDs(s types.Snapshot) []string {
	return ids(s.Projects, func(p types.Project) string { return p.ID })
}

func integrationIDs(s types.Snapshot) []string {
	return ids(s.Integrations, func(i types.Integration) string { return i.ID })
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}
