// Package quality computes data quality reports over portfolio snapshots:
// duplicate ids, dangling references and unused entities, plus the looser
// admin dashboard check and its score. Every function here is a pure
// function of its input and is safe for concurrent use.
package quality

import (
	"fmt"

	"github.com/scrypster/folio/pkg/types"
)

// idSet is a hash set of entity ids.
type idSet map[string]struct{}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) add(id string) {
	s[id] = struct{}{}
}

func newIDSet(ids []string) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		set.add(id)
	}
	return set
}

// Validate runs the three passes (duplicates, references, unused entities)
// in that fixed order and assembles the report. It never fails: every
// problem is captured as data.
func Validate(s types.Snapshot) types.Report {
	r := types.Report{
		Errors:   []types.Issue{},
		Warnings: []types.Issue{},
	}

	checkDuplicates(s, &r)
	checkReferences(s, &r)
	checkUnused(s, &r)

	r.IsValid = len(r.Errors) == 0
	return r
}

// checkDuplicates flags every occurrence of an id after the first, per
// collection, and accumulates the raw entity count.
func checkDuplicates(s types.Snapshot, r *types.Report) {
	for _, col := range collections {
		ids := col.ids(s)
		r.Stats.TotalEntities += len(ids)

		seen := make(idSet, len(ids))
		for _, id := range ids {
			if seen.has(id) {
				r.Errors = append(r.Errors, types.Issue{
					Kind:    types.IssueDuplicate,
					Entity:  col.kind,
					ID:      id,
					Message: fmt.Sprintf("duplicate %s id: %s", col.kind, id),
				})
				r.Stats.Duplicates++
				continue
			}
			seen.add(id)
		}
	}
}

// checkReferences resolves project and integration references against id
// sets built from the raw collections, so a duplicated id still exists.
func checkReferences(s types.Snapshot, r *types.Report) {
	companies := newIDSet(companyIDs(s))
	technologies := newIDSet(technologyIDs(s))
	modules := newIDSet(moduleIDs(s))
	projects := newIDSet(projectIDs(s))

	missing := func(kind types.EntityKind, id, field, ref string, target types.EntityKind) {
		r.Errors = append(r.Errors, types.Issue{
			Kind:    types.IssueMissingReference,
			Entity:  kind,
			ID:      id,
			Field:   field,
			Ref:     ref,
			Message: fmt.Sprintf("%s %s references missing %s: %s", kind, id, target, ref),
		})
		r.Stats.BrokenReferences++
	}

	for _, p := range s.Projects {
		for _, ref := range p.Partners {
			if !companies.has(ref) {
				missing(types.KindProject, p.ID, "partners", ref, types.KindCompany)
			}
		}
		for _, ref := range p.Technologies {
			if !technologies.has(ref) {
				missing(types.KindProject, p.ID, "technologies", ref, types.KindTechnology)
			}
		}
		for _, ref := range p.Modules {
			if !modules.has(ref) {
				missing(types.KindProject, p.ID, "modules", ref, types.KindModule)
			}
		}
	}

	endpoint := func(ref string) bool {
		return ref == types.SystemEndpoint || technologies.has(ref) || modules.has(ref)
	}
	for _, in := range s.Integrations {
		if !endpoint(in.Source) {
			missing(types.KindIntegration, in.ID, "source", in.Source, "technology or module")
		}
		if !endpoint(in.Target) {
			missing(types.KindIntegration, in.ID, "target", in.Target, "technology or module")
		}
		for _, ref := range in.Projects {
			if !projects.has(ref) {
				missing(types.KindIntegration, in.ID, "projects", ref, types.KindProject)
			}
		}
	}
}

// checkUnused warns about technologies, modules and active companies that
// no project or integration reaches. Integration endpoints only count
// towards technology usage.
func checkUnused(s types.Snapshot, r *types.Report) {
	usedTechnologies := make(idSet)
	usedModules := make(idSet)
	usedCompanies := make(idSet)

	for _, p := range s.Projects {
		for _, id := range p.Technologies {
			usedTechnologies.add(id)
		}
		for _, id := range p.Modules {
			usedModules.add(id)
		}
		for _, id := range p.Partners {
			usedCompanies.add(id)
		}
	}
	for _, in := range s.Integrations {
		if in.Source != types.SystemEndpoint {
			usedTechnologies.add(in.Source)
		}
		if in.Target != types.SystemEndpoint {
			usedTechnologies.add(in.Target)
		}
	}

	unused := func(kind types.EntityKind, id string) {
		r.Warnings = append(r.Warnings, types.Issue{
			Kind:    types.IssueUnusedEntity,
			Entity:  kind,
			ID:      id,
			Message: fmt.Sprintf("%s %s is not referenced by any project or integration", kind, id),
		})
		r.Stats.UnusedEntities++
	}

	for _, t := range s.Technologies {
		if !usedTechnologies.has(t.ID) {
			unused(types.KindTechnology, t.ID)
		}
	}
	for _, m := range s.Modules {
		if !usedModules.has(m.ID) {
			unused(types.KindModule, m.ID)
		}
	}
	for _, c := range s.Companies {
		if c.Status == types.CompanyActive && !usedCompanies.has(c.ID) {
			unused(types.KindCompany, c.ID)
		}
	}
}
