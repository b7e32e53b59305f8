package quality

import (
	"fmt"

	"github.com/scrypster/folio/pkg/types"
)

// Score weights
const (
	duplicatePenalty       = 10
	brokenReferencePenalty = 15
	unusedEntityPenalty    = 2
)

// Score derives the 0-100 dashboard score from report stats.
func Score(st types.Stats) int {
	score := 100 -
		st.Duplicates*duplicatePenalty -
		st.BrokenReferences*brokenReferencePenalty -
		st.UnusedEntities*unusedEntityPenalty
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

// CheckAdmin runs the admin dashboard check: duplicate project titles and
// skill names (case-sensitive, no normalization). Each distinct duplicated
// value yields exactly one warning and counts once in Stats.Duplicates,
// regardless of how many times it repeats. A missing title or name is the
// empty value and is counted like any other.
func CheckAdmin(projects []types.AdminProject, skills []types.AdminSkill) types.AdminReport {
	r := types.AdminReport{Warnings: []types.Issue{}}

	titles := make([]string, 0, len(projects))
	for _, p := range projects {
		titles = append(titles, p.Title)
	}
	for _, title := range duplicatedValues(titles) {
		r.Warnings = append(r.Warnings, types.Issue{
			Kind:    types.IssueDuplicateTitle,
			Message: fmt.Sprintf("duplicate project title: %s", title),
		})
		r.Stats.Duplicates++
	}

	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	for _, name := range duplicatedValues(names) {
		r.Warnings = append(r.Warnings, types.Issue{
			Kind:    types.IssueDuplicateName,
			Message: fmt.Sprintf("duplicate skill name: %s", name),
		})
		r.Stats.Duplicates++
	}

	r.Stats.TotalEntities = len(projects) + len(skills)
	r.Score = Score(r.Stats)
	return r
}

// duplicatedValues returns each value occurring more than once, in order of
// first appearance.
func duplicatedValues(values []string) []string {
	counts := make(map[string]int, len(values))
	order := make([]string, 0, len(values))
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	var out []string
	for _, v := range order {
		if counts[v] > 1 {
			out = append(out, v)
		}
	}
	return out
}
