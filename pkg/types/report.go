package types

// IssueKind classifies a finding in a quality report.
type IssueKind string

// Issue kinds. Duplicates and missing references are errors; unused
// entities and admin duplicates are warnings.
const (
	IssueDuplicate        IssueKind = "duplicate"
	IssueMissingReference IssueKind = "missing_reference"
	IssueUnusedEntity     IssueKind = "unused_entity"
	IssueDuplicateTitle   IssueKind = "duplicate_title"
	IssueDuplicateName    IssueKind = "duplicate_name"
)

// Issue is a single finding. Entity and ID identify the entity the finding
// is about; Field and Ref are set for missing references.
type Issue struct {
	Kind    IssueKind  `json:"kind"`
	Entity  EntityKind `json:"entity,omitempty"`
	ID      string     `json:"id,omitempty"`
	Field   string     `json:"field,omitempty"`
	Ref     string     `json:"ref,omitempty"`
	Message string     `json:"message"`
}

// Stats aggregates the counts behind a report.
type Stats struct {
	TotalEntities    int `json:"totalEntities"`
	Duplicates       int `json:"duplicates"`
	BrokenReferences int `json:"brokenReferences"`
	UnusedEntities   int `json:"unusedEntities"`
}

// Report is the result of a quality validation pass.
// IsValid is true exactly when Errors is empty; warnings never affect it.
type Report struct {
	IsValid  bool    `json:"isValid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Stats    Stats   `json:"stats"`
}

// AdminReport is the looser admin dashboard check with its derived score.
type AdminReport struct {
	Warnings []Issue `json:"warnings"`
	Stats    Stats   `json:"stats"`
	Score    int     `json:"score"`
}

// CountByKind returns how many errors and warnings carry the given kind.
func (r Report) CountByKind(kind IssueKind) int {
	n := 0
	for _, issue := range r.Errors {
		if issue.Kind == kind {
			n++
		}
	}
	for _, issue := range r.Warnings {
		if issue.Kind == kind {
			n++
		}
	}
	return n
}
