package types

// Company is a partner, vendor or category referenced by projects.
type Company struct {
	ID     string `json:"id" validate:"identifier"`
	Name   string `json:"name" validate:"min=1,max=100"`
	Type   string `json:"type" validate:"oneof=MainPartner TechnologyPartner SolutionProvider Category InvalidEntry"`
	Status string `json:"status" validate:"oneof=active inactive mentioned"` // defaults to active
}

// Technology is a language, framework or product used by projects.
type Technology struct {
	ID          string `json:"id" validate:"identifier"`
	Name        string `json:"name" validate:"min=1,max=100"`
	Category    string `json:"category" validate:"min=1"`
	Subcategory string `json:"subcategory,omitempty"`
}

// Module is a functional building block (e.g. an ERP module) delivered by projects.
type Module struct {
	ID       string `json:"id" validate:"identifier"`
	Name     string `json:"name" validate:"min=1,max=100"`
	Type     string `json:"type"`
	Category string `json:"category" validate:"oneof=core business integration"`
	Platform string `json:"platform,omitempty"`
}

// Project is the data-quality view of a delivered or planned engagement.
// It is distinct from the UI portfolio project (see AdminProject).
type Project struct {
	ID           string   `json:"id" validate:"identifier"`
	Name         string   `json:"name" validate:"min=1,max=200"`
	Status       string   `json:"status" validate:"oneof=completed planned in-progress on-hold"`
	Description  string   `json:"description" validate:"max=1000"`
	Partners     []string `json:"partners" validate:"dive,identifier"`
	Technologies []string `json:"technologies" validate:"dive,identifier"`
	Platforms    []string `json:"platforms" validate:"dive,identifier"`
	Modules      []string `json:"modules" validate:"dive,identifier"`
	Deliverables []string `json:"deliverables"`
}

// Integration connects two technologies or modules (or the "system"
// endpoint) and lists the projects that delivered it.
type Integration struct {
	ID       string   `json:"id" validate:"identifier"`
	Source   string   `json:"source" validate:"identifier"`
	Target   string   `json:"target" validate:"identifier"`
	Type     string   `json:"type"`
	Status   string   `json:"status" validate:"oneof=active planned deprecated"`
	Projects []string `json:"projects" validate:"dive,identifier"`
}

// Snapshot is the full normalized data set at a point in time.
// It is the unit that validation and deduplication operate on.
// Referential integrity is not enforced here: dangling references are
// valid input and are reported by the quality validator.
type Snapshot struct {
	Companies    []Company     `json:"companies"`
	Technologies []Technology  `json:"technologies"`
	Modules      []Module      `json:"modules"`
	Projects     []Project     `json:"projects"`
	Integrations []Integration `json:"integrations"`
}

// EmptySnapshot returns a snapshot whose collections are empty, non-nil slices,
// so that it serializes as arrays rather than null.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Companies:    []Company{},
		Technologies: []Technology{},
		Modules:      []Module{},
		Projects:     []Project{},
		Integrations: []Integration{},
	}
}

// Len returns the raw number of entities across all collections.
func (s Snapshot) Len() int {
	return len(s.Companies) + len(s.Technologies) + len(s.Modules) +
		len(s.Projects) + len(s.Integrations)
}

// Count returns the raw number of entities in the collection of the given kind.
func (s Snapshot) Count(kind EntityKind) int {
	switch kind {
	case KindCompany:
		return len(s.Companies)
	case KindTechnology:
		return len(s.Technologies)
	case KindModule:
		return len(s.Modules)
	case KindProject:
		return len(s.Projects)
	case KindIntegration:
		return len(s.Integrations)
	}
	return 0
}
