// Package types defines the core data structures for the folio portfolio
// data set: companies, technologies, modules, projects and integrations,
// the snapshot that aggregates them, the loosely typed admin records and the
// quality report produced by validation.
package types

// EntityKind names one of the five snapshot collections.
type EntityKind string

// Entity kinds, in the fixed order in which collections are processed.
const (
	KindCompany     EntityKind = "company"
	KindTechnology  EntityKind = "technology"
	KindModule      EntityKind = "module"
	KindProject     EntityKind = "project"
	KindIntegration EntityKind = "integration"
)

// EntityKinds lists every kind in snapshot processing order.
var EntityKinds = []EntityKind{
	KindCompany,
	KindTechnology,
	KindModule,
	KindProject,
	KindIntegration,
}

// Company type constants
const (
	CompanyMainPartner       = "MainPartner"
	CompanyTechnologyPartner = "TechnologyPartner"
	CompanySolutionProvider  = "SolutionProvider"
	CompanyCategory          = "Category"
	CompanyInvalidEntry      = "InvalidEntry"
)

// ValidCompanyTypes is a slice of all valid company types for validation
var ValidCompanyTypes = []string{
	CompanyMainPartner,
	CompanyTechnologyPartner,
	CompanySolutionProvider,
	CompanyCategory,
	CompanyInvalidEntry,
}

// Company status constants
const (
	CompanyActive    = "active"    // Currently partnered
	CompanyInactive  = "inactive"  // Former partner, kept for history
	CompanyMentioned = "mentioned" // Referenced in copy only
)

// ValidCompanyStatuses is a slice of all valid company statuses
var ValidCompanyStatuses = []string{
	CompanyActive,
	CompanyInactive,
	CompanyMentioned,
}

// Module category constants
const (
	ModuleCore        = "core"
	ModuleBusiness    = "business"
	ModuleIntegration = "integration"
)

// ValidModuleCategories is a slice of all valid module categories
var ValidModuleCategories = []string{
	ModuleCore,
	ModuleBusiness,
	ModuleIntegration,
}

// Project status constants
const (
	ProjectCompleted  = "completed"
	ProjectPlanned    = "planned"
	ProjectInProgress = "in-progress"
	ProjectOnHold     = "on-hold"
)

// ValidProjectStatuses is a slice of all valid project statuses
var ValidProjectStatuses = []string{
	ProjectCompleted,
	ProjectPlanned,
	ProjectInProgress,
	ProjectOnHold,
}

// Integration status constants
const (
	IntegrationActive     = "active"
	IntegrationPlanned    = "planned"
	IntegrationDeprecated = "deprecated"
)

// ValidIntegrationStatuses is a slice of all valid integration statuses
var ValidIntegrationStatuses = []string{
	IntegrationActive,
	IntegrationPlanned,
	IntegrationDeprecated,
}

// SystemEndpoint is the literal integration endpoint that refers to the
// portfolio platform itself rather than a technology or module.
const SystemEndpoint = "system"

// IsValidCompanyType checks if the given company type is valid
func IsValidCompanyType(companyType string) bool {
	return contains(ValidCompanyTypes, companyType)
}

// IsValidCompanyStatus checks if the given company status is valid
func IsValidCompanyStatus(status string) bool {
	return contains(ValidCompanyStatuses, status)
}

// IsValidModuleCategory checks if the given module category is valid
func IsValidModuleCategory(category string) bool {
	return contains(ValidModuleCategories, category)
}

// IsValidProjectStatus checks if the given project status is valid
func IsValidProjectStatus(status string) bool {
	return contains(ValidProjectStatuses, status)
}

// IsValidIntegrationStatus checks if the given integration status is valid
func IsValidIntegrationStatus(status string) bool {
	return contains(ValidIntegrationStatuses, status)
}

// IsValidEntityKind checks if the given kind names a snapshot collection
func IsValidEntityKind(kind EntityKind) bool {
	for _, k := range EntityKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
