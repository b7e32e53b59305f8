package schema_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/folio/internal/schema"
	"github.com/scrypster/folio/pkg/types"
)

func violation(t *testing.T, err error) *schema.SchemaViolation {
	t.Helper()
	require.Error(t, err)
	var sv *schema.SchemaViolation
	require.True(t, errors.As(err, &sv), "expected *SchemaViolation, got %T", err)
	return sv
}

func TestDecodeSnapshot_AppliesDefaults(t *testing.T) {
	snap, err := schema.DecodeSnapshot([]byte(`{
		"companies": [{"id": " ACME ", "name": "Acme", "type": "MainPartner"}],
		"technologies": [{"id": "react", "name": "React", "category": "frontend"}],
		"modules": [{"id": "crm", "name": "CRM", "type": "app", "category": "business"}],
		"projects": [{"id": "site", "name": "Site", "status": "completed"}],
		"integrations": [{"id": "i1", "source": "System", "target": "react", "type": "api", "status": "active"}]
	}`))
	require.NoError(t, err)

	require.Len(t, snap.Companies, 1)
	assert.Equal(t, "acme", snap.Companies[0].ID, "identifiers are trimmed and lowercased")
	assert.Equal(t, types.CompanyActive, snap.Companies[0].Status, "company status defaults to active")

	require.Len(t, snap.Projects, 1)
	p := snap.Projects[0]
	assert.NotNil(t, p.Partners)
	assert.Empty(t, p.Partners)
	assert.NotNil(t, p.Technologies)
	assert.NotNil(t, p.Platforms)
	assert.NotNil(t, p.Modules)
	assert.NotNil(t, p.Deliverables)

	require.Len(t, snap.Integrations, 1)
	assert.Equal(t, types.SystemEndpoint, snap.Integrations[0].Source)
	assert.NotNil(t, snap.Integrations[0].Projects)
}

func TestDecodeSnapshot_MissingCollectionsAreEmpty(t *testing.T) {
	snap, err := schema.DecodeSnapshot([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
	assert.NotNil(t, snap.Companies)
	assert.NotNil(t, snap.Integrations)
}

func TestDecodeSnapshot_InvalidJSON(t *testing.T) {
	_, err := schema.DecodeSnapshot([]byte(`{"companies": [`))
	require.Error(t, err)
	var sv *schema.SchemaViolation
	assert.False(t, errors.As(err, &sv), "malformed JSON is not a schema violation")
}

func TestValidateSnapshot_CollectsAllViolations(t *testing.T) {
	_, err := schema.DecodeSnapshot([]byte(`{
		"companies": [
			{"id": "", "name": "Acme", "type": "MainPartner"},
			{"id": "ok", "name": "` + strings.Repeat("x", 101) + `", "type": "Unknown"}
		],
		"projects": [
			{"id": "p1", "name": "P", "status": "done", "partners": ["acme", 7]}
		]
	}`))
	sv := violation(t, err)

	assert.True(t, sv.Has("companies[0].id"))
	assert.True(t, sv.Has("companies[1].name"))
	assert.True(t, sv.Has("companies[1].type"))
	assert.True(t, sv.Has("projects[0].status"))
	assert.True(t, sv.Has("projects[0].partners[1]"))
	assert.Len(t, sv.Fields, 5)
}

func TestValidateSnapshot_ConstraintNames(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		path       string
		constraint string
	}{
		{
			name:       "malformed identifier",
			input:      `{"technologies": [{"id": "re act!", "name": "React", "category": "fe"}]}`,
			path:       "technologies[0].id",
			constraint: "identifier",
		},
		{
			name:       "name too long",
			input:      `{"modules": [{"id": "m", "name": "` + strings.Repeat("n", 101) + `", "type": "t", "category": "core"}]}`,
			path:       "modules[0].name",
			constraint: "max=100",
		},
		{
			name:       "enum outside closed set",
			input:      `{"modules": [{"id": "m", "name": "M", "type": "t", "category": "misc"}]}`,
			path:       "modules[0].category",
			constraint: "oneof=core business integration",
		},
		{
			name:       "wrong primitive type",
			input:      `{"technologies": [{"id": "go", "name": 42, "category": "lang"}]}`,
			path:       "technologies[0].name",
			constraint: "type=string",
		},
		{
			name:       "array required",
			input:      `{"projects": [{"id": "p", "name": "P", "status": "planned", "modules": "crm"}]}`,
			path:       "projects[0].modules",
			constraint: "type=array",
		},
		{
			name:       "collection must be array",
			input:      `{"companies": {"id": "acme"}}`,
			path:       "companies",
			constraint: "type=array",
		},
		{
			name:       "entity must be object",
			input:      `{"companies": ["acme"]}`,
			path:       "companies[0]",
			constraint: "type=object",
		},
		{
			name:       "missing required field",
			input:      `{"integrations": [{"id": "i", "source": "a", "type": "api", "status": "active"}]}`,
			path:       "integrations[0].target",
			constraint: "required",
		},
		{
			name:       "description too long",
			input:      `{"projects": [{"id": "p", "name": "P", "status": "planned", "description": "` + strings.Repeat("d", 1001) + `"}]}`,
			path:       "projects[0].description",
			constraint: "max=1000",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := schema.DecodeSnapshot([]byte(tc.input))
			sv := violation(t, err)
			require.Len(t, sv.Fields, 1, "violations: %v", sv.Fields)
			assert.Equal(t, tc.path, sv.Fields[0].Path)
			assert.Equal(t, tc.constraint, sv.Fields[0].Constraint)
		})
	}
}

func TestValidateSnapshot_TopLevelMustBeObject(t *testing.T) {
	_, err := schema.DecodeSnapshot([]byte(`[]`))
	sv := violation(t, err)
	assert.True(t, sv.Has("$"))
}

func TestValidateCompany_Single(t *testing.T) {
	c, err := schema.ValidateCompany(map[string]any{
		"id":     "Globex",
		"name":   "Globex",
		"type":   "TechnologyPartner",
		"status": "inactive",
	})
	require.NoError(t, err)
	assert.Equal(t, "globex", c.ID)
	assert.Equal(t, types.CompanyInactive, c.Status)

	_, err = schema.ValidateCompany(map[string]any{"id": "x", "name": "", "type": "Category"})
	sv := violation(t, err)
	assert.True(t, sv.Has("name"))
}

func TestValidateProject_NormalizesReferences(t *testing.T) {
	p, err := schema.ValidateProject(map[string]any{
		"id":           "p1",
		"name":         "Portal",
		"status":       "in-progress",
		"partners":     []any{" ACME "},
		"technologies": []any{"React"},
		"deliverables": []any{"Design System"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, p.Partners)
	assert.Equal(t, []string{"react"}, p.Technologies)
	assert.Equal(t, []string{"Design System"}, p.Deliverables, "deliverables are free text")
}

func TestValidateIntegration_Errors(t *testing.T) {
	_, err := schema.ValidateIntegration(map[string]any{
		"id":       "i1",
		"source":   "react",
		"target":   "crm",
		"type":     "api",
		"status":   "retired",
		"projects": []any{"bad id"},
	})
	sv := violation(t, err)
	assert.True(t, sv.Has("status"))
	assert.True(t, sv.Has("projects[0]"))
}

func TestSchemaViolation_ErrorMessage(t *testing.T) {
	sv := &schema.SchemaViolation{Fields: []schema.FieldError{
		{Path: "companies[0].id", Constraint: "required"},
		{Path: "companies[0].type", Constraint: "oneof=a b", Value: "c"},
	}}
	msg := sv.Error()
	assert.Contains(t, msg, "2 violations")
	assert.Contains(t, msg, "companies[0].type: oneof=a b (got c)")
}

func TestValidateSnapshot_ConcurrentUse(t *testing.T) {
	input := []byte(`{"companies": [{"id": "acme", "name": "Acme", "type": "Category"}]}`)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := schema.DecodeSnapshot(input)
			assert.NoError(t, err)
			assert.Len(t, snap.Companies, 1)
		}()
	}
	wg.Wait()
}

func TestCollectionKey(t *testing.T) {
	assert.Equal(t, "companies", schema.CollectionKey(types.KindCompany))
	assert.Equal(t, "integrations", schema.CollectionKey(types.KindIntegration))
	assert.Equal(t, "", schema.CollectionKey("unknown"))
}
