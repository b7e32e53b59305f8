package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/scrypster/folio/pkg/types"
)

// validate holds the struct-tag rules declared on the pkg/types entities.
// validator.Validate caches struct metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return types.IsValidID(fl.Field().String())
	})
	return v
}

// collection binds a snapshot key to the decoder for its entity kind.
type collection struct {
	kind types.EntityKind
	key  string
	add  func(c *checker, s *types.Snapshot, path string, v any)
}

// collections is indexed in snapshot processing order.
var collections = []collection{
	{types.KindCompany, "companies", func(c *checker, s *types.Snapshot, path string, v any) {
		if e, ok := c.company(path, v); ok {
			s.Companies = append(s.Companies, e)
		}
	}},
	{types.KindTechnology, "technologies", func(c *checker, s *types.Snapshot, path string, v any) {
		if e, ok := c.technology(path, v); ok {
			s.Technologies = append(s.Technologies, e)
		}
	}},
	{types.KindModule, "modules", func(c *checker, s *types.Snapshot, path string, v any) {
		if e, ok := c.module(path, v); ok {
			s.Modules = append(s.Modules, e)
		}
	}},
	{types.KindProject, "projects", func(c *checker, s *types.Snapshot, path string, v any) {
		if e, ok := c.project(path, v); ok {
			s.Projects = append(s.Projects, e)
		}
	}},
	{types.KindIntegration, "integrations", func(c *checker, s *types.Snapshot, path string, v any) {
		if e, ok := c.integration(path, v); ok {
			s.Integrations = append(s.Integrations, e)
		}
	}},
}

// CollectionKey returns the snapshot JSON key for kind.
func CollectionKey(kind types.EntityKind) string {
	for _, col := range collections {
		if col.kind == kind {
			return col.key
		}
	}
	return ""
}

// DecodeSnapshot parses JSON and validates it as a snapshot.
func DecodeSnapshot(data []byte) (types.Snapshot, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.Snapshot{}, fmt.Errorf("schema: invalid json: %w", err)
	}
	return ValidateSnapshot(raw)
}

// ValidateSnapshot validates an untyped value (as produced by encoding/json)
// against the snapshot shape. Missing collections default to empty lists.
func ValidateSnapshot(v any) (types.Snapshot, error) {
	c := newChecker()
	snap := types.EmptySnapshot()

	obj, ok := c.object("", v)
	if !ok {
		return types.Snapshot{}, c.err()
	}
	for _, col := range collections {
		raw, present := obj[col.key]
		if !present || raw == nil {
			continue
		}
		items, ok := raw.([]any)
		if !ok {
			c.fail(col.key, "type=array", raw)
			continue
		}
		for i, item := range items {
			col.add(c, &snap, fmt.Sprintf("%s[%d]", col.key, i), item)
		}
	}
	if err := c.err(); err != nil {
		return types.Snapshot{}, err
	}
	return snap, nil
}

// ValidateCompany validates a single company value.
func ValidateCompany(v any) (types.Company, error) { return one(v, (*checker).company) }

// ValidateTechnology validates a single technology value.
func ValidateTechnology(v any) (types.Technology, error) { return one(v, (*checker).technology) }

// ValidateModule validates a single module value.
func ValidateModule(v any) (types.Module, error) { return one(v, (*checker).module) }

// ValidateProject validates a single project value.
func ValidateProject(v any) (types.Project, error) { return one(v, (*checker).project) }

// ValidateIntegration validates a single integration value.
func ValidateIntegration(v any) (types.Integration, error) { return one(v, (*checker).integration) }

func one[T any](v any, decode func(*checker, string, any) (T, bool)) (T, error) {
	c := newChecker()
	e, _ := decode(c, "", v)
	if err := c.err(); err != nil {
		var zero T
		return zero, err
	}
	return e, nil
}

// checker accumulates field errors across a whole document.
type checker struct {
	fields []FieldError
	seen   map[string]bool
}

func newChecker() *checker {
	return &checker{seen: make(map[string]bool)}
}

func (c *checker) fail(path, constraint string, value any) {
	if c.seen[path] {
		return
	}
	c.seen[path] = true
	c.fields = append(c.fields, FieldError{Path: path, Constraint: constraint, Value: value})
}

func (c *checker) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &SchemaViolation{Fields: c.fields}
}

func (c *checker) object(path string, v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		p := path
		if p == "" {
			p = "$"
		}
		c.fail(p, "type=object", v)
		return nil, false
	}
	return obj, true
}

// str reads a string field. Missing required fields and non-string values
// are recorded; an optional missing field yields "".
func (c *checker) str(path string, obj map[string]any, key string, required bool) string {
	p := join(path, key)
	raw, present := obj[key]
	if !present || raw == nil {
		if required {
			c.fail(p, "required", nil)
		}
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		c.fail(p, "type=string", raw)
		return ""
	}
	return s
}

func (c *checker) id(path string, obj map[string]any, key string) string {
	return types.NormalizeID(c.str(path, obj, key, true))
}

// list reads an optional array of strings; missing means empty.
func (c *checker) list(path string, obj map[string]any, key string) []string {
	p := join(path, key)
	out := []string{}
	raw, present := obj[key]
	if !present || raw == nil {
		return out
	}
	items, ok := raw.([]any)
	if !ok {
		c.fail(p, "type=array", raw)
		return out
	}
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			c.fail(fmt.Sprintf("%s[%d]", p, i), "type=string", item)
			continue
		}
		out = append(out, s)
	}
	return out
}

// check runs the struct-tag rules and records each failure under path.
func (c *checker) check(path string, entity any) {
	err := validate.Struct(entity)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.fail(join(path, "$"), err.Error(), nil)
		return
	}
	for _, fe := range verrs {
		constraint := fe.Tag()
		if fe.Param() != "" {
			constraint += "=" + fe.Param()
		}
		c.fail(join(path, fieldPath(fe.Namespace())), constraint, fe.Value())
	}
}

func (c *checker) company(path string, v any) (types.Company, bool) {
	obj, ok := c.object(path, v)
	if !ok {
		return types.Company{}, false
	}
	e := types.Company{
		ID:     c.id(path, obj, "id"),
		Name:   c.str(path, obj, "name", true),
		Type:   c.str(path, obj, "type", true),
		Status: c.str(path, obj, "status", false),
	}
	if e.Status == "" {
		e.Status = types.CompanyActive
	}
	c.check(path, e)
	return e, true
}

func (c *checker) technology(path string, v any) (types.Technology, bool) {
	obj, ok := c.object(path, v)
	if !ok {
		return types.Technology{}, false
	}
	e := types.Technology{
		ID:          c.id(path, obj, "id"),
		Name:        c.str(path, obj, "name", true),
		Category:    c.str(path, obj, "category", true),
		Subcategory: c.str(path, obj, "subcategory", false),
	}
	c.check(path, e)
	return e, true
}

func (c *checker) module(path string, v any) (types.Module, bool) {
	obj, ok := c.object(path, v)
	if !ok {
		return types.Module{}, false
	}
	e := types.Module{
		ID:       c.id(path, obj, "id"),
		Name:     c.str(path, obj, "name", true),
		Type:     c.str(path, obj, "type", true),
		Category: c.str(path, obj, "category", true),
		Platform: c.str(path, obj, "platform", false),
	}
	c.check(path, e)
	return e, true
}

func (c *checker) project(path string, v any) (types.Project, bool) {
	obj, ok := c.object(path, v)
	if !ok {
		return types.Project{}, false
	}
	e := types.Project{
		ID:           c.id(path, obj, "id"),
		Name:         c.str(path, obj, "name", true),
		Status:       c.str(path, obj, "status", true),
		Description:  c.str(path, obj, "description", false),
		Partners:     types.NormalizeIDs(c.list(path, obj, "partners")),
		Technologies: types.NormalizeIDs(c.list(path, obj, "technologies")),
		Platforms:    types.NormalizeIDs(c.list(path, obj, "platforms")),
		Modules:      types.NormalizeIDs(c.list(path, obj, "modules")),
		Deliverables: c.list(path, obj, "deliverables"),
	}
	c.check(path, e)
	return e, true
}

func (c *checker) integration(path string, v any) (types.Integration, bool) {
	obj, ok := c.object(path, v)
	if !ok {
		return types.Integration{}, false
	}
	e := types.Integration{
		ID:       c.id(path, obj, "id"),
		Source:   c.id(path, obj, "source"),
		Target:   c.id(path, obj, "target"),
		Type:     c.str(path, obj, "type", true),
		Status:   c.str(path, obj, "status", true),
		Projects: types.NormalizeIDs(c.list(path, obj, "projects")),
	}
	c.check(path, e)
	return e, true
}

// fieldPath drops the leading struct name from a validator namespace
// ("Project.partners[0]" -> "partners[0]").
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
