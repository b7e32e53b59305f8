package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// AdminProject is the portfolio project record edited in the admin panel.
// Only the core fields are typed; every other key is preserved in Extra so
// documents round-trip unchanged.
type AdminProject struct {
	ID        string
	Title     string
	Featured  bool
	UpdatedAt time.Time
	Extra     map[string]any
}

// AdminSkill is the skill record edited in the admin panel.
type AdminSkill struct {
	ID    string
	Name  string
	Extra map[string]any
}

// UnmarshalJSON decodes the typed core fields and keeps the rest in Extra.
func (p *AdminProject) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := AdminProject{}
	for key, value := range raw {
		var err error
		switch key {
		case "id":
			err = json.Unmarshal(value, &out.ID)
		case "title":
			err = json.Unmarshal(value, &out.Title)
		case "featured":
			err = json.Unmarshal(value, &out.Featured)
		case "updatedAt":
			out.UpdatedAt, err = parseTimestamp(value)
		default:
			err = out.setExtra(key, value)
		}
		if err != nil {
			return fmt.Errorf("admin project field %q: %w", key, err)
		}
	}
	*p = out
	return nil
}

// MarshalJSON writes Extra first, then the core fields, so core values win.
func (p AdminProject) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extra)+4)
	for k, v := range p.Extra {
		m[k] = v
	}
	m["id"] = p.ID
	m["title"] = p.Title
	m["featured"] = p.Featured
	if !p.UpdatedAt.IsZero() {
		m["updatedAt"] = p.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(m)
}

func (p *AdminProject) setExtra(key string, value json.RawMessage) error {
	if p.Extra == nil {
		p.Extra = make(map[string]any)
	}
	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		return err
	}
	p.Extra[key] = v
	return nil
}

// UnmarshalJSON decodes the typed core fields and keeps the rest in Extra.
func (s *AdminSkill) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := AdminSkill{}
	for key, value := range raw {
		var err error
		switch key {
		case "id":
			err = json.Unmarshal(value, &out.ID)
		case "name":
			err = json.Unmarshal(value, &out.Name)
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]any)
			}
			var v any
			err = json.Unmarshal(value, &v)
			out.Extra[key] = v
		}
		if err != nil {
			return fmt.Errorf("admin skill field %q: %w", key, err)
		}
	}
	*s = out
	return nil
}

// MarshalJSON writes Extra first, then the core fields.
func (s AdminSkill) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(s.Extra)+2)
	for k, v := range s.Extra {
		m[k] = v
	}
	m["id"] = s.ID
	m["name"] = s.Name
	return json.Marshal(m)
}

// parseTimestamp accepts the shapes the document store and the export
// scripts produce: an RFC 3339 string, epoch milliseconds, or a
// {seconds, nanoseconds} object (with or without leading underscores).
func parseTimestamp(value json.RawMessage) (time.Time, error) {
	if string(value) == "null" {
		return time.Time{}, nil
	}

	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		if s == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, nil
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}

	var ms float64
	if err := json.Unmarshal(value, &ms); err == nil {
		return time.UnixMilli(int64(ms)).UTC(), nil
	}

	var obj map[string]float64
	if err := json.Unmarshal(value, &obj); err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %s", string(value))
	}
	secs, ok := obj["seconds"]
	if !ok {
		secs, ok = obj["_seconds"]
	}
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp object without seconds")
	}
	nanos := obj["nanoseconds"]
	if n, ok := obj["_nanoseconds"]; ok {
		nanos = n
	}
	return time.Unix(int64(secs), int64(nanos)).UTC(), nil
}
