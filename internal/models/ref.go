package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Ref is a relational reference as returned by the backend: either a bare id
// string or a populated document carrying `_id`. Decoding normalises both
// shapes so callers only ever deal with ID().
type Ref struct {
	id    string
	Name  string
	Code  string
	Email string
}

// NewRef wraps a plain identifier.
func NewRef(id string) Ref {
	return Ref{id: strings.TrimSpace(id)}
}

// ID returns the identifier, empty when the reference is unset.
func (r Ref) ID() string { return r.id }

// IsZero reports whether no reference is set.
func (r Ref) IsZero() bool { return r.id == "" }

// Label returns a human readable name for tables, falling back to the id.
func (r Ref) Label() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.Code != "":
		return r.Code
	}
	return r.id
}

type populatedRef struct {
	ID        string `json:"_id"`
	AltID     string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Code      string `json:"code"`
	Email     string `json:"email"`
}

// UnmarshalJSON accepts null, "id" or {"_id": "id", ...}.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = NewRef(id)
		return nil
	}
	if data[0] != '{' {
		return fmt.Errorf("models: unsupported reference shape %s", string(data))
	}
	var p populatedRef
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	id := p.ID
	if id == "" {
		id = p.AltID
	}
	name := p.Name
	if name == "" {
		name = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	*r = Ref{id: strings.TrimSpace(id), Name: name, Code: p.Code, Email: p.Email}
	return nil
}

// MarshalJSON always emits the bare identifier, never the populated object.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}

// ResolveID extracts an identifier from any of the shapes a relational value
// takes: string (bare or a serialised document), Ref, *Ref, or a decoded
// object carrying `_id`/`id`.
func ResolveID(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "{") {
			var r Ref
			if err := r.UnmarshalJSON([]byte(v)); err == nil {
				return r.ID()
			}
		}
		return v
	case Ref:
		return v.ID()
	case *Ref:
		if v == nil {
			return ""
		}
		return v.ID()
	case map[string]interface{}:
		if id, ok := v["_id"].(string); ok && id != "" {
			return strings.TrimSpace(id)
		}
		if id, ok := v["id"].(string); ok {
			return strings.TrimSpace(id)
		}
	case json.RawMessage:
		var r Ref
		if err := r.UnmarshalJSON(v); err == nil {
			return r.ID()
		}
	}
	return ""
}
