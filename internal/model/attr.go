package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// AttrKind discriminates the value held by an AttrValue.
type AttrKind string

const (
	AttrString AttrKind = "string"
	AttrNumber AttrKind = "number"
	AttrBool   AttrKind = "bool"
	AttrList   AttrKind = "list"
	AttrObject AttrKind = "object"
)

// AttrValue is a tagged value for provider-specific record attributes.
// It marshals as the raw underlying JSON value, so stream payloads look
// like a plain attributes object while column inference and enrichment
// stay type-aware.
type AttrValue struct {
	kind AttrKind
	str  string
	num  float64
	b    bool
	list []string
	obj  map[string]any
}

// Str builds a string attribute.
func Str(s string) AttrValue { return AttrValue{kind: AttrString, str: s} }

// Num builds a numeric attribute.
func Num(n float64) AttrValue { return AttrValue{kind: AttrNumber, num: n} }

// Bool builds a boolean attribute.
func Bool(b bool) AttrValue { return AttrValue{kind: AttrBool, b: b} }

// List builds a string-list attribute.
func List(items ...string) AttrValue { return AttrValue{kind: AttrList, list: items} }

// Obj builds a nested object attribute. Object attributes are carried on
// records but never surface as table columns.
func Obj(m map[string]any) AttrValue { return AttrValue{kind: AttrObject, obj: m} }

// Kind reports the discriminator of the value.
func (v AttrValue) Kind() AttrKind { return v.kind }

// String returns the string form, or "" for non-string kinds.
func (v AttrValue) String() string { return v.str }

// Float returns the numeric form, or 0 for non-number kinds.
func (v AttrValue) Float() float64 { return v.num }

// Strings returns the list form, or nil for non-list kinds.
func (v AttrValue) Strings() []string { return v.list }

// Tabular reports whether the value can render as a flat table cell.
// Lists count as tabular (joined client-side); nested objects do not.
func (v AttrValue) Tabular() bool {
	return v.kind == AttrString || v.kind == AttrNumber || v.kind == AttrBool || v.kind == AttrList
}

// IsZero reports whether the value carries no information.
func (v AttrValue) IsZero() bool {
	switch v.kind {
	case AttrString:
		return v.str == ""
	case AttrList:
		return len(v.list) == 0
	case AttrObject:
		return len(v.obj) == 0
	case "":
		return true
	}
	return false
}

// MarshalJSON emits the raw underlying value.
func (v AttrValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case AttrString:
		return json.Marshal(v.str)
	case AttrNumber:
		return json.Marshal(v.num)
	case AttrBool:
		return json.Marshal(v.b)
	case AttrList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case AttrObject:
		return json.Marshal(v.obj)
	}
	return []byte("null"), nil
}

// UnmarshalJSON infers the kind from the JSON value. Mixed or nested
// arrays fall back to the object kind.
func (v *AttrValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "model: unmarshal attribute")
	}
	switch t := raw.(type) {
	case string:
		*v = Str(t)
	case float64:
		*v = Num(t)
	case bool:
		*v = Bool(t)
	case []any:
		items := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				*v = Obj(map[string]any{"values": t})
				return nil
			}
			items = append(items, s)
		}
		*v = List(items...)
	case map[string]any:
		*v = Obj(t)
	case nil:
		*v = AttrValue{}
	}
	return nil
}
