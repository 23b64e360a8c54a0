package types

import (
	"database/sql/driver"
	"encoding/json"
	"sort"
	"strings"
)

// VariantAxis is one configurable dimension of a product, e.g. "size" with
// options ["S","M","L"]. Option order is the vendor's display order.
type VariantAxis struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// VariantAxes is the ordered list of axes a product defines.
type VariantAxes []VariantAxis

// HasOption reports whether the named axis carries the given option value.
func (v VariantAxes) HasOption(axis, option string) bool {
	for _, candidate := range v {
		if candidate.Name != axis {
			continue
		}
		for _, opt := range candidate.Options {
			if opt == option {
				return true
			}
		}
	}
	return false
}

// Names returns the axis names in definition order.
func (v VariantAxes) Names() []string {
	names := make([]string, 0, len(v))
	for _, axis := range v {
		names = append(names, axis.Name)
	}
	return names
}

// Value serializes the axes to JSON for a JSONB column.
func (v VariantAxes) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan decodes JSONB into the axes slice.
func (v *VariantAxes) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// SelectedOptions maps axis name to the chosen option value for a cart line.
type SelectedOptions map[string]string

// Key renders a canonical representation used for line identity. Axes are
// sorted by name so logically equal selections always collide.
func (s SelectedOptions) Key() string {
	if len(s) == 0 {
		return ""
	}
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+s[name])
	}
	return strings.Join(parts, ";")
}

// Equal reports whether both selections pick the same value on every axis.
func (s SelectedOptions) Equal(other SelectedOptions) bool {
	if len(s) != len(other) {
		return false
	}
	for name, value := range s {
		if other[name] != value {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the selection.
func (s SelectedOptions) Clone() SelectedOptions {
	if s == nil {
		return nil
	}
	out := make(SelectedOptions, len(s))
	for name, value := range s {
		out[name] = value
	}
	return out
}

// Value serializes the selection to JSON for a JSONB column.
func (s SelectedOptions) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan decodes JSONB into the selection map.
func (s *SelectedOptions) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, s)
}
