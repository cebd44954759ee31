// Package report projects a hardware model into a structural key-value
// report and serializes it deterministically.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

// SchemaVersion is bumped whenever report keys or value units change.
const SchemaVersion uint64 = 1

// Naming selects the key naming pass applied to a report.
type Naming string

const (
	// NamingCanonical keeps the camelCase canonical field names.
	NamingCanonical Naming = "canonical"
	// NamingTargetSpecific uses firmware-configuration names (OpenCore
	// PlatformInfo style) and PascalCase for everything else.
	NamingTargetSpecific Naming = "targetSpecific"
)

// ParseNaming accepts the naming names case-insensitively, with or without
// separators. An empty string selects NamingCanonical.
func ParseNaming(s string) (Naming, error) {
	switch strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s)) {
	case "", "canonical":
		return NamingCanonical, nil
	case "targetspecific", "target":
		return NamingTargetSpecific, nil
	}
	return "", fmt.Errorf("unknown field naming %q", s)
}

// Options controls report generation. The zero value omits unknown fields,
// uses canonical names and keeps every memory module.
type Options struct {
	// IncludeUnknownFields keeps every canonical field, with unknown values
	// rendered as null.
	IncludeUnknownFields bool
	FieldNaming          Naming
	// DropEmptyModules removes memory modules with no known field.
	DropEmptyModules bool
}

// Report is a read-only structural projection of one HardwareInfo.
type Report struct {
	fields  map[string]any
	unknown []hardware.Class
	naming  Naming
}

// Fields returns a deep copy of the report mapping.
func (r *Report) Fields() map[string]any {
	return deepCopy(r.fields).(map[string]any)
}

// Get returns a deep copy of one top-level value.
func (r *Report) Get(key string) (any, bool) {
	v, ok := r.fields[key]
	if !ok {
		return nil, false
	}
	return deepCopy(v), true
}

// Keys returns the top-level keys in serialization order.
func (r *Report) Keys() []string {
	return sortedKeys(r.fields)
}

// Unknown lists the hardware classes that could not be detected.
func (r *Report) Unknown() []hardware.Class {
	return append([]hardware.Class(nil), r.unknown...)
}

// Naming reports the key naming the report was built with.
func (r *Report) Naming() Naming { return r.naming }

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	}
	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
