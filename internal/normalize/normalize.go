// Package normalize maps raw adapter records onto the fixed canonical field
// set of each hardware class.
//
// Normalization is pure: it never logs, never fails and never mutates its
// input. Values that are present but unusable (negative sizes, overflowing
// counts, malformed identifiers) become unknown and are listed in
// Canonical.Invalid so callers can report them.
package normalize

import (
	"encoding/json"
	"fmt"
	"net"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

// Canonical is one normalized record.
type Canonical struct {
	Class hardware.Class
	// Fields holds every canonical field with a known value. Unknown fields
	// are absent.
	Fields map[string]hardware.Value
	// Extra holds cleaned raw entries that map to no canonical field.
	Extra map[string]any
	// Invalid names canonical fields whose raw value was present but corrupt.
	Invalid []string
}

// Text returns the text field name, or "" when it is unknown.
func (c Canonical) Text(name string) string { return c.Fields[name].AsText() }

// Uint returns the integer field name, or 0 when it is unknown.
func (c Canonical) Uint(name string) uint64 { return c.Fields[name].AsUint() }

// Float returns the float field name, or 0 when it is unknown.
func (c Canonical) Float(name string) float64 { return c.Fields[name].AsFloat() }

// Normalize maps raw onto the canonical schema of class. Raw keys are
// matched case- and punctuation-insensitively; when two raw keys fold to the
// same form the lexicographically first one is used.
func Normalize(class hardware.Class, raw hardware.RawRecord) Canonical {
	c := Canonical{
		Class:  class,
		Fields: make(map[string]hardware.Value),
	}

	rawKeys := make([]string, 0, len(raw))
	for k := range raw {
		rawKeys = append(rawKeys, k)
	}
	sort.Strings(rawKeys)

	folded := make(map[string]string, len(raw))
	for _, k := range rawKeys {
		f := fold(k)
		if _, dup := folded[f]; !dup {
			folded[f] = k
		}
	}

	consumed := make(map[string]bool)
	invalid := make(map[string]bool)

	for _, spec := range schemas[class] {
		for _, a := range spec.aliases {
			key, ok := folded[a.key]
			if !ok || consumed[key] {
				continue
			}
			consumed[key] = true
			v, state := coerce(spec, a, raw[key])
			if state == numberInvalid {
				invalid[spec.name] = true
				continue
			}
			if state == numberOK {
				c.Fields[spec.name] = v
				delete(invalid, spec.name)
				break
			}
		}
	}

	switch class {
	case hardware.ClassCPU:
		reconcileCPU(&c, raw, folded, invalid)
	case hardware.ClassGPU, hardware.ClassStorage, hardware.ClassNetwork, hardware.ClassAudio, hardware.ClassUSB:
		fillVendor(&c)
	}

	skip := canonicalKeys[class]
	for _, k := range rawKeys {
		if consumed[k] {
			continue
		}
		if _, ok := skip[fold(k)]; ok {
			continue
		}
		v := cleanExtra(raw[k])
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[cleanText(k)] = v
	}

	for name := range invalid {
		c.Invalid = append(c.Invalid, name)
	}
	sort.Strings(c.Invalid)
	return c
}

func reconcileCPU(c *Canonical, raw hardware.RawRecord, folded map[string]string, invalid map[string]bool) {
	if _, ok := c.Fields["cpuArchitecture"]; !ok {
		companions := make(map[string]any)
		for _, key := range archCompanions {
			if k, ok := folded[key]; ok {
				companions[key] = raw[k]
			}
		}
		if a := inferArch(companions); a.Known() {
			c.Fields["cpuArchitecture"] = hardware.Text(string(a))
			delete(invalid, "cpuArchitecture")
		}
	}

	cores, threads := c.Uint("cpuCores"), c.Uint("cpuThreads")
	if cores > 0 && threads > 0 && threads < cores {
		delete(c.Fields, "cpuThreads")
		invalid["cpuThreads"] = true
	}
}

// fillVendor names the vendor from the PCI table when only its ID is known.
func fillVendor(c *Canonical) {
	if _, ok := c.Fields["vendor"]; ok {
		return
	}
	if name := PCIVendorName(c.Text("vendorId")); name != "" {
		c.Fields["vendor"] = hardware.Text(name)
	}
}

func coerce(spec fieldSpec, a alias, v any) (hardware.Value, numberState) {
	switch spec.kind {
	case kindText, kindIdentity, kindVendor:
		s, ok := rawText(v)
		if !ok {
			return hardware.Value{}, numberInvalid
		}
		if s == "" || (spec.kind != kindText && isPlaceholder(s)) {
			return hardware.Value{}, numberAbsent
		}
		if spec.kind == kindVendor {
			s = collapseVendor(spec.vendors, s)
		}
		return hardware.Text(s), numberOK

	case kindCount, kindBytes, kindTransfers, kindBitrate:
		n, state := toUint(v, a.scale, unitOf(spec.kind))
		if state == numberOK && n == 0 {
			return hardware.Value{}, numberAbsent
		}
		return hardware.Uint(n), state

	case kindHertz:
		f, state := toFloat(v, a.scale, unitHertz)
		if state == numberOK && f == 0 {
			return hardware.Value{}, numberAbsent
		}
		return hardware.Float(f), state

	case kindBool:
		b, state := toBool(v)
		return hardware.Bool(b), state

	case kindArch:
		arch, state := parseArch(v)
		return hardware.Text(string(arch)), state

	case kindPCIID:
		return coercePCIID(v)

	case kindMAC:
		return coerceMAC(v)

	case kindUUID:
		return coerceUUID(v)

	case kindDriveType:
		s, ok := rawText(v)
		if !ok {
			return hardware.Value{}, numberInvalid
		}
		if s == "" || isPlaceholder(s) {
			return hardware.Value{}, numberAbsent
		}
		if t, ok := driveTypes[strings.ToLower(s)]; ok {
			return hardware.Text(t), numberOK
		}
		return hardware.Text(s), numberOK

	case kindHostInterface:
		return coerceHostInterface(v)
	}
	return hardware.Value{}, numberInvalid
}

func unitOf(k fieldKind) unit {
	switch k {
	case kindBytes:
		return unitBytes
	case kindTransfers:
		return unitTransfers
	case kindBitrate:
		return unitBitrate
	}
	return unitNone
}

func coercePCIID(v any) (hardware.Value, numberState) {
	var id string
	switch t := v.(type) {
	case nil:
		return hardware.Value{}, numberAbsent
	case string, []byte:
		s, _ := rawText(t)
		if s == "" {
			return hardware.Value{}, numberAbsent
		}
		var ok bool
		if id, ok = parsePCIID(s); !ok {
			return hardware.Value{}, numberInvalid
		}
	default:
		n, err := cast.ToUint64E(v)
		if err != nil || n > 0xffff {
			return hardware.Value{}, numberInvalid
		}
		id = fmt.Sprintf("%04x", n)
	}
	// 0xffff is what an empty PCI slot reads back as.
	if id == "ffff" || id == "0000" {
		return hardware.Value{}, numberAbsent
	}
	return hardware.Text("0x" + id), numberOK
}

func coerceMAC(v any) (hardware.Value, numberState) {
	var mac net.HardwareAddr
	switch t := v.(type) {
	case net.HardwareAddr:
		mac = t
	default:
		s, ok := rawText(v)
		if !ok {
			return hardware.Value{}, numberInvalid
		}
		if s == "" {
			return hardware.Value{}, numberAbsent
		}
		var err error
		if mac, err = net.ParseMAC(s); err != nil {
			return hardware.Value{}, numberInvalid
		}
	}
	if len(mac) == 0 {
		return hardware.Value{}, numberAbsent
	}
	for _, b := range mac {
		if b != 0 {
			return hardware.Text(mac.String()), numberOK
		}
	}
	return hardware.Value{}, numberAbsent
}

func coerceUUID(v any) (hardware.Value, numberState) {
	var (
		id  uuid.UUID
		err error
	)
	switch t := v.(type) {
	case uuid.UUID:
		id = t
	case []byte:
		if len(t) == 16 {
			id, err = uuid.FromBytes(t)
			break
		}
		return coerceUUID(string(t))
	default:
		s, ok := rawText(v)
		if !ok {
			return hardware.Value{}, numberInvalid
		}
		if s == "" || isPlaceholder(s) {
			return hardware.Value{}, numberAbsent
		}
		id, err = uuid.Parse(s)
	}
	if err != nil {
		return hardware.Value{}, numberInvalid
	}
	if id == uuid.Nil || id == allOnes {
		return hardware.Value{}, numberAbsent
	}
	return hardware.Text(id.String()), numberOK
}

// allOnes is the UUID firmware reports when the field is unset.
var allOnes = uuid.UUID{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

var driveTypes = map[string]string{
	"hdd":            "hdd",
	"hard disk":      "hdd",
	"rotational":     "hdd",
	"ssd":            "ssd",
	"solid state":    "ssd",
	"nvme":           "ssd",
	"fdd":            "fdd",
	"floppy":         "fdd",
	"odd":            "odd",
	"optical":        "odd",
	"cd-rom":         "odd",
	"dvd":            "odd",
	"virtual":        "virtual",
	"virtual disk":   "virtual",
	"removable":      "removable",
	"removable disk": "removable",
}

// usbProgIf maps the PCI programming interface of a USB host controller
// (class 0x0c, subclass 0x03) to its interface name.
var usbProgIf = map[uint64]string{
	0x00: "uhci",
	0x10: "ohci",
	0x20: "ehci",
	0x30: "xhci",
	0x40: "usb4",
}

func coerceHostInterface(v any) (hardware.Value, numberState) {
	switch v.(type) {
	case nil:
		return hardware.Value{}, numberAbsent
	case string, []byte:
	default:
		n, err := cast.ToUint64E(v)
		if err != nil {
			return hardware.Value{}, numberInvalid
		}
		if name, ok := usbProgIf[n]; ok {
			return hardware.Text(name), numberOK
		}
		return hardware.Value{}, numberInvalid
	}

	s, _ := rawText(v)
	if s == "" || isPlaceholder(s) {
		return hardware.Value{}, numberAbsent
	}
	lower := strings.ToLower(s)
	// Text IDs are hex, as in pci.ids and sysfs.
	if n, err := strconv.ParseUint(strings.TrimPrefix(lower, "0x"), 16, 8); err == nil {
		if name, ok := usbProgIf[n]; ok {
			return hardware.Text(name), numberOK
		}
		return hardware.Value{}, numberInvalid
	}
	for _, name := range []string{"uhci", "ohci", "ehci", "xhci", "usb4"} {
		if strings.Contains(lower, name) {
			return hardware.Text(name), numberOK
		}
	}
	return hardware.Text(s), numberOK
}

// cleanExtra cleans text inside a vendor-specific value and converts the
// container types adapters commonly produce into plain maps and slices.
// Anything else is returned unchanged so serialization can reject it.
func cleanExtra(v any) any {
	switch t := v.(type) {
	case string:
		return cleanText(t)
	case []byte:
		return cleanText(string(t))
	case *string:
		if t == nil {
			return nil
		}
		return cleanText(*t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case hardware.FixedPoint:
		return t.Float64()
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = cleanText(s)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cleanExtra(e)
		}
		return out
	case hardware.RawRecord:
		return cleanExtra(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[cleanText(k)] = cleanExtra(e)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[cleanText(k)] = cleanText(e)
		}
		return out
	case nil:
		return nil
	}
	return cleanContainer(v)
}

// cleanContainer converts typed slices, arrays and string-keyed maps such
// as []uint32 or map[string]int into []any and map[string]any.
func cleanContainer(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = cleanExtra(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[cleanText(iter.Key().String())] = cleanExtra(iter.Value().Interface())
		}
		return out
	}
	return v
}
