// Package convert turns serialized reports into history records and back.
package convert

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cast"
	"github.com/zeebo/blake3"

	"github.com/go-tangra/go-tangra-hwreport/internal/codec"
	"github.com/go-tangra/go-tangra-hwreport/internal/store"
)

// Digest returns the hex BLAKE3-256 digest of serialized report bytes. Equal
// reports in the same format have equal digests.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Identity is the machine identity carried inside a report.
type Identity struct {
	SystemUUID     string
	SystemSerial   string
	UnknownClasses []string
}

// identityKeys lists the section and field names of both key namings.
var identityKeys = struct {
	section, uuid, serial, unknown []string
}{
	section: []string{"system", "PlatformInfo"},
	uuid:    []string{"systemUUID", "SystemUUID"},
	serial:  []string{"systemSerial", "SystemSerialNumber"},
	unknown: []string{"unknownClasses", "UnknownClasses"},
}

// Decode parses serialized report bytes into a plain mapping. Numbers are
// returned as int64, uint64 or float64 whatever the format.
func Decode(data []byte, format string) (map[string]any, error) {
	c, err := codec.Get(format)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := c.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s report: %w", c.Name(), err)
	}
	return plain(m).(map[string]any), nil
}

// Inspect extracts the machine identity from a serialized report.
func Inspect(data []byte, format string) (Identity, error) {
	m, err := Decode(data, format)
	if err != nil {
		return Identity{}, err
	}

	var id Identity
	if sys, ok := lookup(m, identityKeys.section).(map[string]any); ok {
		id.SystemUUID = cast.ToString(lookup(sys, identityKeys.uuid))
		id.SystemSerial = cast.ToString(lookup(sys, identityKeys.serial))
	}
	if classes, err := cast.ToStringSliceE(lookup(m, identityKeys.unknown)); err == nil {
		id.UnknownClasses = classes
	}
	return id, nil
}

// ToRecord builds a history record for serialized report bytes.
func ToRecord(name, hostname, format string, data []byte, collectedAt time.Time) (*store.ReportRecord, error) {
	id, err := Inspect(data, format)
	if err != nil {
		return nil, err
	}
	if collectedAt.IsZero() {
		collectedAt = time.Now().UTC()
	}
	return &store.ReportRecord{
		Name:           name,
		Hostname:       hostname,
		SystemUUID:     id.SystemUUID,
		SystemSerial:   id.SystemSerial,
		Format:         format,
		Digest:         Digest(data),
		UnknownClasses: id.UnknownClasses,
		CollectedAt:    collectedAt,
		Data:           data,
	}, nil
}

// Summary is a display row for a stored report.
type Summary struct {
	ID         int64
	Hostname   string
	SystemUUID string
	Format     string
	Digest     string
	Collected  string
	Size       string
	Unknown    []string
}

// RecordToSummary converts a store record to a display row. Collected is
// relative to now ("3 hours ago").
func RecordToSummary(rec *store.ReportRecord, now time.Time) Summary {
	digest := rec.Digest
	if len(digest) > 12 {
		digest = digest[:12]
	}
	return Summary{
		ID:         rec.ID,
		Hostname:   rec.Hostname,
		SystemUUID: rec.SystemUUID,
		Format:     rec.Format,
		Digest:     digest,
		Collected:  humanize.RelTime(rec.CollectedAt, now, "ago", "from now"),
		Size:       humanize.Bytes(uint64(len(rec.Data))),
		Unknown:    rec.UnknownClasses,
	}
}

func lookup(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

// plain converts decoder-specific containers and numbers into the value set
// the report encoders accept.
func plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = plain(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[cast.ToString(k)] = plain(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = plain(e)
		}
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if n, err := strconv.ParseUint(t.String(), 10, 64); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case int:
		return int64(t)
	}
	return v
}
