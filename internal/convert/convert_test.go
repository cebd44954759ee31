package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-tangra/go-tangra-hwreport/internal/codec"
	"github.com/go-tangra/go-tangra-hwreport/internal/store"
)

const canonicalJSON = `{
  "schemaVersion": 1,
  "system": {"systemSerial": "ABC123", "systemUUID": "4c4c4544-0037-3910-8052-b7c04f4a4e32"},
  "totalMemory": 18446744073709551615,
  "cpu": {"cpuFrequency": 3.2e9},
  "unknownClasses": ["audio", "usb"]
}`

const targetYAML = `SchemaVersion: 1
PlatformInfo:
  SystemSerialNumber: ABC123
  SystemUUID: 4C4C4544-0037-3910-8052-B7C04F4A4E32
Memory: []
`

func TestDigest(t *testing.T) {
	a := Digest([]byte("report"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Digest([]byte("report")))
	assert.NotEqual(t, a, Digest([]byte("report\n")))
}

func TestInspect(t *testing.T) {
	id, err := Inspect([]byte(canonicalJSON), "json")
	require.NoError(t, err)
	assert.Equal(t, Identity{
		SystemUUID:     "4c4c4544-0037-3910-8052-b7c04f4a4e32",
		SystemSerial:   "ABC123",
		UnknownClasses: []string{"audio", "usb"},
	}, id)

	id, err = Inspect([]byte(targetYAML), "yaml")
	require.NoError(t, err)
	assert.Equal(t, "4C4C4544-0037-3910-8052-B7C04F4A4E32", id.SystemUUID)
	assert.Equal(t, "ABC123", id.SystemSerial)
	assert.Nil(t, id.UnknownClasses)

	c, err := codec.Get("cbor")
	require.NoError(t, err)
	data, err := c.Marshal(map[string]any{
		"system": map[string]any{"systemUUID": "u-1"},
	})
	require.NoError(t, err)
	id, err = Inspect(data, "cbor")
	require.NoError(t, err)
	assert.Equal(t, Identity{SystemUUID: "u-1"}, id)
}

func TestInspectErrors(t *testing.T) {
	_, err := Inspect([]byte("{"), "json")
	assert.ErrorContains(t, err, "decode json report")

	_, err = Inspect([]byte("{}"), "toml")
	assert.Error(t, err)
}

func TestDecodeNumbers(t *testing.T) {
	m, err := Decode([]byte(canonicalJSON), "json")
	require.NoError(t, err)
	assert.Equal(t, int64(1), m["schemaVersion"])
	assert.Equal(t, uint64(18446744073709551615), m["totalMemory"])
	assert.Equal(t, 3.2e9, m["cpu"].(map[string]any)["cpuFrequency"])

	m, err = Decode([]byte(targetYAML), "yaml")
	require.NoError(t, err)
	assert.Equal(t, int64(1), m["SchemaVersion"])
	assert.Equal(t, []any{}, m["Memory"])
}

func TestToRecord(t *testing.T) {
	collected := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec, err := ToRecord("out.json", "host-a", "json", []byte(canonicalJSON), collected)
	require.NoError(t, err)

	assert.Equal(t, &store.ReportRecord{
		Name:           "out.json",
		Hostname:       "host-a",
		SystemUUID:     "4c4c4544-0037-3910-8052-b7c04f4a4e32",
		SystemSerial:   "ABC123",
		Format:         "json",
		Digest:         Digest([]byte(canonicalJSON)),
		UnknownClasses: []string{"audio", "usb"},
		CollectedAt:    collected,
		Data:           []byte(canonicalJSON),
	}, rec)

	rec, err = ToRecord("", "host-a", "json", []byte(`{}`), time.Time{})
	require.NoError(t, err)
	assert.False(t, rec.CollectedAt.IsZero())
}

func TestRecordToSummary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := RecordToSummary(&store.ReportRecord{
		ID:             7,
		Hostname:       "host-a",
		Format:         "yaml",
		Digest:         Digest([]byte("x")),
		UnknownClasses: []string{"gpu"},
		CollectedAt:    now.Add(-3 * time.Hour),
		Data:           make([]byte, 2048),
	}, now)

	assert.Equal(t, int64(7), s.ID)
	assert.Equal(t, "3 hours ago", s.Collected)
	assert.Equal(t, "2.0 kB", s.Size)
	assert.Len(t, s.Digest, 12)
	assert.Equal(t, []string{"gpu"}, s.Unknown)
}
