package codec

import (
	"encoding/json"
	"testing"

	"github.com/go-kratos/kratos/v2/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() map[string]any {
	return map[string]any{
		"usb": []any{},
		"cpu": map[string]any{
			"cpuThreads": uint64(16),
			"cpuBrand":   "Intel",
			"hz":         3.2e9,
		},
		"a2":      true,
		"a10":     "<tag> & \"quoted\"",
		"Zeta":    nil,
		"enabled": "true",
	}
}

func TestGet(t *testing.T) {
	for _, tc := range []struct {
		in, want string
	}{
		{"", JSONName},
		{"json", JSONName},
		{" JSON ", JSONName},
		{"yaml", YAMLName},
		{"yml", YAMLName},
		{"cbor", CBORName},
	} {
		c, err := Get(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, c.Name())
	}

	_, err := Get("xml")
	assert.ErrorContains(t, err, `unsupported format "xml"`)
}

func TestRegistered(t *testing.T) {
	for _, name := range Formats {
		c := encoding.GetCodec(name)
		require.NotNil(t, c, name)
		assert.Equal(t, name, c.Name())
	}
}

func TestJSON(t *testing.T) {
	c, err := Get(JSONName)
	require.NoError(t, err)

	out, err := c.Marshal(sample())
	require.NoError(t, err)
	assert.Equal(t, `{
  "Zeta": null,
  "a10": "<tag> & \"quoted\"",
  "a2": true,
  "cpu": {
    "cpuBrand": "Intel",
    "cpuThreads": 16,
    "hz": 3200000000
  },
  "enabled": "true",
  "usb": []
}
`, string(out))

	var back map[string]any
	require.NoError(t, c.Unmarshal(out, &back))
	assert.Equal(t, json.Number("16"), back["cpu"].(map[string]any)["cpuThreads"])
}

func TestYAMLSortsBytewise(t *testing.T) {
	c, err := Get(YAMLName)
	require.NoError(t, err)

	in := sample()
	in["a10"] = "ten"
	out, err := c.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `Zeta: null
a10: ten
a2: true
cpu:
  cpuBrand: Intel
  cpuThreads: 16
  hz: 3.2e+09
enabled: "true"
usb: []
`, string(out))

	var back map[string]any
	require.NoError(t, c.Unmarshal(out, &back))
	assert.Equal(t, "true", back["enabled"])
	assert.Equal(t, true, back["a2"])
	assert.Nil(t, back["Zeta"])
}

func TestCBORDeterministic(t *testing.T) {
	c, err := Get(CBORName)
	require.NoError(t, err)

	first, err := c.Marshal(sample())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := c.Marshal(sample())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	var back map[string]any
	require.NoError(t, c.Unmarshal(first, &back))
	assert.Equal(t, "Intel", back["cpu"].(map[string]any)["cpuBrand"])
	assert.Equal(t, uint64(16), back["cpu"].(map[string]any)["cpuThreads"])
	assert.Equal(t, []any{}, back["usb"])
}

func TestCBORSortsBytewise(t *testing.T) {
	c, err := Get(CBORName)
	require.NoError(t, err)

	out, err := c.Marshal(map[string]any{"b": 1, "a10": 2, "a2": 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0xa3,
		0x63, 'a', '1', '0', 0x02,
		0x62, 'a', '2', 0x03,
		0x61, 'b', 0x01,
	}, out)

	long := make([]any, 24)
	for i := range long {
		long[i] = 0
	}
	out, err = c.Marshal(long)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x98, 24}, out[:2])
	assert.Len(t, out, 26)

	var back []any
	require.NoError(t, c.Unmarshal(out, &back))
	assert.Len(t, back, 24)
}

func TestJSONDeterministic(t *testing.T) {
	c, err := Get(JSONName)
	require.NoError(t, err)

	first, err := c.Marshal(sample())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := c.Marshal(sample())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
