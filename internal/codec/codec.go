// Package codec registers the report wire formats with the kratos encoding
// registry. Every codec emits mapping keys in a fixed order so that equal
// input always encodes to identical bytes.
package codec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-kratos/kratos/v2/encoding"
)

// Formats lists the registered report formats; the first is the default.
var Formats = []string{JSONName, YAMLName, CBORName}

func init() {
	encoding.RegisterCodec(jsonCodec{})
	encoding.RegisterCodec(yamlCodec{})
	encoding.RegisterCodec(cborCodec{})
}

// Get returns the codec registered for format. An empty format selects JSON.
func Get(format string) (encoding.Codec, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = JSONName
	}
	if format == "yml" {
		format = YAMLName
	}
	for _, name := range Formats {
		if name == format {
			return encoding.GetCodec(name), nil
		}
	}
	return nil, fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
