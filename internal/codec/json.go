package codec

import (
	"bytes"
	"encoding/json"
)

const JSONName = "json"

type jsonCodec struct{}

// Marshal writes indented JSON with a trailing newline. encoding/json
// already orders map keys.
func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal keeps numbers as json.Number so 64-bit sizes survive a round
// trip.
func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func (jsonCodec) Name() string { return JSONName }
