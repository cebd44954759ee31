package codec

import (
	"bytes"
	"encoding/binary"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

const CBORName = "cbor"

const (
	cborArray = 4 << 5
	cborMap   = 5 << 5
)

// Scalars use RFC 8949 core deterministic encoding (shortest forms,
// definite lengths). Maps and sequences are written by encodeCBOR so keys
// follow the same bytewise order as the JSON and YAML codecs instead of the
// length-first order of the core rules.
var cborEnc = func() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	opts.Sort = cbor.SortNone
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

var cborDec = func() cbor.DecMode {
	dm, err := cbor.DecOptions{DefaultMapType: reflect.TypeOf(map[string]any(nil))}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

type cborCodec struct{}

func (cborCodec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeCBOR(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (cborCodec) Unmarshal(data []byte, v interface{}) error {
	return cborDec.Unmarshal(data, v)
}

func (cborCodec) Name() string { return CBORName }

func encodeCBOR(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case map[string]any:
		writeHead(buf, cborMap, uint64(len(t)))
		for _, k := range sortedKeys(t) {
			if err := encodeCBOR(buf, k); err != nil {
				return err
			}
			if err := encodeCBOR(buf, t[k]); err != nil {
				return err
			}
		}
		return nil
	case []any:
		writeHead(buf, cborArray, uint64(len(t)))
		for _, e := range t {
			if err := encodeCBOR(buf, e); err != nil {
				return err
			}
		}
		return nil
	}
	b, err := cborEnc.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// writeHead writes a CBOR initial byte and argument in its shortest form.
func writeHead(buf *bytes.Buffer, major byte, n uint64) {
	switch {
	case n < 24:
		buf.WriteByte(major | byte(n))
	case n <= 0xff:
		buf.WriteByte(major | 24)
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(major | 25)
		buf.Write(binary.BigEndian.AppendUint16(nil, uint16(n)))
	case n <= 0xffffffff:
		buf.WriteByte(major | 26)
		buf.Write(binary.BigEndian.AppendUint32(nil, uint32(n)))
	default:
		buf.WriteByte(major | 27)
		buf.Write(binary.BigEndian.AppendUint64(nil, n))
	}
}
