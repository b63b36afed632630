// Package export encodes planning results for downstream robot program
// adapters. Records are written with the codec struct tags declared on the
// exported types.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/ugorji/go/codec"
)

// Format selects the wire encoding.
type Format int

const (
	MsgPack Format = iota
	JSON
	CBOR
)

func (f Format) String() string {
	switch f {
	case MsgPack:
		return "msgpack"
	case JSON:
		return "json"
	case CBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses a format name. The empty string selects MsgPack.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "msgpack", "mpk":
		return MsgPack, nil
	case "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	}
	return 0, fmt.Errorf("unknown export format %q", s)
}

func handle(f Format) (codec.Handle, error) {
	switch f {
	case MsgPack:
		h := &codec.MsgpackHandle{}
		h.WriteExt = true
		h.Canonical = true
		return h, nil
	case JSON:
		h := &codec.JsonHandle{}
		h.Indent = 2
		h.MapKeyAsString = true
		h.Canonical = true
		return h, nil
	case CBOR:
		h := &codec.CborHandle{}
		h.Canonical = true
		return h, nil
	}
	return nil, fmt.Errorf("unknown export format %s", f)
}

// Encode writes v to w in format f.
func Encode(w io.Writer, v any, f Format) error {
	h, err := handle(f)
	if err != nil {
		return err
	}
	if err := codec.NewEncoder(w, h).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// Decode reads a value encoded in format f from r into v.
func Decode(r io.Reader, v any, f Format) error {
	h, err := handle(f)
	if err != nil {
		return err
	}
	if err := codec.NewDecoder(r, h).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", f, err)
	}
	return nil
}
