package sle

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/entry"
)

var (
	// ErrShortEntry is returned when data is too small to carry a discriminator.
	ErrShortEntry = errors.New("entry data shorter than discriminator")

	// ErrUnknownDiscriminator is returned when the leading tag matches no entry type.
	ErrUnknownDiscriminator = errors.New("unknown entry discriminator")

	// ErrTypeMismatch is returned when data holds a different entry type than requested.
	ErrTypeMismatch = errors.New("entry type mismatch")
)

var handle = newHandle()

func newHandle() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	h.RawToString = true
	h.Canonical = true
	return h
}

// Serialize encodes an entry as its discriminator followed by the msgpack body.
func Serialize(e entry.Entry) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", e.Type(), err)
	}

	d := e.Type().Discriminator()
	buf := bytes.NewBuffer(make([]byte, 0, 128))
	buf.Write(d[:])

	if err := codec.NewEncoder(buf, handle).Encode(e); err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Type(), err)
	}
	return buf.Bytes(), nil
}

// PeekType returns the entry type carried by the discriminator of data.
func PeekType(data []byte) (entry.Type, error) {
	if len(data) < entry.DiscriminatorSize {
		return 0, ErrShortEntry
	}
	t, ok := entry.TypeFromDiscriminator(data)
	if !ok {
		return 0, ErrUnknownDiscriminator
	}
	return t, nil
}

// Decode parses data into out, checking that the discriminator matches out's type.
func Decode(data []byte, out entry.Entry) error {
	t, err := PeekType(data)
	if err != nil {
		return err
	}
	if t != out.Type() {
		return fmt.Errorf("%w: have %s, want %s", ErrTypeMismatch, t, out.Type())
	}

	dec := codec.NewDecoderBytes(data[entry.DiscriminatorSize:], handle)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", t, err)
	}
	return nil
}

// Fields decodes an entry body into a generic field map. 32-byte values are
// rendered as base58 addresses.
func Fields(data []byte) (map[string]any, error) {
	if _, err := PeekType(data); err != nil {
		return nil, err
	}

	raw := make(map[string]any)
	dec := codec.NewDecoderBytes(data[entry.DiscriminatorSize:], handle)
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	for name, value := range raw {
		if b, ok := value.([]byte); ok && len(b) == 32 {
			var id [32]byte
			copy(id[:], b)
			raw[name] = EncodeAccountID(id)
		}
	}
	return raw, nil
}
