// Package wire frames a stored value together with its absolute expiry so
// stores without per-entry TTLs can still answer TTL queries.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("bpcache: corrupt entry")
	magic4     = [...]byte{'B', 'P', 'C', 'E'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | expires(unix ms, i64 be; 0 = none) | vlen(u32 be) | payload(vlen)
func EncodeEntry(expires time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	var ms int64
	if !expires.IsZero() {
		ms = expires.UnixMilli()
	}
	binary.BigEndian.PutUint64(u8[:], uint64(ms))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeEntry returns the expiry (zero when none) and a payload sub-slice of b.
// Trailing bytes are treated as corruption.
func DecodeEntry(b []byte) (expires time.Time, payload []byte, err error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version {
		return time.Time{}, nil, ErrCorrupt
	}
	off := 5

	ms := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	if ms < 0 {
		return time.Time{}, nil, ErrCorrupt
	}

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen != len(b)-off {
		return time.Time{}, nil, ErrCorrupt
	}

	if ms > 0 {
		expires = time.UnixMilli(ms).UTC()
	}
	return expires, b[off:], nil
}
