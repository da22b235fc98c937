package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func mustDecode(t *testing.T, b []byte) (time.Time, []byte) {
	t.Helper()
	exp, p, err := DecodeEntry(b)
	if err != nil {
		t.Fatalf("DecodeEntry error: %v", err)
	}
	return exp, p
}

func TestEntryRoundTrip(t *testing.T) {
	at := time.Date(2030, 5, 1, 12, 0, 0, 250*int(time.Millisecond), time.UTC)
	cases := []struct {
		exp     time.Time
		payload []byte
	}{
		{time.Time{}, nil},
		{time.Time{}, []byte("hello")},
		{at, []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		exp, p := mustDecode(t, EncodeEntry(tc.exp, tc.payload))
		if !exp.Equal(tc.exp) {
			t.Fatalf("expiry mismatch: got %v want %v", exp, tc.exp)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestExpiryKeepsMillisecondsOnly(t *testing.T) {
	at := time.Date(2030, 1, 1, 0, 0, 0, 123456789, time.UTC)
	exp, _ := mustDecode(t, EncodeEntry(at, []byte("x")))
	if want := at.Truncate(time.Millisecond); !exp.Equal(want) {
		t.Fatalf("got %v want %v", exp, want)
	}
	if exp.Location() != time.UTC {
		t.Fatalf("decoded expiry should be UTC, got %v", exp.Location())
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	enc := EncodeEntry(time.Time{}, []byte("x"))
	enc = append(enc, 0xDE, 0xAD)
	if _, _, err := DecodeEntry(enc); err != ErrCorrupt {
		t.Fatalf("expected ErrCorrupt on trailing bytes, got %v", err)
	}
}

func TestCorruptHeaders(t *testing.T) {
	enc := EncodeEntry(time.Time{}, []byte("abc"))

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := DecodeEntry(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := DecodeEntry(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	negExp := append([]byte(nil), enc...)
	binary.BigEndian.PutUint64(negExp[5:13], uint64(1)<<63)
	if _, _, err := DecodeEntry(negExp); err == nil {
		t.Fatalf("expected error on negative expiry")
	}

	longLen := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(longLen[13:17], 1000)
	if _, _, err := DecodeEntry(longLen); err == nil {
		t.Fatalf("expected error on length past end")
	}

	if _, _, err := DecodeEntry(enc[:hdrLen-1]); err == nil {
		t.Fatalf("expected error on short header")
	}
}
